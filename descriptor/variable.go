// Copyright 2022 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package descriptor provides the opaque identities the analyzer uses
// as mapping keys: variable descriptors (table/exchange columns,
// frame/stream/local/external variables) and the resolutions bound to
// them, plus the key->resolution stores themselves.
package descriptor

import "github.com/google/uuid"

// VariableKind distinguishes the origin of a Variable descriptor.
type VariableKind int

const (
	TableColumn VariableKind = iota
	ExchangeColumn
	FrameVariable
	StreamVariable
	LocalVariable
	ExternalVariable
)

func (k VariableKind) String() string {
	switch k {
	case TableColumn:
		return "table_column"
	case ExchangeColumn:
		return "exchange_column"
	case FrameVariable:
		return "frame_variable"
	case StreamVariable:
		return "stream_variable"
	case LocalVariable:
		return "local_variable"
	case ExternalVariable:
		return "external_variable"
	default:
		return "unknown_variable_kind"
	}
}

// Variable is an opaque identity used as a key in mappings. Variable
// is a comparable struct, so == and map lookups compare its kind,
// handle and label together; Label is not used for anything else.
type Variable struct {
	kind   VariableKind
	handle string
	label  string
}

// NewVariable creates a descriptor of the given kind with an explicit
// handle (for example, a catalog-assigned column id).
func NewVariable(kind VariableKind, handle string, label string) Variable {
	return Variable{kind: kind, handle: handle, label: label}
}

// NewSynthetic mints a fresh descriptor with a generated identity, for
// variables introduced by rewrites (new stream columns produced by
// scan/join rewriting or by the exchange step collector).
func NewSynthetic(kind VariableKind, label string) Variable {
	return Variable{kind: kind, handle: uuid.NewString(), label: label}
}

func (v Variable) Kind() VariableKind { return v.kind }
func (v Variable) Label() string      { return v.label }

// String renders a stable, debug-oriented representation; it is not
// used for equality (Variable is a comparable struct and compares by
// value, i.e. by kind, handle and label).
func (v Variable) String() string {
	if v.label != "" {
		return v.kind.String() + ":" + v.label
	}
	return v.kind.String() + ":" + v.handle
}
