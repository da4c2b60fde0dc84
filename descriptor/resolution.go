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

package descriptor

import "github.com/yugawara-go/yugawara/types"

// ResolutionKind discriminates the tagged union of possible
// VariableResolution values (spec §3).
type ResolutionKind int

const (
	Unresolved ResolutionKind = iota
	UnknownResolution
	ScalarExpressionResolution
	TableColumnResolution
	ExternalResolution
	FunctionCallResolution
	AggregationResolution
)

func (k ResolutionKind) String() string {
	switch k {
	case UnknownResolution:
		return "unknown"
	case ScalarExpressionResolution:
		return "scalar_expression"
	case TableColumnResolution:
		return "table_column"
	case ExternalResolution:
		return "external"
	case FunctionCallResolution:
		return "function_call"
	case AggregationResolution:
		return "aggregation"
	default:
		return "unresolved"
	}
}

// Resolution is the tagged union bound to a Variable: unresolved,
// unknown(type), scalar_expression(&expr), table_column(&column),
// external(&decl), function_call(&decl), aggregation(&decl). Every
// non-unresolved resolution exposes a unique well-defined type,
// either held directly (UnknownResolution) or derived from the
// referenced element via a caller-supplied accessor.
type Resolution struct {
	kind   ResolutionKind
	typ    *types.Type
	ref    any
	typeOf func() *types.Type
}

// NewUnresolved constructs the empty resolution.
func NewUnresolved() Resolution { return Resolution{kind: Unresolved} }

// NewUnknown constructs a resolution that is simply a known type with
// no referenced element (e.g. an externally declared but otherwise
// opaque variable).
func NewUnknown(t *types.Type) Resolution {
	return Resolution{kind: UnknownResolution, typ: t}
}

// NewScalarExpression binds a variable to the scalar expression node
// that computes it (e.g. a `let` declarator); typeOf resolves the
// expression's type on demand, since the expression may not yet be
// analyzed at binding time.
func NewScalarExpression(expr any, typeOf func() *types.Type) Resolution {
	return Resolution{kind: ScalarExpressionResolution, ref: expr, typeOf: typeOf}
}

// NewTableColumn binds a variable to a catalog table column.
func NewTableColumn(column any, typeOf func() *types.Type) Resolution {
	return Resolution{kind: TableColumnResolution, ref: column, typeOf: typeOf}
}

// NewExternal binds a variable to an externally declared element
// (e.g. a host-language variable or placeholder parameter).
func NewExternal(decl any, typeOf func() *types.Type) Resolution {
	return Resolution{kind: ExternalResolution, ref: decl, typeOf: typeOf}
}

// NewFunctionCall binds a variable to a scalar function declaration.
func NewFunctionCall(decl any, typeOf func() *types.Type) Resolution {
	return Resolution{kind: FunctionCallResolution, ref: decl, typeOf: typeOf}
}

// NewAggregation binds a variable to an aggregate function
// declaration.
func NewAggregation(decl any, typeOf func() *types.Type) Resolution {
	return Resolution{kind: AggregationResolution, ref: decl, typeOf: typeOf}
}

func (r Resolution) Kind() ResolutionKind { return r.kind }

// Ref returns the referenced element (nil for Unresolved/Unknown).
func (r Resolution) Ref() any { return r.ref }

// Type returns this resolution's unique well-defined type. It panics
// if called on an Unresolved resolution; callers must check Kind()
// first (mirrors the analyzer's "unresolved_variable" diagnostic path,
// which never asks an unresolved binding for its type).
func (r Resolution) Type() *types.Type {
	switch r.kind {
	case Unresolved:
		panic("descriptor: Type() called on an unresolved resolution")
	case UnknownResolution:
		return r.typ
	default:
		return r.typeOf()
	}
}
