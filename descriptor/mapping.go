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

import (
	"fmt"

	"github.com/yugawara-go/yugawara/types"
)

// VariableMapping is a key->resolution store keyed by variable
// identity (spec §4.2). It is owned exclusively by one analyzer
// instance at a time (spec §5); it is not safe for concurrent use.
type VariableMapping struct {
	entries map[Variable]Resolution
}

// NewVariableMapping constructs an empty mapping.
func NewVariableMapping() *VariableMapping {
	return &VariableMapping{entries: make(map[Variable]Resolution)}
}

// Bind associates v with resolution. Without overwrite, rebinding an
// already-resolved key is fatal (spec §4.2): it panics, since it
// signals a compiler-internal invariant violation rather than a user
// error (spec §7, "Invalid IR").
func (m *VariableMapping) Bind(v Variable, resolution Resolution, overwrite bool) {
	if !overwrite {
		if _, ok := m.entries[v]; ok {
			panic(fmt.Sprintf("descriptor: variable %s is already resolved", v))
		}
	}
	m.entries[v] = resolution
}

// Unbind removes any resolution bound to v.
func (m *VariableMapping) Unbind(v Variable) {
	delete(m.entries, v)
}

// Find returns the resolution bound to v, if any.
func (m *VariableMapping) Find(v Variable) (Resolution, bool) {
	r, ok := m.entries[v]
	return r, ok
}

// Clear removes every binding.
func (m *VariableMapping) Clear() {
	m.entries = make(map[Variable]Resolution)
}

// Each calls fn once per binding, in unspecified order.
func (m *VariableMapping) Each(fn func(Variable, Resolution)) {
	for v, r := range m.entries {
		fn(v, r)
	}
}

// Len reports the number of bindings.
func (m *VariableMapping) Len() int { return len(m.entries) }

// ExpressionMapping is a key->type store keyed by expression node
// identity (spec §3). Node identity is the pointer value of the
// scalar expression, matching the teacher's identity-hash convention
// (spec §9, "Pointer-based maps over IR nodes"). An expression
// resolution is `(optional type)`: initially empty, filled once
// analysis visits the node, and overwritten only when explicitly
// requested.
type ExpressionMapping struct {
	entries map[any]*types.Type
}

// NewExpressionMapping constructs an empty mapping.
func NewExpressionMapping() *ExpressionMapping {
	return &ExpressionMapping{entries: make(map[any]*types.Type)}
}

// Bind records t as the resolved type of the node identified by key
// (typically the expression node's own pointer). Without overwrite,
// rebinding an already-resolved node is fatal.
func (m *ExpressionMapping) Bind(key any, t *types.Type, overwrite bool) {
	if !overwrite {
		if _, ok := m.entries[key]; ok {
			panic("descriptor: expression node is already resolved")
		}
	}
	m.entries[key] = t
}

// Unbind clears the resolution of key, if any.
func (m *ExpressionMapping) Unbind(key any) {
	delete(m.entries, key)
}

// Find returns the type resolved for key, if any.
func (m *ExpressionMapping) Find(key any) (*types.Type, bool) {
	t, ok := m.entries[key]
	return t, ok
}

// Clear removes every binding.
func (m *ExpressionMapping) Clear() {
	m.entries = make(map[any]*types.Type)
}

// Each calls fn once per binding, in unspecified order.
func (m *ExpressionMapping) Each(fn func(key any, t *types.Type)) {
	for k, t := range m.entries {
		fn(k, t)
	}
}

// Len reports the number of bindings.
func (m *ExpressionMapping) Len() int { return len(m.entries) }
