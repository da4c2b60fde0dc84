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

// Package function defines the scalar/aggregate function provider
// contract (spec §6): dispatch by (name, parameter count) for
// overload resolution, with the `#distinct` suffix convention for
// DISTINCT-quantified aggregates.
package function

import "github.com/yugawara-go/yugawara/types"

// Declaration describes one overload of a named function.
type Declaration struct {
	DefinitionID   string
	Name           string
	ReturnType     *types.Type
	ParameterTypes []*types.Type
	// Incremental reports whether an aggregate declaration supports
	// partial aggregation inside an `aggregate` exchange (spec §4.7).
	Incremental bool
}

// Provider dispatches function/aggregate declarations by name and
// parameter count. A name may have several overloads (a multimap);
// Find returns every declaration registered for name regardless of
// arity, Resolve narrows to the exact parameter count requested.
type Provider interface {
	Find(name string) []Declaration
	Resolve(name string, parameterCount int) (Declaration, bool)
}

// DistinctName appends the `#distinct` suffix convention used to
// register the DISTINCT-quantified form of an aggregate separately
// from its plain form.
func DistinctName(name string) string { return name + "#distinct" }
