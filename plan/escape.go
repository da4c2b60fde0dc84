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

package plan

import "github.com/yugawara-go/yugawara/descriptor"

// Escape marks the boundary of a relational subplan whose output
// columns are exposed to the enclosing scalar expression (e.g. a
// scalar subquery). It is preserved until variable rewrite finishes,
// then erased by the exchange step collector (spec §4.7: "escape —
// preserved until variable rewrite finishes, then erased").
type Escape struct {
	base
	Columns []descriptor.Variable
}

// NewEscape constructs an escape consuming one input.
func NewEscape(columns []descriptor.Variable) *Escape {
	e := &Escape{Columns: columns}
	e.base = newBase(e, 1)
	return e
}

func (e *Escape) OperatorKind() Kind { return KindEscape }
