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

import (
	"github.com/yugawara-go/yugawara/descriptor"
	"github.com/yugawara-go/yugawara/scalar"
)

// Projection binds one output column to the scalar expression that
// computes it.
type Projection struct {
	Variable   descriptor.Variable
	Expression scalar.Expression
}

// Project computes zero or more new columns from its single input,
// appending them to the stream (spec §4.3: a `let`-like relational
// operator, one of the relational constructs whose embedded scalar
// expressions are subject to local-variable inlining).
type Project struct {
	base
	Columns []Projection
}

// NewProject constructs a project consuming one input.
func NewProject(columns []Projection) *Project {
	p := &Project{Columns: columns}
	p.base = newBase(p, 1)
	return p
}

func (p *Project) OperatorKind() Kind { return KindProject }
