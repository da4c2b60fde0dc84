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
	"github.com/yugawara-go/yugawara/function"
)

// AggregateColumn binds one aggregate result column to a function
// declaration applied over its argument columns.
type AggregateColumn struct {
	Function  function.Declaration
	Arguments []descriptor.Variable
	Result    descriptor.Variable
}

// Aggregate groups its single input by Keys and computes Columns over
// each group. Whether the step collector lowers it as incremental
// (partial-aggregation-capable) or non-incremental depends on whether
// every AggregateColumn's function declaration is Incremental (spec
// §4.7's "aggregate (incremental)" vs "(non-incremental)" rows).
type Aggregate struct {
	base
	Keys    []descriptor.Variable
	Columns []AggregateColumn
}

// NewAggregate constructs an aggregate consuming one input.
func NewAggregate(keys []descriptor.Variable, columns []AggregateColumn) *Aggregate {
	a := &Aggregate{Keys: keys, Columns: columns}
	a.base = newBase(a, 1)
	return a
}

func (a *Aggregate) OperatorKind() Kind { return KindAggregate }

// Incremental reports whether every aggregate column can be computed
// via partial aggregation inside an exchange.
func (a *Aggregate) Incremental() bool {
	for _, c := range a.Columns {
		if !c.Function.Incremental {
			return false
		}
	}
	return true
}
