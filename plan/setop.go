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

// Distinct removes duplicate rows, comparing every column (spec
// §4.7's "distinct" row: lowered to a `group` exchange over all
// columns with limit 1).
type Distinct struct {
	base
	Columns []descriptor.Variable
}

// NewDistinct constructs a distinct over one input.
func NewDistinct(columns []descriptor.Variable) *Distinct {
	d := &Distinct{Columns: columns}
	d.base = newBase(d, 1)
	return d
}

func (d *Distinct) OperatorKind() Kind { return KindDistinct }

// SortKey orders rows by Variable, ascending unless Descending.
type SortKey struct {
	Variable   descriptor.Variable
	Descending bool
}

// Limit caps its input to Count rows, optionally within groups keyed
// by GroupKeys and ordered by SortKeys (spec §4.7's
// `limit(count, group_keys, sort_keys)`).
type Limit struct {
	base
	Count      int64
	GroupKeys  []descriptor.Variable
	SortKeys   []SortKey
}

// NewLimit constructs a limit over one input.
func NewLimit(count int64, groupKeys []descriptor.Variable, sortKeys []SortKey) *Limit {
	l := &Limit{Count: count, GroupKeys: groupKeys, SortKeys: sortKeys}
	l.base = newBase(l, 1)
	return l
}

func (l *Limit) OperatorKind() Kind { return KindLimit }

// Flat reports whether this limit has no grouping/sort keys, the case
// spec §4.7 lowers to a bare `forward(limit=N)` + `take_flat` instead
// of a `group` exchange.
func (l *Limit) Flat() bool { return len(l.GroupKeys) == 0 && len(l.SortKeys) == 0 }

// SetQuantifier distinguishes ALL from DISTINCT set-operation
// semantics (spec §4.7's "union(all)" vs "union(distinct)").
type SetQuantifier int

const (
	SetAll SetQuantifier = iota
	SetDistinct
)

// Union merges rows from two inputs with the same column declarations
// (spec §4.3: "union merges declarations via unifying conversion").
type Union struct {
	base
	Quantifier SetQuantifier
	Columns    []descriptor.Variable
}

// NewUnion constructs a union of two inputs.
func NewUnion(quantifier SetQuantifier, columns []descriptor.Variable) *Union {
	u := &Union{Quantifier: quantifier, Columns: columns}
	u.base = newBase(u, 2)
	return u
}

func (u *Union) OperatorKind() Kind { return KindUnion }

// Intersection retains only rows present in both inputs (spec §4.7:
// "same shape as co-group join").
type Intersection struct {
	base
	Quantifier SetQuantifier
	Columns    []descriptor.Variable
}

// NewIntersection constructs an intersection of two inputs.
func NewIntersection(quantifier SetQuantifier, columns []descriptor.Variable) *Intersection {
	i := &Intersection{Quantifier: quantifier, Columns: columns}
	i.base = newBase(i, 2)
	return i
}

func (i *Intersection) OperatorKind() Kind { return KindIntersection }

// Difference retains rows of the first input absent from the second.
type Difference struct {
	base
	Quantifier SetQuantifier
	Columns    []descriptor.Variable
}

// NewDifference constructs a difference of two inputs.
func NewDifference(quantifier SetQuantifier, columns []descriptor.Variable) *Difference {
	d := &Difference{Quantifier: quantifier, Columns: columns}
	d.base = newBase(d, 2)
	return d
}

func (d *Difference) OperatorKind() Kind { return KindDifference }
