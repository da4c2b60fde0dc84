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

package rowexec

import "github.com/yugawara-go/yugawara/plan"

// Relational carries an intermediate operator that needs no exchange
// lowering (scan, find, filter, project, values, write, the already
// rewritten join_find/join_scan, buffer) straight into the physical
// step plan, preserving its port arity (spec §4.7 only lowers join,
// aggregate, distinct, limit, union, intersection, difference, and
// escape; every other operator is carried across unchanged).
type Relational struct {
	base
	Operator plan.Operator
}

// NewRelational constructs a passthrough step wrapping op, with the
// same number of input and output ports op had at collection time.
func NewRelational(op plan.Operator, numInputs, numOutputs int) *Relational {
	r := &Relational{Operator: op}
	r.base = newBase(r, numInputs, numOutputs)
	return r
}

func (r *Relational) StepKind() Kind { return KindRelational }

// IntersectionGroup is the physical form of a co-group intersection:
// it consumes a single take_cogroup pairing both sides' groups and
// keeps only keys present on both sides (spec §4.7: "intersection/
// difference — same shape as co-group join").
type IntersectionGroup struct {
	base
	Quantifier plan.SetQuantifier
}

// NewIntersectionGroup constructs an intersection_group consuming a
// take_cogroup's single output.
func NewIntersectionGroup(quantifier plan.SetQuantifier) *IntersectionGroup {
	g := &IntersectionGroup{Quantifier: quantifier}
	g.base = newBase(g, 1, 1)
	return g
}

func (g *IntersectionGroup) StepKind() Kind { return KindIntersectionGroup }

// DifferenceGroup is the physical form of a co-group difference: it
// consumes a single take_cogroup pairing both sides' groups and keeps
// only keys present on the first side but absent from the second.
type DifferenceGroup struct {
	base
	Quantifier plan.SetQuantifier
}

// NewDifferenceGroup constructs a difference_group consuming a
// take_cogroup's single output.
func NewDifferenceGroup(quantifier plan.SetQuantifier) *DifferenceGroup {
	g := &DifferenceGroup{Quantifier: quantifier}
	g.base = newBase(g, 1, 1)
	return g
}

func (g *DifferenceGroup) StepKind() Kind { return KindDifferenceGroup }
