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

import "github.com/yugawara-go/yugawara/graph"

// Kind discriminates the closed set of physical step operators.
type Kind int

const (
	KindOffer Kind = iota
	KindTakeFlat
	KindTakeGroup
	KindTakeCogroup
	KindFlatten
	KindJoinGroup
	KindJoinFind
	KindJoinScan
	KindAggregateGroup
	KindIntersectionGroup
	KindDifferenceGroup
	KindRelational
)

// Step is any physical step-plan node.
type Step interface {
	graph.Node
	StepKind() Kind
}

// base is embedded by every concrete step; mirrors plan.base's fixed
// input / growable output port convention.
type base struct {
	owner   Step
	inputs  []*graph.Port
	outputs []*graph.Port
}

func newBase(owner Step, numInputs, numOutputs int) base {
	b := base{owner: owner}
	for i := 0; i < numInputs; i++ {
		b.inputs = append(b.inputs, graph.NewPort(owner, graph.Input, "in"))
	}
	for i := 0; i < numOutputs; i++ {
		b.outputs = append(b.outputs, graph.NewPort(owner, graph.Output, "out"))
	}
	return b
}

func (b *base) Ports() []*graph.Port {
	out := make([]*graph.Port, 0, len(b.inputs)+len(b.outputs))
	out = append(out, b.inputs...)
	out = append(out, b.outputs...)
	return out
}

func (b *base) Input(i int) *graph.Port  { return b.inputs[i] }
func (b *base) Inputs() []*graph.Port    { return b.inputs }
func (b *base) Outputs() []*graph.Port   { return b.outputs }
func (b *base) Output() *graph.Port      { return b.outputs[0] }
