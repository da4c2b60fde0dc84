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

// Package plan defines the intermediate relational operator graph:
// the typed, port-connected operators (scan, find, filter, project,
// join, aggregate, distinct, limit, set operations, values, write,
// buffer, escape) the analyzer, predicate toolkit, and scan/join
// rewriters all operate over.
package plan

import "github.com/yugawara-go/yugawara/graph"

// Kind discriminates the closed set of intermediate operator
// variants, mirroring the teacher's sql.Node dispatch-by-kind
// convention (plan.go-level switch, handler functions per operator).
type Kind int

const (
	KindScan Kind = iota
	KindFind
	KindFilter
	KindProject
	KindJoin
	KindJoinFind
	KindJoinScan
	KindAggregate
	KindDistinct
	KindLimit
	KindUnion
	KindIntersection
	KindDifference
	KindValues
	KindWrite
	KindBuffer
	KindEscape
)

// Operator is any intermediate relational operator node.
type Operator interface {
	graph.Node
	OperatorKind() Kind
}

// base is embedded by every concrete operator; it owns a fixed set of
// input ports and a growable set of output ports (one per downstream
// edge, so an operator with two consumers of the same output column
// set simply has two output ports rather than one port shared by two
// edges — this keeps graph.Connect's 1-to-1 invariant uniform).
type base struct {
	owner   Operator
	inputs  []*graph.Port
	outputs []*graph.Port
}

func newBase(owner Operator, numInputs int) base {
	b := base{owner: owner}
	for i := 0; i < numInputs; i++ {
		b.inputs = append(b.inputs, graph.NewPort(owner, graph.Input, "in"))
	}
	b.outputs = append(b.outputs, graph.NewPort(owner, graph.Output, "out"))
	return b
}

// Ports implements graph.Node.
func (b *base) Ports() []*graph.Port {
	out := make([]*graph.Port, 0, len(b.inputs)+len(b.outputs))
	out = append(out, b.inputs...)
	out = append(out, b.outputs...)
	return out
}

// Input returns the i'th input port.
func (b *base) Input(i int) *graph.Port { return b.inputs[i] }

// Inputs returns every input port.
func (b *base) Inputs() []*graph.Port { return b.inputs }

// Outputs returns every output port (>1 once additional consumers
// fan out from this operator via AddOutput).
func (b *base) Outputs() []*graph.Port { return b.outputs }

// Output returns the primary (first) output port.
func (b *base) Output() *graph.Port { return b.outputs[0] }

// AddOutput grows the operator with one more output port, for an
// additional downstream consumer (e.g. a buffer feeding two branches).
func (b *base) AddOutput() *graph.Port {
	p := graph.NewPort(b.owner, graph.Output, "out")
	b.outputs = append(b.outputs, p)
	return p
}
