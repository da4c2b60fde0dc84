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

import "github.com/yugawara-go/yugawara/graph"

// Graph is an intermediate relational operator graph: a set of
// Operator nodes connected by the shared port/edge container, with
// the 1-to-1 connection invariant enforced by graph.Connect (spec
// §3's "removing either side disconnects the other").
type Graph struct {
	g *graph.Graph
}

// NewGraph returns an empty operator graph.
func NewGraph() *Graph {
	return &Graph{g: graph.New()}
}

// Add inserts op into the graph.
func (p *Graph) Add(op Operator) { p.g.Add(op) }

// Remove deletes op from the graph, disconnecting every one of its
// ports first.
func (p *Graph) Remove(op Operator) { p.g.Remove(op) }

// Contains reports whether op is a member of the graph.
func (p *Graph) Contains(op Operator) bool { return p.g.Contains(op) }

// Operators returns every operator currently in the graph, in
// insertion order (with removals applied via swap, so order is not
// stable across a Remove).
func (p *Graph) Operators() []Operator {
	nodes := p.g.Nodes()
	ops := make([]Operator, len(nodes))
	for i, n := range nodes {
		ops[i] = n.(Operator)
	}
	return ops
}

// Len returns the number of operators in the graph.
func (p *Graph) Len() int { return p.g.Len() }

// Upstreams returns the operators feeding op's input ports.
func Upstreams(op Operator) []Operator {
	return toOperators(graph.Upstreams(op))
}

// Downstreams returns the operators consuming op's output ports.
func Downstreams(op Operator) []Operator {
	return toOperators(graph.Downstreams(op))
}

// IsAcyclic reports whether the graph contains no cycle.
func IsAcyclic(p *Graph) bool { return graph.IsAcyclic(p.g) }

func toOperators(nodes []graph.Node) []Operator {
	ops := make([]Operator, len(nodes))
	for i, n := range nodes {
		ops[i] = n.(Operator)
	}
	return ops
}
