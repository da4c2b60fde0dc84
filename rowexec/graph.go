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

// Graph is a physical step plan: the external graph of physical steps
// spec §3 names ("forward, group, aggregate, broadcast, ..."),
// connected through the same shared port/edge container as plan.Graph.
type Graph struct {
	g *graph.Graph
}

// NewGraph returns an empty step plan graph.
func NewGraph() *Graph {
	return &Graph{g: graph.New()}
}

// Add inserts step into the graph.
func (p *Graph) Add(step Step) { p.g.Add(step) }

// Remove deletes step from the graph, disconnecting every one of its
// ports first.
func (p *Graph) Remove(step Step) { p.g.Remove(step) }

// Contains reports whether step is a member of the graph.
func (p *Graph) Contains(step Step) bool { return p.g.Contains(step) }

// Steps returns every step currently in the graph.
func (p *Graph) Steps() []Step {
	nodes := p.g.Nodes()
	steps := make([]Step, len(nodes))
	for i, n := range nodes {
		steps[i] = n.(Step)
	}
	return steps
}

// Len returns the number of steps in the graph.
func (p *Graph) Len() int { return p.g.Len() }

// Downstreams returns the steps consuming step's output ports.
func Downstreams(step Step) []Step {
	nodes := graph.Downstreams(step)
	steps := make([]Step, len(nodes))
	for i, n := range nodes {
		steps[i] = n.(Step)
	}
	return steps
}

// IsAcyclic reports whether the graph contains no cycle.
func IsAcyclic(p *Graph) bool { return graph.IsAcyclic(p.g) }
