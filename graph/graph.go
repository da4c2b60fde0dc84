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

package graph

// Graph is a directed multigraph of Nodes connected through Ports. It
// owns the arena of registered nodes; nodes are never silently
// dropped by an edge operation, only by an explicit Remove.
type Graph struct {
	nodes []Node
	index map[Node]int
}

// New constructs an empty Graph.
func New() *Graph {
	return &Graph{index: make(map[Node]int)}
}

// Add registers n with the graph. Adding the same node twice is a
// no-op.
func (g *Graph) Add(n Node) {
	if _, ok := g.index[n]; ok {
		return
	}
	g.index[n] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

// Remove disconnects every port of n and drops it from the graph.
func (g *Graph) Remove(n Node) {
	i, ok := g.index[n]
	if !ok {
		return
	}
	for _, p := range n.Ports() {
		Disconnect(p)
	}
	last := len(g.nodes) - 1
	g.nodes[i] = g.nodes[last]
	g.index[g.nodes[i]] = i
	g.nodes = g.nodes[:last]
	delete(g.index, n)
}

// Contains reports whether n is registered with g.
func (g *Graph) Contains(n Node) bool {
	_, ok := g.index[n]
	return ok
}

// Nodes returns every registered node, in registration order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len reports the number of registered nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Upstreams returns the nodes connected to n's input ports.
func Upstreams(n Node) []Node {
	var out []Node
	for _, p := range n.Ports() {
		if p.Direction == Input && p.Connected() {
			out = append(out, p.Peer().Owner)
		}
	}
	return out
}

// Downstreams returns the nodes connected to n's output ports.
func Downstreams(n Node) []Node {
	var out []Node
	for _, p := range n.Ports() {
		if p.Direction == Output && p.Connected() {
			out = append(out, p.Peer().Owner)
		}
	}
	return out
}

// Inputs returns n's input ports.
func Inputs(n Node) []*Port {
	var out []*Port
	for _, p := range n.Ports() {
		if p.Direction == Input {
			out = append(out, p)
		}
	}
	return out
}

// Outputs returns n's output ports.
func Outputs(n Node) []*Port {
	var out []*Port
	for _, p := range n.Ports() {
		if p.Direction == Output {
			out = append(out, p)
		}
	}
	return out
}

// IsAcyclic reports whether g contains no directed cycle, walking
// downstream edges from every node (spec §8: "the block graph is
// acyclic iff the underlying operator graph is acyclic" relies on
// this same check applying uniformly to both graph kinds).
func IsAcyclic(g *Graph) bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[Node]int, g.Len())
	var visit func(n Node) bool
	visit = func(n Node) bool {
		switch color[n] {
		case gray:
			return false
		case black:
			return true
		}
		color[n] = gray
		for _, next := range Downstreams(n) {
			if !visit(next) {
				return false
			}
		}
		color[n] = black
		return true
	}
	for _, n := range g.nodes {
		if color[n] == white {
			if !visit(n) {
				return false
			}
		}
	}
	return true
}
