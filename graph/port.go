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

// Package graph provides the typed port/edge multigraph container
// shared by the relational operator graph (package plan) and the
// physical step plan graph (package rowexec), so the edge invariant in
// spec §3 ("for every edge, removing either side disconnects the
// other; neither side may be reassigned while the counterpart refers
// to it") is enforced in exactly one place.
package graph

import "fmt"

// PortDirection distinguishes an operator's input ports from its
// output ports.
type PortDirection int

const (
	Input PortDirection = iota
	Output
)

// Node is any operator that can participate in a Graph: it exposes
// its input and output ports by reference so the graph can wire edges
// between them.
type Node interface {
	Ports() []*Port
}

// Port is one endpoint of a directed edge. An output port connects to
// exactly one input port and vice versa (a 1-to-many fan-out is
// modeled as several distinct output ports on the same operator, one
// per downstream edge, matching the teacher's plan.Node port
// convention).
type Port struct {
	Owner     Node
	Direction PortDirection
	Name      string
	peer      *Port
}

// NewPort constructs a detached port owned by owner.
func NewPort(owner Node, direction PortDirection, name string) *Port {
	return &Port{Owner: owner, Direction: direction, Name: name}
}

// Peer returns the port connected to p, or nil if p is detached.
func (p *Port) Peer() *Port { return p.peer }

// Connected reports whether p currently has a peer.
func (p *Port) Connected() bool { return p.peer != nil }

// Connect wires p to q. Both ports must currently be detached and
// must face opposite directions (an Output only ever connects to an
// Input). Connecting an already-connected port is a caller bug: it
// would silently orphan the previous peer and violate the "removing
// either side disconnects the other" invariant, so Connect panics
// rather than overwriting it.
func Connect(p, q *Port) {
	if p.Direction == q.Direction {
		panic(fmt.Sprintf("graph: cannot connect two %v ports", p.Direction))
	}
	if p.peer != nil || q.peer != nil {
		panic("graph: port is already connected")
	}
	p.peer = q
	q.peer = p
}

// Disconnect removes the edge at p, if any, disconnecting both p and
// its former peer.
func Disconnect(p *Port) {
	if p.peer == nil {
		return
	}
	peer := p.peer
	p.peer = nil
	peer.peer = nil
}

func (d PortDirection) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}
