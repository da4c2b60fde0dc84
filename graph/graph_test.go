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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	name  string
	ports []*Port
}

func newFakeNode(name string, nIn, nOut int) *fakeNode {
	n := &fakeNode{name: name}
	for i := 0; i < nIn; i++ {
		n.ports = append(n.ports, NewPort(n, Input, "in"))
	}
	for i := 0; i < nOut; i++ {
		n.ports = append(n.ports, NewPort(n, Output, "out"))
	}
	return n
}

func (n *fakeNode) Ports() []*Port { return n.ports }

func TestConnectAndDisconnectInvariant(t *testing.T) {
	a := newFakeNode("a", 0, 1)
	b := newFakeNode("b", 1, 0)

	Connect(a.ports[0], b.ports[0])
	require.True(t, a.ports[0].Connected())
	require.True(t, b.ports[0].Connected())
	assert.Equal(t, b, a.ports[0].Peer().Owner)

	Disconnect(a.ports[0])
	assert.False(t, a.ports[0].Connected())
	assert.False(t, b.ports[0].Connected())
}

func TestConnectSameDirectionPanics(t *testing.T) {
	a := newFakeNode("a", 0, 1)
	b := newFakeNode("b", 0, 1)
	assert.Panics(t, func() { Connect(a.ports[0], b.ports[0]) })
}

func TestConnectAlreadyConnectedPanics(t *testing.T) {
	a := newFakeNode("a", 0, 1)
	b := newFakeNode("b", 1, 0)
	c := newFakeNode("c", 1, 0)
	Connect(a.ports[0], b.ports[0])
	assert.Panics(t, func() { Connect(a.ports[0], c.ports[0]) })
}

func TestGraphRemoveDisconnectsAllPorts(t *testing.T) {
	g := New()
	a := newFakeNode("a", 0, 1)
	b := newFakeNode("b", 1, 0)
	g.Add(a)
	g.Add(b)
	Connect(a.ports[0], b.ports[0])

	g.Remove(a)
	assert.False(t, g.Contains(a))
	assert.False(t, b.ports[0].Connected())
}

func TestUpstreamsDownstreams(t *testing.T) {
	a := newFakeNode("a", 0, 1)
	b := newFakeNode("b", 2, 1)
	c := newFakeNode("c", 1, 0)
	Connect(a.ports[0], b.ports[0])
	Connect(b.ports[2], c.ports[0])

	assert.ElementsMatch(t, []Node{a}, Upstreams(b))
	assert.ElementsMatch(t, []Node{c}, Downstreams(b))
}

func TestIsAcyclic(t *testing.T) {
	g := New()
	a := newFakeNode("a", 0, 1)
	b := newFakeNode("b", 1, 1)
	c := newFakeNode("c", 1, 0)
	g.Add(a)
	g.Add(b)
	g.Add(c)
	Connect(a.ports[0], b.ports[0])
	Connect(b.ports[1], c.ports[0])
	assert.True(t, IsAcyclic(g))

	// introduce a cycle b -> a
	extraOut := NewPort(b, Output, "out2")
	b.ports = append(b.ports, extraOut)
	extraIn := NewPort(a, Input, "in2")
	a.ports = append(a.ports, extraIn)
	Connect(extraOut, extraIn)
	assert.False(t, IsAcyclic(g))
}
