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

package analyzer

import (
	"github.com/yugawara-go/yugawara/graph"
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/scalar"
)

// portedOperator exposes the port accessors every plan operator gets
// for free by embedding plan's unexported base (spec §3's "source
// ports are disconnected only after target ports are successfully
// connected" requires direct port access, which plan.Operator's
// interface does not itself declare).
type portedOperator interface {
	plan.Operator
	Input(i int) *graph.Port
	Inputs() []*graph.Port
	Output() *graph.Port
	Outputs() []*graph.Port
}

// replaceOperator swaps old for replacement inside g: replacement's
// input ports are wired to whatever fed old's corresponding input
// ports, and every downstream consumer of old's output ports is moved
// onto replacement's outputs at the same index (spec §4.7's "source
// ports are disconnected only after target ports are successfully
// connected" atomicity rule, reused here for the C5 rewriters since
// both are the same kind of graph surgery). old must already belong
// to g; replacement is added to g in its place.
func replaceOperator(g *plan.Graph, old, replacement portedOperator) {
	oldInputs, newInputs := old.Inputs(), replacement.Inputs()
	for i, in := range oldInputs {
		if i >= len(newInputs) {
			break
		}
		upstream := in.Peer()
		if upstream == nil {
			continue
		}
		graph.Disconnect(in)
		graph.Connect(upstream, newInputs[i])
	}

	oldOutputs, newOutputs := old.Outputs(), replacement.Outputs()
	for i, out := range oldOutputs {
		downstream := out.Peer()
		if downstream == nil {
			continue
		}
		dst := newOutputs[0]
		if i < len(newOutputs) {
			dst = newOutputs[i]
		}
		graph.Disconnect(out)
		graph.Connect(dst, downstream)
	}

	g.Remove(old)
	g.Add(replacement)
}

// removePassthrough splices a single-input single-output operator out
// of g entirely, reconnecting its upstream directly to its downstream
// (used once a Filter's condition has simplified away to TRUE, per
// spec §4.5's "rewrite filter operators so that conjuncts already
// subsumed by the range are replaced with TRUE and then simplified
// away").
func removePassthrough(g *plan.Graph, op portedOperator) {
	in := op.Input(0)
	out := op.Output()
	upstream := in.Peer()
	downstream := out.Peer()
	if upstream == nil || downstream == nil {
		g.Remove(op)
		return
	}
	graph.Disconnect(in)
	graph.Disconnect(out)
	graph.Connect(upstream, downstream)
	g.Remove(op)
}

// soleDownstream returns the single operator consuming op's sole
// output port, or nil if op has more than one output port, its output
// port feeds more than one consumer (not representable with this
// 1-port-per-edge convention, since a second consumer would need its
// own output port), or it has no consumer at all.
func soleDownstream(op plan.Operator) plan.Operator {
	outs := graph.Outputs(op)
	if len(outs) != 1 {
		return nil
	}
	peer := outs[0].Peer()
	if peer == nil {
		return nil
	}
	return peer.Owner.(plan.Operator)
}

// soleUpstream returns the single operator feeding op's sole input
// port, or nil if op has more than one input port or that port has no
// producer (used the same way as soleDownstream, walking the opposite
// direction).
func soleUpstream(op plan.Operator) plan.Operator {
	ins := graph.Inputs(op)
	if len(ins) != 1 {
		return nil
	}
	peer := ins[0].Peer()
	if peer == nil {
		return nil
	}
	return peer.Owner.(plan.Operator)
}

// trueLiteral builds the canonical TRUE replacement for a subsumed
// conjunct (spec §4.5).
func trueLiteral() scalar.Expression { return scalar.NewLiteral(true, scalar.Region{}) }

// rebuildConjunction reassembles a (possibly reduced) conjunct list
// back into a single expression, collapsing to a bare TRUE literal
// when nothing is left and skipping past conjuncts that simplified
// away (spec §4.5: "replaced with TRUE and then simplified away").
func rebuildConjunction(conjuncts []scalar.Expression) scalar.Expression {
	var kept []scalar.Expression
	for _, c := range conjuncts {
		if SimplifyPredicate(c) == ConstantTrue {
			continue
		}
		kept = append(kept, c)
	}
	switch len(kept) {
	case 0:
		return trueLiteral()
	case 1:
		return kept[0]
	default:
		return scalar.NewAnd(scalar.Region{}, kept...)
	}
}
