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
	"github.com/yugawara-go/yugawara/descriptor"
	"github.com/yugawara-go/yugawara/estimator"
	"github.com/yugawara-go/yugawara/graph"
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/rangehint"
	"github.com/yugawara-go/yugawara/scalar"
	"github.com/yugawara-go/yugawara/storage"
)

// RewriteJoin walks g looking for intermediate joins whose condition
// carries equalities (or, with enableJoinScan, range predicates)
// between one side's index and an expression free of that side, and
// replaces the join with a single-input index probe (join_find or
// join_scan) over the other side — the "broadcast" form of spec §4.5's
// join table, so named because the surviving side streams past a
// build side small enough to probe directly rather than exchanging
// both sides through a shuffle. The right side is tried before the
// left, and a left_outer join only ever considers the right side,
// since the surviving (outer) input of a single-input probe must
// carry every row the outer-join semantics require. full_outer joins
// are left untouched: spec §4.5 forbids a broadcast replacement for
// them. maxBuildRows caps the candidate index's estimated row count
// (0 disables the cap); a join whose cheapest candidate index still
// exceeds it is left as a plain join, which C7 lowers to the co-group
// form instead (two group exchanges feeding a join_group step).
func RewriteJoin(g *plan.Graph, provider storage.Provider, est estimator.Estimator, enableJoinScan bool, maxBuildRows int64) bool {
	rewrote := false
	for _, op := range g.Operators() {
		join, ok := op.(*plan.Join)
		if !ok || join.Kind == plan.JoinFullOuter {
			continue
		}
		if rewriteOneJoin(g, join, provider, est, enableJoinScan, maxBuildRows) {
			rewrote = true
		}
	}
	return rewrote
}

func rewriteOneJoin(g *plan.Graph, join *plan.Join, provider storage.Provider, est estimator.Estimator, enableJoinScan bool, maxBuildRows int64) bool {
	if tryConsumeSide(g, join, 1, provider, est, enableJoinScan, maxBuildRows) {
		return true
	}
	if join.Kind == plan.JoinLeftOuter {
		return false
	}
	return tryConsumeSide(g, join, 0, provider, est, enableJoinScan, maxBuildRows)
}

// collectJoinProbeChain walks upstream from root (the operator
// feeding the join's candidate side) through a linear run of filters
// until it reaches the scan that would become the probe's Target
// index. Any other operator found along the way (a distinct, project,
// nested join, aggregate, or a fan-out buffer) is treated as an
// interference operator and forbids the rewrite (spec §4.5: "an
// interference operator on the consumed side... forbids replacement:
// the transformation must preserve the row multiset that reaches the
// join").
func collectJoinProbeChain(root plan.Operator) (*plan.Scan, []*plan.Filter, bool) {
	var reversed []*plan.Filter
	current := root
	for {
		switch op := current.(type) {
		case *plan.Scan:
			filters := make([]*plan.Filter, len(reversed))
			for i, f := range reversed {
				filters[len(reversed)-1-i] = f
			}
			return op, filters, true
		case *plan.Filter:
			reversed = append(reversed, op)
			up := soleUpstream(op)
			if up == nil {
				return nil, nil, false
			}
			current = up
		default:
			return nil, nil, false
		}
	}
}

// tryConsumeSide attempts to replace join's consumedIdx input (and
// everything feeding it) with an index probe against the scan found
// there, keeping the opposite side as the probe's single streamed
// input.
func tryConsumeSide(g *plan.Graph, join *plan.Join, consumedIdx int, provider storage.Provider, est estimator.Estimator, enableJoinScan bool, maxBuildRows int64) bool {
	outerIdx := 1 - consumedIdx
	consumedPeer := join.Input(consumedIdx).Peer()
	if consumedPeer == nil {
		return false
	}
	root, ok := consumedPeer.Owner.(plan.Operator)
	if !ok {
		return false
	}
	scan, filters, ok := collectJoinProbeChain(root)
	if !ok {
		return false
	}

	chain := scanChain{filters: filters}
	ranges, filterBounds := deriveRangeHints(chain)

	consumedVars := make(map[descriptor.Variable]bool, len(scan.Columns))
	for _, c := range scan.Columns {
		consumedVars[c.Result] = true
	}

	joinConjuncts := DecomposeConjunction(join.Condition)
	var joinBounds []boundConjunct
	for _, c := range joinConjuncts {
		v, h, boundOk := joinKeyBound(c, consumedVars)
		if !boundOk {
			continue
		}
		ranges.Intersect(singleEntryMap(v, h))
		joinBounds = append(joinBounds, boundConjunct{variable: v, conjunct: c})
	}
	if len(joinBounds) == 0 {
		return false
	}

	var residual []scalar.Expression
	for _, f := range filters {
		residual = append(residual, DecomposeConjunction(f.Condition)...)
	}

	table := scan.Source.Table
	var best *storage.Index
	var bestEstimate estimator.Estimate
	found := false
	provider.EachIndex(func(idx *storage.Index) {
		if idx.Table != table {
			return
		}
		candidate := est.Estimate(idx, ranges, residual, false)
		if !found || better(idx, candidate, best, bestEstimate) {
			best, bestEstimate, found = idx, candidate, true
		}
	})
	if !found {
		return false
	}
	if maxBuildRows > 0 && bestEstimate.RowCount > maxBuildRows {
		// the probe side is too large to broadcast; leave the join in
		// place for the co-group lowering instead.
		return false
	}

	lowerKeys, upperKeys, lowerKind, upperKind, allEquality, usedVars := buildKeyBounds(best, scan.Columns, ranges)
	if len(lowerKeys) == 0 && len(upperKeys) == 0 {
		return false
	}

	var joinConsumed []scalar.Expression
	for _, bc := range joinBounds {
		if usedVars[bc.variable] {
			joinConsumed = append(joinConsumed, bc.conjunct)
		}
	}

	residualCondition := rebuildConjunction(subtractConjuncts(joinConjuncts, joinConsumed))

	var replacement portedOperator
	switch {
	case allEquality && best.Unique && len(lowerKeys) == len(best.Keys):
		replacement = plan.NewJoinFind(join.Kind, best, scan.Columns, lowerKeys, residualCondition)
	case enableJoinScan:
		js := plan.NewJoinScan(join.Kind, best, scan.Columns, residualCondition)
		js.Lower, js.LowerKeys = lowerKind, lowerKeys
		js.Upper, js.UpperKeys = upperKind, upperKeys
		replacement = js
	default:
		return false
	}

	consumedChain := make([]plan.Operator, 0, len(filters)+1)
	consumedChain = append(consumedChain, scan)
	for _, f := range filters {
		consumedChain = append(consumedChain, f)
	}

	spliceJoinReplacement(g, join, outerIdx, consumedChain, replacement)
	absorbConsumedConjuncts(g, absorbableConjuncts(filterBounds, usedVars))
	return true
}

// joinKeyBound extracts a (variable, hint) bound from a join conjunct
// when exactly one side is a variable reference belonging to the
// consumed side. Unlike singleVariableBound — which requires the
// other side to not itself be a variable reference, since a scan
// filter only ever has one stream in scope — a join condition
// routinely compares two stream variables (the ordinary equi-join
// shape `consumed.k = outer.k`), so both sides may be references; the
// consumed-side membership test is what disambiguates which one is
// the index's bound key rather than ref-vs-immediate shape.
func joinKeyBound(expr scalar.Expression, consumedVars map[descriptor.Variable]bool) (descriptor.Variable, rangehint.Hint, bool) {
	cmp, ok := expr.(*scalar.Comparison)
	if !ok {
		return descriptor.Variable{}, rangehint.Hint{}, false
	}
	op := cmp.Operator
	left, right := cmp.Left, cmp.Right
	leftRef, leftIsRef := left.(*scalar.VariableReference)
	rightRef, rightIsRef := right.(*scalar.VariableReference)

	var v descriptor.Variable
	var otherSide scalar.Expression
	switch {
	case leftIsRef && consumedVars[leftRef.Variable]:
		v, otherSide = leftRef.Variable, right
	case rightIsRef && consumedVars[rightRef.Variable]:
		v, otherSide = rightRef.Variable, left
		op = flipComparison(op)
	default:
		return descriptor.Variable{}, rangehint.Hint{}, false
	}

	value, ok := endpointValue(otherSide)
	if !ok {
		return descriptor.Variable{}, rangehint.Hint{}, false
	}
	if value.IsVariable() && consumedVars[value.Variable()] {
		// both sides resolve into the consumed side (a self-
		// referential predicate); not usable as a probe key against
		// the outer side.
		return descriptor.Variable{}, rangehint.Hint{}, false
	}

	h := rangehint.Hint{Lower: rangehint.Infinity(), Upper: rangehint.Infinity()}
	switch op {
	case scalar.Equal:
		h = h.IntersectLower(value, true).IntersectUpper(value, true)
	case scalar.GreaterThanOrEqual:
		h = h.IntersectLower(value, true)
	case scalar.GreaterThan:
		h = h.IntersectLower(value, false)
	case scalar.LessThanOrEqual:
		h = h.IntersectUpper(value, true)
	case scalar.LessThan:
		h = h.IntersectUpper(value, false)
	default:
		return descriptor.Variable{}, rangehint.Hint{}, false
	}
	return v, h, true
}

// spliceJoinReplacement rewires join's surviving (outer) side onto
// replacement's single input, drops the consumed-side subtree from g
// entirely, and moves every downstream consumer of join's output onto
// replacement's output (spec §4.7's "source ports are disconnected
// only after target ports are successfully connected" atomicity rule,
// reused here since this is the same kind of graph surgery).
func spliceJoinReplacement(g *plan.Graph, join *plan.Join, outerIdx int, consumedChain []plan.Operator, replacement portedOperator) {
	outerIn := join.Input(outerIdx)
	if outerUpstream := outerIn.Peer(); outerUpstream != nil {
		graph.Disconnect(outerIn)
		graph.Connect(outerUpstream, replacement.Input(0))
	}

	consumedIn := join.Input(1 - outerIdx)
	graph.Disconnect(consumedIn)
	for _, op := range consumedChain {
		g.Remove(op)
	}

	for _, out := range join.Outputs() {
		downstream := out.Peer()
		if downstream == nil {
			continue
		}
		graph.Disconnect(out)
		graph.Connect(replacement.Output(), downstream)
	}

	g.Remove(join)
	g.Add(replacement)
}
