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
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/rangehint"
	"github.com/yugawara-go/yugawara/scalar"
	"github.com/yugawara-go/yugawara/storage"
)

// RewriteScan walks g for every intermediate scan still resting on
// its table's default (whole-relation) index, derives a range hint
// per key column from the filters immediately downstream, and
// replaces it with the cheapest index access the estimator reports
// (spec §4.5). It reports whether any rewrite was applied.
func RewriteScan(g *plan.Graph, provider storage.Provider, est estimator.Estimator) bool {
	rewrote := false
	for _, op := range g.Operators() {
		scan, ok := op.(*plan.Scan)
		if !ok || !isWholeRelationScan(scan) {
			continue
		}
		if rewriteOneScan(g, scan, provider, est) {
			rewrote = true
		}
	}
	return rewrote
}

// isWholeRelationScan reports whether scan has not already been
// bound to a key range by a previous rewrite pass.
func isWholeRelationScan(scan *plan.Scan) bool {
	return scan.Lower == plan.EndpointUnbound && scan.Upper == plan.EndpointUnbound
}

// scanChain is the linear run of filters sitting directly downstream
// of a scan, collected while the single edge stays linear (spec
// §4.5's "walk downstream while the single edge stays linear").
type scanChain struct {
	filters []*plan.Filter
}

func collectScanChain(scan *plan.Scan) scanChain {
	var chain scanChain
	current := plan.Operator(scan)
	for {
		next := soleDownstream(current)
		filter, ok := next.(*plan.Filter)
		if !ok {
			break
		}
		chain.filters = append(chain.filters, filter)
		current = filter
	}
	return chain
}

// boundConjunct pairs a conjunct with the single stream variable it
// bounds, so that once the chosen index's key bounds are known the
// caller can tell which conjuncts that choice actually subsumed.
type boundConjunct struct {
	variable descriptor.Variable
	conjunct scalar.Expression
}

// deriveRangeHints decomposes every filter in chain into conjuncts and
// folds each conjunct's single-variable or disjunction-range bound
// into ranges (keyed by the stream variable the filter tests). It
// returns, per filter, only the single-variable-bound conjuncts —
// candidates for absorption, not a final decision. A disjunction's
// covering range is folded into ranges but the disjunction itself is
// not returned, since that range is a superset of the disjunction and
// the disjunction must stay in the residual (spec §4.4). The caller narrows these
// candidates to the ones the chosen index's key bounds actually used
// before absorbing anything (spec §4.5 step 4).
func deriveRangeHints(chain scanChain) (*rangehint.Map, map[*plan.Filter][]boundConjunct) {
	ranges := rangehint.NewMap()
	bounds := make(map[*plan.Filter][]boundConjunct)
	for _, f := range chain.filters {
		for _, conjunct := range DecomposeConjunction(f.Condition) {
			if v, h, ok := singleVariableBound(conjunct); ok {
				ranges.Intersect(singleEntryMap(v, h))
				bounds[f] = append(bounds[f], boundConjunct{variable: v, conjunct: conjunct})
				continue
			}
			if v, h, ok := DecomposeDisjunctionIntoRange(conjunct); ok {
				ranges.Intersect(singleEntryMap(v, h))
			}
		}
	}
	return ranges, bounds
}

// absorbableConjuncts narrows each filter's candidate bound conjuncts
// down to the ones whose variable the chosen index's key bounds
// actually consumed, so that a conjunct on a column the index never
// reached (e.g. a second predicate past the index's bound columns)
// is never silently dropped.
func absorbableConjuncts(bounds map[*plan.Filter][]boundConjunct, usedVars map[descriptor.Variable]bool) map[*plan.Filter][]scalar.Expression {
	consumed := make(map[*plan.Filter][]scalar.Expression, len(bounds))
	for f, bcs := range bounds {
		for _, bc := range bcs {
			if usedVars[bc.variable] {
				consumed[f] = append(consumed[f], bc.conjunct)
			}
		}
	}
	return consumed
}

func singleEntryMap(v descriptor.Variable, h rangehint.Hint) *rangehint.Map {
	m := rangehint.NewMap()
	m.Set(v, h)
	return m
}

// rewriteOneScan applies spec §4.5's four-step algorithm to one scan.
func rewriteOneScan(g *plan.Graph, scan *plan.Scan, provider storage.Provider, est estimator.Estimator) bool {
	table := scan.Source.Table
	chain := collectScanChain(scan)
	ranges, bounds := deriveRangeHints(chain)

	var residual []scalar.Expression
	for _, f := range chain.filters {
		residual = append(residual, DecomposeConjunction(f.Condition)...)
	}

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

	lowerKeys, upperKeys, lowerKind, upperKind, allEquality, usedVars := buildKeyBounds(best, scan.Columns, ranges)
	if len(lowerKeys) == 0 && len(upperKeys) == 0 {
		return false
	}

	var replacement portedOperator
	if allEquality && best.Unique && len(lowerKeys) == len(best.Keys) {
		replacement = plan.NewFind(best, scan.Columns, lowerKeys)
	} else {
		s := plan.NewScan(best, scan.Columns)
		s.Lower, s.LowerKeys = lowerKind, lowerKeys
		s.Upper, s.UpperKeys = upperKind, upperKeys
		replacement = s
	}

	replaceOperator(g, scan, replacement)
	absorbConsumedConjuncts(g, absorbableConjuncts(bounds, usedVars))
	return true
}

// better implements spec §4.5 step 2's tie-break: highest score wins;
// ties prefer primary, then unique, then ordered, then smaller row
// count.
func better(candidate *storage.Index, ce estimator.Estimate, current *storage.Index, be estimator.Estimate) bool {
	if ce.Score != be.Score {
		return ce.Score > be.Score
	}
	if candidate.Primary != current.Primary {
		return candidate.Primary
	}
	if candidate.Unique != current.Unique {
		return candidate.Unique
	}
	if candidate.Ordered != current.Ordered {
		return candidate.Ordered
	}
	return ce.RowCount < be.RowCount
}

// buildKeyBounds walks idx's key columns in order, stopping the
// equality prefix at the first column without an equality bound (or
// with no bound at all), and returns the Find-style equality keys
// plus the Scan-style lower/upper endpoint kinds and keys for the
// single trailing range column, per spec §4.5 step 3. ranges is keyed
// by the stream (Result) variable the predicate chain actually
// references; columns supplies the Source<->Result pairing needed to
// translate a ranges hit back into an index key bound on the Source
// (catalog) column identity. usedVars reports exactly the stream
// variables that ended up bound into lowerKeys/upperKeys — the only
// ones whose source conjuncts are safe to absorb, since a variable
// never reached (the loop stops at the first unbound key column) may
// still carry an un-subsumed predicate of its own.
func buildKeyBounds(idx *storage.Index, columns []plan.Column, ranges *rangehint.Map) (lowerKeys, upperKeys []plan.Key, lowerKind, upperKind plan.EndpointKind, allEquality bool, usedVars map[descriptor.Variable]bool) {
	allEquality = true
	usedVars = make(map[descriptor.Variable]bool)
	for _, col := range idx.Keys {
		column, ok := columnForIndexKey(columns, col)
		if !ok {
			break
		}
		h := ranges.Get(column.Result)
		if h.Empty() {
			break
		}
		eqValue, isEq := equalityBound(h)
		if isEq {
			expr := expressionForBound(eqValue)
			lowerKeys = append(lowerKeys, plan.Key{Column: column.Source, Value: expr})
			upperKeys = append(upperKeys, plan.Key{Column: column.Source, Value: expr})
			usedVars[column.Result] = true
			continue
		}
		allEquality = false
		if h.Lower.Kind != rangehint.BoundInfinity {
			lowerKind = endpointKindFor(h.Lower.Kind)
			lowerKeys = append(lowerKeys, plan.Key{Column: column.Source, Value: expressionForBound(h.Lower.Value)})
			usedVars[column.Result] = true
		}
		if h.Upper.Kind != rangehint.BoundInfinity {
			upperKind = endpointKindFor(h.Upper.Kind)
			upperKeys = append(upperKeys, plan.Key{Column: column.Source, Value: expressionForBound(h.Upper.Value)})
			usedVars[column.Result] = true
		}
		break
	}
	if allEquality && len(lowerKeys) > 0 {
		lowerKind, upperKind = plan.EndpointPrefixedInclusive, plan.EndpointPrefixedInclusive
	}
	return
}

// columnForIndexKey resolves one index key column to the scan/probe
// Column pairing that produced it. Column identity flows through the
// catalog column name: the stream's Source variable is minted from
// the same catalog column as idxCol, so matching on name recovers it.
func columnForIndexKey(columns []plan.Column, idxCol storage.Column) (plan.Column, bool) {
	for _, c := range columns {
		if c.Source.Label() == idxCol.Name {
			return c, true
		}
	}
	return plan.Column{}, false
}

// equalityBound reports whether h pins its variable to a single value
// on both sides (both bounds inclusive and equal) — either the same
// immediate constant, compared with rangehint.Compare, or the same
// other variable (the ordinary equi-join shape, where the bound value
// is the outer side's stream variable rather than a literal).
func equalityBound(h rangehint.Hint) (rangehint.Value, bool) {
	if h.Lower.Kind != rangehint.BoundInclusive || h.Upper.Kind != rangehint.BoundInclusive {
		return rangehint.Value{}, false
	}
	if h.Lower.Value.IsVariable() || h.Upper.Value.IsVariable() {
		if h.Lower.Value.IsVariable() && h.Upper.Value.IsVariable() && h.Lower.Value.Variable() == h.Upper.Value.Variable() {
			return h.Lower.Value, true
		}
		return rangehint.Value{}, false
	}
	if rangehint.Compare(h.Lower.Value.Immediate(), h.Upper.Value.Immediate()) == 0 {
		return h.Lower.Value, true
	}
	return rangehint.Value{}, false
}

func expressionForBound(v rangehint.Value) scalar.Expression {
	if v.IsVariable() {
		return scalar.NewVariableReference(v.Variable(), scalar.Region{})
	}
	return scalar.NewLiteral(v.Immediate(), scalar.Region{})
}

func endpointKindFor(k rangehint.BoundKind) plan.EndpointKind {
	switch k {
	case rangehint.BoundInclusive:
		return plan.EndpointPrefixedInclusive
	case rangehint.BoundExclusive:
		return plan.EndpointPrefixedExclusive
	default:
		return plan.EndpointUnbound
	}
}

// absorbConsumedConjuncts replaces every conjunct folded into the
// chosen key range with TRUE, rebuilds each filter's condition, and
// splices out any filter that collapses entirely (spec §4.5 step 4).
func absorbConsumedConjuncts(g *plan.Graph, consumed map[*plan.Filter][]scalar.Expression) {
	for f, absorbed := range consumed {
		remaining := DecomposeConjunction(f.Condition)
		remaining = subtractConjuncts(remaining, absorbed)
		f.Condition = rebuildConjunction(remaining)
		if SimplifyPredicate(f.Condition) == ConstantTrue {
			removePassthrough(g, f)
		}
	}
}

func subtractConjuncts(all, absorbed []scalar.Expression) []scalar.Expression {
	removed := make(map[scalar.Expression]bool, len(absorbed))
	for _, a := range absorbed {
		removed[a] = true
	}
	var out []scalar.Expression
	for _, c := range all {
		if !removed[c] {
			out = append(out, c)
		}
	}
	return out
}
