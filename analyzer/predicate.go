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
	"github.com/yugawara-go/yugawara/rangehint"
	"github.com/yugawara-go/yugawara/scalar"
)

// DecomposeConjunction flattens a tree of nested AND nodes into a
// sequence, preserving left-to-right order (spec §4.4): used by
// downstream rewrites so "the number of terms" is well-defined without
// every caller re-walking nested Ands itself.
func DecomposeConjunction(expr scalar.Expression) []scalar.Expression {
	and, ok := expr.(*scalar.And)
	if !ok {
		return []scalar.Expression{expr}
	}
	var out []scalar.Expression
	for _, operand := range and.Operands {
		out = append(out, DecomposeConjunction(operand)...)
	}
	return out
}

// TruthValue is the five-valued (plus "not_sure") result of
// SimplifyPredicate (spec §4.4).
type TruthValue int

const (
	ConstantTrue TruthValue = iota
	ConstantFalse
	ConstantUnknown
	ConstantTrueOrUnknown
	ConstantFalseOrUnknown
	NotSure
)

func (v TruthValue) String() string {
	switch v {
	case ConstantTrue:
		return "constant_true"
	case ConstantFalse:
		return "constant_false"
	case ConstantUnknown:
		return "constant_unknown"
	case ConstantTrueOrUnknown:
		return "constant_true_or_unknown"
	case ConstantFalseOrUnknown:
		return "constant_false_or_unknown"
	default:
		return "not_sure"
	}
}

// SimplifyPredicate evaluates expr's three/five-valued logic shape
// (spec §4.4). Only the logical connectives (AND/OR/NOT) and the
// null-predicates (IS NULL/TRUE/FALSE/UNKNOWN) are evaluated; any other
// node (comparisons, function calls, variable references, literals not
// recognized as boolean constants) is NotSure, since its runtime truth
// value cannot be determined without evaluating it.
func SimplifyPredicate(expr scalar.Expression) TruthValue {
	switch e := expr.(type) {
	case *scalar.Literal:
		if b, ok := e.Value.(bool); ok {
			if b {
				return ConstantTrue
			}
			return ConstantFalse
		}
		return NotSure
	case *scalar.Not:
		return simplifyNot(SimplifyPredicate(e.Operand))
	case *scalar.And:
		return simplifyAnd(e.Operands)
	case *scalar.Or:
		return simplifyOr(e.Operands)
	default:
		if isNullPredicate(expr) {
			return simplifyNullPredicate(expr)
		}
		return NotSure
	}
}

func simplifyNot(v TruthValue) TruthValue {
	switch v {
	case ConstantTrue:
		return ConstantFalse
	case ConstantFalse:
		return ConstantTrue
	case ConstantUnknown:
		return ConstantUnknown
	case ConstantTrueOrUnknown:
		return ConstantFalseOrUnknown
	case ConstantFalseOrUnknown:
		return ConstantTrueOrUnknown
	default:
		return NotSure
	}
}

// isUnknownish reports whether v is ConstantUnknown or one of the
// composite *_or_unknown values, the "U" family of spec §4.4's table.
func isUnknownish(v TruthValue) bool {
	return v == ConstantUnknown || v == ConstantTrueOrUnknown || v == ConstantFalseOrUnknown
}

func simplifyAnd(operands []scalar.Expression) TruthValue {
	acc := ConstantTrue
	for _, op := range operands {
		v := SimplifyPredicate(op)
		acc = andPair(acc, v)
		if acc == ConstantFalse {
			return ConstantFalse
		}
	}
	return acc
}

// andPair implements spec §4.4's AND table: F∧x=F, T∧x=x, U∧not_sure =
// false_or_unknown (U narrows toward false once mixed with an
// indeterminate operand, since AND can only stay true if every operand
// is provably true).
func andPair(a, b TruthValue) TruthValue {
	if a == ConstantFalse || b == ConstantFalse {
		return ConstantFalse
	}
	if a == ConstantTrue {
		return b
	}
	if b == ConstantTrue {
		return a
	}
	if a == NotSure || b == NotSure {
		if isUnknownish(a) || isUnknownish(b) {
			return ConstantFalseOrUnknown
		}
		return NotSure
	}
	// both sides are in {U, T_or_U, F_or_U}: AND narrows to unknown
	// since neither operand is a proven true.
	return ConstantUnknown
}

func simplifyOr(operands []scalar.Expression) TruthValue {
	acc := ConstantFalse
	for _, op := range operands {
		v := SimplifyPredicate(op)
		acc = orPair(acc, v)
		if acc == ConstantTrue {
			return ConstantTrue
		}
	}
	return acc
}

// orPair implements spec §4.4's OR table, dual to andPair: T∨x=T,
// F∨x=x, U∨not_sure = true_or_unknown.
func orPair(a, b TruthValue) TruthValue {
	if a == ConstantTrue || b == ConstantTrue {
		return ConstantTrue
	}
	if a == ConstantFalse {
		return b
	}
	if b == ConstantFalse {
		return a
	}
	if a == NotSure || b == NotSure {
		if isUnknownish(a) || isUnknownish(b) {
			return ConstantTrueOrUnknown
		}
		return NotSure
	}
	return ConstantUnknown
}

// simplifyNullPredicate implements spec §4.4's IS NULL / IS TRUE / IS
// FALSE / IS UNKNOWN rules: "IS NULL: T or F -> F; U -> T; not_sure ->
// not_sure; mixed with unknown -> not_sure" and "IS TRUE/FALSE/UNKNOWN:
// constants by direct comparison; composite {T,U}/{F,U} resolve
// exactly."
func simplifyNullPredicate(expr scalar.Expression) TruthValue {
	operand := expr.Children()[0]
	v := SimplifyPredicate(operand)
	switch expr.Kind() {
	case scalar.KindIsNull:
		switch v {
		case ConstantTrue, ConstantFalse:
			return ConstantFalse
		case ConstantUnknown:
			return ConstantTrue
		case NotSure:
			return NotSure
		default:
			return NotSure
		}
	case scalar.KindIsTrue:
		switch v {
		case ConstantTrue:
			return ConstantTrue
		case ConstantFalse, ConstantUnknown:
			return ConstantFalse
		case ConstantTrueOrUnknown:
			return NotSure
		case ConstantFalseOrUnknown:
			return ConstantFalse
		default:
			return NotSure
		}
	case scalar.KindIsFalse:
		switch v {
		case ConstantFalse:
			return ConstantTrue
		case ConstantTrue, ConstantUnknown:
			return ConstantFalse
		case ConstantFalseOrUnknown:
			return NotSure
		case ConstantTrueOrUnknown:
			return ConstantFalse
		default:
			return NotSure
		}
	case scalar.KindIsUnknown:
		switch v {
		case ConstantUnknown:
			return ConstantTrue
		case ConstantTrue, ConstantFalse:
			return ConstantFalse
		default:
			return NotSure
		}
	default:
		return NotSure
	}
}

// InlineLocalVariables replaces every reference to a variable in subst
// with a deep clone of its bound expression, recursing through `let`
// (spec §4.4); shadowing is preserved because a nested `let` that
// redeclares one of subst's keys stops substitution for that key
// within its own Body (the source language's shadowing rule, recorded
// by the declaration scope of the nested `let`).
func InlineLocalVariables(expr scalar.Expression, subst map[descriptor.Variable]scalar.Expression) scalar.Expression {
	return inlineWithScope(expr, subst)
}

func inlineWithScope(expr scalar.Expression, subst map[descriptor.Variable]scalar.Expression) scalar.Expression {
	if let, ok := expr.(*scalar.Let); ok {
		inner := subst
		for _, v := range let.Variables {
			if _, shadowed := subst[v]; shadowed {
				inner = withoutKey(subst, v)
			}
		}
		decls := make([]scalar.Expression, len(let.Declarators))
		for i, d := range let.Declarators {
			decls[i] = inlineWithScope(d, subst)
		}
		body := inlineWithScope(let.Body, inner)
		return scalar.NewLet(let.Variables, decls, body, let.Region())
	}
	return scalar.Transform(expr, func(e scalar.Expression) scalar.Expression {
		ref, ok := e.(*scalar.VariableReference)
		if !ok {
			return nil
		}
		bound, ok := subst[ref.Variable]
		if !ok {
			return nil
		}
		return scalar.Clone(bound)
	})
}

// withoutKey returns a shallow copy of subst with key removed, so a
// shadowing `let` doesn't mutate the substitution map seen by sibling
// subtrees.
func withoutKey(subst map[descriptor.Variable]scalar.Expression, key descriptor.Variable) map[descriptor.Variable]scalar.Expression {
	out := make(map[descriptor.Variable]scalar.Expression, len(subst))
	for k, v := range subst {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// referenceCount counts how many VariableReference(v) nodes appear in
// expr, stopping early once it exceeds 1 since CollectLocalVariables
// only needs to distinguish "at most once" from "more than once".
func referenceCount(expr scalar.Expression, v descriptor.Variable) int {
	count := 0
	scalar.Walk(func(e scalar.Expression) bool {
		if count > 1 {
			return false
		}
		if ref, ok := e.(*scalar.VariableReference); ok && ref.Variable == v {
			count++
		}
		return true
	}, expr)
	return count
}

// isSideEffectFree reports whether expr can be safely duplicated or
// dropped: aggregate function calls are the one node kind this
// package treats as side-effecting (they carry grouping/cardinality
// semantics that duplication would silently change), mirroring the
// analyzer's own restriction to pure scalar evaluation everywhere
// else.
func isSideEffectFree(expr scalar.Expression) bool {
	free := true
	scalar.Walk(func(e scalar.Expression) bool {
		if e.Kind() == scalar.KindAggregateFunctionCall {
			free = false
			return false
		}
		return true
	}, expr)
	return free
}

// CollectLocalVariables inlines every `let` declarator that is
// side-effect-free and referenced at most once in Body, dropping the
// `let` entirely once every one of its declarators has been inlined or
// found unused (spec §4.4). Relational operators apply this to every
// embedded scalar expression; this function operates on one
// expression tree at a time, and callers sweep an operator's
// condition/projection/key expressions individually.
func CollectLocalVariables(expr scalar.Expression) scalar.Expression {
	let, ok := expr.(*scalar.Let)
	if !ok {
		return scalar.Transform(expr, func(e scalar.Expression) scalar.Expression {
			if inner, ok := e.(*scalar.Let); ok && inner != expr {
				return CollectLocalVariables(inner)
			}
			return nil
		})
	}

	body := CollectLocalVariables(let.Body)
	subst := make(map[descriptor.Variable]scalar.Expression)
	var keepVars []descriptor.Variable
	var keepDecls []scalar.Expression
	for i, v := range let.Variables {
		decl := CollectLocalVariables(let.Declarators[i])
		if isSideEffectFree(decl) && referenceCount(body, v) <= 1 {
			subst[v] = decl
			continue
		}
		keepVars = append(keepVars, v)
		keepDecls = append(keepDecls, decl)
	}
	if len(subst) > 0 {
		body = InlineLocalVariables(body, subst)
	}
	if len(keepVars) == 0 {
		return body
	}
	return scalar.NewLet(keepVars, keepDecls, body, let.Region())
}

// singleVariableBound extracts the (variable, hint) shape of one OR
// branch, if it has that shape: `variable_reference(v) OP literal`.
// Reversed comparisons (`literal OP variable_reference(v)`) are
// normalized by flipping the operator. A comparison with a variable
// reference on both sides is not recognized (ok=false), so the
// returned endpoints are always immediates. The
// returned Hint carries only the side(s) this branch actually
// constrains; the other side is left at Infinity.
func singleVariableBound(expr scalar.Expression) (descriptor.Variable, rangehint.Hint, bool) {
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
	case leftIsRef && !rightIsRef:
		v = leftRef.Variable
		otherSide = right
	case rightIsRef && !leftIsRef:
		v = rightRef.Variable
		otherSide = left
		op = flipComparison(op)
	default:
		return descriptor.Variable{}, rangehint.Hint{}, false
	}

	value, ok := endpointValue(otherSide)
	if !ok {
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

func flipComparison(op scalar.ComparisonOperator) scalar.ComparisonOperator {
	switch op {
	case scalar.LessThan:
		return scalar.GreaterThan
	case scalar.LessThanOrEqual:
		return scalar.GreaterThanOrEqual
	case scalar.GreaterThan:
		return scalar.LessThan
	case scalar.GreaterThanOrEqual:
		return scalar.LessThanOrEqual
	default:
		return op
	}
}

func endpointValue(expr scalar.Expression) (rangehint.Value, bool) {
	switch e := expr.(type) {
	case *scalar.Literal:
		return rangehint.Immediate(e.Value), true
	case *scalar.VariableReference:
		return rangehint.VariableRef(e.Variable), true
	default:
		return rangehint.Value{}, false
	}
}

// DecomposeDisjunctionIntoRange computes the covering interval of a
// disjunction whose branches each constrain a single shared variable
// via comparison or equality (spec §4.4): the lower bound is the
// MIN/MIN-exclusive of every branch's lower bound, the upper bound is
// the MAX/MAX-exclusive of every branch's upper bound — i.e. a
// whole-map Union fold across the branches. Branch endpoints come from
// singleVariableBound and are therefore immediates; a branch comparing
// two variable references makes the whole call return ok=false.
// Returns ok=false if expr is not a disjunction of single-variable
// bounds on a common variable.
func DecomposeDisjunctionIntoRange(expr scalar.Expression) (descriptor.Variable, rangehint.Hint, bool) {
	or, ok := expr.(*scalar.Or)
	if !ok || len(or.Operands) == 0 {
		return descriptor.Variable{}, rangehint.Hint{}, false
	}

	var shared descriptor.Variable
	var acc rangehint.Hint
	for i, branch := range or.Operands {
		v, h, ok := singleVariableBound(branch)
		if !ok {
			return descriptor.Variable{}, rangehint.Hint{}, false
		}
		if i == 0 {
			shared = v
			acc = h
			continue
		}
		if v != shared {
			return descriptor.Variable{}, rangehint.Hint{}, false
		}
		acc = acc.Union(h)
	}
	return shared, acc, true
}

// WidenDisjunctionRanges materializes spec §4.4's "add `lower <= c`
// and `c <= upper` as extra conjuncts" transform: for every top-level
// conjunct that is a disjunction of single-variable bounds on a common
// variable (the shape DecomposeDisjunctionIntoRange recognizes), it
// appends the covering range's finite bound(s) as new top-level
// conjuncts alongside the original disjunction. The disjunction itself
// is always kept — the added conjuncts are redundant but narrow the
// range later index selection can use; they must never replace it,
// since the range is a superset of the disjunction it was widened
// from (e.g. `c=0 OR c=1` widens to `0<=c<=1`, which a value like
// `c=0.5` would also satisfy).
func WidenDisjunctionRanges(expr scalar.Expression) scalar.Expression {
	conjuncts := DecomposeConjunction(expr)
	widened := make([]scalar.Expression, 0, len(conjuncts))
	changed := false
	for _, c := range conjuncts {
		widened = append(widened, c)
		v, h, ok := DecomposeDisjunctionIntoRange(c)
		if !ok {
			continue
		}
		if h.Lower.Kind != rangehint.BoundInfinity {
			widened = append(widened, rangeBoundComparison(v, h.Lower, true))
			changed = true
		}
		if h.Upper.Kind != rangehint.BoundInfinity {
			widened = append(widened, rangeBoundComparison(v, h.Upper, false))
			changed = true
		}
	}
	if !changed {
		return expr
	}
	return rebuildConjunction(widened)
}

// rangeBoundComparison builds the `v OP bound` conjunct for one
// finite side of a widened range: `>=`/`>` for the lower endpoint,
// `<=`/`<` for the upper one, depending on inclusivity.
func rangeBoundComparison(v descriptor.Variable, e rangehint.Endpoint, lower bool) scalar.Expression {
	ref := scalar.NewVariableReference(v, scalar.Region{})
	value := expressionForBound(e.Value)
	var op scalar.ComparisonOperator
	switch {
	case lower && e.Kind == rangehint.BoundInclusive:
		op = scalar.GreaterThanOrEqual
	case lower:
		op = scalar.GreaterThan
	case e.Kind == rangehint.BoundInclusive:
		op = scalar.LessThanOrEqual
	default:
		op = scalar.LessThan
	}
	return scalar.NewComparison(op, ref, value, scalar.Region{})
}
