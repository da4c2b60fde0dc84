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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugawara-go/yugawara/descriptor"
	"github.com/yugawara-go/yugawara/rangehint"
	"github.com/yugawara-go/yugawara/scalar"
)

func lit(v any) *scalar.Literal { return scalar.NewLiteral(v, scalar.Region{}) }

func TestDecomposeConjunction(t *testing.T) {
	a, b, c := lit(true), lit(false), lit(1)
	expr := scalar.NewAnd(scalar.Region{},
		scalar.NewAnd(scalar.Region{}, a, b),
		c,
	)

	out := DecomposeConjunction(expr)
	require.Len(t, out, 3)
	assert.Same(t, a, out[0])
	assert.Same(t, b, out[1])
	assert.Same(t, c, out[2])
}

func TestDecomposeConjunctionNonAndIsSingleton(t *testing.T) {
	a := lit(true)
	out := DecomposeConjunction(a)
	require.Len(t, out, 1)
	assert.Same(t, a, out[0])
}

func TestSimplifyPredicateConstants(t *testing.T) {
	assert.Equal(t, ConstantTrue, SimplifyPredicate(lit(true)))
	assert.Equal(t, ConstantFalse, SimplifyPredicate(lit(false)))
	assert.Equal(t, NotSure, SimplifyPredicate(lit(1)))
}

func TestSimplifyPredicateNot(t *testing.T) {
	assert.Equal(t, ConstantFalse, SimplifyPredicate(scalar.NewNot(lit(true), scalar.Region{})))
	assert.Equal(t, ConstantTrue, SimplifyPredicate(scalar.NewNot(lit(false), scalar.Region{})))
}

func TestSimplifyPredicateAndTable(t *testing.T) {
	tests := []struct {
		name     string
		operands []scalar.Expression
		want     TruthValue
	}{
		{"false short-circuits", []scalar.Expression{lit(false), lit(1)}, ConstantFalse},
		{"true is identity", []scalar.Expression{lit(true), lit(true)}, ConstantTrue},
		{"true and not-sure is not-sure", []scalar.Expression{lit(true), lit(1)}, NotSure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SimplifyPredicate(scalar.NewAnd(scalar.Region{}, tc.operands...))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSimplifyPredicateOrTable(t *testing.T) {
	tests := []struct {
		name     string
		operands []scalar.Expression
		want     TruthValue
	}{
		{"true short-circuits", []scalar.Expression{lit(true), lit(1)}, ConstantTrue},
		{"false is identity", []scalar.Expression{lit(false), lit(false)}, ConstantFalse},
		{"false or not-sure is not-sure", []scalar.Expression{lit(false), lit(1)}, NotSure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SimplifyPredicate(scalar.NewOr(scalar.Region{}, tc.operands...))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSimplifyPredicateIsNull(t *testing.T) {
	assert.Equal(t, ConstantFalse, SimplifyPredicate(scalar.NewIsNull(lit(true), scalar.Region{})))
	assert.Equal(t, NotSure, SimplifyPredicate(scalar.NewIsNull(lit(1), scalar.Region{})))
}

func TestSimplifyPredicateIsTrueIsFalse(t *testing.T) {
	assert.Equal(t, ConstantTrue, SimplifyPredicate(scalar.NewIsTrue(lit(true), scalar.Region{})))
	assert.Equal(t, ConstantFalse, SimplifyPredicate(scalar.NewIsTrue(lit(false), scalar.Region{})))
	assert.Equal(t, ConstantTrue, SimplifyPredicate(scalar.NewIsFalse(lit(false), scalar.Region{})))
	assert.Equal(t, ConstantFalse, SimplifyPredicate(scalar.NewIsFalse(lit(true), scalar.Region{})))
}

func TestInlineLocalVariablesRespectsShadowing(t *testing.T) {
	outer := descriptor.NewVariable(descriptor.LocalVariable, "outer", "x")
	inner := descriptor.NewVariable(descriptor.LocalVariable, "inner", "x")

	outerRef := scalar.NewVariableReference(outer, scalar.Region{})
	subst := map[descriptor.Variable]scalar.Expression{outer: lit(42)}

	shadowingLet := scalar.NewLet(
		[]descriptor.Variable{inner},
		[]scalar.Expression{lit(7)},
		outerRef,
		scalar.Region{},
	)

	result := InlineLocalVariables(shadowingLet, subst)
	asLet, ok := result.(*scalar.Let)
	require.True(t, ok)
	// outer is a distinct descriptor.Variable from inner, so even
	// though the nested let declares a variable with the same label,
	// it does not shadow outer; substitution still reaches the body.
	lit42, ok := asLet.Body.(*scalar.Literal)
	require.True(t, ok)
	assert.Equal(t, 42, lit42.Value)
}

func TestInlineLocalVariablesStopsAtRealShadow(t *testing.T) {
	v := descriptor.NewVariable(descriptor.LocalVariable, "v", "x")
	ref := scalar.NewVariableReference(v, scalar.Region{})
	subst := map[descriptor.Variable]scalar.Expression{v: lit(42)}

	shadowingLet := scalar.NewLet(
		[]descriptor.Variable{v},
		[]scalar.Expression{lit(7)},
		ref,
		scalar.Region{},
	)

	result := InlineLocalVariables(shadowingLet, subst)
	asLet, ok := result.(*scalar.Let)
	require.True(t, ok)
	// v is redeclared by the nested let, so the reference to v inside
	// its body refers to the inner binding, not to subst's entry.
	_, stillRef := asLet.Body.(*scalar.VariableReference)
	assert.True(t, stillRef)
}

func TestCollectLocalVariablesInlinesSingleUse(t *testing.T) {
	v := descriptor.NewVariable(descriptor.LocalVariable, "v", "x")
	ref := scalar.NewVariableReference(v, scalar.Region{})
	let := scalar.NewLet([]descriptor.Variable{v}, []scalar.Expression{lit(42)}, ref, scalar.Region{})

	result := CollectLocalVariables(let)
	got, ok := result.(*scalar.Literal)
	require.True(t, ok)
	assert.Equal(t, 42, got.Value)
}

func TestCollectLocalVariablesKeepsMultiplyUsed(t *testing.T) {
	v := descriptor.NewVariable(descriptor.LocalVariable, "v", "x")
	ref1 := scalar.NewVariableReference(v, scalar.Region{})
	ref2 := scalar.NewVariableReference(v, scalar.Region{})
	body := scalar.NewAnd(scalar.Region{}, ref1, ref2)
	let := scalar.NewLet([]descriptor.Variable{v}, []scalar.Expression{lit(42)}, body, scalar.Region{})

	result := CollectLocalVariables(let)
	_, stillLet := result.(*scalar.Let)
	assert.True(t, stillLet)
}

func TestCollectLocalVariablesKeepsSideEffecting(t *testing.T) {
	v := descriptor.NewVariable(descriptor.LocalVariable, "v", "x")
	agg := &aggregateStub{}
	ref := scalar.NewVariableReference(v, scalar.Region{})
	let := scalar.NewLet([]descriptor.Variable{v}, []scalar.Expression{agg}, ref, scalar.Region{})

	result := CollectLocalVariables(let)
	_, stillLet := result.(*scalar.Let)
	assert.True(t, stillLet)
}

// aggregateStub satisfies scalar.Expression and reports
// KindAggregateFunctionCall, so isSideEffectFree treats it as
// side-effecting without needing the full AggregateFunctionCall node.
type aggregateStub struct{}

func (aggregateStub) Kind() scalar.Kind             { return scalar.KindAggregateFunctionCall }
func (aggregateStub) Children() []scalar.Expression { return nil }
func (aggregateStub) Region() scalar.Region         { return scalar.Region{} }

func TestDecomposeDisjunctionIntoRangeUnionsBranches(t *testing.T) {
	v := descriptor.NewVariable(descriptor.StreamVariable, "v", "c0")
	ref := scalar.NewVariableReference(v, scalar.Region{})

	branch1 := scalar.NewComparison(scalar.Equal, ref, lit(int64(5)), scalar.Region{})
	branch2 := scalar.NewComparison(scalar.Equal, ref, lit(int64(10)), scalar.Region{})
	or := scalar.NewOr(scalar.Region{}, branch1, branch2)

	gotVar, hint, ok := DecomposeDisjunctionIntoRange(or)
	require.True(t, ok)
	assert.Equal(t, v, gotVar)
	assert.Equal(t, rangehint.BoundInclusive, hint.Lower.Kind)
	assert.Equal(t, int64(5), hint.Lower.Value.Immediate())
	assert.Equal(t, rangehint.BoundInclusive, hint.Upper.Kind)
	assert.Equal(t, int64(10), hint.Upper.Value.Immediate())
}

func TestDecomposeDisjunctionIntoRangeWidensToInfinityOnMismatch(t *testing.T) {
	v := descriptor.NewVariable(descriptor.StreamVariable, "v", "c0")
	other := descriptor.NewVariable(descriptor.StreamVariable, "other", "c1")
	ref := scalar.NewVariableReference(v, scalar.Region{})
	otherRef := scalar.NewVariableReference(other, scalar.Region{})

	branch1 := scalar.NewComparison(scalar.GreaterThanOrEqual, ref, lit(int64(5)), scalar.Region{})
	branch2 := scalar.NewComparison(scalar.GreaterThanOrEqual, ref, otherRef, scalar.Region{})
	or := scalar.NewOr(scalar.Region{}, branch1, branch2)

	gotVar, hint, ok := DecomposeDisjunctionIntoRange(or)
	require.True(t, ok)
	assert.Equal(t, v, gotVar)
	// mixing an immediate lower bound with a variable lower bound on
	// the other branch widens the union to Infinity.
	assert.Equal(t, rangehint.BoundInfinity, hint.Lower.Kind)
}

func TestDecomposeDisjunctionIntoRangeRejectsDifferentVariables(t *testing.T) {
	v1 := descriptor.NewVariable(descriptor.StreamVariable, "v1", "c0")
	v2 := descriptor.NewVariable(descriptor.StreamVariable, "v2", "c1")
	ref1 := scalar.NewVariableReference(v1, scalar.Region{})
	ref2 := scalar.NewVariableReference(v2, scalar.Region{})

	branch1 := scalar.NewComparison(scalar.Equal, ref1, lit(int64(1)), scalar.Region{})
	branch2 := scalar.NewComparison(scalar.Equal, ref2, lit(int64(2)), scalar.Region{})
	or := scalar.NewOr(scalar.Region{}, branch1, branch2)

	_, _, ok := DecomposeDisjunctionIntoRange(or)
	assert.False(t, ok)
}

func TestDecomposeDisjunctionIntoRangeFlipsReversedComparison(t *testing.T) {
	v := descriptor.NewVariable(descriptor.StreamVariable, "v", "c0")
	ref := scalar.NewVariableReference(v, scalar.Region{})

	// 5 <= v, written with the literal on the left, is equivalent to
	// v >= 5.
	branch := scalar.NewComparison(scalar.LessThanOrEqual, lit(int64(5)), ref, scalar.Region{})
	or := scalar.NewOr(scalar.Region{}, branch)

	gotVar, hint, ok := DecomposeDisjunctionIntoRange(or)
	require.True(t, ok)
	assert.Equal(t, v, gotVar)
	assert.Equal(t, rangehint.BoundInclusive, hint.Lower.Kind)
	assert.Equal(t, int64(5), hint.Lower.Value.Immediate())
	assert.Equal(t, rangehint.BoundInfinity, hint.Upper.Kind)
}

func TestWidenDisjunctionRangesAddsBoundsButKeepsDisjunction(t *testing.T) {
	v := descriptor.NewVariable(descriptor.StreamVariable, "v", "c")
	ref := scalar.NewVariableReference(v, scalar.Region{})

	branch1 := scalar.NewComparison(scalar.Equal, ref, lit(int64(0)), scalar.Region{})
	branch2 := scalar.NewComparison(scalar.Equal, ref, lit(int64(1)), scalar.Region{})
	or := scalar.NewOr(scalar.Region{}, branch1, branch2)

	widened := WidenDisjunctionRanges(or)
	conjuncts := DecomposeConjunction(widened)
	require.Len(t, conjuncts, 3, "the original disjunction plus a lower and upper bound conjunct")
	assert.Same(t, or, conjuncts[0], "the disjunction itself must survive unchanged")

	lower, ok := conjuncts[1].(*scalar.Comparison)
	require.True(t, ok)
	assert.Equal(t, scalar.GreaterThanOrEqual, lower.Operator)
	assert.Equal(t, int64(0), lower.Right.(*scalar.Literal).Value)

	upper, ok := conjuncts[2].(*scalar.Comparison)
	require.True(t, ok)
	assert.Equal(t, scalar.LessThanOrEqual, upper.Operator)
	assert.Equal(t, int64(1), upper.Right.(*scalar.Literal).Value)
}

func TestWidenDisjunctionRangesLeavesNonDisjunctiveConjunctsAlone(t *testing.T) {
	v := descriptor.NewVariable(descriptor.StreamVariable, "v", "c")
	ref := scalar.NewVariableReference(v, scalar.Region{})
	cmp := scalar.NewComparison(scalar.GreaterThan, ref, lit(int64(0)), scalar.Region{})

	widened := WidenDisjunctionRanges(cmp)
	assert.Same(t, cmp, widened)
}
