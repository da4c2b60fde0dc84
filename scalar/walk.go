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

package scalar

// Walk visits expr and every descendant, depth-first, calling fn on
// each node. fn returns false to stop descending into that node's
// children (the node itself has already been visited).
func Walk(fn func(Expression) bool, expr Expression) {
	if expr == nil {
		return
	}
	if !fn(expr) {
		return
	}
	for _, child := range expr.Children() {
		Walk(fn, child)
	}
}

// Transform rebuilds expr, replacing any node for which fn returns a
// non-nil replacement; the replacement's own children are not
// revisited. Used by InlineLocalVariables to substitute variable
// references with clones of their bound expression.
func Transform(expr Expression, fn func(Expression) Expression) Expression {
	if expr == nil {
		return nil
	}
	if replacement := fn(expr); replacement != nil {
		return replacement
	}
	switch e := expr.(type) {
	case *Literal:
		return e
	case *VariableReference:
		return e
	case *Not:
		return NewNot(Transform(e.Operand, fn), e.region)
	case *And:
		return NewAnd(e.region, transformAll(e.Operands, fn)...)
	case *Or:
		return NewOr(e.region, transformAll(e.Operands, fn)...)
	case *Comparison:
		return NewComparison(e.Operator, Transform(e.Left, fn), Transform(e.Right, fn), e.region)
	case *Arithmetic:
		return NewArithmetic(e.Operator, Transform(e.Left, fn), Transform(e.Right, fn), e.region)
	case *Let:
		return NewLet(e.Variables, transformAll(e.Declarators, fn), Transform(e.Body, fn), e.region)
	case *FunctionCall:
		return NewFunctionCall(e.Name, transformAll(e.Arguments, fn), e.region)
	case *AggregateFunctionCall:
		return NewAggregateFunctionCall(e.Name, transformAll(e.Arguments, fn), e.Distinct, e.region)
	case *Cast:
		return NewCast(Transform(e.Operand, fn), e.Target, e.region)
	case *Tuple:
		return NewTuple(transformAll(e.Elements, fn), e.region)
	default:
		if np, ok := expr.(*nullPredicate); ok {
			return &nullPredicate{np.base, Transform(np.Operand, fn), np.kind}
		}
		return expr
	}
}

func transformAll(exprs []Expression, fn func(Expression) Expression) []Expression {
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		out[i] = Transform(e, fn)
	}
	return out
}

// Clone deep-copies expr. InlineLocalVariables clones the substituted
// expression at every reference site so sharing a single AST node
// across multiple positions never happens (spec §4.4).
func Clone(expr Expression) Expression {
	return Transform(expr, func(Expression) Expression { return nil })
}
