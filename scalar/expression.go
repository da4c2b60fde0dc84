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

// Package scalar defines the scalar expression node hierarchy that
// the analyzer walks to derive result types and diagnostics: literals,
// variable references, logical/comparison/arithmetic operators, `let`
// bindings, function calls, and aggregate function calls.
package scalar

import "github.com/yugawara-go/yugawara/descriptor"

// Kind discriminates the closed set of scalar expression node
// variants. Dispatch over Kind is exhaustive; see DESIGN.md for the
// visitor convention this mirrors from the teacher's sql.Expression.
type Kind int

const (
	KindLiteral Kind = iota
	KindVariableReference
	KindUnresolvedReference
	KindNot
	KindIsNull
	KindIsTrue
	KindIsFalse
	KindIsUnknown
	KindAnd
	KindOr
	KindComparison
	KindArithmetic
	KindLet
	KindFunctionCall
	KindAggregateFunctionCall
	KindCast
	KindTuple
)

// Region is an opaque document span attached to a node for diagnostic
// reporting (spec §3). The zero Region is empty.
type Region struct {
	Source string
	Offset int
	Length int
}

// IsEmpty reports whether r carries no location information.
func (r Region) IsEmpty() bool { return r.Source == "" && r.Offset == 0 && r.Length == 0 }

// Expression is any scalar expression node. Every node exposes its
// Kind for dispatch and its Children for generic tree walks (used by
// CollectLocalVariables, InlineLocalVariables, and the expression
// analyzer's recursive resolution).
type Expression interface {
	Kind() Kind
	Children() []Expression
	Region() Region
}

// base is embedded by every concrete node to carry its region without
// repeating the accessor.
type base struct {
	region Region
}

func (b base) Region() Region { return b.region }

// ComparisonOperator enumerates the comparator of a Comparison node.
type ComparisonOperator int

const (
	Equal ComparisonOperator = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

// ArithmeticOperator enumerates the operator of an Arithmetic node.
type ArithmeticOperator int

const (
	Add ArithmeticOperator = iota
	Subtract
	Multiply
	Divide
)

// Literal is an immediate constant value.
type Literal struct {
	base
	Value any
	// ValueType, when non-nil, fixes the literal's type (e.g. a typed
	// NULL); otherwise the analyzer infers it from Value's Go type.
	ValueType TypeHint
}

// TypeHint lets a Literal declare its own SQL type without this
// package depending on the types package's concrete constructors
// (kept minimal to avoid an import cycle with types being consumed by
// many packages); callers pass a small closure.
type TypeHint func() any

func NewLiteral(value any, region Region) *Literal {
	return &Literal{base: base{region}, Value: value}
}

func (l *Literal) Kind() Kind              { return KindLiteral }
func (l *Literal) Children() []Expression  { return nil }

// VariableReference reads the value bound to a descriptor.Variable.
type VariableReference struct {
	base
	Variable descriptor.Variable
}

func NewVariableReference(v descriptor.Variable, region Region) *VariableReference {
	return &VariableReference{base: base{region}, Variable: v}
}

func (r *VariableReference) Kind() Kind             { return KindVariableReference }
func (r *VariableReference) Children() []Expression { return nil }

// Not negates a boolean operand.
type Not struct {
	base
	Operand Expression
}

func NewNot(operand Expression, region Region) *Not { return &Not{base{region}, operand} }
func (n *Not) Kind() Kind                           { return KindNot }
func (n *Not) Children() []Expression               { return []Expression{n.Operand} }

// nullPredicateKind distinguishes IS NULL / IS TRUE / IS FALSE / IS UNKNOWN.
type nullPredicate struct {
	base
	Operand Expression
	kind    Kind
}

func (p *nullPredicate) Kind() Kind             { return p.kind }
func (p *nullPredicate) Children() []Expression { return []Expression{p.Operand} }

func NewIsNull(operand Expression, region Region) Expression {
	return &nullPredicate{base{region}, operand, KindIsNull}
}
func NewIsTrue(operand Expression, region Region) Expression {
	return &nullPredicate{base{region}, operand, KindIsTrue}
}
func NewIsFalse(operand Expression, region Region) Expression {
	return &nullPredicate{base{region}, operand, KindIsFalse}
}
func NewIsUnknown(operand Expression, region Region) Expression {
	return &nullPredicate{base{region}, operand, KindIsUnknown}
}

// And is an n-ary conjunction; DecomposeConjunction flattens nested
// And nodes back into this shape.
type And struct {
	base
	Operands []Expression
}

func NewAnd(region Region, operands ...Expression) *And { return &And{base{region}, operands} }
func (a *And) Kind() Kind                               { return KindAnd }
func (a *And) Children() []Expression                   { return a.Operands }

// Or is an n-ary disjunction.
type Or struct {
	base
	Operands []Expression
}

func NewOr(region Region, operands ...Expression) *Or { return &Or{base{region}, operands} }
func (o *Or) Kind() Kind                              { return KindOr }
func (o *Or) Children() []Expression                  { return o.Operands }

// Comparison compares Left and Right with Operator.
type Comparison struct {
	base
	Operator    ComparisonOperator
	Left, Right Expression
}

func NewComparison(op ComparisonOperator, left, right Expression, region Region) *Comparison {
	return &Comparison{base{region}, op, left, right}
}
func (c *Comparison) Kind() Kind             { return KindComparison }
func (c *Comparison) Children() []Expression { return []Expression{c.Left, c.Right} }

// Arithmetic applies Operator to Left and Right.
type Arithmetic struct {
	base
	Operator    ArithmeticOperator
	Left, Right Expression
}

func NewArithmetic(op ArithmeticOperator, left, right Expression, region Region) *Arithmetic {
	return &Arithmetic{base{region}, op, left, right}
}
func (a *Arithmetic) Kind() Kind             { return KindArithmetic }
func (a *Arithmetic) Children() []Expression { return []Expression{a.Left, a.Right} }

// Let declares local variables for Body; each declarator's expression
// is evaluated once, and Variables[i] refers to Declarators[i]'s
// value within Body. CollectLocalVariables inlines declarators that
// are side-effect-free and referenced at most once, then drops this
// node.
type Let struct {
	base
	Variables   []descriptor.Variable
	Declarators []Expression
	Body        Expression
}

func NewLet(vars []descriptor.Variable, decls []Expression, body Expression, region Region) *Let {
	return &Let{base{region}, vars, decls, body}
}
func (l *Let) Kind() Kind { return KindLet }
func (l *Let) Children() []Expression {
	out := make([]Expression, 0, len(l.Declarators)+1)
	out = append(out, l.Declarators...)
	out = append(out, l.Body)
	return out
}

// FunctionCall invokes a named scalar function with Arguments. The
// callee is resolved by the analyzer against a function.Provider and
// recorded via descriptor.NewFunctionCall.
type FunctionCall struct {
	base
	Name      string
	Arguments []Expression
}

func NewFunctionCall(name string, args []Expression, region Region) *FunctionCall {
	return &FunctionCall{base{region}, name, args}
}
func (f *FunctionCall) Kind() Kind             { return KindFunctionCall }
func (f *FunctionCall) Children() []Expression { return f.Arguments }

// AggregateFunctionCall invokes a named aggregate function; Distinct
// corresponds to the `#distinct` provider suffix convention (spec §6).
type AggregateFunctionCall struct {
	base
	Name      string
	Arguments []Expression
	Distinct  bool
}

func NewAggregateFunctionCall(name string, args []Expression, distinct bool, region Region) *AggregateFunctionCall {
	return &AggregateFunctionCall{base{region}, name, args, distinct}
}
func (a *AggregateFunctionCall) Kind() Kind             { return KindAggregateFunctionCall }
func (a *AggregateFunctionCall) Children() []Expression { return a.Arguments }

// Cast converts Operand's runtime value to a declared target type.
// The target type itself is opaque here (a *types.Type, passed as
// `any` to avoid this package importing types, which in turn would
// create an import cycle with packages that embed scalar expressions
// inside type-bearing structures); package analyzer type-asserts it to
// analyzer.CastTarget, a func() *types.Type.
type Cast struct {
	base
	Operand Expression
	Target  any
}

func NewCast(operand Expression, target any, region Region) *Cast {
	return &Cast{base{region}, operand, target}
}
func (c *Cast) Kind() Kind             { return KindCast }
func (c *Cast) Children() []Expression { return []Expression{c.Operand} }

// Tuple groups several expressions positionally, used by `values` rows.
type Tuple struct {
	base
	Elements []Expression
}

func NewTuple(elements []Expression, region Region) *Tuple {
	return &Tuple{base{region}, elements}
}
func (t *Tuple) Kind() Kind             { return KindTuple }
func (t *Tuple) Children() []Expression { return t.Elements }
