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
	"github.com/yugawara-go/yugawara/graph"
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/rowexec"
	"github.com/yugawara-go/yugawara/scalar"
)

// CollectExchangeSteps sweeps the rewritten intermediate graph g and
// lowers every remaining join/aggregate/distinct/limit/union/
// intersection/difference operator into exchange boundaries and the
// physical steps that read and write them, per spec §4.7's dispatch
// table. Every other operator (scan, find, filter, project, values,
// write, the already-rewritten join_find/join_scan, buffer) carries
// across unchanged as a rowexec.Relational passthrough step. escape is
// erased entirely: its upstream producer is wired straight through to
// its downstream consumer, since by this point variable rewriting has
// already finished (spec §4.7: "preserved until variable rewrite
// finishes, then erased").
//
// Migration is atomic the way spec §4.7 requires ("source ports are
// disconnected only after target ports are successfully connected"):
// g itself is left untouched throughout, and the physical graph is
// only wired up once every operator has been lowered, so a failure
// partway through never leaves either graph half-migrated.
func CollectExchangeSteps(g *plan.Graph) (*rowexec.Graph, error) {
	ops := g.Operators()
	order, err := topoSortOperators(ops)
	if err != nil {
		return nil, err
	}

	sg := rowexec.NewGraph()
	outPort := make(map[*graph.Port]*graph.Port, len(ops))
	inPort := make(map[*graph.Port]*graph.Port, len(ops))

	for _, op := range order {
		if _, ok := op.(*plan.Escape); ok {
			continue
		}
		ins, outs := lowerOperator(sg, op)
		for i, p := range graph.Inputs(op) {
			if i < len(ins) {
				inPort[p] = ins[i]
			}
		}
		for i, p := range graph.Outputs(op) {
			if i < len(outs) {
				outPort[p] = outs[i]
			}
		}
	}

	for _, edge := range collectEdges(ops) {
		src, ok1 := outPort[edge[0]]
		dst, ok2 := inPort[edge[1]]
		if ok1 && ok2 {
			graph.Connect(src, dst)
		}
	}

	return sg, nil
}

// collectEdges returns every (output port, input port) edge in ops,
// with any chain of escape operators along the way collapsed
// transparently so neither endpoint is ever an escape's own port.
func collectEdges(ops []plan.Operator) [][2]*graph.Port {
	var edges [][2]*graph.Port
	for _, op := range ops {
		if _, ok := op.(*plan.Escape); ok {
			continue
		}
		for _, out := range graph.Outputs(op) {
			if peer := resolveThroughEscape(out.Peer()); peer != nil {
				edges = append(edges, [2]*graph.Port{out, peer})
			}
		}
	}
	return edges
}

func resolveThroughEscape(p *graph.Port) *graph.Port {
	for p != nil {
		esc, ok := p.Owner.(*plan.Escape)
		if !ok {
			return p
		}
		p = esc.Output().Peer()
	}
	return nil
}

// lowerOperator constructs the physical step(s) for op and returns the
// new ports corresponding, in order, to op's old input and output
// ports.
func lowerOperator(sg *rowexec.Graph, op plan.Operator) (ins, outs []*graph.Port) {
	switch o := op.(type) {
	case *plan.Join:
		return lowerCogroupJoin(sg, o)
	case *plan.Aggregate:
		return lowerAggregate(sg, o)
	case *plan.Distinct:
		return lowerDistinct(sg, o)
	case *plan.Limit:
		return lowerLimit(sg, o)
	case *plan.Union:
		return lowerUnion(sg, o)
	case *plan.Intersection:
		return lowerIntersection(sg, o)
	case *plan.Difference:
		return lowerDifference(sg, o)
	default:
		numIn := len(graph.Inputs(op))
		numOut := len(graph.Outputs(op))
		r := rowexec.NewRelational(op, numIn, numOut)
		sg.Add(r)
		return r.Inputs(), r.Outputs()
	}
}

func lowerCogroupJoin(sg *rowexec.Graph, o *plan.Join) ([]*graph.Port, []*graph.Port) {
	leftDefs := reachableDefines(o.Input(0).Peer().Owner.(plan.Operator))
	rightDefs := reachableDefines(o.Input(1).Peer().Owner.(plan.Operator))
	leftKeys, rightKeys := equiJoinKeys(o.Condition, leftDefs, rightDefs)

	leftGroup := &rowexec.Group{Keys: leftKeys}
	rightGroup := &rowexec.Group{Keys: rightKeys}
	leftOffer := rowexec.NewOffer(leftGroup, leftKeys)
	rightOffer := rowexec.NewOffer(rightGroup, rightKeys)
	sg.Add(leftOffer)
	sg.Add(rightOffer)

	cogroup := rowexec.NewTakeCogroup([]*rowexec.Group{leftGroup, rightGroup}, [][]descriptor.Variable{leftKeys, rightKeys})
	sg.Add(cogroup)

	jg := rowexec.NewJoinGroup(o.Kind, o.Condition)
	sg.Add(jg)
	graph.Connect(cogroup.Output(), jg.Input(0))

	return []*graph.Port{leftOffer.Input(0), rightOffer.Input(0)}, []*graph.Port{jg.Output()}
}

func lowerAggregate(sg *rowexec.Graph, o *plan.Aggregate) ([]*graph.Port, []*graph.Port) {
	if o.Incremental() {
		ex := &rowexec.AggregateExchange{Keys: o.Keys, Columns: toRowexecAggregateColumns(o.Columns)}
		offer := rowexec.NewOffer(ex, o.Keys)
		sg.Add(offer)
		take := rowexec.NewTakeGroup(ex, aggregateResultColumns(o))
		sg.Add(take)
		flat := rowexec.NewFlatten()
		sg.Add(flat)
		graph.Connect(take.Output(), flat.Input(0))
		return []*graph.Port{offer.Input(0)}, []*graph.Port{flat.Output()}
	}

	ex := &rowexec.Group{Keys: o.Keys}
	offer := rowexec.NewOffer(ex, o.Keys)
	sg.Add(offer)
	take := rowexec.NewTakeGroup(ex, o.Keys)
	sg.Add(take)
	ag := rowexec.NewAggregateGroup(o.Keys, toRowexecAggregateColumns(o.Columns))
	sg.Add(ag)
	graph.Connect(take.Output(), ag.Input(0))
	return []*graph.Port{offer.Input(0)}, []*graph.Port{ag.Output()}
}

func lowerDistinct(sg *rowexec.Graph, o *plan.Distinct) ([]*graph.Port, []*graph.Port) {
	ex := &rowexec.Group{Keys: o.Columns, Limit: 1, Equivalence: true}
	offer := rowexec.NewOffer(ex, o.Columns)
	sg.Add(offer)
	take := rowexec.NewTakeGroup(ex, o.Columns)
	sg.Add(take)
	flat := rowexec.NewFlatten()
	sg.Add(flat)
	graph.Connect(take.Output(), flat.Input(0))
	return []*graph.Port{offer.Input(0)}, []*graph.Port{flat.Output()}
}

func lowerLimit(sg *rowexec.Graph, o *plan.Limit) ([]*graph.Port, []*graph.Port) {
	if o.Flat() {
		ex := &rowexec.Forward{Limit: o.Count}
		offer := rowexec.NewOffer(ex, nil)
		sg.Add(offer)
		take := rowexec.NewTakeFlat(ex, nil)
		sg.Add(take)
		return []*graph.Port{offer.Input(0)}, []*graph.Port{take.Output()}
	}

	sortKeys := make([]rowexec.SortKey, len(o.SortKeys))
	for i, k := range o.SortKeys {
		sortKeys[i] = rowexec.SortKey{Variable: k.Variable, Descending: k.Descending}
	}
	ex := &rowexec.Group{Keys: o.GroupKeys, Sort: sortKeys, Limit: o.Count}
	offer := rowexec.NewOffer(ex, o.GroupKeys)
	sg.Add(offer)
	take := rowexec.NewTakeGroup(ex, o.GroupKeys)
	sg.Add(take)
	flat := rowexec.NewFlatten()
	sg.Add(flat)
	graph.Connect(take.Output(), flat.Input(0))
	return []*graph.Port{offer.Input(0)}, []*graph.Port{flat.Output()}
}

func lowerUnion(sg *rowexec.Graph, o *plan.Union) ([]*graph.Port, []*graph.Port) {
	if o.Quantifier == plan.SetAll {
		ex := &rowexec.Forward{}
		leftOffer := rowexec.NewOffer(ex, o.Columns)
		rightOffer := rowexec.NewOffer(ex, o.Columns)
		sg.Add(leftOffer)
		sg.Add(rightOffer)
		take := rowexec.NewTakeFlat(ex, o.Columns)
		sg.Add(take)
		return []*graph.Port{leftOffer.Input(0), rightOffer.Input(0)}, []*graph.Port{take.Output()}
	}

	ex := &rowexec.Group{Keys: o.Columns, Limit: 1, Equivalence: true}
	leftOffer := rowexec.NewOffer(ex, o.Columns)
	rightOffer := rowexec.NewOffer(ex, o.Columns)
	sg.Add(leftOffer)
	sg.Add(rightOffer)
	take := rowexec.NewTakeGroup(ex, o.Columns)
	sg.Add(take)
	flat := rowexec.NewFlatten()
	sg.Add(flat)
	graph.Connect(take.Output(), flat.Input(0))
	return []*graph.Port{leftOffer.Input(0), rightOffer.Input(0)}, []*graph.Port{flat.Output()}
}

func lowerIntersection(sg *rowexec.Graph, o *plan.Intersection) ([]*graph.Port, []*graph.Port) {
	leftGroup := &rowexec.Group{Keys: o.Columns}
	rightGroup := &rowexec.Group{Keys: o.Columns}
	leftOffer := rowexec.NewOffer(leftGroup, o.Columns)
	rightOffer := rowexec.NewOffer(rightGroup, o.Columns)
	sg.Add(leftOffer)
	sg.Add(rightOffer)
	cogroup := rowexec.NewTakeCogroup([]*rowexec.Group{leftGroup, rightGroup}, [][]descriptor.Variable{o.Columns, o.Columns})
	sg.Add(cogroup)
	ig := rowexec.NewIntersectionGroup(o.Quantifier)
	sg.Add(ig)
	graph.Connect(cogroup.Output(), ig.Input(0))
	return []*graph.Port{leftOffer.Input(0), rightOffer.Input(0)}, []*graph.Port{ig.Output()}
}

func lowerDifference(sg *rowexec.Graph, o *plan.Difference) ([]*graph.Port, []*graph.Port) {
	leftGroup := &rowexec.Group{Keys: o.Columns}
	rightGroup := &rowexec.Group{Keys: o.Columns}
	leftOffer := rowexec.NewOffer(leftGroup, o.Columns)
	rightOffer := rowexec.NewOffer(rightGroup, o.Columns)
	sg.Add(leftOffer)
	sg.Add(rightOffer)
	cogroup := rowexec.NewTakeCogroup([]*rowexec.Group{leftGroup, rightGroup}, [][]descriptor.Variable{o.Columns, o.Columns})
	sg.Add(cogroup)
	dg := rowexec.NewDifferenceGroup(o.Quantifier)
	sg.Add(dg)
	graph.Connect(cogroup.Output(), dg.Input(0))
	return []*graph.Port{leftOffer.Input(0), rightOffer.Input(0)}, []*graph.Port{dg.Output()}
}

// reachableDefines collects every variable defined by start or any
// operator upstream of it, used to tell which side of a join condition
// an equi-join comparison's two variable references belong to.
func reachableDefines(start plan.Operator) map[descriptor.Variable]bool {
	defs := make(map[descriptor.Variable]bool)
	if start == nil {
		return defs
	}
	seen := map[plan.Operator]bool{}
	var walk func(op plan.Operator)
	walk = func(op plan.Operator) {
		if op == nil || seen[op] {
			return
		}
		seen[op] = true
		for _, v := range collectDefines(op) {
			defs[v] = true
		}
		for _, up := range plan.Upstreams(op) {
			walk(up)
		}
	}
	walk(start)
	return defs
}

// equiJoinKeys decomposes condition into its top-level conjuncts and
// keeps the ones shaped as an equality between two variable
// references, one defined on each side, returning each side's keys in
// matching order (spec §4.7: "two group exchanges keyed on the join
// columns").
func equiJoinKeys(condition scalar.Expression, leftDefs, rightDefs map[descriptor.Variable]bool) (left, right []descriptor.Variable) {
	for _, c := range DecomposeConjunction(condition) {
		cmp, ok := c.(*scalar.Comparison)
		if !ok || cmp.Operator != scalar.Equal {
			continue
		}
		lv, lok := variableReferenceOf(cmp.Left)
		rv, rok := variableReferenceOf(cmp.Right)
		if !lok || !rok {
			continue
		}
		switch {
		case leftDefs[lv] && rightDefs[rv]:
			left = append(left, lv)
			right = append(right, rv)
		case leftDefs[rv] && rightDefs[lv]:
			left = append(left, rv)
			right = append(right, lv)
		}
	}
	return left, right
}

func variableReferenceOf(e scalar.Expression) (descriptor.Variable, bool) {
	ref, ok := e.(*scalar.VariableReference)
	if !ok {
		return descriptor.Variable{}, false
	}
	return ref.Variable, true
}

func toRowexecAggregateColumns(cols []plan.AggregateColumn) []rowexec.AggregateColumn {
	out := make([]rowexec.AggregateColumn, len(cols))
	for i, c := range cols {
		out[i] = rowexec.AggregateColumn{Function: c.Function, Arguments: c.Arguments, Result: c.Result}
	}
	return out
}

func aggregateResultColumns(o *plan.Aggregate) []descriptor.Variable {
	cols := append([]descriptor.Variable{}, o.Keys...)
	for _, c := range o.Columns {
		cols = append(cols, c.Result)
	}
	return cols
}
