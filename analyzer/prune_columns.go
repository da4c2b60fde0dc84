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
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/scalar"
)

// PruneStreamColumns computes, across the whole graph, the set of
// stream variables actually read by some operator (the same "use"
// definition C6 liveness computes per block, applied here globally),
// then narrows every scan/find's output column list and every
// project's computed-column list down to what that set still
// requires. It reports whether anything was dropped.
func PruneStreamColumns(g *plan.Graph) bool {
	required := make(map[descriptor.Variable]bool)
	for _, op := range g.Operators() {
		for _, v := range collectUses(op) {
			required[v] = true
		}
	}

	pruned := false
	for _, op := range g.Operators() {
		switch o := op.(type) {
		case *plan.Scan:
			if narrowColumns(&o.Columns, required) {
				pruned = true
			}
		case *plan.Find:
			if narrowColumns(&o.Columns, required) {
				pruned = true
			}
		case *plan.Project:
			if narrowProjections(&o.Columns, required) {
				pruned = true
			}
		}
	}
	return pruned
}

// collectUses returns the stream variables op reads directly, per
// spec §4.6's use definition: scalar variable references inside
// conditions/values/keys, offer sources, write sources; a buffer
// produces no implicit uses.
func collectUses(op plan.Operator) []descriptor.Variable {
	var out []descriptor.Variable
	collect := func(expr scalar.Expression) {
		if expr == nil {
			return
		}
		scalar.Walk(func(e scalar.Expression) bool {
			if ref, ok := e.(*scalar.VariableReference); ok {
				out = append(out, ref.Variable)
			}
			return true
		}, expr)
	}

	switch o := op.(type) {
	case *plan.Scan:
		for _, k := range o.LowerKeys {
			collect(k.Value)
		}
		for _, k := range o.UpperKeys {
			collect(k.Value)
		}
	case *plan.Find:
		for _, k := range o.Keys {
			collect(k.Value)
		}
	case *plan.Filter:
		collect(o.Condition)
	case *plan.Project:
		for _, p := range o.Columns {
			collect(p.Expression)
		}
	case *plan.Join:
		collect(o.Condition)
	case *plan.JoinFind:
		for _, k := range o.Keys {
			collect(k.Value)
		}
		collect(o.Condition)
	case *plan.JoinScan:
		for _, k := range o.LowerKeys {
			collect(k.Value)
		}
		for _, k := range o.UpperKeys {
			collect(k.Value)
		}
		collect(o.Condition)
	case *plan.Aggregate:
		out = append(out, o.Keys...)
		for _, c := range o.Columns {
			out = append(out, c.Arguments...)
		}
	case *plan.Distinct:
		out = append(out, o.Columns...)
	case *plan.Limit:
		out = append(out, o.GroupKeys...)
		for _, s := range o.SortKeys {
			out = append(out, s.Variable)
		}
	case *plan.Union:
		out = append(out, o.Columns...)
	case *plan.Intersection:
		out = append(out, o.Columns...)
	case *plan.Difference:
		out = append(out, o.Columns...)
	case *plan.Values:
		for _, row := range o.Rows {
			for _, e := range row {
				collect(e)
			}
		}
	case *plan.Write:
		for _, c := range o.Columns {
			out = append(out, c.Source)
		}
	case *plan.Escape:
		out = append(out, o.Columns...)
	case *plan.Buffer:
		// no implicit uses.
	}
	return out
}

// narrowColumns drops any scan/find output column whose Result
// variable nothing downstream reads. At least one column is always
// kept: a zero-width output row would still need a row count/identity
// handle further downstream (e.g. an aggregate with no arguments).
func narrowColumns(columns *[]plan.Column, required map[descriptor.Variable]bool) bool {
	var kept []plan.Column
	changed := false
	for _, c := range *columns {
		if required[c.Result] {
			kept = append(kept, c)
		} else {
			changed = true
		}
	}
	if !changed {
		return false
	}
	if len(kept) == 0 && len(*columns) > 0 {
		kept = append(kept, (*columns)[0])
	}
	*columns = kept
	return true
}

// narrowProjections drops any computed column nothing downstream
// reads, unless evaluating it has a side effect (an aggregate function
// call) that dropping it would silently remove.
func narrowProjections(columns *[]plan.Projection, required map[descriptor.Variable]bool) bool {
	var kept []plan.Projection
	changed := false
	for _, p := range *columns {
		if required[p.Variable] || !isSideEffectFree(p.Expression) {
			kept = append(kept, p)
			continue
		}
		changed = true
	}
	*columns = kept
	return changed
}
