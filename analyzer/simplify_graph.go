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
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/scalar"
)

// SimplifyGraph applies C4's local-variable inlining and predicate
// simplification (spec §4.8 pipeline step 2: "apply C4 transformations
// ... globally") to every scalar condition carried directly by a
// relational operator: filter and join conditions, the only places a
// boolean predicate lives in the operator graph. Returns whether any
// condition changed.
func SimplifyGraph(g *plan.Graph) bool {
	changed := false
	for _, op := range g.Operators() {
		switch o := op.(type) {
		case *plan.Filter:
			if o.Condition == nil {
				continue
			}
			if s := simplifyCondition(o.Condition); s != o.Condition {
				o.Condition = s
				changed = true
			}
		case *plan.Join:
			if o.Condition == nil {
				continue
			}
			if s := simplifyCondition(o.Condition); s != o.Condition {
				o.Condition = s
				changed = true
			}
		}
	}
	return changed
}

// simplifyCondition inlines local (`let`-bound) variables, widens each
// range-shaped disjunction with its covering bounds
// (WidenDisjunctionRanges), then collapses the result to a literal if
// it simplifies to a constant truth value; otherwise it returns the
// inlined and widened form, which is always
// at least as simplification-ready for the scan/join rewriters that
// run next (spec §4.4/§4.5).
func simplifyCondition(expr scalar.Expression) scalar.Expression {
	inlined := CollectLocalVariables(expr)
	widened := WidenDisjunctionRanges(inlined)
	switch SimplifyPredicate(widened) {
	case ConstantTrue:
		return trueLiteral()
	case ConstantFalse:
		return scalar.NewLiteral(false, scalar.Region{})
	default:
		return widened
	}
}
