// Copyright 2020-2021 Dolthub, Inc.
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
	"fmt"
	"sort"
	"strings"

	"github.com/yugawara-go/yugawara/graph"
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/rowexec"
)

// DumpStepPlan renders sg as a debug text tree, one TreePrinter node
// per physical step, rooted at every step with no downstream consumer
// (a compiled statement's final output(s)). Grounded on the teacher's
// sql.Node.String()/sql.TreePrinter-driven plan dumps used throughout
// enginetest.
func DumpStepPlan(sg *rowexec.Graph) string {
	var roots []rowexec.Step
	for _, step := range sg.Steps() {
		if len(rowexec.Downstreams(step)) == 0 {
			roots = append(roots, step)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return stepLabel(roots[i]) < stepLabel(roots[j]) })

	var sb strings.Builder
	for _, root := range roots {
		sb.WriteString(dumpStep(root))
	}
	return sb.String()
}

func dumpStep(step rowexec.Step) string {
	p := NewTreePrinter()
	p.WriteNode(stepLabel(step))
	var children []string
	for _, up := range graph.Upstreams(step) {
		if s, ok := up.(rowexec.Step); ok {
			children = append(children, dumpStep(s))
		}
	}
	p.WriteChildren(children...)
	return p.String()
}

func stepLabel(step rowexec.Step) string {
	switch s := step.(type) {
	case *rowexec.Offer:
		return "offer"
	case *rowexec.TakeFlat:
		return "take_flat"
	case *rowexec.TakeGroup:
		return "take_group"
	case *rowexec.TakeCogroup:
		return "take_cogroup"
	case *rowexec.Flatten:
		return "flatten"
	case *rowexec.JoinGroup:
		return fmt.Sprintf("join_group(%v)", s.Kind)
	case *rowexec.JoinFind:
		return fmt.Sprintf("join_find(%s)", s.Target.Name)
	case *rowexec.JoinScan:
		return fmt.Sprintf("join_scan(%s)", s.Target.Name)
	case *rowexec.AggregateGroup:
		return "aggregate_group"
	case *rowexec.IntersectionGroup:
		return fmt.Sprintf("intersection_group(%v)", s.Quantifier)
	case *rowexec.DifferenceGroup:
		return fmt.Sprintf("difference_group(%v)", s.Quantifier)
	case *rowexec.Relational:
		return relationalLabel(s.Operator)
	default:
		return fmt.Sprintf("%T", step)
	}
}

func relationalLabel(op plan.Operator) string {
	switch o := op.(type) {
	case *plan.Scan:
		return fmt.Sprintf("scan(%s)", o.Source.Name)
	case *plan.Find:
		return fmt.Sprintf("find(%s)", o.Source.Name)
	case *plan.Filter:
		return "filter"
	case *plan.Project:
		return "project"
	case *plan.Values:
		return "values"
	case *plan.Write:
		return fmt.Sprintf("write(%s)", o.Destination.Name)
	case *plan.JoinFind:
		return fmt.Sprintf("join_find(%s)", o.Target.Name)
	case *plan.JoinScan:
		return fmt.Sprintf("join_scan(%s)", o.Target.Name)
	case *plan.Buffer:
		return "buffer"
	default:
		return fmt.Sprintf("%T", op)
	}
}
