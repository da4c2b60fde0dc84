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
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/scalar"
)

func TestSimplifyGraphWidensDisjunctionIntoThreeConjuncts(t *testing.T) {
	v := descriptor.NewSynthetic(descriptor.StreamVariable, "c")
	ref := scalar.NewVariableReference(v, scalar.Region{})

	eq0 := scalar.NewComparison(scalar.Equal, ref, scalar.NewLiteral(int64(0), scalar.Region{}), scalar.Region{})
	eq1 := scalar.NewComparison(scalar.Equal, ref, scalar.NewLiteral(int64(1), scalar.Region{}), scalar.Region{})
	or := scalar.NewOr(scalar.Region{}, eq0, eq1)
	filter := plan.NewFilter(or)

	g := plan.NewGraph()
	g.Add(filter)

	changed := SimplifyGraph(g)
	require.True(t, changed)

	conjuncts := DecomposeConjunction(filter.Condition)
	require.Len(t, conjuncts, 3, "the disjunction plus its widened lower and upper bound")

	var sawOr, sawLower, sawUpper bool
	for _, c := range conjuncts {
		switch e := c.(type) {
		case *scalar.Or:
			sawOr = true
		case *scalar.Comparison:
			if e.Operator == scalar.GreaterThanOrEqual {
				sawLower = true
			}
			if e.Operator == scalar.LessThanOrEqual {
				sawUpper = true
			}
		}
	}
	assert.True(t, sawOr, "the original disjunction must still be present")
	assert.True(t, sawLower, "a widened lower bound conjunct must be added")
	assert.True(t, sawUpper, "a widened upper bound conjunct must be added")
}

func TestSimplifyGraphSkipsFiltersWithoutConditions(t *testing.T) {
	filter := plan.NewFilter(nil)
	g := plan.NewGraph()
	g.Add(filter)

	assert.False(t, SimplifyGraph(g))
}
