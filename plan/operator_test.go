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

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugawara-go/yugawara/descriptor"
	"github.com/yugawara-go/yugawara/function"
	"github.com/yugawara-go/yugawara/graph"
	"github.com/yugawara-go/yugawara/scalar"
	"github.com/yugawara-go/yugawara/storage"
)

func testVariable(label string) descriptor.Variable {
	return descriptor.NewVariable(descriptor.StreamVariable, "t:"+label, label)
}

func TestScanAndFilterWiring(t *testing.T) {
	table := &storage.Table{Name: "t0", Columns: []storage.Column{{Name: "c0"}}}
	index := &storage.Index{Name: "t0_primary", Table: table, Primary: true}
	c0 := testVariable("c0")

	scan := NewScan(index, []Column{{Source: c0, Result: c0}})
	require.Equal(t, KindScan, scan.OperatorKind())
	require.Len(t, scan.Inputs(), 0)
	require.Len(t, scan.Outputs(), 1)

	filter := NewFilter(scalar.NewIsTrue(scalar.NewVariableReference(c0, scalar.Region{}), scalar.Region{}))
	require.Len(t, filter.Inputs(), 1)

	graph.Connect(scan.Output(), filter.Input(0))
	assert.Same(t, filter.Input(0), scan.Output().Peer())
}

func TestJoinTwoInputs(t *testing.T) {
	cond := scalar.NewComparison(scalar.Equal, nil, nil, scalar.Region{})
	j := NewJoin(JoinInner, cond)
	assert.Equal(t, KindJoin, j.OperatorKind())
	assert.Len(t, j.Inputs(), 2)
	assert.Len(t, j.Outputs(), 1)
}

func TestAggregateIncrementalReportsFalseWhenAnyColumnIsNot(t *testing.T) {
	incrementalFn := function.Declaration{Name: "sum", Incremental: true}
	nonIncrementalFn := function.Declaration{Name: "median", Incremental: false}

	a := NewAggregate(nil, []AggregateColumn{
		{Function: incrementalFn},
		{Function: nonIncrementalFn},
	})
	assert.False(t, a.Incremental())

	b := NewAggregate(nil, []AggregateColumn{{Function: incrementalFn}})
	assert.True(t, b.Incremental())
}

func TestLimitFlat(t *testing.T) {
	flat := NewLimit(10, nil, nil)
	assert.True(t, flat.Flat())

	grouped := NewLimit(10, []descriptor.Variable{testVariable("k")}, nil)
	assert.False(t, grouped.Flat())
}

func TestBufferAddOutputGrowsFanOut(t *testing.T) {
	b := NewBuffer()
	require.Len(t, b.Outputs(), 1)
	b.AddOutput()
	assert.Len(t, b.Outputs(), 2)
}

func TestGraphRemoveDisconnectsOperators(t *testing.T) {
	table := &storage.Table{Name: "t0"}
	index := &storage.Index{Name: "t0_primary", Table: table}
	scan := NewScan(index, nil)
	filter := NewFilter(nil)

	g := NewGraph()
	g.Add(scan)
	g.Add(filter)
	graph.Connect(scan.Output(), filter.Input(0))

	assert.True(t, IsAcyclic(g))
	assert.ElementsMatch(t, []Operator{filter}, Downstreams(scan))

	g.Remove(scan)
	assert.False(t, scan.Output().Connected())
	assert.False(t, filter.Input(0).Connected())
	assert.Equal(t, 1, g.Len())
}

func TestValuesConstruction(t *testing.T) {
	c0 := testVariable("c0")
	v := NewValues([]descriptor.Variable{c0}, [][]scalar.Expression{
		{scalar.NewLiteral(int64(1), scalar.Region{})},
	})
	assert.Equal(t, KindValues, v.OperatorKind())
	assert.Len(t, v.Inputs(), 0)
}

func TestWriteConstruction(t *testing.T) {
	table := &storage.Table{Name: "t0"}
	c0 := testVariable("c0")
	w := NewWrite(WriteInsert, table, []WriteColumn{{Target: c0, Source: c0}})
	assert.Equal(t, KindWrite, w.OperatorKind())
	assert.Len(t, w.Inputs(), 1)
}
