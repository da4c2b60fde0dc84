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
	"github.com/yugawara-go/yugawara/graph"
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/scalar"
	"github.com/yugawara-go/yugawara/storage"
	"github.com/yugawara-go/yugawara/types"
)

func TestComputeLivenessDetectsUndefinedVariable(t *testing.T) {
	id := streamCol("id")
	scan := plan.NewScan(&storage.Index{
		Name:  "users_pk",
		Table: &storage.Table{Name: "users", Columns: []storage.Column{{Name: "id", Type: types.Int8()}}},
	}, []plan.Column{id})

	ghost := descriptor.NewSynthetic(descriptor.StreamVariable, "ghost")
	filter := plan.NewFilter(scalar.NewComparison(scalar.Equal,
		scalar.NewVariableReference(ghost, scalar.Region{}), scalar.NewLiteral(int64(0), scalar.Region{}), scalar.Region{}))
	connect(scan, filter, 0)

	g := buildGraph(scan, filter)
	bg, err := BuildBlocks(g)
	require.NoError(t, err)

	err = ComputeLiveness(bg)
	require.Error(t, err)
	assert.True(t, ErrUndefinedVariable.Is(err), "filter reads a variable no operator anywhere defines")
}

func TestComputeLivenessDetectsMultiplyDefined(t *testing.T) {
	shared := descriptor.NewSynthetic(descriptor.StreamVariable, "shared")

	leftScan := plan.NewScan(&storage.Index{
		Name:  "a_pk",
		Table: &storage.Table{Name: "a", Columns: []storage.Column{{Name: "id", Type: types.Int8()}}},
	}, []plan.Column{{Source: descriptor.NewVariable(descriptor.TableColumn, "a.id", "id"), Result: shared}})

	rightScan := plan.NewScan(&storage.Index{
		Name:  "b_pk",
		Table: &storage.Table{Name: "b", Columns: []storage.Column{{Name: "id", Type: types.Int8()}}},
	}, []plan.Column{{Source: descriptor.NewVariable(descriptor.TableColumn, "b.id", "id"), Result: shared}})

	union := plan.NewUnion(plan.SetAll, []descriptor.Variable{shared})
	connect(leftScan, union, 0)
	connect(rightScan, union, 1)

	g := buildGraph(leftScan, rightScan, union)
	bg, err := BuildBlocks(g)
	require.NoError(t, err)

	err = ComputeLiveness(bg)
	require.Error(t, err)
	assert.True(t, ErrMultiplyDefined.Is(err), "shared is defined by two distinct scan blocks")
}

func TestComputeLivenessKillsAtFirstUnusedBranch(t *testing.T) {
	id := streamCol("id")
	scan := plan.NewScan(&storage.Index{
		Name:  "users_pk",
		Table: &storage.Table{Name: "users", Columns: []storage.Column{{Name: "id", Type: types.Int8()}}},
	}, []plan.Column{id})

	buffer := plan.NewBuffer()
	connect(scan, buffer, 0)

	usesID := plan.NewFilter(scalar.NewComparison(scalar.GreaterThan,
		scalar.NewVariableReference(id.Result, scalar.Region{}), scalar.NewLiteral(int64(0), scalar.Region{}), scalar.Region{}))
	graph.Connect(buffer.Output(), usesID.Input(0))

	destA := &storage.Table{Name: "a", Columns: []storage.Column{{Name: "id", Type: types.Int8()}}}
	writeA := plan.NewWrite(plan.WriteInsert, destA, []plan.WriteColumn{
		{Target: descriptor.NewVariable(descriptor.TableColumn, "a.id", "id"), Source: id.Result},
	})
	connect(usesID, writeA, 0)

	ignoresID := plan.NewFilter(scalar.NewComparison(scalar.Equal,
		scalar.NewLiteral(int64(1), scalar.Region{}), scalar.NewLiteral(int64(1), scalar.Region{}), scalar.Region{}))
	graph.Connect(buffer.AddOutput(), ignoresID.Input(0))

	destB := &storage.Table{Name: "b", Columns: []storage.Column{{Name: "flag", Type: types.Int8()}}}
	flagVar := descriptor.NewSynthetic(descriptor.StreamVariable, "flag")
	setFlag := plan.NewProject([]plan.Projection{
		{Variable: flagVar, Expression: scalar.NewLiteral(int64(1), scalar.Region{})},
	})
	connect(ignoresID, setFlag, 0)
	writeB := plan.NewWrite(plan.WriteInsert, destB, []plan.WriteColumn{
		{Target: descriptor.NewVariable(descriptor.TableColumn, "b.flag", "flag"), Source: flagVar},
	})
	connect(setFlag, writeB, 0)

	g := buildGraph(scan, buffer, usesID, writeA, ignoresID, setFlag, writeB)
	bg, err := BuildBlocks(g)
	require.NoError(t, err)

	require.NoError(t, ComputeLiveness(bg))

	scanBlock, _ := bg.BlockOf(scan)
	bufferBlock, _ := bg.BlockOf(buffer)
	usesBlock, _ := bg.BlockOf(usesID)
	ignoresBlock, _ := bg.BlockOf(ignoresID)

	assert.Empty(t, scanBlock.Kill(), "id is live all the way out of the scan block, into the buffer")
	assert.Empty(t, bufferBlock.Kill())
	assert.Empty(t, usesBlock.Kill(), "the branch that still reads id does not kill it")
	assert.True(t, ignoresBlock.Kill()[id.Result],
		"id is never used again on the branch starting at ignoresID, so it is killed at that branch's first block")
}

func TestComputeLivenessKillsDefinedButNeverUsedVariable(t *testing.T) {
	table := &storage.Table{Name: "users", Columns: []storage.Column{
		{Name: "id", Type: types.Int8()},
		{Name: "a", Type: types.Int8()},
		{Name: "b", Type: types.Int8()},
	}}
	cID := descriptor.NewSynthetic(descriptor.StreamVariable, "c0")
	cA := descriptor.NewSynthetic(descriptor.StreamVariable, "c1")
	cB := descriptor.NewSynthetic(descriptor.StreamVariable, "c2")
	scan := plan.NewScan(&storage.Index{Name: "users_pk", Table: table}, []plan.Column{
		{Source: descriptor.NewVariable(descriptor.TableColumn, "users.id", "id"), Result: cID},
		{Source: descriptor.NewVariable(descriptor.TableColumn, "users.a", "a"), Result: cA},
		{Source: descriptor.NewVariable(descriptor.TableColumn, "users.b", "b"), Result: cB},
	})

	buffer := plan.NewBuffer()
	connect(scan, buffer, 0)

	// the first branch reads only cID, the second only cA; cB is
	// produced by the scan and read by neither branch.
	branchA := plan.NewFilter(scalar.NewComparison(scalar.GreaterThan,
		scalar.NewVariableReference(cID, scalar.Region{}), scalar.NewLiteral(int64(0), scalar.Region{}), scalar.Region{}))
	graph.Connect(buffer.Output(), branchA.Input(0))
	destA := &storage.Table{Name: "a", Columns: []storage.Column{{Name: "id", Type: types.Int8()}}}
	writeA := plan.NewWrite(plan.WriteInsert, destA, []plan.WriteColumn{
		{Target: descriptor.NewVariable(descriptor.TableColumn, "a.id", "id"), Source: cID},
	})
	connect(branchA, writeA, 0)

	branchB := plan.NewFilter(scalar.NewComparison(scalar.GreaterThan,
		scalar.NewVariableReference(cA, scalar.Region{}), scalar.NewLiteral(int64(0), scalar.Region{}), scalar.Region{}))
	graph.Connect(buffer.AddOutput(), branchB.Input(0))
	destB := &storage.Table{Name: "b", Columns: []storage.Column{{Name: "a", Type: types.Int8()}}}
	writeB := plan.NewWrite(plan.WriteInsert, destB, []plan.WriteColumn{
		{Target: descriptor.NewVariable(descriptor.TableColumn, "b.a", "a"), Source: cA},
	})
	connect(branchB, writeB, 0)

	g := buildGraph(scan, buffer, branchA, writeA, branchB, writeB)
	bg, err := BuildBlocks(g)
	require.NoError(t, err)
	require.NoError(t, ComputeLiveness(bg))

	scanBlock, _ := bg.BlockOf(scan)
	assert.True(t, scanBlock.Kill()[cB],
		"cB is defined by the scan and read by neither branch, so nothing downstream ever kills it except the defining block itself")
}
