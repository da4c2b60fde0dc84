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
	"github.com/yugawara-go/yugawara/storage"
	"github.com/yugawara-go/yugawara/types"
)

func streamCol(label string) plan.Column {
	return plan.Column{
		Source: descriptor.NewVariable(descriptor.TableColumn, "users."+label, label),
		Result: descriptor.NewSynthetic(descriptor.StreamVariable, label),
	}
}

func TestPruneStreamColumnsNarrowsUnusedScanColumn(t *testing.T) {
	id, name, age, email := streamCol("id"), streamCol("name"), streamCol("age"), streamCol("email")
	scan := plan.NewScan(&storage.Index{
		Name: "users_pk",
		Table: &storage.Table{Name: "users", Columns: []storage.Column{
			{Name: "id", Type: types.Int8()}, {Name: "name", Type: types.Int8()},
			{Name: "age", Type: types.Int8()}, {Name: "email", Type: types.Int8()},
		}},
		Primary: true, Unique: true,
	}, []plan.Column{id, name, age, email})

	filter := plan.NewFilter(scalar.NewComparison(scalar.GreaterThan,
		scalar.NewVariableReference(age.Result, scalar.Region{}),
		scalar.NewLiteral(int64(0), scalar.Region{}),
		scalar.Region{},
	))
	connect(scan, filter, 0)

	outID := descriptor.NewSynthetic(descriptor.StreamVariable, "out_id")
	outUnused := descriptor.NewSynthetic(descriptor.StreamVariable, "out_unused")
	project := plan.NewProject([]plan.Projection{
		{Variable: outID, Expression: scalar.NewVariableReference(id.Result, scalar.Region{})},
		{Variable: outUnused, Expression: scalar.NewVariableReference(name.Result, scalar.Region{})},
	})
	connect(filter, project, 0)

	dest := &storage.Table{Name: "archive", Columns: []storage.Column{{Name: "id", Type: types.Int8()}}}
	targetVar := descriptor.NewVariable(descriptor.TableColumn, "archive.id", "id")
	write := plan.NewWrite(plan.WriteInsert, dest, []plan.WriteColumn{{Target: targetVar, Source: outID}})
	connect(project, write, 0)

	g := buildGraph(scan, filter, project, write)

	changed := PruneStreamColumns(g)
	require.True(t, changed)

	var gotScan *plan.Scan
	var gotProject *plan.Project
	for _, op := range g.Operators() {
		switch o := op.(type) {
		case *plan.Scan:
			gotScan = o
		case *plan.Project:
			gotProject = o
		}
	}
	require.NotNil(t, gotScan)
	require.NotNil(t, gotProject)

	var scanLabels []string
	for _, c := range gotScan.Columns {
		scanLabels = append(scanLabels, c.Result.Label())
	}
	assert.ElementsMatch(t, []string{"id", "name", "age"}, scanLabels,
		"email is read by nothing downstream and should be dropped; id/name/age still feed project/filter")

	require.Len(t, gotProject.Columns, 1)
	assert.Equal(t, outID, gotProject.Columns[0].Variable, "the unused out_unused projection should be dropped")
}

func TestPruneStreamColumnsKeepsSideEffectingProjection(t *testing.T) {
	id := streamCol("id")
	scan := plan.NewScan(&storage.Index{
		Name:  "users_pk",
		Table: &storage.Table{Name: "users", Columns: []storage.Column{{Name: "id", Type: types.Int8()}}},
	}, []plan.Column{id})

	unusedButAggregating := descriptor.NewSynthetic(descriptor.StreamVariable, "count_star")
	agg := scalar.NewAggregateFunctionCall("count",
		[]scalar.Expression{scalar.NewVariableReference(id.Result, scalar.Region{})}, false, scalar.Region{})
	project := plan.NewProject([]plan.Projection{
		{Variable: unusedButAggregating, Expression: agg},
	})
	connect(scan, project, 0)

	g := buildGraph(scan, project)
	changed := PruneStreamColumns(g)
	assert.False(t, changed)

	require.Len(t, project.Columns, 1)
	assert.Equal(t, unusedButAggregating, project.Columns[0].Variable)
}

func TestPruneStreamColumnsNeverEmptiesScanColumns(t *testing.T) {
	id, name := streamCol("id"), streamCol("name")
	scan := plan.NewScan(&storage.Index{
		Name: "users_pk",
		Table: &storage.Table{Name: "users", Columns: []storage.Column{
			{Name: "id", Type: types.Int8()}, {Name: "name", Type: types.Int8()},
		}},
	}, []plan.Column{id, name})

	g := buildGraph(scan)
	changed := PruneStreamColumns(g)
	require.True(t, changed)
	assert.Len(t, scan.Columns, 1, "at least one column must survive even with no downstream use")
}
