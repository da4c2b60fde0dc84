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

	"github.com/yugawara-go/yugawara/estimator"
	"github.com/yugawara-go/yugawara/memory"
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/scalar"
	"github.com/yugawara-go/yugawara/storage"
	"github.com/yugawara-go/yugawara/types"
)

// customersFixture registers a "customers" table with a unique primary
// index on id, sharing the provider/estimator used for the orders side
// so a join between the two tables has a real catalog to consult.
func customersFixture(t *testing.T, provider *memory.Provider, est *estimator.Heuristic) (*storage.Table, *storage.Index) {
	t.Helper()
	table := &storage.Table{
		Name: "customers",
		Columns: []storage.Column{
			{Name: "id", Type: types.Int8()},
			{Name: "name", Type: types.Int8()},
		},
	}
	provider.AddRelation(table, false)
	primary := &storage.Index{
		Name: "customers_pk", Table: table,
		Keys: []storage.Column{table.Columns[0]}, Primary: true, Unique: true, Ordered: true,
	}
	provider.AddIndex(primary, false)
	est.SetRowCount(table.Name, 5000)
	return table, primary
}

func TestRewriteJoinConsumesRightSideOnEquality(t *testing.T) {
	ordersTable, ordersPrimary, provider, est := ordersFixture(t)
	customersTable, customersPrimary := customersFixture(t, provider, est)

	orderCols := scanColumns(ordersTable)
	customerCols := scanColumns(customersTable)

	leftScan := plan.NewScan(ordersPrimary, orderCols)
	rightScan := plan.NewScan(customersPrimary, customerCols)

	cond := scalar.NewComparison(scalar.Equal,
		columnRef(orderCols, "customer_id"),
		columnRef(customerCols, "id"),
		scalar.Region{},
	)
	join := plan.NewJoin(plan.JoinInner, cond)

	connect(leftScan, join, 0)
	connect(rightScan, join, 1)

	g := buildGraph(leftScan, rightScan, join)

	rewrote := RewriteJoin(g, provider, est, true, 0)
	require.True(t, rewrote)

	var jf *plan.JoinFind
	for _, op := range g.Operators() {
		if f, ok := op.(*plan.JoinFind); ok {
			jf = f
		}
	}
	require.NotNil(t, jf, "expected the join to be rewritten into a join_find against customers_pk")
	assert.Equal(t, "customers_pk", jf.Target.Name)
	require.Len(t, jf.Keys, 1)
	ref, ok := jf.Keys[0].Value.(*scalar.VariableReference)
	require.True(t, ok, "the probe key should reference the surviving (orders) side's stream variable")
	assert.Equal(t, orderCols[1].Result, ref.Variable)

	// the original join and both scans it consumed are gone; only the
	// surviving orders scan plus the join_find remain.
	for _, op := range g.Operators() {
		_, isJoin := op.(*plan.Join)
		assert.False(t, isJoin)
		if s, ok := op.(*plan.Scan); ok {
			assert.Same(t, leftScan, s, "only the outer (orders) scan should survive")
		}
	}

	// the join_find's single input is fed directly by the surviving
	// orders scan.
	in := jf.Input(0)
	require.NotNil(t, in.Peer())
	assert.Same(t, leftScan, in.Peer().Owner)
}

func TestRewriteJoinRespectsBroadcastRowThreshold(t *testing.T) {
	ordersTable, ordersPrimary, provider, est := ordersFixture(t)
	customersTable, customersPrimary := customersFixture(t, provider, est)

	orderCols := scanColumns(ordersTable)
	customerCols := scanColumns(customersTable)

	leftScan := plan.NewScan(ordersPrimary, orderCols)
	rightScan := plan.NewScan(customersPrimary, customerCols)

	cond := scalar.NewComparison(scalar.Equal,
		columnRef(orderCols, "customer_id"),
		columnRef(customerCols, "id"),
		scalar.Region{},
	)
	join := plan.NewJoin(plan.JoinInner, cond)
	connect(leftScan, join, 0)
	connect(rightScan, join, 1)

	g := buildGraph(leftScan, rightScan, join)

	// customersFixture sets the customers row count to 5000, so the
	// point-lookup estimate for customers_pk is 5000 * 0.02 = 100 rows
	// (and 2000 for orders_by_customer); a cap below that must leave the
	// join for co-group lowering instead.
	assert.False(t, RewriteJoin(g, provider, est, true, 50))

	var stillJoin bool
	for _, op := range g.Operators() {
		if _, ok := op.(*plan.Join); ok {
			stillJoin = true
		}
	}
	assert.True(t, stillJoin, "the join must survive when every candidate index exceeds the row cap")

	// raising the cap above the candidate's row count lets the same
	// rewrite fire as usual.
	assert.True(t, RewriteJoin(g, provider, est, true, 10000))
}

func TestRewriteJoinSkipsFullOuter(t *testing.T) {
	ordersTable, ordersPrimary, provider, est := ordersFixture(t)
	customersTable, customersPrimary := customersFixture(t, provider, est)

	orderCols := scanColumns(ordersTable)
	customerCols := scanColumns(customersTable)

	leftScan := plan.NewScan(ordersPrimary, orderCols)
	rightScan := plan.NewScan(customersPrimary, customerCols)

	cond := scalar.NewComparison(scalar.Equal,
		columnRef(orderCols, "customer_id"),
		columnRef(customerCols, "id"),
		scalar.Region{},
	)
	join := plan.NewJoin(plan.JoinFullOuter, cond)
	connect(leftScan, join, 0)
	connect(rightScan, join, 1)

	g := buildGraph(leftScan, rightScan, join)
	assert.False(t, RewriteJoin(g, provider, est, true, 0))
}

func TestRewriteJoinLeftOuterNeverConsumesLeftSide(t *testing.T) {
	ordersTable, ordersPrimary, provider, est := ordersFixture(t)
	customersTable, customersPrimary := customersFixture(t, provider, est)

	orderCols := scanColumns(ordersTable)
	customerCols := scanColumns(customersTable)

	// swap the roles: now the left (customers) side is the one with an
	// equality bound available, and the right (orders) side has none,
	// since no orders index is keyed on total.
	leftScan := plan.NewScan(customersPrimary, customerCols)
	rightScan := plan.NewScan(ordersPrimary, orderCols)

	cond := scalar.NewComparison(scalar.Equal,
		columnRef(customerCols, "id"),
		columnRef(orderCols, "total"),
		scalar.Region{},
	)
	join := plan.NewJoin(plan.JoinLeftOuter, cond)
	connect(leftScan, join, 0)
	connect(rightScan, join, 1)

	g := buildGraph(leftScan, rightScan, join)

	// a left_outer join only ever tries to consume its right input, so
	// even though the left (customers) side carries the usable
	// equality, the rewrite must not fire.
	assert.False(t, RewriteJoin(g, provider, est, true, 0))
}

func TestRewriteJoinDisabledJoinScanSkipsRangeOnlyBound(t *testing.T) {
	ordersTable, ordersPrimary, provider, est := ordersFixture(t)
	customersTable, customersPrimary := customersFixture(t, provider, est)

	orderCols := scanColumns(ordersTable)
	customerCols := scanColumns(customersTable)

	leftScan := plan.NewScan(ordersPrimary, orderCols)
	rightScan := plan.NewScan(customersPrimary, customerCols)

	// a >= comparison only yields a range bound, never an equality
	// prefix, so only join_scan (not join_find) could serve it.
	cond := scalar.NewComparison(scalar.GreaterThanOrEqual,
		columnRef(customerCols, "id"),
		columnRef(orderCols, "customer_id"),
		scalar.Region{},
	)
	join := plan.NewJoin(plan.JoinInner, cond)
	connect(leftScan, join, 0)
	connect(rightScan, join, 1)

	g := buildGraph(leftScan, rightScan, join)
	assert.False(t, RewriteJoin(g, provider, est, false, 0))
}
