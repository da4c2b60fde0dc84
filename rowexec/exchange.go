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

// Package rowexec defines the physical step plan the exchange step
// collector (spec §4.7) lowers an intermediate operator graph into:
// exchange boundaries (forward/group/aggregate/broadcast) and the
// physical steps (`offer`, `take_flat`, `take_group`, `take_cogroup`,
// `flatten`, `join_group`, `join_find`, `join_scan`,
// `aggregate_group`) that read from and write to them.
package rowexec

import (
	"github.com/yugawara-go/yugawara/descriptor"
	"github.com/yugawara-go/yugawara/function"
)

// ExchangeKind discriminates the closed set of exchange boundaries.
type ExchangeKind int

const (
	ExchangeForward ExchangeKind = iota
	ExchangeGroup
	ExchangeAggregate
	ExchangeBroadcast
)

// Exchange is a repartitioning boundary. Unlike a Step, an Exchange is
// not itself a graph.Node: steps on either side (an `offer` writing
// into it, a `take_*` reading from it) reference it by pointer, the
// way the collector's lowering table describes exchanges as shared
// infrastructure rather than edges in the step graph.
type Exchange interface {
	ExchangeKind() ExchangeKind
}

// Forward passes rows through unchanged, optionally capped at Limit
// rows (0 means unbounded); the physical form of a flat `limit` with
// no grouping/sort keys (spec §4.7).
type Forward struct {
	Limit int64
}

func (*Forward) ExchangeKind() ExchangeKind { return ExchangeForward }

// Group repartitions rows by Keys, in Sort order within each group,
// optionally capping each group at Limit rows. Equivalence marks a
// limit-1 group exchange used for set dedup (`distinct`,
// `union(distinct)`) where only row identity, not the stream's
// natural ordering, matters.
type Group struct {
	Keys        []descriptor.Variable
	Sort        []SortKey
	Limit       int64
	Equivalence bool
}

func (*Group) ExchangeKind() ExchangeKind { return ExchangeGroup }

// SortKey orders rows within a Group, ascending unless Descending.
type SortKey struct {
	Variable   descriptor.Variable
	Descending bool
}

// AggregateExchange repartitions rows by Keys like Group, but also
// carries the partial aggregator state for each Columns entry so an
// incremental aggregate can fold rows as they arrive rather than
// materializing the full group (spec §4.7: "aggregate (incremental)").
type AggregateExchange struct {
	Keys    []descriptor.Variable
	Columns []AggregateColumn
}

func (*AggregateExchange) ExchangeKind() ExchangeKind { return ExchangeAggregate }

// AggregateColumn binds one aggregate result column to a function
// declaration applied over its argument columns, mirroring
// plan.AggregateColumn at the physical layer.
type AggregateColumn struct {
	Function  function.Declaration
	Arguments []descriptor.Variable
	Result    descriptor.Variable
}

// Broadcast replicates every row of the build side to every
// partition of the probe side, used for a broadcast join's build
// input (spec §4.7: "join (broadcast)").
type Broadcast struct{}

func (*Broadcast) ExchangeKind() ExchangeKind { return ExchangeBroadcast }
