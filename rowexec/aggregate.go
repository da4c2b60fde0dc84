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

package rowexec

import "github.com/yugawara-go/yugawara/descriptor"

// AggregateGroup is the physical form of a non-incremental aggregate:
// it consumes a take_group's fully materialized per-key row sets and
// computes Columns over each group directly, rather than folding
// partial state inside an exchange (spec §4.7: "aggregate
// (non-incremental)").
type AggregateGroup struct {
	base
	Keys    []descriptor.Variable
	Columns []AggregateColumn
}

// NewAggregateGroup constructs an aggregate_group consuming a
// take_group's single output.
func NewAggregateGroup(keys []descriptor.Variable, columns []AggregateColumn) *AggregateGroup {
	a := &AggregateGroup{Keys: keys, Columns: columns}
	a.base = newBase(a, 1, 1)
	return a
}

func (a *AggregateGroup) StepKind() Kind { return KindAggregateGroup }
