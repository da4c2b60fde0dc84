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

import (
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/scalar"
	"github.com/yugawara-go/yugawara/storage"
)

// JoinGroup is the physical form of a co-group join: it consumes a
// single take_cogroup pairing both sides' groups and applies
// Condition. LeftMandatory/RightMandatory record whether each side
// must contribute at least one (possibly null-extended) row, derived
// from the original join_kind (spec §4.7: "per-side mandatoriness
// derived from join_kind").
type JoinGroup struct {
	base
	Kind           plan.JoinKind
	Condition      scalar.Expression
	LeftMandatory  bool
	RightMandatory bool
}

// NewJoinGroup constructs a join_group consuming a take_cogroup's
// single output.
func NewJoinGroup(kind plan.JoinKind, condition scalar.Expression) *JoinGroup {
	jg := &JoinGroup{
		Kind:           kind,
		Condition:      condition,
		LeftMandatory:  kind != plan.JoinInner && kind != plan.JoinLeftOuter,
		RightMandatory: kind != plan.JoinInner,
	}
	jg.base = newBase(jg, 1, 1)
	return jg
}

func (jg *JoinGroup) StepKind() Kind { return KindJoinGroup }

// JoinFind is the physical form of an index point-lookup join: one
// unique-index lookup per probe row.
type JoinFind struct {
	base
	Kind      plan.JoinKind
	Target    *storage.Index
	Columns   []plan.Column
	Keys      []plan.Key
	Condition scalar.Expression
}

// NewJoinFind constructs a join_find consuming the probe side's
// single input.
func NewJoinFind(kind plan.JoinKind, target *storage.Index, columns []plan.Column, keys []plan.Key, residual scalar.Expression) *JoinFind {
	jf := &JoinFind{Kind: kind, Target: target, Columns: columns, Keys: keys, Condition: residual}
	jf.base = newBase(jf, 1, 1)
	return jf
}

func (jf *JoinFind) StepKind() Kind { return KindJoinFind }

// JoinScan is the physical form of an index range-scan join.
type JoinScan struct {
	base
	Kind      plan.JoinKind
	Target    *storage.Index
	Columns   []plan.Column
	Lower     plan.EndpointKind
	LowerKeys []plan.Key
	Upper     plan.EndpointKind
	UpperKeys []plan.Key
	Condition scalar.Expression
}

// NewJoinScan constructs a join_scan consuming the probe side's single input.
func NewJoinScan(kind plan.JoinKind, target *storage.Index, columns []plan.Column, residual scalar.Expression) *JoinScan {
	js := &JoinScan{Kind: kind, Target: target, Columns: columns, Condition: residual}
	js.base = newBase(js, 1, 1)
	return js
}

func (js *JoinScan) StepKind() Kind { return KindJoinScan }
