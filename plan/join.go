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
	"github.com/yugawara-go/yugawara/scalar"
	"github.com/yugawara-go/yugawara/storage"
)

// JoinKind is the closed set of join semantics the rewriters must
// respect (spec §4.5: "the rewriter must respect outer-join
// semantics").
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeftOuter
	JoinFullOuter
	JoinSemi
	JoinAnti
)

// Join is the intermediate (pre-rewrite) two-input join; Condition
// must resolve to boolean (spec §4.3).
type Join struct {
	base
	Kind      JoinKind
	Condition scalar.Expression
}

// NewJoin constructs a two-input join.
func NewJoin(kind JoinKind, condition scalar.Expression) *Join {
	j := &Join{Kind: kind, Condition: condition}
	j.base = newBase(j, 2)
	return j
}

func (j *Join) OperatorKind() Kind { return KindJoin }

// JoinFind is the rewritten form of Join where the probe side's
// equalities fully cover a unique index prefix (spec §4.5): it takes
// a single (outer) input and performs a unique lookup against Target
// per row.
type JoinFind struct {
	base
	Kind      JoinKind
	Target    *storage.Index
	Columns   []Column
	Keys      []Key
	Condition scalar.Expression
}

// NewJoinFind constructs a single-input index point-lookup join.
func NewJoinFind(kind JoinKind, target *storage.Index, columns []Column, keys []Key, residual scalar.Expression) *JoinFind {
	jf := &JoinFind{Kind: kind, Target: target, Columns: columns, Keys: keys, Condition: residual}
	jf.base = newBase(jf, 1)
	return jf
}

func (jf *JoinFind) OperatorKind() Kind { return KindJoinFind }

// JoinScan is the rewritten form of Join where range predicates on an
// index prefix are available (spec §4.5); never emitted for a
// full_outer join.
type JoinScan struct {
	base
	Kind      JoinKind
	Target    *storage.Index
	Columns   []Column
	Lower     EndpointKind
	LowerKeys []Key
	Upper     EndpointKind
	UpperKeys []Key
	Condition scalar.Expression
}

// NewJoinScan constructs a single-input index range-scan join.
func NewJoinScan(kind JoinKind, target *storage.Index, columns []Column, residual scalar.Expression) *JoinScan {
	js := &JoinScan{Kind: kind, Target: target, Columns: columns, Condition: residual}
	js.base = newBase(js, 1)
	return js
}

func (js *JoinScan) OperatorKind() Kind { return KindJoinScan }
