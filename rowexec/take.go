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

// Offer writes each input row into Destination, the physical
// counterpart of a relational operator's output edge once it crosses
// an exchange boundary (spec §4.7: e.g. "two offers" feeding a
// union's forward/group exchange).
type Offer struct {
	base
	Destination Exchange
	Columns     []descriptor.Variable
}

// NewOffer constructs an offer writing its single input into destination.
func NewOffer(destination Exchange, columns []descriptor.Variable) *Offer {
	o := &Offer{Destination: destination, Columns: columns}
	o.base = newBase(o, 1, 0)
	return o
}

func (o *Offer) StepKind() Kind { return KindOffer }

// TakeFlat reads every row out of a Forward exchange in arrival
// order, inheriting its column types from the referenced exchange's
// declarations (spec §4.3: "take_* inherits column types from the
// referenced exchange").
type TakeFlat struct {
	base
	Source  *Forward
	Columns []descriptor.Variable
}

// NewTakeFlat constructs a take_flat with no inputs and one output.
func NewTakeFlat(source *Forward, columns []descriptor.Variable) *TakeFlat {
	t := &TakeFlat{Source: source, Columns: columns}
	t.base = newBase(t, 0, 1)
	return t
}

func (t *TakeFlat) StepKind() Kind { return KindTakeFlat }

// TakeGroup reads every group out of a Group or AggregateExchange,
// one row set per distinct key.
type TakeGroup struct {
	base
	Source  Exchange
	Columns []descriptor.Variable
}

// NewTakeGroup constructs a take_group with no inputs and one output.
func NewTakeGroup(source Exchange, columns []descriptor.Variable) *TakeGroup {
	t := &TakeGroup{Source: source, Columns: columns}
	t.base = newBase(t, 0, 1)
	return t
}

func (t *TakeGroup) StepKind() Kind { return KindTakeGroup }

// TakeCogroup reads matching groups out of two or more Group exchanges
// keyed the same way, pairing them by key for a co-group join,
// intersection, or difference (spec §4.7).
type TakeCogroup struct {
	base
	Sources []*Group
	Columns [][]descriptor.Variable
}

// NewTakeCogroup constructs a take_cogroup with no inputs and one output.
func NewTakeCogroup(sources []*Group, columns [][]descriptor.Variable) *TakeCogroup {
	t := &TakeCogroup{Sources: sources, Columns: columns}
	t.base = newBase(t, 0, 1)
	return t
}

func (t *TakeCogroup) StepKind() Kind { return KindTakeCogroup }

// Flatten collapses a take_group/take_cogroup's per-key row sets back
// into a flat row stream, used whenever a relational operator's
// physical form only needed the exchange for deduplication/grouping
// but the logical shape is a simple row sequence (spec §4.7:
// "distinct", "aggregate (incremental)", "union(distinct)" all end in
// "take_group + flatten").
type Flatten struct {
	base
}

// NewFlatten constructs a flatten with one input and one output.
func NewFlatten() *Flatten {
	f := &Flatten{}
	f.base = newBase(f, 1, 1)
	return f
}

func (f *Flatten) StepKind() Kind { return KindFlatten }
