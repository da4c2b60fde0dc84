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
	"github.com/yugawara-go/yugawara/descriptor"
	"github.com/yugawara-go/yugawara/scalar"
	"github.com/yugawara-go/yugawara/storage"
)

// EndpointKind classifies one side of a Scan key range (spec §4.5:
// "prefixed_inclusive/exclusive").
type EndpointKind int

const (
	EndpointUnbound EndpointKind = iota
	EndpointPrefixedInclusive
	EndpointPrefixedExclusive
)

// Key binds a source column to its expression (an equality key for
// Find, or one side of a range for Scan).
type Key struct {
	Column descriptor.Variable
	Value  scalar.Expression
}

// Column projects a source table/index column to a stream variable.
type Column struct {
	Source descriptor.Variable
	Result descriptor.Variable
}

// Scan reads rows from an index across a key range, in sorted order.
// A Scan with no Lower/Upper bounds and the table's default index
// reads the whole relation (the "intermediate scan with no chosen
// index" case the scan rewriter looks for, per spec §4.5).
type Scan struct {
	base
	Source  *storage.Index
	Columns []Column
	Lower   EndpointKind
	LowerKeys []Key
	Upper   EndpointKind
	UpperKeys []Key
}

// NewScan constructs an unbound (whole-relation) scan over index.
func NewScan(index *storage.Index, columns []Column) *Scan {
	s := &Scan{Source: index, Columns: columns}
	s.base = newBase(s, 0)
	return s
}

func (s *Scan) OperatorKind() Kind { return KindScan }

// Find reads at most one row per distinct key, via a unique index
// lookup (spec §4.5: "find if every key column has an equality bound
// and the chosen index is unique").
type Find struct {
	base
	Source  *storage.Index
	Columns []Column
	Keys    []Key
}

// NewFind constructs a unique-index point lookup.
func NewFind(index *storage.Index, columns []Column, keys []Key) *Find {
	f := &Find{Source: index, Columns: columns, Keys: keys}
	f.base = newBase(f, 0)
	return f
}

func (f *Find) OperatorKind() Kind { return KindFind }
