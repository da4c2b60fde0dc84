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

// Package storage defines the catalog contracts the core consumes as
// an external collaborator (spec §6): tables, columns, indexes,
// sequences, and the read/configurable provider interfaces. The core
// never implements these against real storage; package memory
// supplies the in-process reference implementation used by tests and
// by callers with no external catalog of their own.
package storage

import "github.com/yugawara-go/yugawara/types"

// Column is a named, typed member of a Table.
type Column struct {
	Name string
	Type *types.Type
}

// Table is a catalog relation: a named, ordered set of columns.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnIndex returns the position of the column named name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Index is a secondary (or primary) access path over a Table's
// columns, used by the scan/join rewriters (spec §4.5).
type Index struct {
	Name    string
	Table   *Table
	Keys    []Column
	Primary bool
	Unique  bool
	// Ordered reports whether scanning the index yields keys in order;
	// callers needing ordered output (spec §6, index estimator inputs)
	// only consider ordered indexes viable for range scans with a
	// required output order.
	Ordered bool
}

// Sequence is a catalog-managed monotonic counter (e.g. backing an
// auto-increment column); the core only tracks its existence.
type Sequence struct {
	Name string
}
