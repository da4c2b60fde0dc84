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
	"github.com/yugawara-go/yugawara/storage"
)

// WriteKind is the closed set of write statement operations.
type WriteKind int

const (
	WriteInsert WriteKind = iota
	WriteUpdate
	WriteDelete
	WriteInsertOrUpdate
)

// WriteColumn binds one target table column to the source stream
// variable whose value is written into it; the source's type must be
// assignable to the target (spec §4.3: "write target columns must be
// assignable from sources").
type WriteColumn struct {
	Target descriptor.Variable
	Source descriptor.Variable
}

// Write applies Kind to Destination, sourcing one row per input row.
type Write struct {
	base
	Kind        WriteKind
	Destination *storage.Table
	Columns     []WriteColumn
}

// NewWrite constructs a write consuming one input.
func NewWrite(kind WriteKind, destination *storage.Table, columns []WriteColumn) *Write {
	w := &Write{Kind: kind, Destination: destination, Columns: columns}
	w.base = newBase(w, 1)
	return w
}

func (w *Write) OperatorKind() Kind { return KindWrite }
