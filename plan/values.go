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
)

// Values is a leaf operator producing a fixed set of literal rows.
// Every row must contain exactly len(Columns) elements; the analyzer
// rejects a mismatch with `inconsistent_elements` (spec §4.3). Each
// column's final type is the unifying conversion of that column's
// values across all rows.
type Values struct {
	base
	Columns []descriptor.Variable
	Rows    [][]scalar.Expression
}

// NewValues constructs a values operator with no inputs.
func NewValues(columns []descriptor.Variable, rows [][]scalar.Expression) *Values {
	v := &Values{Columns: columns, Rows: rows}
	v.base = newBase(v, 0)
	return v
}

func (v *Values) OperatorKind() Kind { return KindValues }
