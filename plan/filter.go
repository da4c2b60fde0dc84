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

import "github.com/yugawara-go/yugawara/scalar"

// Filter retains only the rows for which Condition evaluates true.
// The expression analyzer requires Condition to resolve to boolean
// (spec §4.3: "filter requires boolean").
type Filter struct {
	base
	Condition scalar.Expression
}

// NewFilter constructs a filter consuming one input.
func NewFilter(condition scalar.Expression) *Filter {
	f := &Filter{Condition: condition}
	f.base = newBase(f, 1)
	return f
}

func (f *Filter) OperatorKind() Kind { return KindFilter }
