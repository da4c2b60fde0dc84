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

// Package rangehint implements the range hint entry and range hint
// map described in spec §3 and §4.4: per-variable lower/upper bound
// pairs used by disjunction widening and, downstream, by the scan/join
// rewriters to build index key ranges.
package rangehint

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yugawara-go/yugawara/descriptor"
)

// Value is either an immediate constant or a reference to another
// variable (spec §3: "value = immediate(constant) | variable(ref)").
type Value struct {
	isVariable bool
	immediate  any
	variable   descriptor.Variable
}

// Immediate constructs a constant endpoint value.
func Immediate(v any) Value { return Value{immediate: v} }

// VariableRef constructs a variable endpoint value.
func VariableRef(v descriptor.Variable) Value { return Value{isVariable: true, variable: v} }

func (v Value) IsVariable() bool             { return v.isVariable }
func (v Value) Immediate() any                { return v.immediate }
func (v Value) Variable() descriptor.Variable { return v.variable }

// sameIdentity reports whether two variable Values refer to the same
// descriptor; used by Intersect/Union to decide whether two variable
// endpoints agree or conflict.
func (v Value) sameIdentity(other Value) bool {
	return v.isVariable && other.isVariable && v.variable == other.variable
}

func (v Value) String() string {
	if v.isVariable {
		return v.variable.String()
	}
	return fmt.Sprintf("%v", v.immediate)
}

// Compare orders two immediate values, returning -1, 0, or 1. It
// supports the numeric kinds the analyzer folds constants into:
// int64, float64, and decimal.Decimal (used for DECIMAL literals,
// per SPEC_FULL §4.9), plus string for character comparisons.
func Compare(a, b any) int {
	switch av := a.(type) {
	case int64:
		switch bv := b.(type) {
		case int64:
			return cmpInt64(av, bv)
		case float64:
			return cmpFloat64(float64(av), bv)
		case decimal.Decimal:
			return decimal.NewFromInt(av).Cmp(bv)
		}
	case float64:
		switch bv := b.(type) {
		case float64:
			return cmpFloat64(av, bv)
		case int64:
			return cmpFloat64(av, float64(bv))
		case decimal.Decimal:
			df, _ := bv.Float64()
			return cmpFloat64(av, df)
		}
	case decimal.Decimal:
		switch bv := b.(type) {
		case decimal.Decimal:
			return av.Cmp(bv)
		case int64:
			return av.Cmp(decimal.NewFromInt(bv))
		case float64:
			return av.Cmp(decimal.NewFromFloat(bv))
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		}
	}
	panic(fmt.Sprintf("rangehint: cannot compare %T and %T", a, b))
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
