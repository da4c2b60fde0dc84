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

package types

// UnaryPromote computes the unary promotion of t per category,
// following spec §4.1. Stop types propagate to Pending.
func UnaryPromote(t *Type) *Type {
	if t.IsStop() {
		return Pending()
	}
	switch t.Category() {
	case CategoryBoolean:
		return unaryBoolean(t)
	case CategoryNumber:
		return unaryNumber(t)
	case CategoryCharacterString:
		return unaryVarying(KindCharacter, t)
	case CategoryOctetString:
		return unaryVarying(KindOctet, t)
	case CategoryBitString:
		return unaryVarying(KindBit, t)
	case CategoryTemporal:
		return unaryTemporal(t)
	case CategoryTimeInterval:
		return unaryTimeInterval(t)
	default:
		return Error()
	}
}

func unaryBoolean(t *Type) *Type {
	switch t.kind {
	case KindBoolean:
		return Boolean()
	case KindUnknown:
		return Boolean()
	default:
		return Error()
	}
}

// decimalPrecisionForInt returns the canonical decimal precision used
// to represent an integer kind exactly, per the original conversion
// table: int1/2/4/8 -> 3/5/10/19.
func decimalPrecisionForInt(k Kind) (int, bool) {
	switch k {
	case KindInt1:
		return 3, true
	case KindInt2:
		return 5, true
	case KindInt4:
		return 10, true
	case KindInt8:
		return 19, true
	default:
		return 0, false
	}
}

func unaryNumber(t *Type) *Type {
	switch t.kind {
	case KindInt1, KindInt2, KindInt4, KindUnknown:
		return Int4()
	case KindInt8, KindFloat4, KindFloat8, KindDecimal:
		return t
	default:
		return Error()
	}
}

// unaryDecimalPromotion widens an integer/unknown to its canonical
// decimal representation; decimals pass through unchanged.
func unaryDecimalPromotion(t *Type) *Type {
	if t.IsStop() {
		return Pending()
	}
	if t.kind == KindUnknown {
		return Decimal(intPtr(3), nil)
	}
	if p, ok := decimalPrecisionForInt(t.kind); ok {
		return Decimal(intPtr(p), nil)
	}
	if t.kind == KindDecimal {
		return t
	}
	return Error()
}

func unaryVarying(kind Kind, t *Type) *Type {
	switch t.kind {
	case kind:
		return &Type{kind: kind, varying: true, length: t.length}
	case KindUnknown:
		return &Type{kind: kind, varying: true, length: intPtr(0)}
	default:
		return Error()
	}
}

func unaryTemporal(t *Type) *Type {
	switch t.kind {
	case KindDate, KindTimeOfDay, KindTimePoint:
		return t
	case KindUnknown:
		return TimePoint(false, "")
	default:
		return Error()
	}
}

func unaryTimeInterval(t *Type) *Type {
	switch t.kind {
	case KindTimeInterval:
		return t
	case KindUnknown:
		return TimeInterval()
	default:
		return Error()
	}
}

// BinaryPromote computes the binary promotion of a and b per spec
// §4.1's pairwise tables.
func BinaryPromote(a, b *Type) *Type {
	if a.IsStop() || b.IsStop() {
		return Pending()
	}
	if a.kind == KindUnknown && b.kind == KindUnknown {
		return UnaryPromote(Unknown())
	}
	if a.kind == KindUnknown {
		return UnaryPromote(b)
	}
	if b.kind == KindUnknown {
		return UnaryPromote(a)
	}
	if a.Category() != b.Category() {
		return Error()
	}
	switch a.Category() {
	case CategoryBoolean:
		return binaryBoolean(a, b)
	case CategoryNumber:
		return binaryNumber(a, b)
	case CategoryCharacterString:
		return binaryVarying(KindCharacter, a, b)
	case CategoryOctetString:
		return binaryVarying(KindOctet, a, b)
	case CategoryBitString:
		return binaryVarying(KindBit, a, b)
	case CategoryTemporal:
		return binaryTemporal(a, b)
	case CategoryTimeInterval:
		return unaryTimeInterval(a)
	default:
		return Error()
	}
}

func binaryBoolean(a, b *Type) *Type {
	if a.kind == KindBoolean && b.kind == KindBoolean {
		return Boolean()
	}
	return Error()
}

// numericRank orders the integer kinds by width, used to pick the
// widest of two integers.
func numericRank(k Kind) int {
	switch k {
	case KindInt1:
		return 1
	case KindInt2:
		return 2
	case KindInt4:
		return 3
	case KindInt8:
		return 4
	default:
		return 0
	}
}

func isInteger(k Kind) bool {
	return k == KindInt1 || k == KindInt2 || k == KindInt4 || k == KindInt8
}

func binaryNumber(a, b *Type) *Type {
	switch {
	case isInteger(a.kind) && isInteger(b.kind):
		if numericRank(a.kind) >= numericRank(b.kind) {
			return widenInt(a.kind)
		}
		return widenInt(b.kind)
	case isInteger(a.kind) && b.kind == KindDecimal:
		return decimalForIntPair(a.kind)
	case a.kind == KindDecimal && isInteger(b.kind):
		return decimalForIntPair(b.kind)
	case a.kind == KindDecimal && b.kind == KindDecimal:
		return a
	case isInteger(a.kind) && b.kind == KindFloat4:
		return floatForSmallInt(a.kind)
	case a.kind == KindFloat4 && isInteger(b.kind):
		return floatForSmallInt(b.kind)
	case isInteger(a.kind) && b.kind == KindFloat8:
		return Float8()
	case a.kind == KindFloat8 && isInteger(b.kind):
		return Float8()
	case a.kind == KindDecimal && (b.kind == KindFloat4 || b.kind == KindFloat8):
		return Float8()
	case (a.kind == KindFloat4 || a.kind == KindFloat8) && b.kind == KindDecimal:
		return Float8()
	case a.kind == KindFloat4 && b.kind == KindFloat4:
		return Float8()
	case a.kind == KindFloat4 && b.kind == KindFloat8:
		return Float8()
	case a.kind == KindFloat8 && b.kind == KindFloat4:
		return Float8()
	case a.kind == KindFloat8 && b.kind == KindFloat8:
		return Float8()
	default:
		return Error()
	}
}

// widenInt returns int4 if k is narrower than 32 bits, else k itself.
func widenInt(k Kind) *Type {
	if k == KindInt8 {
		return Int8()
	}
	return Int4()
}

func decimalForIntPair(intKind Kind) *Type {
	p, _ := decimalPrecisionForInt(intKind)
	return Decimal(intPtr(p), nil)
}

// floatForSmallInt implements "float4 x int1/int2 -> float4, else
// float8" from spec §4.1.
func floatForSmallInt(intKind Kind) *Type {
	if intKind == KindInt1 || intKind == KindInt2 {
		return Float4()
	}
	return Float8()
}

func maxLength(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	if *a >= *b {
		return a
	}
	return b
}

func binaryVarying(kind Kind, a, b *Type) *Type {
	if a.kind != kind || b.kind != kind {
		return Error()
	}
	return &Type{kind: kind, varying: true, length: maxLength(a.length, b.length)}
}

// promoteTimeZone implements "equal zones preserved; disagreement
// promotes to UTC; absence is filled from the present side".
func promoteTimeZone(a, b *Type) (bool, string) {
	aHas, aTZ := a.hasTZ, a.tz
	bHas, bTZ := b.hasTZ, b.tz
	if aHas == bHas && aTZ == bTZ {
		return aHas, aTZ
	}
	if !aHas {
		return bHas, bTZ
	}
	if !bHas {
		return aHas, aTZ
	}
	return true, "UTC"
}

func binaryTemporal(a, b *Type) *Type {
	switch {
	case a.kind == KindDate && b.kind == KindDate:
		return Date()
	case a.kind == KindDate && b.kind == KindTimeOfDay:
		return TimePoint(b.hasTZ, b.tz)
	case a.kind == KindDate && b.kind == KindTimePoint:
		return b
	case a.kind == KindTimeOfDay && b.kind == KindDate:
		return TimePoint(a.hasTZ, a.tz)
	case a.kind == KindTimeOfDay && b.kind == KindTimeOfDay:
		hasTZ, tz := promoteTimeZone(a, b)
		return TimeOfDay(hasTZ, tz)
	case a.kind == KindTimeOfDay && b.kind == KindTimePoint:
		hasTZ, tz := promoteTimeZone(a, b)
		return TimePoint(hasTZ, tz)
	case a.kind == KindTimePoint && b.kind == KindDate:
		return a
	case a.kind == KindTimePoint && (b.kind == KindTimeOfDay || b.kind == KindTimePoint):
		hasTZ, tz := promoteTimeZone(a, b)
		return TimePoint(hasTZ, tz)
	default:
		return Error()
	}
}

// Unify computes the unifying conversion of a sequence of types,
// folding left. Per spec §4.1: a single type unifies to its unary
// promotion; a pair unifies to binary promotion with the special
// cases for unresolved/unknown/external handled here. If any
// intermediate result is a stop type, Unify returns it immediately.
func Unify(ts ...*Type) *Type {
	if len(ts) == 0 {
		return Unknown()
	}
	acc := UnaryPromote(ts[0])
	if len(ts) == 1 {
		return acc
	}
	for _, t := range ts[1:] {
		acc = unifyPair(acc, t)
		if acc.IsStop() {
			return acc
		}
	}
	return acc
}

func unifyPair(a, b *Type) *Type {
	if a.IsStop() || b.IsStop() {
		return Pending()
	}
	if a.kind == KindUnknown {
		return UnaryPromote(b)
	}
	if b.kind == KindUnknown {
		return UnaryPromote(a)
	}
	if a.kind == KindExtension && b.kind == KindExtension {
		if a.Equal(b) {
			return a
		}
		return Error()
	}
	if a.Category() != b.Category() {
		return Error()
	}
	return BinaryPromote(a, b)
}
