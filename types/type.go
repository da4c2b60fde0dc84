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

import "fmt"

// ExtensionTag names a reserved or user-defined extension type. The
// tags Error and Pending are reserved stop types (see IsStop).
type ExtensionTag string

const (
	ExtensionError   ExtensionTag = "error"
	ExtensionPending ExtensionTag = "pending"
)

// Type is an immutable scalar type value. Types are interned by a
// Repository so that structurally equal types share storage; equality
// is always structural (Equal), never pointer identity.
type Type struct {
	kind Kind

	// decimal
	precision *int
	scale     *int

	// character / octet / bit
	varying bool
	length  *int

	// temporal
	hasTZ bool
	tz    string

	// array
	element *Type

	// record
	fields []Field

	// declared
	declaredID string

	// extension
	tag ExtensionTag
}

// Field is a named, typed member of a record type.
type Field struct {
	Name string
	Type *Type
}

// Kind reports the type's variant.
func (t *Type) Kind() Kind { return t.kind }

// Category classifies the type per the lattice in spec §4.1.
func (t *Type) Category() Category { return t.kind.Category() }

// IsStop reports whether t is one of the two reserved stop types,
// Error or Pending, which short-circuit every conversion.
func (t *Type) IsStop() bool {
	return t.kind == KindExtension && (t.tag == ExtensionError || t.tag == ExtensionPending)
}

// IsError reports whether t is the reserved Error extension.
func (t *Type) IsError() bool { return t.kind == KindExtension && t.tag == ExtensionError }

// IsPending reports whether t is the reserved Pending extension.
func (t *Type) IsPending() bool { return t.kind == KindExtension && t.tag == ExtensionPending }

// Precision returns the declared precision of a decimal type, if any.
func (t *Type) Precision() *int { return t.precision }

// Scale returns the declared scale of a decimal type, if any.
func (t *Type) Scale() *int { return t.scale }

// Varying reports whether a character/octet/bit type has variable length.
func (t *Type) Varying() bool { return t.varying }

// Length returns the declared length of a character/octet/bit type, if any.
func (t *Type) Length() *int { return t.length }

// TimeZone returns the declared time zone of a time_of_day/time_point
// type. The second result reports whether a zone is present at all.
func (t *Type) TimeZone() (string, bool) { return t.tz, t.hasTZ }

// Element returns the element type of an array type.
func (t *Type) Element() *Type { return t.element }

// Fields returns the member fields of a record type.
func (t *Type) Fields() []Field { return t.fields }

// DeclaredID returns the catalog identity of a declared (user-defined
// nominal) type.
func (t *Type) DeclaredID() string { return t.declaredID }

// ExtensionTag returns the tag of an extension type.
func (t *Type) ExtensionTag() ExtensionTag { return t.tag }

// Equal reports whether t and other are structurally identical.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case KindDecimal:
		return intPtrEqual(t.precision, other.precision) && intPtrEqual(t.scale, other.scale)
	case KindCharacter, KindOctet, KindBit:
		return t.varying == other.varying && intPtrEqual(t.length, other.length)
	case KindTimeOfDay, KindTimePoint:
		return t.hasTZ == other.hasTZ && (!t.hasTZ || t.tz == other.tz)
	case KindArray:
		return t.element.Equal(other.element)
	case KindRecord:
		if len(t.fields) != len(other.fields) {
			return false
		}
		for i, f := range t.fields {
			g := other.fields[i]
			if f.Name != g.Name || !f.Type.Equal(g.Type) {
				return false
			}
		}
		return true
	case KindDeclared:
		return t.declaredID == other.declaredID
	case KindExtension:
		return t.tag == other.tag
	default:
		return true
	}
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (t *Type) String() string {
	switch t.kind {
	case KindBoolean:
		return "boolean"
	case KindInt1:
		return "int1"
	case KindInt2:
		return "int2"
	case KindInt4:
		return "int4"
	case KindInt8:
		return "int8"
	case KindDecimal:
		p, s := "*", "*"
		if t.precision != nil {
			p = fmt.Sprintf("%d", *t.precision)
		}
		if t.scale != nil {
			s = fmt.Sprintf("%d", *t.scale)
		}
		return fmt.Sprintf("decimal(%s,%s)", p, s)
	case KindFloat4:
		return "float4"
	case KindFloat8:
		return "float8"
	case KindCharacter:
		return varyingString("character", t.varying, t.length)
	case KindOctet:
		return varyingString("octet", t.varying, t.length)
	case KindBit:
		return varyingString("bit", t.varying, t.length)
	case KindDate:
		return "date"
	case KindTimeOfDay:
		return "time_of_day" + tzString(t.hasTZ, t.tz)
	case KindTimePoint:
		return "time_point" + tzString(t.hasTZ, t.tz)
	case KindTimeInterval:
		return "time_interval"
	case KindArray:
		return fmt.Sprintf("array(%s)", t.element)
	case KindRecord:
		return "record(...)"
	case KindDeclared:
		return fmt.Sprintf("declared(%s)", t.declaredID)
	case KindExtension:
		return fmt.Sprintf("extension(%s)", t.tag)
	default:
		return "unknown"
	}
}

func varyingString(name string, varying bool, length *int) string {
	suffix := ""
	if length != nil {
		suffix = fmt.Sprintf("(%d)", *length)
	}
	if varying {
		return name + " varying" + suffix
	}
	return name + suffix
}

func tzString(has bool, tz string) string {
	if !has {
		return ""
	}
	if tz == "" {
		return "(local)"
	}
	return "(" + tz + ")"
}

// Constructors. Callers typically obtain interned instances via a
// Repository rather than calling these directly.

func Boolean() *Type { return &Type{kind: KindBoolean} }
func Int1() *Type     { return &Type{kind: KindInt1} }
func Int2() *Type     { return &Type{kind: KindInt2} }
func Int4() *Type     { return &Type{kind: KindInt4} }
func Int8() *Type     { return &Type{kind: KindInt8} }

func Decimal(precision, scale *int) *Type {
	return &Type{kind: KindDecimal, precision: precision, scale: scale}
}

func Float4() *Type { return &Type{kind: KindFloat4} }
func Float8() *Type { return &Type{kind: KindFloat8} }

func Character(varying bool, length *int) *Type {
	return &Type{kind: KindCharacter, varying: varying, length: length}
}

func Octet(varying bool, length *int) *Type {
	return &Type{kind: KindOctet, varying: varying, length: length}
}

func Bit(varying bool, length *int) *Type {
	return &Type{kind: KindBit, varying: varying, length: length}
}

func Date() *Type { return &Type{kind: KindDate} }

func TimeOfDay(hasTZ bool, tz string) *Type {
	return &Type{kind: KindTimeOfDay, hasTZ: hasTZ, tz: tz}
}

func TimePoint(hasTZ bool, tz string) *Type {
	return &Type{kind: KindTimePoint, hasTZ: hasTZ, tz: tz}
}

func TimeInterval() *Type { return &Type{kind: KindTimeInterval} }

func Array(element *Type) *Type { return &Type{kind: KindArray, element: element} }

func Record(fields ...Field) *Type { return &Type{kind: KindRecord, fields: fields} }

func Declared(id string) *Type { return &Type{kind: KindDeclared, declaredID: id} }

func Extension(tag ExtensionTag) *Type { return &Type{kind: KindExtension, tag: tag} }

func Unknown() *Type { return &Type{kind: KindUnknown} }

// Error is the reserved stop type reported alongside a diagnostic.
func Error() *Type { return Extension(ExtensionError) }

// Pending is the reserved stop type propagated silently through
// downstream conversions once an error has already been reported.
func Pending() *Type { return Extension(ExtensionPending) }

func intPtr(v int) *int { return &v }
