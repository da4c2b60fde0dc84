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

// Convertible is a three-valued assignability/castability verdict.
type Convertible int

const (
	No Convertible = iota
	Yes
	MaybeUnknown
)

func (c Convertible) String() string {
	switch c {
	case Yes:
		return "yes"
	case MaybeUnknown:
		return "unknown"
	default:
		return "no"
	}
}

// IsAssignmentConvertible reports whether a value of type from may be
// assigned to a destination of type to, per the exhaustive table in
// spec §4.1. Either side being a stop type yields MaybeUnknown.
func IsAssignmentConvertible(from, to *Type) Convertible {
	if from.IsStop() || to.IsStop() {
		return MaybeUnknown
	}
	if from.kind == KindUnknown {
		return Yes
	}
	switch from.Category() {
	case CategoryNumber:
		if to.Category() == CategoryNumber {
			return Yes
		}
	case CategoryBoolean:
		if to.kind == KindBoolean {
			return Yes
		}
	case CategoryCharacterString:
		if to.kind == KindCharacter {
			return Yes
		}
	case CategoryOctetString:
		if to.kind == KindOctet {
			return Yes
		}
	case CategoryTemporal:
		return temporalAssignable(from, to)
	case CategoryTimeInterval:
		if to.kind == KindTimeInterval {
			return Yes
		}
	case CategoryCollection:
		if to.kind == KindArray && from.element.Equal(to.element) {
			return Yes
		}
	case CategoryStructure:
		if to.kind == KindRecord && from.Equal(to) {
			return Yes
		}
	case CategoryUnique:
		if to.kind == KindDeclared && from.declaredID == to.declaredID {
			return Yes
		}
	case CategoryExternal:
		if to.kind == KindExtension && from.tag == to.tag {
			return Yes
		}
	}
	return No
}

func temporalAssignable(from, to *Type) Convertible {
	switch from.kind {
	case KindDate:
		if to.kind == KindDate || to.kind == KindTimePoint {
			return Yes
		}
	case KindTimeOfDay:
		if to.kind == KindTimeOfDay && from.hasTZ == to.hasTZ && from.tz == to.tz {
			return Yes
		}
		if to.kind == KindTimePoint && from.hasTZ == to.hasTZ && from.tz == to.tz {
			return Yes
		}
	case KindTimePoint:
		if to.kind == KindDate {
			return Yes
		}
		if (to.kind == KindTimeOfDay || to.kind == KindTimePoint) && from.hasTZ == to.hasTZ && from.tz == to.tz {
			return Yes
		}
	}
	return No
}

// IsCastConvertible extends IsAssignmentConvertible: any type may be
// cast to or from character, per spec §4.1.
func IsCastConvertible(from, to *Type) Convertible {
	if from.IsStop() || to.IsStop() {
		return MaybeUnknown
	}
	if from.kind == KindCharacter || to.kind == KindCharacter {
		return Yes
	}
	return IsAssignmentConvertible(from, to)
}
