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

package rangehint

// BoundKind classifies one side of a Hint.
type BoundKind int

const (
	BoundInfinity BoundKind = iota
	BoundInclusive
	BoundExclusive
)

// Endpoint is one side (lower or upper) of a Hint.
type Endpoint struct {
	Kind  BoundKind
	Value Value
}

// Infinity is the unconstrained endpoint.
func Infinity() Endpoint { return Endpoint{Kind: BoundInfinity} }

func bound(kind BoundKind, v Value) Endpoint { return Endpoint{Kind: kind, Value: v} }

func boundOf(v Value, inclusive bool) Endpoint {
	if inclusive {
		return bound(BoundInclusive, v)
	}
	return bound(BoundExclusive, v)
}

func (e Endpoint) isVariable() bool { return e.Kind != BoundInfinity && e.Value.isVariable }
func (e Endpoint) isImmediate() bool {
	return e.Kind != BoundInfinity && !e.Value.isVariable
}

// Hint is a range hint entry: a lower/upper bound pair over a single
// variable (spec §3).
type Hint struct {
	Lower Endpoint
	Upper Endpoint
}

// Empty reports whether neither side of h carries a constraint.
func (h Hint) Empty() bool {
	return h.Lower.Kind == BoundInfinity && h.Upper.Kind == BoundInfinity
}

// IntersectLower tightens h's lower bound with (value, inclusive),
// per spec §4.4: for immediates it takes the max (stricter
// inclusiveness wins on a tie); for variables it keeps the first
// variable seen, ignoring a conflicting or immediate incoming bound;
// an immediate lower bound is entirely replaced by an incoming
// variable bound.
func (h Hint) IntersectLower(value Value, inclusive bool) Hint {
	h.Lower = intersectBound(h.Lower, boundOf(value, inclusive), true)
	return h
}

// IntersectUpper is the symmetric counterpart of IntersectLower,
// taking the min of immediates.
func (h Hint) IntersectUpper(value Value, inclusive bool) Hint {
	h.Upper = intersectBound(h.Upper, boundOf(value, inclusive), false)
	return h
}

// UnionLower widens h's lower bound with (value, inclusive): for
// immediates it takes the min (looser inclusiveness wins on a tie);
// identity mismatch between variables, or between a variable and an
// immediate, widens the bound to Infinity.
func (h Hint) UnionLower(value Value, inclusive bool) Hint {
	h.Lower = unionBound(h.Lower, boundOf(value, inclusive), true)
	return h
}

// UnionUpper is the symmetric counterpart of UnionLower, taking the
// max of immediates.
func (h Hint) UnionUpper(value Value, inclusive bool) Hint {
	h.Upper = unionBound(h.Upper, boundOf(value, inclusive), false)
	return h
}

// Union widens h to cover both h and other: used to fold a
// disjunction's per-branch bounds into one covering hint (spec §4.4).
// Unlike UnionLower/UnionUpper, which accept a single incoming value,
// Union accepts another full Hint, so an Infinity side on either
// operand propagates correctly without needing a sentinel value.
func (h Hint) Union(other Hint) Hint {
	h.Lower = unionBound(h.Lower, other.Lower, true)
	h.Upper = unionBound(h.Upper, other.Upper, false)
	return h
}

func intersectBound(current, incoming Endpoint, lower bool) Endpoint {
	if current.Kind == BoundInfinity {
		return incoming
	}
	if incoming.Kind == BoundInfinity {
		return current
	}
	if current.isVariable() {
		if incoming.isVariable() && current.Value.sameIdentity(incoming.Value) {
			return stricterBound(current, incoming)
		}
		return current
	}
	if incoming.isVariable() {
		return incoming
	}
	cmp := Compare(current.Value.immediate, incoming.Value.immediate)
	want := cmp
	if !lower {
		want = -cmp
	}
	switch {
	case want > 0:
		return current
	case want < 0:
		return incoming
	default:
		return stricterBound(current, incoming)
	}
}

func unionBound(current, incoming Endpoint, lower bool) Endpoint {
	if current.Kind == BoundInfinity || incoming.Kind == BoundInfinity {
		return Infinity()
	}
	if current.isVariable() {
		if incoming.isVariable() && current.Value.sameIdentity(incoming.Value) {
			return looserBound(current, incoming)
		}
		return Infinity()
	}
	if incoming.isVariable() {
		return Infinity()
	}
	cmp := Compare(current.Value.immediate, incoming.Value.immediate)
	want := cmp
	if lower {
		want = -cmp
	}
	switch {
	case want > 0:
		return current
	case want < 0:
		return incoming
	default:
		return looserBound(current, incoming)
	}
}

// stricterBound picks the Exclusive side of two equal-valued bounds
// (intersect narrows: exclusive is tighter than inclusive).
func stricterBound(a, b Endpoint) Endpoint {
	if a.Kind == BoundExclusive || b.Kind == BoundExclusive {
		return bound(BoundExclusive, a.Value)
	}
	return a
}

// looserBound picks the Inclusive side of two equal-valued bounds
// (union widens: inclusive is looser than exclusive).
func looserBound(a, b Endpoint) Endpoint {
	if a.Kind == BoundInclusive || b.Kind == BoundInclusive {
		return bound(BoundInclusive, a.Value)
	}
	return a
}
