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

import "github.com/yugawara-go/yugawara/descriptor"

// Map collects one Hint per variable, built up incrementally as the
// predicate toolkit decomposes a disjunction of comparisons (spec
// §4.4). The zero value is an empty map ready to use.
type Map struct {
	entries map[descriptor.Variable]Hint
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{entries: make(map[descriptor.Variable]Hint)}
}

// Get returns the Hint recorded for v, or the empty Hint if none.
func (m *Map) Get(v descriptor.Variable) Hint {
	if m.entries == nil {
		return Hint{}
	}
	return m.entries[v]
}

// Set overwrites the Hint recorded for v.
func (m *Map) Set(v descriptor.Variable, h Hint) {
	if m.entries == nil {
		m.entries = make(map[descriptor.Variable]Hint)
	}
	m.entries[v] = h
}

// IntersectLower tightens the lower bound recorded for v.
func (m *Map) IntersectLower(v descriptor.Variable, value Value, inclusive bool) {
	m.Set(v, m.Get(v).IntersectLower(value, inclusive))
}

// IntersectUpper tightens the upper bound recorded for v.
func (m *Map) IntersectUpper(v descriptor.Variable, value Value, inclusive bool) {
	m.Set(v, m.Get(v).IntersectUpper(value, inclusive))
}

// UnionLower widens the lower bound recorded for v.
func (m *Map) UnionLower(v descriptor.Variable, value Value, inclusive bool) {
	m.Set(v, m.Get(v).UnionLower(value, inclusive))
}

// UnionUpper widens the upper bound recorded for v.
func (m *Map) UnionUpper(v descriptor.Variable, value Value, inclusive bool) {
	m.Set(v, m.Get(v).UnionUpper(value, inclusive))
}

// Intersect merges other into m in place, intersecting every entry
// other carries. A variable present only in other is copied as-is,
// since m's implicit bound for it is Infinity (the intersect
// identity).
func (m *Map) Intersect(other *Map) {
	for v, h := range other.entries {
		cur := m.Get(v)
		cur.Lower = intersectBound(cur.Lower, h.Lower, true)
		cur.Upper = intersectBound(cur.Upper, h.Upper, false)
		m.Set(v, cur)
	}
}

// Union merges other into m in place, unioning every entry. A
// variable present in only one of the two maps widens to Infinity,
// since the missing side is implicitly unconstrained (the union
// identity is NOT Infinity's intersect identity here: a variable
// absent from other never appeared in that branch of the disjunction,
// so no claim can be made about it there).
func (m *Map) Union(other *Map) {
	seen := make(map[descriptor.Variable]bool, len(m.entries)+len(other.entries))
	for v := range m.entries {
		seen[v] = true
	}
	for v := range other.entries {
		seen[v] = true
	}
	for v := range seen {
		a, aok := m.entries[v]
		b, bok := other.entries[v]
		var h Hint
		switch {
		case aok && bok:
			h.Lower = unionBound(a.Lower, b.Lower, true)
			h.Upper = unionBound(a.Upper, b.Upper, false)
		default:
			h = Hint{Lower: Infinity(), Upper: Infinity()}
		}
		m.Set(v, h)
	}
}

// Each calls fn once per recorded variable.
func (m *Map) Each(fn func(descriptor.Variable, Hint)) {
	for v, h := range m.entries {
		fn(v, h)
	}
}

// Len reports the number of variables with a recorded Hint.
func (m *Map) Len() int { return len(m.entries) }
