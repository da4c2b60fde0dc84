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

package storage

// Provider is the read-only storage/catalog contract the core
// consumes (spec §6). Implementations must be safe for concurrent
// readers; EachRelation/EachIndex must enumerate deterministically,
// alphabetically by simple name.
type Provider interface {
	FindRelation(name string) (*Table, bool)
	FindIndex(name string) (*Index, bool)
	FindPrimaryIndex(table *Table) (*Index, bool)
	EachRelation(fn func(*Table))
	EachIndex(fn func(*Index))
	FindSequence(name string) (*Sequence, bool)
}

// ConfigurableProvider extends Provider with mutation. Writers must be
// exclusive with respect to readers and other writers (spec §5); the
// core never holds a lock across a user callback.
type ConfigurableProvider interface {
	Provider

	// AddRelation stores table, returning the stored handle. Without
	// overwrite, adding a duplicate name is a fatal error (spec §6).
	AddRelation(table *Table, overwrite bool) *Table
	AddIndex(index *Index, overwrite bool)
	AddSequence(sequence *Sequence, overwrite bool)

	RemoveRelation(name string) bool
	RemoveIndex(name string) bool
	RemoveSequence(name string) bool
}
