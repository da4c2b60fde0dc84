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

// Package memory implements in-memory storage.ConfigurableProvider and
// function.Provider backends (spec §6), grounded on the teacher's
// memory package: pointer-receiver methods throughout (confirmed by
// provider_test.go's reflection check) and a sync.RWMutex reader/writer
// split (spec §5: "readers may call lookup concurrently; writers are
// exclusive").
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/yugawara-go/yugawara/storage"
)

// Provider is an in-memory storage.ConfigurableProvider. A Provider
// may chain to a Parent: lookups fall through to the parent when a
// name is missing locally, adds are always local, and a local add
// with the same name as a parent entry hides rather than mutates the
// parent's entry (spec §6: "optional parent provider").
type Provider struct {
	mu        sync.RWMutex
	Parent    storage.Provider
	relations map[string]*storage.Table
	indexes   map[string]*storage.Index
	sequences map[string]*storage.Sequence
}

// NewProvider returns an empty Provider with no parent.
func NewProvider() *Provider {
	return &Provider{
		relations: make(map[string]*storage.Table),
		indexes:   make(map[string]*storage.Index),
		sequences: make(map[string]*storage.Sequence),
	}
}

// NewChildProvider returns an empty Provider whose lookups fall
// through to parent when missing locally.
func NewChildProvider(parent storage.Provider) *Provider {
	p := NewProvider()
	p.Parent = parent
	return p
}

// FindRelation implements storage.Provider.
func (p *Provider) FindRelation(name string) (*storage.Table, bool) {
	p.mu.RLock()
	t, ok := p.relations[name]
	p.mu.RUnlock()
	if ok {
		return t, true
	}
	if p.Parent != nil {
		return p.Parent.FindRelation(name)
	}
	return nil, false
}

// FindIndex implements storage.Provider.
func (p *Provider) FindIndex(name string) (*storage.Index, bool) {
	p.mu.RLock()
	idx, ok := p.indexes[name]
	p.mu.RUnlock()
	if ok {
		return idx, true
	}
	if p.Parent != nil {
		return p.Parent.FindIndex(name)
	}
	return nil, false
}

// FindPrimaryIndex implements storage.Provider.
func (p *Provider) FindPrimaryIndex(table *storage.Table) (*storage.Index, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, idx := range p.indexes {
		if idx.Table == table && idx.Primary {
			return idx, true
		}
	}
	if p.Parent != nil {
		return p.Parent.FindPrimaryIndex(table)
	}
	return nil, false
}

// FindSequence implements storage.Provider.
func (p *Provider) FindSequence(name string) (*storage.Sequence, bool) {
	p.mu.RLock()
	s, ok := p.sequences[name]
	p.mu.RUnlock()
	if ok {
		return s, true
	}
	if p.Parent != nil {
		return p.Parent.FindSequence(name)
	}
	return nil, false
}

// EachRelation implements storage.Provider, enumerating local entries
// alphabetically; it does not recurse into Parent, matching "adds are
// always local" — a parent's relations are its own provider's concern.
func (p *Provider) EachRelation(fn func(*storage.Table)) {
	p.mu.RLock()
	names := make([]string, 0, len(p.relations))
	for name := range p.relations {
		names = append(names, name)
	}
	sort.Strings(names)
	tables := make([]*storage.Table, len(names))
	for i, name := range names {
		tables[i] = p.relations[name]
	}
	p.mu.RUnlock()
	for _, t := range tables {
		fn(t)
	}
}

// EachIndex implements storage.Provider, enumerating local entries
// alphabetically.
func (p *Provider) EachIndex(fn func(*storage.Index)) {
	p.mu.RLock()
	names := make([]string, 0, len(p.indexes))
	for name := range p.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	indexes := make([]*storage.Index, len(names))
	for i, name := range names {
		indexes[i] = p.indexes[name]
	}
	p.mu.RUnlock()
	for _, idx := range indexes {
		fn(idx)
	}
}

// AddRelation implements storage.ConfigurableProvider. Without
// overwrite, adding a duplicate name panics (spec §6: "a duplicate
// name is a fatal error surfaced to the caller").
func (p *Provider) AddRelation(table *storage.Table, overwrite bool) *storage.Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.relations[table.Name]; exists && !overwrite {
		panic(fmt.Sprintf("memory: relation %q is already registered", table.Name))
	}
	p.relations[table.Name] = table
	return table
}

// AddIndex implements storage.ConfigurableProvider.
func (p *Provider) AddIndex(index *storage.Index, overwrite bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.indexes[index.Name]; exists && !overwrite {
		panic(fmt.Sprintf("memory: index %q is already registered", index.Name))
	}
	p.indexes[index.Name] = index
}

// AddSequence implements storage.ConfigurableProvider.
func (p *Provider) AddSequence(sequence *storage.Sequence, overwrite bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.sequences[sequence.Name]; exists && !overwrite {
		panic(fmt.Sprintf("memory: sequence %q is already registered", sequence.Name))
	}
	p.sequences[sequence.Name] = sequence
}

// RemoveRelation implements storage.ConfigurableProvider. It only ever
// removes a local entry; it cannot reach into Parent.
func (p *Provider) RemoveRelation(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.relations[name]; !ok {
		return false
	}
	delete(p.relations, name)
	return true
}

// RemoveIndex implements storage.ConfigurableProvider.
func (p *Provider) RemoveIndex(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.indexes[name]; !ok {
		return false
	}
	delete(p.indexes, name)
	return true
}

// RemoveSequence implements storage.ConfigurableProvider.
func (p *Provider) RemoveSequence(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sequences[name]; !ok {
		return false
	}
	delete(p.sequences, name)
	return true
}

var (
	_ storage.Provider             = (*Provider)(nil)
	_ storage.ConfigurableProvider = (*Provider)(nil)
)
