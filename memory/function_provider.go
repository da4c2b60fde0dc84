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

package memory

import (
	"sync"

	"github.com/yugawara-go/yugawara/function"
)

// FunctionProvider is an in-memory function.Provider, storing
// declarations keyed by name as a multimap (spec §6: overloads
// resolved by parameter count).
type FunctionProvider struct {
	mu           sync.RWMutex
	declarations map[string][]function.Declaration
}

// NewFunctionProvider returns an empty FunctionProvider.
func NewFunctionProvider() *FunctionProvider {
	return &FunctionProvider{declarations: make(map[string][]function.Declaration)}
}

// Register adds decl as an overload of its own Name. Registering the
// same (name, parameter count) twice is a caller bug: Resolve would
// become ambiguous, so Register panics rather than silently shadowing
// the earlier overload.
func (p *FunctionProvider) Register(decl function.Declaration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.declarations[decl.Name] {
		if len(existing.ParameterTypes) == len(decl.ParameterTypes) {
			panic("memory: function " + decl.Name + " already has an overload with this parameter count")
		}
	}
	p.declarations[decl.Name] = append(p.declarations[decl.Name], decl)
}

// Find implements function.Provider.
func (p *FunctionProvider) Find(name string) []function.Declaration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	decls := p.declarations[name]
	out := make([]function.Declaration, len(decls))
	copy(out, decls)
	return out
}

// Resolve implements function.Provider.
func (p *FunctionProvider) Resolve(name string, parameterCount int) (function.Declaration, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, decl := range p.declarations[name] {
		if len(decl.ParameterTypes) == parameterCount {
			return decl, true
		}
	}
	return function.Declaration{}, false
}

var _ function.Provider = (*FunctionProvider)(nil)
