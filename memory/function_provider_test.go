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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugawara-go/yugawara/function"
	"github.com/yugawara-go/yugawara/types"
)

func TestFunctionProviderResolveByParameterCount(t *testing.T) {
	p := NewFunctionProvider()
	p.Register(function.Declaration{Name: "sum", ReturnType: types.Int4(), ParameterTypes: []*types.Type{types.Int4()}})
	p.Register(function.Declaration{Name: "sum", ReturnType: types.Int8(), ParameterTypes: []*types.Type{types.Int8(), types.Int8()}})

	one, ok := p.Resolve("sum", 1)
	require.True(t, ok)
	assert.Equal(t, types.Int4(), one.ReturnType)

	two, ok := p.Resolve("sum", 2)
	require.True(t, ok)
	assert.Equal(t, types.Int8(), two.ReturnType)

	_, ok = p.Resolve("sum", 3)
	assert.False(t, ok)
}

func TestFunctionProviderFindReturnsAllOverloads(t *testing.T) {
	p := NewFunctionProvider()
	p.Register(function.Declaration{Name: "concat", ParameterTypes: []*types.Type{types.Character(false, nil)}})
	p.Register(function.Declaration{Name: "concat", ParameterTypes: []*types.Type{types.Character(false, nil), types.Character(false, nil)}})

	assert.Len(t, p.Find("concat"), 2)
	assert.Empty(t, p.Find("missing"))
}

func TestFunctionProviderRegisterDuplicateArityPanics(t *testing.T) {
	p := NewFunctionProvider()
	p.Register(function.Declaration{Name: "now", ParameterTypes: nil})

	assert.Panics(t, func() {
		p.Register(function.Declaration{Name: "now", ParameterTypes: nil})
	})
}

func TestDistinctNameSuffix(t *testing.T) {
	assert.Equal(t, "count#distinct", function.DistinctName("count"))
}
