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
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugawara-go/yugawara/storage"
)

func TestProviderHasPointerReceiver(t *testing.T) {
	provider := &Provider{}
	ref := reflect.ValueOf(provider).Elem().Type()

	for i := 0; i < ref.NumMethod(); i++ {
		method := ref.Method(i)
		if method.IsExported() {
			function := method.Func
			if function.Type().NumIn() > 0 {
				firstArg := function.Type().In(0)
				if firstArg.Kind() != reflect.Ptr {
					t.Errorf("method: Provider.%s doesn't have a pointer receiver", method.Name)
				}
			}
		}
	}
}

func TestProviderAddFindRelation(t *testing.T) {
	p := NewProvider()
	table := &storage.Table{Name: "t0"}

	p.AddRelation(table, false)

	found, ok := p.FindRelation("t0")
	require.True(t, ok)
	assert.Same(t, table, found)

	_, ok = p.FindRelation("missing")
	assert.False(t, ok)
}

func TestProviderAddRelationDuplicateWithoutOverwritePanics(t *testing.T) {
	p := NewProvider()
	p.AddRelation(&storage.Table{Name: "t0"}, false)

	assert.Panics(t, func() {
		p.AddRelation(&storage.Table{Name: "t0"}, false)
	})
}

func TestProviderAddRelationDuplicateWithOverwriteReplaces(t *testing.T) {
	p := NewProvider()
	p.AddRelation(&storage.Table{Name: "t0"}, false)
	replacement := &storage.Table{Name: "t0"}

	assert.NotPanics(t, func() {
		p.AddRelation(replacement, true)
	})

	found, _ := p.FindRelation("t0")
	assert.Same(t, replacement, found)
}

func TestProviderChildFallsThroughToParent(t *testing.T) {
	parent := NewProvider()
	parent.AddRelation(&storage.Table{Name: "t0"}, false)

	child := NewChildProvider(parent)
	_, ok := child.FindRelation("t0")
	require.True(t, ok)
}

func TestProviderChildLocalAddHidesParentWithoutMutatingIt(t *testing.T) {
	parent := NewProvider()
	parentTable := &storage.Table{Name: "t0"}
	parent.AddRelation(parentTable, false)

	child := NewChildProvider(parent)
	childTable := &storage.Table{Name: "t0"}
	child.AddRelation(childTable, true)

	found, _ := child.FindRelation("t0")
	assert.Same(t, childTable, found)

	parentFound, _ := parent.FindRelation("t0")
	assert.Same(t, parentTable, parentFound)
}

func TestProviderEachRelationIsAlphabetical(t *testing.T) {
	p := NewProvider()
	p.AddRelation(&storage.Table{Name: "zeta"}, false)
	p.AddRelation(&storage.Table{Name: "alpha"}, false)
	p.AddRelation(&storage.Table{Name: "mid"}, false)

	var names []string
	p.EachRelation(func(table *storage.Table) {
		names = append(names, table.Name)
	})

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestProviderRemoveRelation(t *testing.T) {
	p := NewProvider()
	p.AddRelation(&storage.Table{Name: "t0"}, false)

	assert.True(t, p.RemoveRelation("t0"))
	assert.False(t, p.RemoveRelation("t0"))

	_, ok := p.FindRelation("t0")
	assert.False(t, ok)
}

func TestProviderFindPrimaryIndex(t *testing.T) {
	p := NewProvider()
	table := &storage.Table{Name: "t0"}
	p.AddRelation(table, false)
	primary := &storage.Index{Name: "t0_pk", Table: table, Primary: true}
	secondary := &storage.Index{Name: "t0_sk", Table: table}
	p.AddIndex(primary, false)
	p.AddIndex(secondary, false)

	found, ok := p.FindPrimaryIndex(table)
	require.True(t, ok)
	assert.Same(t, primary, found)
}
