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

package estimator

import (
	"sync"

	"github.com/yugawara-go/yugawara/descriptor"
	"github.com/yugawara-go/yugawara/rangehint"
	"github.com/yugawara-go/yugawara/scalar"
	"github.com/yugawara-go/yugawara/storage"
)

// defaultRowCount is used for any table the caller never registered a
// statistic for, grounded on the teacher's sql/stats package falling
// back to a conservative constant rather than refusing to estimate.
const defaultRowCount int64 = 1000

// pointLookupSelectivity and rangeSelectivity are the fraction of rows
// a single equality-bound or range-bound key column is assumed to
// retain, applied successively to each bound prefix column of the
// index. Their exact magnitudes are a deliberate heuristic choice (no
// cost model is specified by spec.md for this — see DESIGN.md's Open
// Question decisions), not read off any statistic.
const (
	pointLookupSelectivity = 0.02
	rangeSelectivity       = 0.2
)

// Heuristic is a default Estimator backed by a small row-count
// statistics cache, grounded on the teacher's sql/stats package and
// its cost-estimation tests in sql/analyzer/costed_index_scan_test.go:
// when no statistic is registered for a table, candidates are scored
// only by how much of the index's key prefix the supplied ranges
// bind. Ties between equally scored candidates are broken by the
// scan/join rewriter's better(): primary, then unique, then ordered,
// then smaller row count; the first candidate considered wins only
// when all of those tie too.
type Heuristic struct {
	mu        sync.RWMutex
	rowCounts map[string]int64
}

// NewHeuristic returns a Heuristic with no registered statistics.
func NewHeuristic() *Heuristic {
	return &Heuristic{rowCounts: make(map[string]int64)}
}

// SetRowCount registers tableName's estimated row count, keyed by
// storage.Table.Name.
func (h *Heuristic) SetRowCount(tableName string, count int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rowCounts[tableName] = count
}

func (h *Heuristic) rowCountFor(tableName string) int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.rowCounts[tableName]; ok {
		return c
	}
	return defaultRowCount
}

// Estimate implements Estimator. It walks index.Keys in order, and for
// each prefix column that has a matching range hint entry (matched by
// variable label against the column name — the scan/join rewriter is
// expected to have named its synthetic key variables after the
// column they bind), narrows the running row-count estimate; the walk
// stops at the first key column with no usable bound, since an index
// prefix only helps up to the first unconstrained column.
func (h *Heuristic) Estimate(index *storage.Index, ranges *rangehint.Map, residual []scalar.Expression, requireOrdered bool) Estimate {
	rowCount := float64(h.rowCountFor(index.Table.Name))
	bound := 0

	if ranges != nil {
		for _, key := range index.Keys {
			hint, ok := findHintByColumnName(ranges, key.Name)
			if !ok || hint.Empty() {
				break
			}
			if isPointBound(hint) {
				rowCount *= pointLookupSelectivity
			} else {
				rowCount *= rangeSelectivity
			}
			bound++
		}
	}

	estimated := int64(rowCount)
	if estimated < 1 {
		estimated = 1
	}

	indexOnly := bound > 0 && bound == len(index.Keys) && index.Unique

	return Estimate{
		RowCount:  estimated,
		Score:     1 / float64(estimated),
		IndexOnly: indexOnly,
	}
}

func findHintByColumnName(ranges *rangehint.Map, name string) (rangehint.Hint, bool) {
	var found rangehint.Hint
	ok := false
	ranges.Each(func(v descriptor.Variable, h rangehint.Hint) {
		if v.Label() == name {
			found = h
			ok = true
		}
	})
	return found, ok
}

func isPointBound(h rangehint.Hint) bool {
	if h.Lower.Kind != rangehint.BoundInclusive || h.Upper.Kind != rangehint.BoundInclusive {
		return false
	}
	if h.Lower.Value.IsVariable() != h.Upper.Value.IsVariable() {
		return false
	}
	if h.Lower.Value.IsVariable() {
		return h.Lower.Value.Variable() == h.Upper.Value.Variable()
	}
	return rangehint.Compare(h.Lower.Value.Immediate(), h.Upper.Value.Immediate()) == 0
}

var _ Estimator = (*Heuristic)(nil)
