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

// Package estimator defines the pluggable index-cost oracle the
// scan/join rewriters consult (spec §6, §4.5) and a small heuristic
// default implementation backed by row-count statistics.
package estimator

import (
	"github.com/yugawara-go/yugawara/rangehint"
	"github.com/yugawara-go/yugawara/scalar"
	"github.com/yugawara-go/yugawara/storage"
)

// Estimate is the estimator's verdict for one candidate index.
// Score is dimensionless and used only for tie-breaking between
// candidates; it carries no meaning across different indexes'
// estimators.
type Estimate struct {
	RowCount  int64
	Score     float64
	IndexOnly bool
}

// Estimator scores a candidate index under the key ranges and
// residual predicate conjuncts in play. Implementations must be
// deterministic and side-effect free during a single compile (spec
// §6).
type Estimator interface {
	Estimate(index *storage.Index, ranges *rangehint.Map, residual []scalar.Expression, requireOrdered bool) Estimate
}
