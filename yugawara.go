// Copyright 2020-2021 Dolthub, Inc.
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

// Package yugawara is the compiler driver (C8): it wires the type
// system (C1-C2), the expression analyzer (C3), the predicate toolkit
// (C4), the scan/join rewriters (C5), the block/liveness pass (C6),
// and the exchange step collector (C7) into the single entry point,
// Compile, plus its read-only sibling, Inspect.
package yugawara

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/yugawara-go/yugawara/analyzer"
	"github.com/yugawara-go/yugawara/descriptor"
	"github.com/yugawara-go/yugawara/estimator"
	"github.com/yugawara-go/yugawara/function"
	"github.com/yugawara-go/yugawara/plan"
	"github.com/yugawara-go/yugawara/rowexec"
	"github.com/yugawara-go/yugawara/scalar"
	"github.com/yugawara-go/yugawara/storage"
	"github.com/yugawara-go/yugawara/types"
)

// DefaultBroadcastRowThreshold is used whenever Options leaves
// BroadcastRowThreshold at its zero value. No specific number exists
// upstream; this is a conservative round figure consistent with
// typical single-partition broadcast-join thresholds.
const DefaultBroadcastRowThreshold = 10000

// Options carries everything a Compile invocation needs beyond the
// input itself (spec §6: "compiler options").
type Options struct {
	StorageProvider storage.Provider
	Functions       function.Provider
	IndexEstimator  estimator.Estimator

	// RuntimeFeatures gates optional rewrites (broadcast join,
	// aggregate-in-exchange, etc.) by name; an absent key is treated
	// as enabled, matching the rewriters' own defaults.
	RuntimeFeatures map[string]bool

	// JoinScanEnabled allows the join rewriter to consider range-scan
	// (not just point-lookup) build sides.
	JoinScanEnabled bool

	// IncrementalReuse keeps a prior ExpressionAnalyzer's resolutions
	// across Compile calls instead of clearing them at the start of
	// every invocation (see SPEC_FULL.md's Open Question decision #1).
	// Only takes effect when Analyzer is also set; with no Analyzer,
	// every Compile call necessarily starts from a fresh one.
	IncrementalReuse bool

	// Analyzer, if set, is reused across Compile calls instead of
	// constructing a fresh one each time. Compile resets it at the
	// start of the pipeline unless IncrementalReuse is set, in which
	// case its prior resolutions are kept. Expression types are always
	// bound with overwrite, so a node resolved again in a later call
	// gets its new type in place of the carried-over one.
	Analyzer *analyzer.ExpressionAnalyzer

	// BroadcastRowThreshold bounds how large the estimated row count
	// of RewriteJoin's chosen candidate index may be before the
	// broadcast (join_find/join_scan) form is abandoned in favor of
	// leaving the join for C7's co-group lowering (Open Question
	// decision #2). Zero means DefaultBroadcastRowThreshold.
	BroadcastRowThreshold int64
}

// Feature reports whether the named runtime feature is enabled;
// absent names default to enabled.
func (o Options) Feature(name string) bool {
	if o.RuntimeFeatures == nil {
		return true
	}
	enabled, ok := o.RuntimeFeatures[name]
	if !ok {
		return true
	}
	return enabled
}

// analyzerFor returns the ExpressionAnalyzer a Compile/Inspect call
// should use: o.Analyzer if set (reset first unless IncrementalReuse
// is set, per ExpressionAnalyzer.Reset's documented contract), or a
// fresh one when no Analyzer was supplied to reuse.
func (o Options) analyzerFor() *analyzer.ExpressionAnalyzer {
	if o.Analyzer == nil {
		return analyzer.NewExpressionAnalyzer(o.Functions)
	}
	if !o.IncrementalReuse {
		o.Analyzer.Reset()
	}
	return o.Analyzer
}

func (o Options) broadcastRowThreshold() int64 {
	if o.BroadcastRowThreshold > 0 {
		return o.BroadcastRowThreshold
	}
	return DefaultBroadcastRowThreshold
}

// StatementKind is the closed set of top-level compile inputs (spec
// §4.8: "execute/write/create_table/drop_table/create_index/
// drop_index/empty").
type StatementKind int

const (
	StatementExecute StatementKind = iota
	StatementWrite
	StatementCreateTable
	StatementDropTable
	StatementCreateIndex
	StatementDropIndex
	StatementEmpty
)

func (k StatementKind) String() string {
	switch k {
	case StatementExecute:
		return "execute"
	case StatementWrite:
		return "write"
	case StatementCreateTable:
		return "create_table"
	case StatementDropTable:
		return "drop_table"
	case StatementCreateIndex:
		return "create_index"
	case StatementDropIndex:
		return "drop_index"
	case StatementEmpty:
		return "empty"
	default:
		return "unknown_statement"
	}
}

// Statement is the compile entry point's input union. Graph is set
// for Execute and Write (a relational graph, for Write one rooted at
// a plan.Write sink); the catalog-mutation kinds instead set Table or
// Index directly, and never touch the analyzer pipeline.
type Statement struct {
	Kind  StatementKind
	Graph *plan.Graph

	Table     *storage.Table
	Index     *storage.Index
	Overwrite bool

	// DropName names the relation/index to drop, for DropTable/DropIndex.
	DropName string
}

// CompiledInfo is the immutable view attached to a successful Result
// (spec §6: "compiled_info exposes type_of(expression),
// type_of(variable), immutable views of the mappings, and a
// serializer hook for debug output").
type CompiledInfo struct {
	expressionTypes map[any]*types.Type
	variableTypes   map[descriptor.Variable]descriptor.Resolution
	stepPlan        *rowexec.Graph
}

// TypeOfExpression returns the type resolved for expr during Compile,
// if any.
func (c *CompiledInfo) TypeOfExpression(expr scalar.Expression) (*types.Type, bool) {
	t, ok := c.expressionTypes[expr]
	return t, ok
}

// TypeOfVariable returns the resolution bound to v during Compile, if any.
func (c *CompiledInfo) TypeOfVariable(v descriptor.Variable) (descriptor.Resolution, bool) {
	r, ok := c.variableTypes[v]
	return r, ok
}

// StepPlan returns the physical step plan built for an Execute/Write
// statement, or nil for the catalog-mutation kinds and for Inspect.
func (c *CompiledInfo) StepPlan() *rowexec.Graph { return c.stepPlan }

// DumpStepPlan renders result's step plan as a debug text tree (spec
// §4.8: "a serializer hook for debug output"), or "" if result carries
// no step plan (Inspect results, catalog-mutation statements).
func DumpStepPlan(result Result) string {
	if result.Info == nil || result.Info.stepPlan == nil {
		return ""
	}
	return analyzer.DumpStepPlan(result.Info.stepPlan)
}

func newCompiledInfo(a *analyzer.ExpressionAnalyzer, stepPlan *rowexec.Graph) *CompiledInfo {
	info := &CompiledInfo{
		expressionTypes: make(map[any]*types.Type),
		variableTypes:   make(map[descriptor.Variable]descriptor.Resolution),
		stepPlan:        stepPlan,
	}
	a.Expressions.Each(func(key any, t *types.Type) {
		info.expressionTypes[key] = t
	})
	a.Variables.Each(func(v descriptor.Variable, r descriptor.Resolution) {
		info.variableTypes[v] = r
	})
	return info
}

// Result is Compile's outcome: either Success with a CompiledInfo and
// the (possibly rewritten) Statement, or a failure carrying the
// diagnostics collected before the pipeline gave up (spec §6:
// "success(statement, compiled_info) or failure(diagnostics)").
type Result struct {
	Success     bool
	Statement   *Statement
	Info        *CompiledInfo
	Diagnostics []analyzer.Diagnostic
}

// Compile runs the full pipeline described in spec §4.8 against
// input, using options for the collaborating providers and feature
// flags. A malformed IR (an invariant violation, never something a
// caller query can trigger) aborts with a non-nil error rather than a
// Result; a query-level failure is instead reported as a
// Result{Success: false} carrying diagnostics.
func Compile(options Options, input Statement) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if asErr, ok := r.(error); ok {
				err = asErr
				return
			}
			panic(r)
		}
	}()

	logrus.WithField("statement", input.Kind).Debug("compiling statement")

	switch input.Kind {
	case StatementCreateTable:
		return compileCreateTable(options, input)
	case StatementDropTable:
		return compileDropTable(options, input)
	case StatementCreateIndex:
		return compileCreateIndex(options, input)
	case StatementDropIndex:
		return compileDropIndex(options, input)
	case StatementEmpty:
		return Result{Success: true, Statement: &input, Info: &CompiledInfo{}}, nil
	case StatementExecute, StatementWrite:
		return compileRelational(options, input)
	default:
		return Result{}, errors.Errorf("yugawara: unrecognized statement kind %v", input.Kind)
	}
}

// Inspect performs only resolution steps 1 and 4 of the pipeline
// (spec §4.8: "for testing") and returns the resulting CompiledInfo
// without running C4/C5/C7.
func Inspect(options Options, g *plan.Graph) (*CompiledInfo, []analyzer.Diagnostic) {
	a := options.analyzerFor()
	a.ResolveGraph(g, true)
	a.ResolveGraph(g, true)
	return newCompiledInfo(a, nil), a.Diagnostics
}

func compileRelational(options Options, input Statement) (Result, error) {
	g := input.Graph
	if g == nil {
		return Result{}, errors.Errorf("yugawara: %s statement requires a graph", input.Kind)
	}

	a := options.analyzerFor()

	// Step 1: expression resolution, validate+recursive, fail fast on
	// a fatal diagnostic set (here: any diagnostic at all aborts,
	// matching spec §4.8's "step 1 failures abort the pipeline").
	a.ResolveGraph(g, true)
	if len(a.Diagnostics) > 0 {
		return Result{Success: false, Diagnostics: a.Diagnostics}, nil
	}

	// Step 2: C4 transformations, applied globally to every predicate
	// carried by a relational operator.
	analyzer.SimplifyGraph(g)

	// Step 3: C5 scan/join rewriters, fixed point.
	for i := 0; i < maxRewritePasses; i++ {
		changed := false
		if analyzer.RewriteScan(g, options.StorageProvider, options.IndexEstimator) {
			changed = true
		}
		if analyzer.RewriteJoin(g, options.StorageProvider, options.IndexEstimator, options.JoinScanEnabled, options.broadcastRowThreshold()) {
			changed = true
		}
		if analyzer.PruneStreamColumns(g) {
			changed = true
		}
		if !changed {
			break
		}
	}

	// Step 4: re-run resolution for anything the rewriters introduced;
	// ExpressionAnalyzer.bindExpr/Variables.Bind always overwrite=true,
	// so re-resolving already-settled nodes is a no-op refinement, not
	// a conflict (Open Question decision #1 only gates *cross-Compile*
	// reuse, not this intra-pipeline re-run).
	a.ResolveGraph(g, true)
	if len(a.Diagnostics) > 0 {
		return Result{Success: false, Diagnostics: a.Diagnostics}, nil
	}

	// Step 5: the step plan, for a graph destined for execution.
	bg, err := analyzer.BuildBlocks(g)
	if err != nil {
		return Result{}, errors.Wrap(err, "yugawara: building basic blocks")
	}
	if err := analyzer.ComputeLiveness(bg); err != nil {
		return Result{}, errors.Wrap(err, "yugawara: computing liveness")
	}
	stepPlan, err := analyzer.CollectExchangeSteps(g)
	if err != nil {
		return Result{}, errors.Wrap(err, "yugawara: collecting exchange steps")
	}
	a.ResolvePlanGraph(stepPlan)
	if len(a.Diagnostics) > 0 {
		return Result{Success: false, Diagnostics: a.Diagnostics}, nil
	}

	// Step 6: compiled_info.
	return Result{
		Success:   true,
		Statement: &input,
		Info:      newCompiledInfo(a, stepPlan),
	}, nil
}

// maxRewritePasses bounds the scan/join/prune fixed-point loop; every
// individual rewrite strictly shrinks or restructures the graph, so
// this is a defensive cap, not an expected iteration count.
const maxRewritePasses = 64

func compileCreateTable(options Options, input Statement) (Result, error) {
	provider, ok := options.StorageProvider.(storage.ConfigurableProvider)
	if !ok {
		return Result{}, errors.New("yugawara: create_table requires a ConfigurableProvider")
	}
	if input.Table == nil {
		return Result{}, errors.New("yugawara: create_table statement requires a table")
	}
	provider.AddRelation(input.Table, input.Overwrite)
	return Result{Success: true, Statement: &input, Info: &CompiledInfo{}}, nil
}

func compileDropTable(options Options, input Statement) (Result, error) {
	provider, ok := options.StorageProvider.(storage.ConfigurableProvider)
	if !ok {
		return Result{}, errors.New("yugawara: drop_table requires a ConfigurableProvider")
	}
	ok = provider.RemoveRelation(input.DropName)
	if !ok {
		return Result{Success: false, Diagnostics: []analyzer.Diagnostic{
			{Code: analyzer.CodeUnresolvedVariable, Message: fmt.Sprintf("relation %q does not exist", input.DropName)},
		}}, nil
	}
	return Result{Success: true, Statement: &input, Info: &CompiledInfo{}}, nil
}

func compileCreateIndex(options Options, input Statement) (Result, error) {
	provider, ok := options.StorageProvider.(storage.ConfigurableProvider)
	if !ok {
		return Result{}, errors.New("yugawara: create_index requires a ConfigurableProvider")
	}
	if input.Index == nil {
		return Result{}, errors.New("yugawara: create_index statement requires an index")
	}
	provider.AddIndex(input.Index, input.Overwrite)
	return Result{Success: true, Statement: &input, Info: &CompiledInfo{}}, nil
}

func compileDropIndex(options Options, input Statement) (Result, error) {
	provider, ok := options.StorageProvider.(storage.ConfigurableProvider)
	if !ok {
		return Result{}, errors.New("yugawara: drop_index requires a ConfigurableProvider")
	}
	ok = provider.RemoveIndex(input.DropName)
	if !ok {
		return Result{Success: false, Diagnostics: []analyzer.Diagnostic{
			{Code: analyzer.CodeUnresolvedVariable, Message: fmt.Sprintf("index %q does not exist", input.DropName)},
		}}, nil
	}
	return Result{Success: true, Statement: &input, Info: &CompiledInfo{}}, nil
}
