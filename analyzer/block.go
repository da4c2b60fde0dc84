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

package analyzer

import (
	"github.com/yugawara-go/yugawara/descriptor"
	"github.com/yugawara-go/yugawara/graph"
	"github.com/yugawara-go/yugawara/plan"
)

// Block is a maximal linear chain of operators: every interior
// operator has exactly one input port and exactly one output port,
// both consumed by exactly one edge (spec §4.6). Front and Back
// coincide for a block holding a single operator, which is always the
// case for an operator with more than one input port or more than one
// output port (a merge or fan-out point never shares a block with its
// neighbors, since it cannot belong to two blocks at once).
type Block struct {
	operators  []plan.Operator
	upstream   []*Block
	downstream []*Block
	define     map[descriptor.Variable]bool
	use        map[descriptor.Variable]bool
	kill       map[descriptor.Variable]bool
}

// Front returns the block's first operator.
func (b *Block) Front() plan.Operator { return b.operators[0] }

// Back returns the block's last operator.
func (b *Block) Back() plan.Operator { return b.operators[len(b.operators)-1] }

// Operators returns every operator in the block, front to back.
func (b *Block) Operators() []plan.Operator { return b.operators }

// Upstream returns the blocks feeding this block's front operator.
func (b *Block) Upstream() []*Block { return b.upstream }

// Downstream returns the blocks consuming this block's back operator.
func (b *Block) Downstream() []*Block { return b.downstream }

// Define returns the set of stream/local variables declared by
// operators in this block.
func (b *Block) Define() map[descriptor.Variable]bool { return b.define }

// Use returns the set of variables this block reads without having
// defined them earlier in the same block (an upward-exposed use: a
// variable a block both produces and consumes internally, in that
// order, creates no dependency on anything upstream of the block).
func (b *Block) Use() map[descriptor.Variable]bool { return b.use }

// Kill returns the set of variables safe to free on entry to this
// block: they were alive entering at least one of its upstream blocks
// but are not live entering this one, plus the variables this block
// defines that are not live leaving it (populated by ComputeLiveness).
func (b *Block) Kill() map[descriptor.Variable]bool { return b.kill }

// BlockGraph is the result of sweeping an operator graph into blocks
// (spec §4.6). Every operator belongs to exactly one block, and the
// block graph is acyclic iff the underlying operator graph is acyclic.
type BlockGraph struct {
	blocks []*Block
	owner  map[plan.Operator]*Block
	roots  []*Block
	sinks  []*Block
}

// Blocks returns every block, in the order they were swept.
func (bg *BlockGraph) Blocks() []*Block { return bg.blocks }

// Roots returns the blocks with no upstream block. A plan with a
// remaining two-input operator (an un-rewritten join, a union, an
// intersection, or a difference) legitimately has more than one root,
// one per true leaf source feeding it.
func (bg *BlockGraph) Roots() []*Block { return bg.roots }

// Sinks returns the blocks with no downstream block — ordinarily
// exactly one, the block holding the statement's terminal operator.
func (bg *BlockGraph) Sinks() []*Block { return bg.sinks }

// BlockOf returns the block that owns op.
func (bg *BlockGraph) BlockOf(op plan.Operator) (*Block, bool) {
	b, ok := bg.owner[op]
	return b, ok
}

// IsAcyclic reports whether the block graph contains no cycle, walking
// downstream edges from every block (spec §4.6's "block owner graph is
// acyclic iff the underlying operator graph is acyclic" invariant).
func (bg *BlockGraph) IsAcyclic() bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[*Block]int, len(bg.blocks))
	var visit func(b *Block) bool
	visit = func(b *Block) bool {
		switch color[b] {
		case gray:
			return false
		case black:
			return true
		}
		color[b] = gray
		for _, next := range b.downstream {
			if !visit(next) {
				return false
			}
		}
		color[b] = black
		return true
	}
	for _, b := range bg.blocks {
		if color[b] == white {
			if !visit(b) {
				return false
			}
		}
	}
	return true
}

// isBranchPoint reports whether op is a merge (more than one input
// port) or a fan-out (more than one output port) — the condition spec
// §4.6 sweeps blocks around: "starting from any operator with more
// than one input port or referenced by more than one output port, walk
// linearly forward until the same branching condition is met."
func isBranchPoint(op plan.Operator) bool {
	return len(graph.Inputs(op)) > 1 || len(graph.Outputs(op)) > 1
}

// BuildBlocks sweeps g into its maximal linear chains (spec §4.6). It
// requires g to be a single weakly-connected component — a plan
// assembled from independent, never-joined fragments (left behind by a
// rewrite bug, for instance) is the "multiple entries" failure mode:
// the compiler driver only ever submits one statement's fully
// assembled plan at a time, so more than one component indicates a
// malformed graph, not a user error.
func BuildBlocks(g *plan.Graph) (*BlockGraph, error) {
	ops := g.Operators()
	bg := &BlockGraph{owner: make(map[plan.Operator]*Block, len(ops))}
	if len(ops) == 0 {
		return bg, nil
	}

	if err := requireSingleComponent(ops); err != nil {
		return nil, err
	}

	order, err := topoSortOperators(ops)
	if err != nil {
		return nil, err
	}

	for _, op := range order {
		ups := plan.Upstreams(op)
		startsBlock := len(ups) == 0 || isBranchPoint(op)
		if !startsBlock {
			upstream := ups[0]
			if isBranchPoint(upstream) {
				startsBlock = true
			} else {
				ub, ok := bg.owner[upstream]
				if !ok {
					return nil, ErrUnregisteredBlock.New(upstream)
				}
				ub.operators = append(ub.operators, op)
				bg.owner[op] = ub
				continue
			}
		}
		nb := &Block{operators: []plan.Operator{op}}
		bg.blocks = append(bg.blocks, nb)
		bg.owner[op] = nb
	}

	for _, b := range bg.blocks {
		seen := make(map[*Block]bool)
		for _, u := range plan.Upstreams(b.Front()) {
			ub, ok := bg.owner[u]
			if !ok {
				return nil, ErrUnregisteredBlock.New(u)
			}
			if ub != b && !seen[ub] {
				seen[ub] = true
				b.upstream = append(b.upstream, ub)
			}
		}
		seen = make(map[*Block]bool)
		for _, d := range plan.Downstreams(b.Back()) {
			db, ok := bg.owner[d]
			if !ok {
				return nil, ErrUnregisteredBlock.New(d)
			}
			if db != b && !seen[db] {
				seen[db] = true
				b.downstream = append(b.downstream, db)
			}
		}
		if len(b.upstream) == 0 {
			bg.roots = append(bg.roots, b)
		}
		if len(b.downstream) == 0 {
			bg.sinks = append(bg.sinks, b)
		}
	}

	computeDefineUse(bg)
	return bg, nil
}

// computeDefineUse fills in Define/Use for every block, walking each
// block's operators front to back so a use is only counted when
// nothing earlier in the same block already defined that variable
// (spec §4.6's define/use sets, refined to the standard upward-exposed-
// use convention liveness analysis depends on).
func computeDefineUse(bg *BlockGraph) {
	for _, b := range bg.blocks {
		b.define = make(map[descriptor.Variable]bool)
		b.use = make(map[descriptor.Variable]bool)
		locallyDefined := make(map[descriptor.Variable]bool)
		for _, op := range b.operators {
			for _, v := range collectUses(op) {
				if !locallyDefined[v] {
					b.use[v] = true
				}
			}
			for _, v := range collectDefines(op) {
				b.define[v] = true
				locallyDefined[v] = true
			}
		}
	}
}

// collectDefines returns the stream/local variables op declares, per
// spec §4.6's define definition (this IR has no take_*/let relational
// forms of its own — take_* is a C7 physical-step concept and a
// scalar.Let's declarators are scoped to the single expression that
// owns them, so neither crosses a block boundary and both are excluded
// here).
func collectDefines(op plan.Operator) []descriptor.Variable {
	var out []descriptor.Variable
	switch o := op.(type) {
	case *plan.Scan:
		for _, c := range o.Columns {
			out = append(out, c.Result)
		}
	case *plan.Find:
		for _, c := range o.Columns {
			out = append(out, c.Result)
		}
	case *plan.JoinFind:
		for _, c := range o.Columns {
			out = append(out, c.Result)
		}
	case *plan.JoinScan:
		for _, c := range o.Columns {
			out = append(out, c.Result)
		}
	case *plan.Project:
		for _, p := range o.Columns {
			out = append(out, p.Variable)
		}
	case *plan.Aggregate:
		for _, c := range o.Columns {
			out = append(out, c.Result)
		}
	case *plan.Values:
		out = append(out, o.Columns...)
	}
	return out
}

// requireSingleComponent walks the undirected adjacency of ops (both
// upstream and downstream edges) and fails if more than one weakly
// connected component is reachable.
func requireSingleComponent(ops []plan.Operator) error {
	visited := make(map[plan.Operator]bool, len(ops))
	var stack []plan.Operator
	stack = append(stack, ops[0])
	visited[ops[0]] = true
	for len(stack) > 0 {
		op := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		neighbors := append(append([]plan.Operator{}, plan.Upstreams(op)...), plan.Downstreams(op)...)
		for _, n := range neighbors {
			if !visited[n] {
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	if len(visited) != len(ops) {
		return ErrMultipleEntryPoints.New()
	}
	return nil
}

// topoSortOperators returns ops in a topological order (every operator
// after all of its connected upstreams), failing if the graph is not
// acyclic.
func topoSortOperators(ops []plan.Operator) ([]plan.Operator, error) {
	indegree := make(map[plan.Operator]int, len(ops))
	for _, op := range ops {
		indegree[op] = len(plan.Upstreams(op))
	}
	var queue []plan.Operator
	for _, op := range ops {
		if indegree[op] == 0 {
			queue = append(queue, op)
		}
	}
	order := make([]plan.Operator, 0, len(ops))
	for len(queue) > 0 {
		op := queue[0]
		queue = queue[1:]
		order = append(order, op)
		for _, down := range plan.Downstreams(op) {
			indegree[down]--
			if indegree[down] == 0 {
				queue = append(queue, down)
			}
		}
	}
	if len(order) != len(ops) {
		return nil, ErrMalformedGraph.New("cycle detected while ordering operators into blocks")
	}
	return order, nil
}

// topoSortBlocks returns bg's blocks in a topological order, for
// liveness's forward/backward dataflow passes.
func topoSortBlocks(bg *BlockGraph) ([]*Block, error) {
	indegree := make(map[*Block]int, len(bg.blocks))
	for _, b := range bg.blocks {
		indegree[b] = len(b.upstream)
	}
	var queue []*Block
	for _, b := range bg.blocks {
		if indegree[b] == 0 {
			queue = append(queue, b)
		}
	}
	order := make([]*Block, 0, len(bg.blocks))
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		order = append(order, b)
		for _, down := range b.downstream {
			indegree[down]--
			if indegree[down] == 0 {
				queue = append(queue, down)
			}
		}
	}
	if len(order) != len(bg.blocks) {
		return nil, ErrMalformedGraph.New("cycle detected while ordering blocks")
	}
	return order, nil
}
