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

import "github.com/yugawara-go/yugawara/descriptor"

// ComputeLiveness walks bg's blocks in topological order to validate
// that every use has a reaching definition and no variable is defined
// twice, then runs a standard backward live-variable pass to populate
// each block's Kill set (spec §4.6).
//
// The backward pass is ordinary live-variable analysis
// (LiveOut(B) = union of LiveIn(successors); LiveIn(B) = Use(B) ∪
// (LiveOut(B) − Define(B))) rather than a bespoke per-branch walk: it
// already gives the exact behavior spec asks for at a fan-out block —
// "for any variable used in only some branches, place the kill at the
// first block of each branch where it is not used" falls straight out
// of LiveIn being computed independently per branch, since a branch
// that never uses the variable downstream simply never puts it in its
// own LiveIn.
func ComputeLiveness(bg *BlockGraph) error {
	order, err := topoSortBlocks(bg)
	if err != nil {
		return err
	}

	definedAt := make(map[descriptor.Variable]*Block, len(order))
	reachableDefs := make(map[*Block]map[descriptor.Variable]bool, len(order))

	for _, b := range order {
		reach := make(map[descriptor.Variable]bool)
		for _, u := range b.upstream {
			for v := range reachableDefs[u] {
				reach[v] = true
			}
		}
		for v := range b.define {
			if existing, ok := definedAt[v]; ok && existing != b {
				return ErrMultiplyDefined.New(v)
			}
			definedAt[v] = b
			reach[v] = true
		}
		for v := range b.use {
			if !reach[v] {
				return ErrUndefinedVariable.New(v)
			}
		}
		reachableDefs[b] = reach
	}

	liveIn := make(map[*Block]map[descriptor.Variable]bool, len(order))
	liveOut := make(map[*Block]map[descriptor.Variable]bool, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		b := order[i]
		out := make(map[descriptor.Variable]bool)
		for _, d := range b.downstream {
			for v := range liveIn[d] {
				out[v] = true
			}
		}
		in := make(map[descriptor.Variable]bool, len(b.use)+len(out))
		for v := range b.use {
			in[v] = true
		}
		for v := range out {
			if !b.define[v] {
				in[v] = true
			}
		}
		liveIn[b] = in
		liveOut[b] = out
	}

	// A variable enters kill(b) one of two ways: it was live entering
	// some predecessor of b but isn't live entering b itself (the
	// ordinary case, used to free a value once every consumer on a
	// branch has been passed), or b is where the variable was defined
	// and it never became live leaving b at all. The latter case has
	// no predecessor relationship to fall back on, since a variable
	// defined but never used downstream never enters any LiveIn set.
	for _, b := range order {
		kill := make(map[descriptor.Variable]bool)
		for _, u := range b.upstream {
			for v := range liveIn[u] {
				if !liveIn[b][v] {
					kill[v] = true
				}
			}
		}
		for v := range b.define {
			if !liveOut[b][v] {
				kill[v] = true
			}
		}
		b.kill = kill
	}
	return nil
}
