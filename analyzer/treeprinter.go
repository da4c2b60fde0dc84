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

package analyzer

import (
	"fmt"
	"strings"
)

// TreePrinter accumulates a single node's label and its already
// rendered children, indenting them box-drawing style on String().
// It nests: a child's own multi-line String() output is itself
// re-indented under the branch connector, so a DumpStepPlan caller
// builds the whole tree bottom-up, one TreePrinter per step.
type TreePrinter struct {
	node     string
	children []string
}

// NewTreePrinter returns an empty printer.
func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

// WriteNode sets the printer's own label, formatted like fmt.Sprintf.
func (p *TreePrinter) WriteNode(format string, args ...interface{}) {
	p.node = fmt.Sprintf(format, args...)
}

// WriteChildren appends already-rendered children, in order. A child
// produced by another TreePrinter's String() is indented and spliced
// in verbatim, line by line.
func (p *TreePrinter) WriteChildren(children ...string) {
	p.children = append(p.children, children...)
}

// String renders the node and its children, using "├─"/"└─" for the
// first line of each child and "│"/" " continuations for the rest.
func (p *TreePrinter) String() string {
	var sb strings.Builder
	sb.WriteString(p.node)
	sb.WriteString("\n")
	for i, child := range p.children {
		last := i == len(p.children)-1
		lines := strings.Split(strings.TrimRight(child, "\n"), "\n")
		for j, line := range lines {
			if j == 0 {
				if last {
					sb.WriteString(" └─ ")
				} else {
					sb.WriteString(" ├─ ")
				}
			} else {
				if last {
					sb.WriteString("    ")
				} else {
					sb.WriteString(" │  ")
				}
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
