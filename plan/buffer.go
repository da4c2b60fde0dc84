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

package plan

// Buffer fans one input out to multiple independent consumers without
// itself reading any variable (spec §4.6: "buffer does not produce
// implicit uses"). Each branch gets its own output port via AddOutput.
type Buffer struct {
	base
}

// NewBuffer constructs a buffer with one input and one initial output
// branch; call AddOutput for each additional consumer.
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.base = newBase(b, 1)
	return b
}

func (b *Buffer) OperatorKind() Kind { return KindBuffer }
