// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package diagnostic adapts compiler errors to a labeled-span diagnostics
// model, the interface assumed by an external diagnostics rendering
// library.
package diagnostic

import "fmt"

// Span represents a contiguous slice of some original source text, tracked
// by physical byte offset rather than by substring so it survives independent
// of any one copy of the source.
type Span struct {
	// File this span refers into; empty for synthesized spans.
	File string
	// Start is the first byte of this span in File.
	Start int
	// End is one past the last byte of this span in File.
	End int
}

// NewSpan constructs a span, checking the obvious invariant.
func NewSpan(file string, start, end int) Span {
	if start > end {
		panic("diagnostic: invalid span")
	}

	return Span{file, start, end}
}

// Unknown is used when no useful source location exists (synthesized ops).
var Unknown = Span{}

// Len returns the number of bytes covered by this span.
func (s Span) Len() int {
	return s.End - s.Start
}

// String renders a span as "file:start:end", matching the teacher's
// SyntaxError.Error() convention of reporting raw offsets.
func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Start, s.End)
	}

	return fmt.Sprintf("%s:%d:%d", s.File, s.Start, s.End)
}
