// Copyright 2026 The AppTheory Authors
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

package routing

import "strings"

// Compile parses a route pattern into tagged segments.
// Supported forms: literal segments, `{name}` params, `{name+}` trailing
// proxy segments, and the `:name` alias for `{name}`.
func Compile(pattern string) []Segment {
	raw := segmentsOf(pattern)
	segs := make([]Segment, 0, len(raw))
	for _, part := range raw {
		switch {
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "+}"):
			segs = append(segs, Segment{Kind: SegmentProxy, Name: part[1 : len(part)-2]})
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			segs = append(segs, Segment{Kind: SegmentParam, Name: part[1 : len(part)-1]})
		case strings.HasPrefix(part, ":"):
			segs = append(segs, Segment{Kind: SegmentParam, Name: part[1:]})
		default:
			segs = append(segs, Segment{Kind: SegmentStatic, Literal: part})
		}
	}
	return segs
}
