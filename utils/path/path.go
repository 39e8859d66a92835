/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package path

import (
	"strconv"
	"strings"

	"dirpx.dev/nsx/apis"
	"dirpx.dev/nsx/config"
)

// Split breaks p into its segments according to cfg (Separator/MaxDepth/StrictNames)
// and validates every segment.
//
// Failure cases, all reported as *apis.InvalidPathError:
//   - p is empty;
//   - a segment is empty ("A::", "::A", "A::::B");
//   - a segment is not a valid name (see ValidSegment);
//   - the number of segments exceeds MaxDepth.
//
// If Separator is empty or MaxDepth <= 0, the config defaults are used.
func Split(p string, cfg apis.Config) ([]string, error) {
	cfg = config.Normalize(cfg)
	if p == "" {
		return nil, &apis.InvalidPathError{Path: p, Reason: "empty path"}
	}

	segs := strings.Split(p, cfg.Separator)
	if len(segs) > cfg.MaxDepth {
		return nil, &apis.InvalidPathError{
			Path:   p,
			Reason: "depth " + strconv.Itoa(len(segs)) + " exceeds limit " + strconv.Itoa(cfg.MaxDepth),
		}
	}
	for i, s := range segs {
		if s == "" {
			return nil, &apis.InvalidPathError{Path: p, Reason: "empty segment at position " + strconv.Itoa(i)}
		}
		if !ValidSegment(s, cfg.StrictNames) {
			return nil, &apis.InvalidPathError{Path: p, Reason: "invalid segment " + strconv.Quote(s)}
		}
	}
	return segs, nil
}

// Join is the inverse of Split.
func Join(segs []string, sep string) string {
	if sep == "" {
		sep = config.DefaultSeparator
	}
	return strings.Join(segs, sep)
}

// Prefixes returns every non-empty leading sub-sequence of segs, shortest first:
// [a b c] -> [a] [a b] [a b c]. The returned slices share segs' backing array
// and must not be appended to.
func Prefixes(segs []string) [][]string {
	out := make([][]string, 0, len(segs))
	for i := 1; i <= len(segs); i++ {
		out = append(out, segs[:i:i])
	}
	return out
}

// ValidSegment reports whether s is a usable container name.
// Strict names start with an uppercase ASCII letter; relaxed names may also
// start with a lowercase letter or '_'. Both continue with [A-Za-z0-9_].
func ValidSegment(s string, strict bool) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case i > 0 && (c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'):
		case i == 0 && !strict && (c >= 'a' && c <= 'z' || c == '_'):
		default:
			return false
		}
	}
	return true
}
