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

package strategy

import (
	"strings"

	"dirpx.dev/nsx/apis"
)

// NewAbsoluteStrategy creates an apis.Strategy for names anchored at the top
// level with a leading separator ("::Bar"). Such names never consult the scope.
func NewAbsoluteStrategy(reg apis.Registry) apis.Strategy {
	return &absoluteStrategy{reg: reg}
}

// absoluteStrategy consults the registry directly, stripping the leading separator.
type absoluteStrategy struct {
	reg apis.Registry
}

// Ensure absoluteStrategy implements apis.Strategy.
var _ apis.Strategy = (*absoluteStrategy)(nil)

// TryResolve handles every anchored name, found or not, so the chain stops.
func (s *absoluteStrategy) TryResolve(_, name string) (apis.Container, bool) {
	if s.reg == nil {
		return nil, false
	}
	sep := s.reg.Config().Separator
	rest, anchored := strings.CutPrefix(name, sep)
	if !anchored {
		return nil, false
	}
	c, _ := s.reg.Resolve(rest)
	return c, true
}
