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

// NewLexicalStrategy creates an apis.Strategy that resolves a relative name
// the way nested constant lookup does: from the innermost scope outward,
// finishing at the top level.
//
// From scope "Abc123::Foo" the name "Bar" is tried as
// "Abc123::Foo::Bar", then "Abc123::Bar", then "Bar".
func NewLexicalStrategy(reg apis.Registry) apis.Strategy {
	return &lexicalStrategy{reg: reg}
}

type lexicalStrategy struct {
	reg apis.Registry
}

// Ensure lexicalStrategy implements apis.Strategy.
var _ apis.Strategy = (*lexicalStrategy)(nil)

// TryResolve returns the innermost match. It does not handle anchored names
// or empty input.
func (s *lexicalStrategy) TryResolve(scope, name string) (apis.Container, bool) {
	if s.reg == nil || name == "" {
		return nil, false
	}
	sep := s.reg.Config().Separator
	if strings.HasPrefix(name, sep) {
		return nil, false
	}

	for scope != "" {
		if c, ok := s.reg.Resolve(scope + sep + name); ok {
			return c, true
		}
		i := strings.LastIndex(scope, sep)
		if i < 0 {
			break
		}
		scope = scope[:i]
	}
	return s.reg.Resolve(name)
}
