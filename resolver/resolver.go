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

// Package resolver turns an ordered list of lookup strategies into an
// apis.Resolver.
//
// Strategies answer in two parts: whether they handle the name at all, and
// what they found. The first strategy that handles a name decides the
// result, even when it found nothing. An anchored name such as "::Bar" is
// handled by the absolute strategy and must not fall through to lexical
// lookup, where it could match a nested Bar.
package resolver

import (
	"dirpx.dev/nsx/apis"
)

// New returns a resolver that consults strategies in order.
// Nil strategies are dropped. The resolver is safe for concurrent use when
// every strategy is.
func New(strategies ...apis.Strategy) apis.Resolver {
	c := make(chain, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			c = append(c, s)
		}
	}
	return c
}

// chain is immutable once built by New.
type chain []apis.Strategy

// Resolve returns the answer of the first strategy that handles name.
// A handled name with a nil container stops the chain and reports not found.
func (c chain) Resolve(scope, name string) (apis.Container, bool) {
	for _, s := range c {
		found, handled := s.TryResolve(scope, name)
		if !handled {
			continue
		}
		return found, found != nil
	}
	return nil, false
}
