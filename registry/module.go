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

package registry

import (
	"sort"
	"strings"
	"sync"

	"dirpx.dev/nsx/apis"
)

// module is the Container implementation. The root module has depth 0 and no name.
type module struct {
	name   string
	full   string
	sep    string
	depth  int
	parent *module

	mu       sync.RWMutex
	children map[string]*module
}

// Ensure module implements apis.Container.
var _ apis.Container = (*module)(nil)

func (m *module) Name() string     { return m.name }
func (m *module) FullName() string { return m.full }
func (m *module) Depth() int       { return m.depth }

// Parent returns nil for top-level containers (whose parent is the root).
func (m *module) Parent() apis.Container {
	if m.parent == nil || m.parent.depth == 0 {
		return nil
	}
	return m.parent
}

func (m *module) Child(name string) (apis.Container, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.children[name]
	if !ok {
		return nil, false
	}
	return c, true
}

func (m *module) Children() []apis.Container {
	kids := m.sortedChildren()
	out := make([]apis.Container, len(kids))
	for i, c := range kids {
		out[i] = c
	}
	return out
}

// String returns the full name, matching how the container prints.
func (m *module) String() string { return m.full }

// newChild attaches a fresh container named name. Caller must hold the
// registry lock and must have checked that name is absent.
func (m *module) newChild(name string) *module {
	full := name
	if m.depth > 0 {
		full = m.full + m.sep + name
	}
	c := &module{
		name:     name,
		full:     full,
		sep:      m.sep,
		depth:    m.depth + 1,
		parent:   m,
		children: make(map[string]*module),
	}
	m.mu.Lock()
	m.children[name] = c
	m.mu.Unlock()
	return c
}

func (m *module) sortedChildren() []*module {
	m.mu.RLock()
	out := make([]*module, 0, len(m.children))
	for _, c := range m.children {
		out = append(out, c)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func depthOf(path, sep string) int {
	return strings.Count(path, sep) + 1
}
