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

package apis

// Registry is a hierarchical symbol table keyed by fully-qualified path.
// Implementations must be safe for concurrent use.
type Registry interface {
	// Register ensures every prefix of path exists as a container.
	// Existing containers are left untouched; only missing ones are created.
	Register(path string) error
	// ResolveOrCreate returns the container prefix+[name], creating it under
	// the (already registered) parent at prefix if absent.
	ResolveOrCreate(name string, prefix []string) (Container, error)
	// Resolve returns the container registered at path.
	Resolve(path string) (Container, bool)
	// Bind associates a non-container value with path, registering its parent.
	Bind(path string, v any) error
	// Lookup returns any binding at path, container or value.
	Lookup(path string) (Entry, bool)
	// Entries returns a snapshot ordered by depth, then path.
	Entries() []Entry
	// Count returns the number of registered containers.
	Count() int
	// Walk visits containers depth-first in name order. Returning false stops the walk.
	Walk(fn func(c Container) bool)
	// Config returns the configuration the registry was built with.
	Config() Config
}

// Kind tells what an Entry is bound to.
type Kind uint8

const (
	// KindContainer marks a namespace container binding.
	KindContainer Kind = iota + 1
	// KindValue marks a plain (non-container) value binding.
	KindValue
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// Entry is a single binding in a Registry snapshot.
type Entry struct {
	// Path is the fully-qualified path.
	Path string
	// Depth is the number of path segments.
	Depth int
	// Kind tells whether Container or Value is set.
	Kind Kind
	// Container is set for KindContainer entries.
	Container Container
	// Value is set for KindValue entries.
	Value any
}
