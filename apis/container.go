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

// Container is a named node of the namespace tree. It may hold child containers.
// Containers are never removed or renamed once created, so a Container value
// stays valid for the lifetime of the registry that created it.
type Container interface {
	// Name returns the local (last) segment of the container path.
	Name() string
	// FullName returns the fully-qualified path, ancestors joined by the separator.
	FullName() string
	// Parent returns the enclosing container, or nil for top-level containers.
	Parent() Container
	// Depth returns the number of segments in FullName (1 for top level).
	Depth() int
	// Child returns the direct child container with the given local name.
	Child(name string) (Container, bool)
	// Children returns a snapshot of direct child containers sorted by name.
	Children() []Container
}
