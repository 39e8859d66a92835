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

// Package nsx provides a process-wide registry of hierarchical namespaces.
//
// A namespace is addressed by a dotted path such as "Abc123::Foo::Bar".
// nsx makes sure every prefix of such a path exists as a container
// ("Abc123", "Abc123::Foo", "Abc123::Foo::Bar"), creating only the missing
// ones and never touching containers that already exist. This is the
// "define the module unless it is already defined" step that load-time code
// runs when it wires nested namespaces on the fly.
//
// # Design
//
// The core of nsx is a read-mostly global snapshot (state). The snapshot
// holds:
//
//   - Config: how paths are parsed (separator, depth limit, naming rules).
//
//   - Registry: the symbol table. It maps fully-qualified paths to
//     containers (or to plain values bound with Bind) and keeps each
//     container reachable from its parent's child mapping as well.
//
//   - Resolver: answers "what does this name refer to when used inside
//     that scope?". The default chain handles anchored names ("::Bar")
//     first, then walks from the innermost scope outward, the way nested
//     constant lookup does.
//
//   - Builder: a pluggable factory for Registry and Resolver. On rebuild it
//     replays the previous registry's entries, parents first, so changing
//     the Config does not lose namespaces.
//
// The package holds an atomic pointer to the current state. Readers load
// that pointer and never mutate it. Writers build a brand-new state under a
// mutex and atomically swap it in.
//
// # Concurrency model
//
// Register, Resolve, ResolveIn, Bind and Lookup are safe for concurrent use.
// Lookups are lock-free. Each container is created with an atomic
// create-if-absent step, so two goroutines registering overlapping paths
// agree on a single container per prefix.
//
// Register and Bind also exclude rebuilds (SetConfig, SetBuilder, SetLogger,
// SetAll): a rebuild waits for in-flight writes and replays them, so a write
// that returned nil is never dropped. Writes made through a *Registry()
// reference obtained before a rebuild go to the old registry.
//
// # Pinning
//
// SetRegistry and SetResolver install a caller-provided layer and pin it:
// later SetConfig, SetBuilder or SetLogger calls leave a pinned layer alone
// until it is unpinned again.
//
// # Usage
//
//	if err := nsx.Register("Admin::Posts"); err != nil {
//		return err
//	}
//	posts, _ := nsx.Resolve("Admin::Posts")
//	bar, _ := nsx.ResolveIn("Abc123::Foo", "Bar")
//
// Tests should build their own registry with registry.New, or call SetAll to
// install a clean snapshot.
package nsx
