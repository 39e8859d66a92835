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
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"dirpx.dev/nsx/apis"
	"dirpx.dev/nsx/config"
	upath "dirpx.dev/nsx/utils/path"
)

// Option customizes a registry built by New.
type Option func(*registry)

// WithLogger sets the logger receiving registry diagnostics.
// A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *registry) {
		if l != nil {
			r.log = l
		}
	}
}

// New constructs an empty Registry that parses paths according to cfg.
// Zero knobs in cfg are replaced with config defaults.
func New(cfg apis.Config, opts ...Option) apis.Registry {
	r := &registry{
		cfg:  config.Normalize(cfg),
		log:  slog.Default(),
		root: &module{children: make(map[string]*module)},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.root.sep = r.cfg.Separator
	return r
}

// registry is a Registry implementation backed by sync.Map.
//
// Reads never lock. Every binding is created with a create-if-absent step:
// a lock-free probe, then a re-check and store under mu. This keeps
// overlapping Register calls from creating the same container twice.
type registry struct {
	// cfg is the configuration used for path parsing.
	cfg apis.Config
	// log receives diagnostics.
	log *slog.Logger
	// mu serializes creation and guards count.
	mu sync.Mutex
	// m maps fully-qualified path to *binding.
	m sync.Map
	// root is the unnamed parent of all top-level containers.
	root *module
	// count tracks the number of containers.
	count int

	created    atomic.Uint64
	skipped    atomic.Uint64
	collisions atomic.Uint64
}

// binding is what a path is bound to: a container or a plain value.
type binding struct {
	kind  apis.Kind
	mod   *module
	value any
}

// Ensure registry implements apis.Registry.
var _ apis.Registry = (*registry)(nil)

// Config returns the configuration the registry was built with.
func (r *registry) Config() apis.Config { return r.cfg }

// Register ensures every prefix of path exists as a container.
// Prefixes are visited shortest first, so each parent exists by the time
// its child is created.
func (r *registry) Register(path string) error {
	segs, err := upath.Split(path, r.cfg)
	if err != nil {
		return err
	}
	for _, p := range upath.Prefixes(segs) {
		last := len(p) - 1
		if _, err := r.resolveOrCreate(p[last], p[:last]); err != nil {
			return err
		}
	}
	return nil
}

// ResolveOrCreate returns the container prefix+[name], creating it under the
// container at prefix if absent. The parent must already be registered.
func (r *registry) ResolveOrCreate(name string, prefix []string) (apis.Container, error) {
	segs := make([]string, 0, len(prefix)+1)
	segs = append(segs, prefix...)
	segs = append(segs, name)
	full := upath.Join(segs, r.cfg.Separator)
	// Segments are checked one by one: a name holding the separator would
	// otherwise re-split into a valid path and land at the wrong depth.
	for i, s := range segs {
		if s == "" {
			return nil, &apis.InvalidPathError{Path: full, Reason: fmt.Sprintf("empty segment at position %d", i)}
		}
		if !upath.ValidSegment(s, r.cfg.StrictNames) {
			return nil, &apis.InvalidPathError{Path: full, Reason: fmt.Sprintf("invalid segment %q", s)}
		}
	}
	if _, err := upath.Split(full, r.cfg); err != nil {
		return nil, err
	}
	m, err := r.resolveOrCreate(name, prefix)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// resolveOrCreate assumes name and prefix are valid segments.
func (r *registry) resolveOrCreate(name string, prefix []string) (*module, error) {
	full := r.join(prefix, name)

	// Fast read path: already defined.
	if b, ok := r.load(full); ok {
		return r.existing(full, b)
	}

	// Write path: re-check under lock in case another goroutine stored meanwhile.
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.load(full); ok {
		return r.existing(full, b)
	}

	parent, err := r.parentLocked(full, prefix)
	if err != nil {
		return nil, err
	}

	m := parent.newChild(name)
	r.m.Store(full, &binding{kind: apis.KindContainer, mod: m})
	r.count++
	r.created.Add(1)
	r.log.Debug("namespace created", "path", full)
	return m, nil
}

// existing handles a path that is already bound.
func (r *registry) existing(full string, b *binding) (*module, error) {
	if b.kind != apis.KindContainer {
		return nil, r.collision(full, b.kind)
	}
	r.skipped.Add(1)
	r.log.Debug("namespace already defined", "path", full)
	return b.mod, nil
}

// parentLocked returns the container at prefix, or the root for an empty prefix.
// Caller must hold mu.
func (r *registry) parentLocked(full string, prefix []string) (*module, error) {
	if len(prefix) == 0 {
		return r.root, nil
	}
	pp := upath.Join(prefix, r.cfg.Separator)
	pb, ok := r.load(pp)
	if !ok {
		return nil, &apis.InvalidPathError{Path: full, Reason: fmt.Sprintf("parent %q not registered", pp)}
	}
	if pb.kind != apis.KindContainer {
		return nil, r.collision(pp, pb.kind)
	}
	return pb.mod, nil
}

// Bind associates v with path. The parent namespace is registered first.
// Binding the same value again is a no-op; anything else already bound at
// path is a collision.
func (r *registry) Bind(path string, v any) error {
	segs, err := upath.Split(path, r.cfg)
	if err != nil {
		return err
	}
	last := len(segs) - 1
	if last > 0 {
		if err := r.Register(upath.Join(segs[:last], r.cfg.Separator)); err != nil {
			return err
		}
	}

	if b, ok := r.load(path); ok {
		return r.rebind(path, b, v)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.load(path); ok {
		return r.rebind(path, b, v)
	}
	if _, err := r.parentLocked(path, segs[:last]); err != nil {
		return err
	}
	r.m.Store(path, &binding{kind: apis.KindValue, value: v})
	r.log.Debug("value bound", "path", path)
	return nil
}

func (r *registry) rebind(path string, b *binding, v any) error {
	if b.kind == apis.KindValue && reflect.DeepEqual(b.value, v) {
		return nil
	}
	return r.collision(path, b.kind)
}

func (r *registry) collision(path string, existing apis.Kind) error {
	r.collisions.Add(1)
	r.log.Warn("name collision", "path", path, "existing", existing.String())
	return &apis.NameCollisionError{Path: path, Existing: existing}
}

// Resolve returns the container registered at path.
func (r *registry) Resolve(path string) (apis.Container, bool) {
	b, ok := r.load(path)
	if !ok || b.kind != apis.KindContainer {
		return nil, false
	}
	return b.mod, true
}

// Lookup returns any binding at path.
func (r *registry) Lookup(path string) (apis.Entry, bool) {
	b, ok := r.load(path)
	if !ok {
		return apis.Entry{}, false
	}
	return r.entry(path, b), true
}

// Entries returns a snapshot ordered by depth, then path, so that replaying
// it in order always finds parents before children.
func (r *registry) Entries() []apis.Entry {
	entries := make([]apis.Entry, 0, r.Count())
	r.m.Range(func(key, value any) bool {
		entries = append(entries, r.entry(key.(string), value.(*binding)))
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Depth != entries[j].Depth {
			return entries[i].Depth < entries[j].Depth
		}
		return entries[i].Path < entries[j].Path
	})
	return entries
}

// Count returns the number of registered containers.
func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Walk visits containers depth-first in name order.
func (r *registry) Walk(fn func(c apis.Container) bool) {
	var visit func(m *module) bool
	visit = func(m *module) bool {
		for _, c := range m.sortedChildren() {
			if !fn(c) || !visit(c) {
				return false
			}
		}
		return true
	}
	visit(r.root)
}

func (r *registry) entry(path string, b *binding) apis.Entry {
	e := apis.Entry{Path: path, Kind: b.kind, Value: b.value}
	if b.kind == apis.KindContainer {
		e.Container = b.mod
		e.Depth = b.mod.depth
	} else {
		e.Depth = depthOf(path, r.cfg.Separator)
	}
	return e
}

func (r *registry) load(path string) (*binding, bool) {
	v, ok := r.m.Load(path)
	if !ok {
		return nil, false
	}
	return v.(*binding), true
}

func (r *registry) join(prefix []string, name string) string {
	if len(prefix) == 0 {
		return name
	}
	return upath.Join(prefix, r.cfg.Separator) + r.cfg.Separator + name
}

// Stats are cumulative registry counters.
type Stats struct {
	// Created counts containers created.
	Created uint64
	// Skipped counts create-if-absent steps that found the container already defined.
	Skipped uint64
	// Collisions counts NameCollisionErrors returned.
	Collisions uint64
}

// StatsOf returns the counters of a registry built by New.
// Other implementations report ok=false.
func StatsOf(reg apis.Registry) (Stats, bool) {
	r, ok := reg.(*registry)
	if !ok {
		return Stats{}, false
	}
	return Stats{
		Created:    r.created.Load(),
		Skipped:    r.skipped.Load(),
		Collisions: r.collisions.Load(),
	}, true
}
