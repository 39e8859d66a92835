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

package nsx

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"dirpx.dev/nsx/apis"
	"dirpx.dev/nsx/builder"
	"dirpx.dev/nsx/config"
)

// init initializes the global nsx state.
func init() {
	// Initialize state with default cfg, reg, and res.
	s := &state{cfg: config.DefaultConfig()}
	b := builder.New()
	s.reg = b.BuildRegistry(s.cfg, nil, nil)
	s.res = b.BuildResolver(s.cfg, s.reg, nil)
	s.bld = b
	// Store the initial state atomically.
	st.Store(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("nsx: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("nsx: builder returned nil resolver")
)

// Register ensures every prefix of path exists in the global registry.
// It holds off rebuilds until the write lands, so a concurrent SetConfig
// either replays it or runs after it.
func Register(path string) error {
	buildMu.RLock()
	defer buildMu.RUnlock()
	return st.Load().reg.Register(path)
}

// Resolve returns the container registered at path in the global registry.
func Resolve(path string) (apis.Container, bool) {
	return st.Load().reg.Resolve(path)
}

// ResolveIn resolves name as seen from inside scope using the global resolver.
func ResolveIn(scope, name string) (apis.Container, bool) {
	return st.Load().res.Resolve(scope, name)
}

// Bind associates a value with path in the global registry.
// Like Register, it is never lost to a concurrent rebuild.
func Bind(path string, v any) error {
	buildMu.RLock()
	defer buildMu.RUnlock()
	return st.Load().reg.Bind(path, v)
}

// Lookup returns any binding at path in the global registry.
func Lookup(path string) (apis.Entry, bool) {
	return st.Load().reg.Lookup(path)
}

// SetAll explicitly sets all global nsx state components.
//
// Nil arguments leave the corresponding component unchanged, except that a
// nil reg or res is rebuilt by the builder rather than kept. Pins are reset
// for layers that get rebuilt.
func SetAll(cfg *apis.Config, log *slog.Logger, reg apis.Registry, res apis.Resolver, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()

	ncfg := old.cfg
	if cfg != nil {
		ncfg = config.Normalize(*cfg)
	}
	nlog := old.log
	if log != nil {
		nlog = log
	}
	nbld := old.bld
	if bld != nil {
		nbld = bld
	}

	// Registry
	nreg := reg
	npreg := false
	if nreg == nil {
		nreg = nbld.BuildRegistry(ncfg, old.reg, nlog)
	} else {
		npreg = true
	}

	// Resolver
	nres := res
	npres := false
	if nres == nil {
		nres = nbld.BuildResolver(ncfg, nreg, old.res)
	} else {
		npres = true
	}

	if nreg == nil {
		panic(ErrNilRegistry)
	}
	if nres == nil {
		panic(ErrNilResolver)
	}

	st.Store(&state{cfg: ncfg, log: nlog, reg: nreg, res: nres, bld: nbld, preg: npreg, pres: npres})
}

// Config returns the global nsx configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration and rebuilds the non-pinned layers.
// The rebuilt registry keeps every entry the new configuration accepts.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := old.with()
	next.cfg = config.Normalize(cfg)
	rebuild(old, next)
	st.Store(next)
}

// Registry returns the global registry.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry replaces and pins the global registry.
// A non-pinned resolver is rebuilt over it.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := old.with()
	next.reg = reg
	next.preg = true
	if !old.pres {
		next.res = old.bld.BuildResolver(old.cfg, reg, old.res)
	}
	if next.res == nil {
		panic(ErrNilResolver)
	}
	st.Store(next)
}

// Resolver returns the global resolver.
func Resolver() apis.Resolver {
	return st.Load().res
}

// SetResolver replaces and pins the global resolver.
func SetResolver(res apis.Resolver) {
	if res == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := st.Load().with()
	next.res = res
	next.pres = true
	st.Store(next)
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder replaces the global builder and rebuilds the non-pinned layers with it.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := old.with()
	next.bld = b
	rebuild(old, next)
	st.Store(next)
}

// Logger returns the logger handed to the builder.
func Logger() *slog.Logger {
	if l := st.Load().log; l != nil {
		return l
	}
	return slog.Default()
}

// SetLogger replaces the logger and rebuilds a non-pinned registry so that
// it logs through l.
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := old.with()
	next.log = l
	rebuild(old, next)
	st.Store(next)
}

// IsRegistryPinned returns whether the global registry is pinned.
func IsRegistryPinned() bool {
	return st.Load().preg
}

// PinRegistry stops automatic rebuilds of the global registry.
func PinRegistry() { setPins(true, st.Load().pres) }

// UnpinRegistry re-enables automatic rebuilds of the global registry.
func UnpinRegistry() { setPins(false, st.Load().pres) }

// IsResolverPinned returns whether the global resolver is pinned.
func IsResolverPinned() bool {
	return st.Load().pres
}

// PinResolver stops automatic rebuilds of the global resolver.
func PinResolver() { setPins(st.Load().preg, true) }

// UnpinResolver re-enables automatic rebuilds of the global resolver.
func UnpinResolver() { setPins(st.Load().preg, false) }

func setPins(preg, pres bool) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := st.Load().with()
	next.preg, next.pres = preg, pres
	st.Store(next)
}

// rebuild fills next.reg/next.res from next.bld for non-pinned layers.
// Caller must hold buildMu.
func rebuild(old, next *state) {
	if !old.preg {
		next.reg = next.bld.BuildRegistry(next.cfg, old.reg, next.log)
	}
	if !old.pres {
		next.res = next.bld.BuildResolver(next.cfg, next.reg, old.res)
	}
	if next.reg == nil {
		panic(ErrNilRegistry)
	}
	if next.res == nil {
		panic(ErrNilResolver)
	}
}

// buildMu serializes reconfigurations/swaps (Lock) so we never publish
// partially-built snapshots. Global Register/Bind hold RLock so a rebuild
// never snapshots a registry that is still being written to.
var buildMu sync.RWMutex

// st is the global nsx state.
var st atomic.Pointer[state]

// state is the global nsx state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// log is handed to the builder; nil means slog.Default().
	log *slog.Logger
	// reg is the global registry.
	reg apis.Registry
	// res is the global resolver.
	res apis.Resolver
	// bld is the global builder.
	bld apis.Builder
	// preg indicates whether the reg is pinned.
	preg bool
	// pres indicates whether the res is pinned.
	pres bool
}

// with returns an unpublished copy of s.
func (s *state) with() *state {
	c := *s
	return &c
}
