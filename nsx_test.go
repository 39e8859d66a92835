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
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	apis "dirpx.dev/nsx/apis"
	"dirpx.dev/nsx/builder"
	"dirpx.dev/nsx/config"
)

// ---------------------- Helpers ----------------------

// Reset to a clean snapshot using b. A fresh empty registry is installed
// first so nothing leaks between tests, then pins are cleared.
func resetWithBuilder(tb testing.TB, b apis.Builder, cfg apis.Config) {
	tb.Helper()
	empty := builder.New().BuildRegistry(cfg, nil, nil)
	SetAll(&cfg, slog.Default(), empty, nil, b)
	UnpinRegistry()
}

// ---------------------- Test doubles ----------------------

// countingBuilder delegates to the real builder and records calls.
type countingBuilder struct {
	mu         sync.Mutex
	inner      apis.Builder
	lastCfg    apis.Config
	lastLog    *slog.Logger
	regCounter int
	resCounter int
	returnNil  bool
}

func newCountingBuilder() *countingBuilder {
	return &countingBuilder{inner: builder.New()}
}

func (b *countingBuilder) BuildRegistry(cfg apis.Config, prev apis.Registry, log *slog.Logger) apis.Registry {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCfg, b.lastLog = cfg, log
	b.regCounter++
	if b.returnNil {
		return nil
	}
	return b.inner.BuildRegistry(cfg, prev, log)
}

func (b *countingBuilder) BuildResolver(cfg apis.Config, reg apis.Registry, prev apis.Resolver) apis.Resolver {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resCounter++
	return b.inner.BuildResolver(cfg, reg, prev)
}

func (b *countingBuilder) counters() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.regCounter, b.resCounter
}

// ---------------------- Tests ----------------------

func TestGlobal_RegisterAndResolve(t *testing.T) {
	resetWithBuilder(t, newCountingBuilder(), config.DefaultConfig())

	if err := Register("Bar"); err != nil {
		t.Fatalf("Register(Bar): %v", err)
	}
	if err := Register("Abc123::Foo::Bar"); err != nil {
		t.Fatalf("Register(Abc123::Foo::Bar): %v", err)
	}

	c, ok := Resolve("Abc123::Foo::Bar")
	if !ok || c.FullName() != "Abc123::Foo::Bar" {
		t.Fatalf("Resolve = (%v,%v)", c, ok)
	}
	if c, ok := ResolveIn("Abc123::Foo", "Bar"); !ok || c.FullName() != "Abc123::Foo::Bar" {
		t.Fatalf("ResolveIn(Abc123::Foo, Bar) = (%v,%v)", c, ok)
	}
	if c, ok := ResolveIn("Abc123", "Bar"); !ok || c.FullName() != "Bar" {
		t.Fatalf("ResolveIn(Abc123, Bar) = (%v,%v)", c, ok)
	}
	if Registry().Count() != 4 {
		t.Fatalf("Count = %d, want 4", Registry().Count())
	}

	if err := Register(""); !errors.Is(err, apis.ErrInvalidPath) {
		t.Fatalf("Register(\"\") = %v, want ErrInvalidPath", err)
	}
}

func TestGlobal_BindAndLookup(t *testing.T) {
	resetWithBuilder(t, newCountingBuilder(), config.DefaultConfig())

	if err := Bind("Admin::VERSION", "1.0"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if e, ok := Lookup("Admin::VERSION"); !ok || e.Value != "1.0" {
		t.Fatalf("Lookup = (%+v,%v)", e, ok)
	}
	if err := Register("Admin::VERSION::X"); !errors.Is(err, apis.ErrNameCollision) {
		t.Fatalf("Register through value = %v, want ErrNameCollision", err)
	}
}

func TestSetConfig_Rebuilds_Unpinned_KeepsEntries(t *testing.T) {
	b := newCountingBuilder()
	resetWithBuilder(t, b, config.DefaultConfig())
	_ = Register("Admin::Posts")

	s1Reg := Registry()
	s1Res := Resolver()

	SetConfig(config.NewConfig(config.WithMaxDepth(4)))

	if Registry() == s1Reg {
		t.Fatalf("registry was not rebuilt on SetConfig (unpinned)")
	}
	if Resolver() == s1Res {
		t.Fatalf("resolver was not rebuilt on SetConfig (unpinned)")
	}
	if _, ok := Resolve("Admin::Posts"); !ok {
		t.Fatalf("entries lost across rebuild")
	}
	if Config().MaxDepth != 4 {
		t.Fatalf("Config().MaxDepth = %d, want 4", Config().MaxDepth)
	}
	b.mu.Lock()
	gotCfg := b.lastCfg
	b.mu.Unlock()
	if gotCfg.MaxDepth != 4 {
		t.Fatalf("builder received wrong cfg: %+v", gotCfg)
	}
}

func TestSetRegistry_PinsRegistry_and_RebuildsResolverIfUnpinned(t *testing.T) {
	resetWithBuilder(t, newCountingBuilder(), config.DefaultConfig())

	custom := builder.New().BuildRegistry(config.DefaultConfig(), nil, nil)
	_ = custom.Register("Custom")
	SetRegistry(custom)
	if !IsRegistryPinned() {
		t.Fatalf("SetRegistry must pin the registry")
	}

	if _, ok := ResolveIn("", "Custom"); !ok {
		t.Fatalf("resolver was not rebuilt over the new registry")
	}

	beforeRes := Resolver()
	SetConfig(config.NewConfig(config.WithMaxDepth(8)))

	if Registry() != custom {
		t.Fatalf("pinned registry was rebuilt unexpectedly")
	}
	if Resolver() == beforeRes {
		t.Fatalf("resolver was not rebuilt when cfg changed and res not pinned")
	}
}

func TestSetResolver_PinsResolver(t *testing.T) {
	resetWithBuilder(t, newCountingBuilder(), config.DefaultConfig())

	custom := builder.New().BuildResolver(config.DefaultConfig(), Registry(), nil)
	SetResolver(custom)
	regBefore := Registry()

	SetConfig(config.NewConfig(config.WithMaxDepth(6)))

	if Resolver() != custom {
		t.Fatalf("pinned resolver was rebuilt unexpectedly")
	}
	if Registry() == regBefore {
		t.Fatalf("registry was not rebuilt on SetConfig when resolver is pinned")
	}
}

func TestSetBuilder_Rebuilds_Only_Unpinned(t *testing.T) {
	a := newCountingBuilder()
	resetWithBuilder(t, a, config.DefaultConfig())

	SetResolver(Resolver())
	resBefore := Resolver()

	b := newCountingBuilder()
	SetBuilder(b)

	if Builder() != b {
		t.Fatalf("Builder() did not return the new builder")
	}
	reg, res := b.counters()
	if reg != 1 || res != 0 {
		t.Fatalf("new builder calls = %d/%d, want 1/0", reg, res)
	}
	if Resolver() != resBefore {
		t.Fatalf("pinned resolver was rebuilt after SetBuilder")
	}
}

func TestSetLogger_RebuildsRegistryWithLogger(t *testing.T) {
	b := newCountingBuilder()
	resetWithBuilder(t, b, config.DefaultConfig())

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(l)

	if Logger() != l {
		t.Fatalf("Logger() did not return the new logger")
	}
	b.mu.Lock()
	got := b.lastLog
	b.mu.Unlock()
	if got != l {
		t.Fatalf("builder did not receive the logger")
	}

	_ = Register("Logged")
	_ = Register("Logged")
	out := buf.String()
	if !strings.Contains(out, "namespace created") || !strings.Contains(out, "namespace already defined") {
		t.Fatalf("unexpected log output:\n%s", out)
	}
}

func TestUnpin_Allows_Rebuild_After(t *testing.T) {
	b := newCountingBuilder()
	resetWithBuilder(t, b, config.DefaultConfig())

	PinRegistry()
	PinResolver()
	if !IsRegistryPinned() || !IsResolverPinned() {
		t.Fatalf("pins not recorded")
	}

	reg1 := Registry()
	res1 := Resolver()
	SetConfig(config.NewConfig(config.WithMaxDepth(4)))
	if Registry() != reg1 || Resolver() != res1 {
		t.Fatalf("pinned layers should not rebuild on SetConfig")
	}

	UnpinRegistry()
	UnpinResolver()
	SetConfig(config.NewConfig(config.WithMaxDepth(6)))
	if Registry() == reg1 {
		t.Fatalf("registry should rebuild after UnpinRegistry+SetConfig")
	}
	if Resolver() == res1 {
		t.Fatalf("resolver should rebuild after UnpinResolver+SetConfig")
	}
}

func TestSetConfig_NilRegistryPanics(t *testing.T) {
	b := newCountingBuilder()
	resetWithBuilder(t, b, config.DefaultConfig())
	b.mu.Lock()
	b.returnNil = true
	b.mu.Unlock()

	defer func() {
		r := recover()
		if r != ErrNilRegistry {
			t.Fatalf("recover() = %v, want ErrNilRegistry", r)
		}
		// Leave a usable state behind for other tests.
		resetWithBuilder(t, builder.New(), config.DefaultConfig())
	}()
	SetConfig(config.DefaultConfig())
}

func TestRegister_Concurrent_With_SetConfig(t *testing.T) {
	resetWithBuilder(t, newCountingBuilder(), config.DefaultConfig())
	if err := Register("Stable::Root"); err != nil {
		t.Fatalf("Register(Stable::Root): %v", err)
	}

	const perWriter = 500
	writers := runtime.GOMAXPROCS(0) * 4

	stop := make(chan struct{})
	rebuilt := make(chan struct{})
	go func() {
		defer close(rebuilt)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			SetConfig(config.NewConfig(config.WithMaxDepth(8 + i%5)))
			time.Sleep(100 * time.Microsecond)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				p := fmt.Sprintf("P%d::N%d", w, i)
				if err := Register(p); err != nil {
					t.Errorf("Register(%s): %v", p, err)
					return
				}
				_, _ = Resolve("Stable::Root")
				_, _ = ResolveIn("Stable::Root", "Leaf")
			}
		}(w)
	}
	wg.Wait()
	close(stop)
	<-rebuilt

	// One more rebuild after all writers finished.
	SetConfig(config.DefaultConfig())

	if _, ok := Resolve("Stable::Root"); !ok {
		t.Fatalf("Stable::Root lost across concurrent rebuilds")
	}
	for w := 0; w < writers; w++ {
		for i := 0; i < perWriter; i++ {
			p := fmt.Sprintf("P%d::N%d", w, i)
			if _, ok := Resolve(p); !ok {
				t.Fatalf("%s was registered but lost across concurrent rebuilds", p)
			}
		}
	}
	// Stable, Stable::Root, and per writer P<w> plus its children.
	if got, want := Registry().Count(), 2+writers*(perWriter+1); got != want {
		t.Fatalf("Count() = %d, want %d", got, want)
	}
}

func TestBind_Concurrent_With_SetConfig(t *testing.T) {
	resetWithBuilder(t, builder.New(), config.DefaultConfig())

	const n = 300
	stop := make(chan struct{})
	rebuilt := make(chan struct{})
	go func() {
		defer close(rebuilt)
		for {
			select {
			case <-stop:
				return
			default:
			}
			SetConfig(config.DefaultConfig())
		}
	}()

	for i := 0; i < n; i++ {
		p := fmt.Sprintf("Limits::MAX_%d", i)
		if err := Bind(p, i); err != nil {
			t.Fatalf("Bind(%s): %v", p, err)
		}
	}
	close(stop)
	<-rebuilt

	for i := 0; i < n; i++ {
		p := fmt.Sprintf("Limits::MAX_%d", i)
		e, ok := Lookup(p)
		if !ok || e.Value != i {
			t.Fatalf("Lookup(%s) = (%v,%v), want value %d", p, e.Value, ok, i)
		}
	}
}
