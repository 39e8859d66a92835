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

package manifest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"dirpx.dev/nsx/apis"
	"dirpx.dev/nsx/internal/ctxlog"
)

// DefaultDebounce is how long a file must stay quiet before it is re-applied.
const DefaultDebounce = 100 * time.Millisecond

// Result is the outcome of applying one manifest file.
type Result struct {
	File   string
	Report Report
	Err    error
}

// Watcher re-applies manifest files to a registry whenever they change.
// Directories are watched rather than files so that editors replacing a
// file on save are still noticed.
type Watcher struct {
	Debounce time.Duration
	// Results receives one Result per apply. Sends never block; results are
	// dropped when nobody keeps up.
	Results <-chan Result

	results chan Result
	reg     apis.Registry
	files   map[string]struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given manifest files.
func NewWatcher(reg apis.Registry, files ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		Debounce: DefaultDebounce,
		reg:      reg,
		files:    make(map[string]struct{}, len(files)),
		watcher:  fw,
	}
	w.results = make(chan Result, 16)
	w.Results = w.results

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", d, err)
		}
	}
	return w, nil
}

// Run applies every file once, then re-applies files as they change until
// ctx is done. It closes the underlying watcher and Results on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.results)
	defer w.watcher.Close()

	for f := range w.files {
		w.apply(ctx, f)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	logger := ctxlog.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if _, tracked := w.files[filepath.Clean(event.Name)]; !tracked {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending[filepath.Clean(event.Name)] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= debounce {
					delete(pending, file)
					w.apply(ctx, file)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Manifest watch error.", "error", err)
		}
	}
}

func (w *Watcher) apply(ctx context.Context, file string) {
	rep, err := LoadAndApply(ctx, w.reg, file)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Manifest apply failed.", "path", file, "error", err)
	}
	select {
	case w.results <- Result{File: file, Report: rep, Err: err}:
	default:
	}
}
