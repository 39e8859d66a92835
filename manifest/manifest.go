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

// Package manifest loads declarative namespace lists and applies them to a
// registry. Two formats are understood, chosen by file extension:
//
// TOML (.toml):
//
//	namespaces = ["Admin::Posts", "Admin::Users"]
//
//	[[constant]]
//	path  = "Admin::VERSION"
//	value = "1.2"
//
// HCL (.hcl):
//
//	namespace "Admin::Posts" {}
//	namespace "Admin::Users" {}
//
//	constant "Admin::VERSION" {
//	  value = "1.2"
//	}
//
// Applying a manifest is additive: namespaces that already exist are kept,
// and dropping a line from a manifest never removes anything.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"dirpx.dev/nsx/apis"
	"dirpx.dev/nsx/internal/ctxlog"
)

// ErrUnknownFormat is returned by Load for files that are neither .toml nor .hcl.
var ErrUnknownFormat = errors.New("manifest: unknown format")

// Constant is a value bound at a path.
// Values are string, int64, float64 or bool.
type Constant struct {
	Path  string `toml:"path"`
	Value any    `toml:"value"`
}

// Manifest is the decoded content of one manifest file.
type Manifest struct {
	// Source is the file the manifest was loaded from.
	Source     string     `toml:"-"`
	Namespaces []string   `toml:"namespaces"`
	Constants  []Constant `toml:"constant"`
}

// Report summarizes one Apply call.
type Report struct {
	// Created counts namespaces that did not resolve before Apply.
	Created int
	// Existing counts namespaces that were already registered.
	Existing int
	// Constants counts constants bound (or confirmed) successfully.
	Constants int
	// Failed counts entries that returned an error.
	Failed int
}

// Load reads and decodes file according to its extension.
func Load(ctx context.Context, file string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading manifest.", "path", file)

	var (
		m   *Manifest
		err error
	)
	switch strings.ToLower(filepath.Ext(file)) {
	case ".toml":
		m, err = loadTOML(file)
	case ".hcl":
		m, err = loadHCL(file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, file)
	}
	if err != nil {
		return nil, err
	}
	m.Source = file

	logger.Debug("Loaded manifest.", "path", file, "namespaces", len(m.Namespaces), "constants", len(m.Constants))
	return m, nil
}

// Apply registers every namespace and binds every constant of m in reg.
// It keeps going after a failure and returns all failures joined.
func Apply(ctx context.Context, reg apis.Registry, m *Manifest) (Report, error) {
	logger := ctxlog.FromContext(ctx)

	var (
		rep  Report
		errs []error
	)
	for _, p := range m.Namespaces {
		_, existed := reg.Resolve(p)
		if err := reg.Register(p); err != nil {
			rep.Failed++
			errs = append(errs, fmt.Errorf("%s: namespace %q: %w", m.Source, p, err))
			continue
		}
		if existed {
			rep.Existing++
		} else {
			rep.Created++
		}
	}
	for _, c := range m.Constants {
		if err := reg.Bind(c.Path, c.Value); err != nil {
			rep.Failed++
			errs = append(errs, fmt.Errorf("%s: constant %q: %w", m.Source, c.Path, err))
			continue
		}
		rep.Constants++
	}

	logger.Info("Applied manifest.", "path", m.Source,
		"created", rep.Created, "existing", rep.Existing, "constants", rep.Constants, "failed", rep.Failed)
	return rep, errors.Join(errs...)
}

// LoadAndApply is Load followed by Apply.
func LoadAndApply(ctx context.Context, reg apis.Registry, file string) (Report, error) {
	m, err := Load(ctx, file)
	if err != nil {
		return Report{}, err
	}
	return Apply(ctx, reg, m)
}
