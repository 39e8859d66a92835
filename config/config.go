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

package config

import (
	"dirpx.dev/nsx/apis"
)

const (
	// DefaultSeparator represents the default for Separator.
	DefaultSeparator = "::"
	// DefaultMaxDepth represents the default for MaxDepth.
	// A value of 32 should be sufficient for all practical purposes.
	DefaultMaxDepth = 32
	// DefaultStrictNames represents the default for StrictNames.
	// When true, segments must look like constant names ("Admin", "V2").
	DefaultStrictNames = true
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return Normalize(cfg)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Separator:   DefaultSeparator,
		MaxDepth:    DefaultMaxDepth,
		StrictNames: DefaultStrictNames,
	}
}

// Normalize replaces zero or invalid knobs with their defaults.
func Normalize(cfg apis.Config) apis.Config {
	if cfg.Separator == "" {
		cfg.Separator = DefaultSeparator
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithSeparator sets the Separator option.
// An empty separator resets to the default.
func WithSeparator(sep string) Option {
	return func(c *apis.Config) {
		if sep == "" {
			c.Separator = DefaultSeparator
			return
		}
		c.Separator = sep
	}
}

// WithMaxDepth sets the MaxDepth option.
// A non-positive value resets to the default.
func WithMaxDepth(max int) Option {
	return func(c *apis.Config) {
		if max <= 0 {
			c.MaxDepth = DefaultMaxDepth
			return
		}
		c.MaxDepth = max
	}
}

// WithStrictNames sets the StrictNames option.
func WithStrictNames(strict bool) Option {
	return func(c *apis.Config) {
		c.StrictNames = strict
	}
}
