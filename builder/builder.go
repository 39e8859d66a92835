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

package builder

import (
	"log/slog"
	"strings"

	"dirpx.dev/nsx/apis"
	"dirpx.dev/nsx/registry"
	"dirpx.dev/nsx/resolver"
	"dirpx.dev/nsx/strategy"
	upath "dirpx.dev/nsx/utils/path"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds a new apis.Registry for cfg. If a previous registry is
// provided, its entries are replayed into the new one, parents first, with
// paths re-joined by the new separator. Entries the new config rejects are
// logged and dropped.
func (b *builder) BuildRegistry(cfg apis.Config, prev apis.Registry, log *slog.Logger) apis.Registry {
	if log == nil {
		log = slog.Default()
	}
	nreg := registry.New(cfg, registry.WithLogger(log))
	if prev == nil {
		return nreg
	}

	sep := nreg.Config().Separator
	psep := prev.Config().Separator
	for _, e := range prev.Entries() {
		p := e.Path
		if psep != sep {
			p = upath.Join(strings.Split(p, psep), sep)
		}
		var err error
		switch e.Kind {
		case apis.KindContainer:
			err = nreg.Register(p)
		case apis.KindValue:
			err = nreg.Bind(p, e.Value)
		}
		if err != nil {
			log.Warn("dropping entry during rebuild", "path", e.Path, "error", err)
		}
	}
	return nreg
}

// BuildResolver returns the absolute -> lexical strategy chain over reg.
func (b *builder) BuildResolver(_ apis.Config, reg apis.Registry, _ apis.Resolver) apis.Resolver {
	return resolver.New(
		strategy.NewAbsoluteStrategy(reg),
		strategy.NewLexicalStrategy(reg),
	)
}
