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

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/registry"
	"dirpx.dev/rtx/resolver"
	"dirpx.dev/rtx/strategy"
)

// New creates and returns a new instance of an apis.Builder. Autoload
// strategies built by it log through logger (slog.Default when nil).
func New(logger *slog.Logger) apis.Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &builder{logger: logger}
}

type builder struct {
	logger *slog.Logger
}

// BuildRegistry builds a new apis.Registry for cfg. Bindings of prev, aliases
// included, are copied in their original registration order.
func (b *builder) BuildRegistry(cfg apis.Config, prev apis.Registry) apis.Registry {
	nreg := registry.New(cfg)
	if prev == nil {
		return nreg
	}
	for _, e := range prev.Entries() {
		var err error
		if e.Alias {
			err = nreg.Alias(e.Descriptor, e.Name)
		} else {
			err = nreg.Register(e.Descriptor)
		}
		if err != nil {
			b.logger.Warn("dropping binding during registry migration",
				slog.String("name", e.Name),
				slog.Any("error", err),
			)
		}
	}
	return nreg
}

// BuildResolver builds the registry-then-autoload chain over reg.
func (b *builder) BuildResolver(_ apis.Config, reg apis.Registry, loader apis.Autoloader) apis.Resolver {
	strats := []apis.Strategy{strategy.NewRegistryStrategy(reg)}
	if loader != nil {
		strats = append(strats, strategy.NewAutoloadStrategy(reg, loader, b.logger))
	}
	return resolver.New(strats...)
}
