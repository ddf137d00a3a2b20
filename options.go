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

package rtx

import (
	"log/slog"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/descriptor"
)

type options struct {
	cfg      apis.Config
	loader   apis.Autoloader
	logger   *slog.Logger
	reporter apis.Reporter
	builder  apis.Builder
	copier   apis.Copier
	decls    []*descriptor.Descriptor
}

// Option configures a Context at construction.
type Option func(*options)

// WithConfig replaces the default configuration.
func WithConfig(cfg apis.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithAutoloader installs the autoload hook.
func WithAutoloader(loader apis.Autoloader) Option {
	return func(o *options) { o.loader = loader }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithReporter sets the diagnostic channel. Defaults to a slog reporter on
// the context logger.
func WithReporter(r apis.Reporter) Option {
	return func(o *options) { o.reporter = r }
}

// WithBuilder replaces the registry/resolver builder.
func WithBuilder(b apis.Builder) Option {
	return func(o *options) { o.builder = b }
}

// WithCopier replaces the deep-copy function used by ObjectVars.
func WithCopier(c apis.Copier) Option {
	return func(o *options) { o.copier = c }
}

// WithDeclarations registers descriptors at context start, in order.
func WithDeclarations(ds ...*descriptor.Descriptor) Option {
	return func(o *options) { o.decls = append(o.decls, ds...) }
}
