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

// Package diag provides diagnostic channel implementations.
package diag

import (
	"context"
	"log/slog"
	"sync"

	"dirpx.dev/rtx/apis"
)

// NewSlogReporter returns a Reporter that logs each diagnostic as a warning.
func NewSlogReporter(logger *slog.Logger) apis.Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogReporter{logger: logger}
}

type slogReporter struct {
	logger *slog.Logger
}

func (r *slogReporter) Report(d apis.Diagnostic) {
	r.logger.LogAttrs(context.Background(), slog.LevelWarn, d.Message,
		slog.String("code", d.Code.String()),
		slog.String("op", d.Op),
		slog.String("arg", d.Arg),
	)
}

// Discard drops every diagnostic.
var Discard apis.Reporter = apis.ReporterFunc(func(apis.Diagnostic) {})

// Recorder keeps diagnostics in memory. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []apis.Diagnostic
}

// Ensure Recorder implements apis.Reporter.
var _ apis.Reporter = (*Recorder)(nil)

// Report records d.
func (r *Recorder) Report(d apis.Diagnostic) {
	r.mu.Lock()
	r.items = append(r.items, d)
	r.mu.Unlock()
}

// Diagnostics returns a copy of the recorded diagnostics.
func (r *Recorder) Diagnostics() []apis.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]apis.Diagnostic, len(r.items))
	copy(out, r.items)
	return out
}

// Reset discards recorded diagnostics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}

// Tee reports to every reporter in order.
func Tee(reporters ...apis.Reporter) apis.Reporter {
	return apis.ReporterFunc(func(d apis.Diagnostic) {
		for _, r := range reporters {
			if r != nil {
				r.Report(d)
			}
		}
	})
}
