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

package strategy

import (
	"context"
	"log/slog"
	"sync"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/descriptor"
	"dirpx.dev/rtx/names"
)

// NewAutoloadStrategy creates an apis.Strategy that invokes loader on a
// registry miss and looks the name up once more afterwards.
//
// Loads are tracked per normalized name and per call chain. The chain is
// carried in the context.Context handed to the loader:
//
//   - A resolution of a name that its own chain is already loading reports
//     a miss without calling the loader, so recursive autoloading ends in a
//     deterministic "not found".
//   - A resolution from another chain waits for the running load, then looks
//     the name up. If waiting would close a cycle of chains waiting on each
//     other, it reports a miss instead.
//
// No lock is held while the loader runs, so the loader may freely re-enter
// the registry and resolver.
func NewAutoloadStrategy(reg apis.Registry, loader apis.Autoloader, logger *slog.Logger) apis.Strategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &autoloadStrategy{
		reg:      reg,
		loader:   loader,
		logger:   logger,
		inflight: make(map[string]*flight),
	}
}

type autoloadStrategy struct {
	reg    apis.Registry
	loader apis.Autoloader
	logger *slog.Logger

	// mu guards inflight and the held/waiting fields of every chain.
	mu       sync.Mutex
	inflight map[string]*flight
}

// flight is one running load.
type flight struct {
	owner *chain
	done  chan struct{}
}

// chain is one resolution call chain.
type chain struct {
	held    map[string]struct{}
	waiting *flight
}

type chainKey struct{}

// Ensure autoloadStrategy implements apis.Strategy.
var _ apis.Strategy = (*autoloadStrategy)(nil)

// TryResolve runs the loader for name when autoload is requested.
func (s *autoloadStrategy) TryResolve(ctx context.Context, name string, autoload bool) (*descriptor.Descriptor, bool) {
	if !autoload || s.loader == nil || s.reg == nil {
		return nil, false
	}
	key, err := s.reg.Key(name)
	if err != nil {
		return nil, false
	}
	canonical := names.Canonical(name)

	if ctx == nil {
		ctx = context.Background()
	}
	ch, _ := ctx.Value(chainKey{}).(*chain)
	if ch == nil {
		ch = &chain{held: make(map[string]struct{})}
		ctx = context.WithValue(ctx, chainKey{}, ch)
	}

	s.mu.Lock()
	if _, reentrant := ch.held[key]; reentrant {
		s.mu.Unlock()
		s.logger.Debug("autoload already in progress on this chain, treating as not found",
			slog.String("name", canonical),
		)
		return nil, false
	}
	if f, busy := s.inflight[key]; busy {
		return s.wait(ctx, ch, f, name, canonical)
	}
	// A load may have finished between the registry strategy and here.
	if d, ok := s.reg.Lookup(name); ok {
		s.mu.Unlock()
		return d, true
	}
	f := &flight{owner: ch, done: make(chan struct{})}
	s.inflight[key] = f
	ch.held[key] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		delete(ch.held, key)
		s.mu.Unlock()
		close(f.done)
	}()

	attempted := s.loader.TryAutoload(ctx, canonical)
	d, ok := s.reg.Lookup(name)

	s.logger.Debug("autoload finished",
		slog.String("name", canonical),
		slog.Bool("attempted", attempted),
		slog.Bool("declared", ok),
	)
	return d, ok
}

// wait blocks until f completes and looks name up. Callers hold s.mu; wait
// releases it.
func (s *autoloadStrategy) wait(ctx context.Context, ch *chain, f *flight, name, canonical string) (*descriptor.Descriptor, bool) {
	if s.closesCycle(ch, f) {
		s.mu.Unlock()
		s.logger.Debug("autoload waits on a chain waiting for this one, treating as not found",
			slog.String("name", canonical),
		)
		return nil, false
	}
	ch.waiting = f
	s.mu.Unlock()

	select {
	case <-f.done:
	case <-ctx.Done():
	}

	s.mu.Lock()
	ch.waiting = nil
	s.mu.Unlock()

	if ctx.Err() != nil {
		return nil, false
	}
	return s.reg.Lookup(name)
}

// closesCycle reports whether ch waiting on f would deadlock: following the
// owners of the loads each chain waits on leads back to ch. Callers hold s.mu.
func (s *autoloadStrategy) closesCycle(ch *chain, f *flight) bool {
	// Each step visits a distinct running load, so the walk ends within
	// len(s.inflight) steps.
	for steps := 0; f != nil && steps <= len(s.inflight); steps++ {
		if f.owner == ch {
			return true
		}
		f = f.owner.waiting
	}
	return false
}
