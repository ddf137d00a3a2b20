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

package registry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/cache"
	"dirpx.dev/rtx/descriptor"
	"dirpx.dev/rtx/names"
)

var (
	// ErrNilDescriptor is returned when a nil descriptor is provided.
	ErrNilDescriptor = errors.New("rtx(registry): nil descriptor provided")
	// ErrDuplicateType matches every *DuplicateTypeError via errors.Is.
	ErrDuplicateType = errors.New("rtx(registry): duplicate type")
	// ErrNotRegistered is returned when aliasing a descriptor that is not
	// registered under its canonical name.
	ErrNotRegistered = errors.New("rtx(registry): descriptor is not registered")
)

// DuplicateTypeError indicates an attempt to bind a name that already
// denotes a different descriptor. The registry is left unchanged.
type DuplicateTypeError struct {
	// Name is the name that was being bound.
	Name string
	// Existing is the canonical name of the descriptor already bound to Name.
	Existing string
}

func (e *DuplicateTypeError) Error() string {
	if e.Existing == "" || names.Equal(e.Name, e.Existing) {
		return fmt.Sprintf("rtx(registry): cannot declare %q, name is already in use", e.Name)
	}
	return fmt.Sprintf("rtx(registry): cannot declare %q, name is already in use by %q", e.Name, e.Existing)
}

// Is reports whether target is ErrDuplicateType.
func (e *DuplicateTypeError) Is(target error) bool {
	return target == ErrDuplicateType
}

// New constructs a Registry whose name keys are memoized according to cfg.
// An unusable cache configuration disables memoization rather than failing;
// config.Validate reports such configurations up front.
func New(cfg apis.Config) apis.Registry {
	c, err := cache.New[string, string](cfg.KeyCache, cfg.KeyCacheSize, cfg.KeyCacheTTL)
	if err != nil {
		c = nil
	}
	r := &registry{keys: names.NewNormalizer(c)}
	r.order.Store(&[]*entry{})
	return r
}

// entry is one binding. Entries are immutable once stored.
type entry struct {
	name  string
	desc  *descriptor.Descriptor
	alias bool
}

// registry is a Registry backed by sync.Map for lock-free reads.
type registry struct {
	// keys normalizes names to lookup keys.
	keys *names.Normalizer
	// mu serializes writers.
	mu sync.Mutex
	// m maps lookup keys to *entry.
	m sync.Map
	// order is the copy-on-write registration order, aliases included.
	order atomic.Pointer[[]*entry]
	// count tracks the number of canonical (non-alias) entries.
	count atomic.Int64
}

// Ensure registry implements apis.Registry.
var _ apis.Registry = (*registry)(nil)

// Register binds d under its canonical name.
// It is idempotent for the same descriptor.
func (r *registry) Register(d *descriptor.Descriptor) error {
	// Validate inputs early.
	if d == nil {
		return ErrNilDescriptor
	}
	key, err := r.keys.Key(d.Name())
	if err != nil {
		return err
	}

	// Fast read path: idempotency / conflict check without locking.
	if e, ok := r.load(key); ok {
		return conflict(e, d, d.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if e, ok := r.load(key); ok {
		return conflict(e, d, d.Name())
	}

	r.publish(key, &entry{name: d.Name(), desc: d})
	r.count.Add(1)
	return nil
}

// Alias binds alias to the registered descriptor d.
func (r *registry) Alias(d *descriptor.Descriptor, alias string) error {
	if d == nil {
		return ErrNilDescriptor
	}
	key, err := r.keys.Key(alias)
	if err != nil {
		return err
	}
	if e, ok := r.load(key); ok {
		return conflict(e, d, names.Canonical(alias))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.load(key); ok {
		return conflict(e, d, names.Canonical(alias))
	}
	// The target must be bound under its own name, or the alias would
	// outlive any path back to the canonical type.
	ckey, err := r.keys.Key(d.Name())
	if err != nil {
		return err
	}
	if e, ok := r.load(ckey); !ok || e.desc != d {
		return fmt.Errorf("%w: %s", ErrNotRegistered, d.Name())
	}

	r.publish(key, &entry{name: names.Canonical(alias), desc: d, alias: true})
	return nil
}

// Lookup returns the descriptor bound to name, if present.
func (r *registry) Lookup(name string) (*descriptor.Descriptor, bool) {
	key, err := r.keys.Key(name)
	if err != nil {
		return nil, false
	}
	if e, ok := r.load(key); ok {
		return e.desc, true
	}
	return nil, false
}

// Key returns the normalized lookup key for name.
func (r *registry) Key(name string) (string, error) {
	return r.keys.Key(name)
}

// Names returns canonical names of kind in registration order.
func (r *registry) Names(kind descriptor.Kind) []string {
	snap := *r.order.Load()
	out := make([]string, 0, len(snap))
	for _, e := range snap {
		if !e.alias && e.desc.Kind() == kind {
			out = append(out, e.name)
		}
	}
	return out
}

// Entries returns a snapshot in registration order.
func (r *registry) Entries() []apis.Entry {
	snap := *r.order.Load()
	entries := make([]apis.Entry, 0, len(snap))
	for _, e := range snap {
		entries = append(entries, apis.Entry{Name: e.name, Descriptor: e.desc, Alias: e.alias})
	}
	return entries
}

// Count returns the number of registered descriptors.
func (r *registry) Count() int {
	return int(r.count.Load())
}

// Reset clears all bindings.
func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.Clear()
	r.order.Store(&[]*entry{})
	r.count.Store(0)
}

func (r *registry) load(key string) (*entry, bool) {
	v, ok := r.m.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

// publish stores e and appends it to the order snapshot. Callers hold mu.
func (r *registry) publish(key string, e *entry) {
	r.m.Store(key, e)
	old := *r.order.Load()
	next := make([]*entry, len(old), len(old)+1)
	copy(next, old)
	next = append(next, e)
	r.order.Store(&next)
}

func conflict(e *entry, d *descriptor.Descriptor, name string) error {
	if e.desc == d {
		return nil
	}
	return &DuplicateTypeError{Name: name, Existing: e.desc.Name()}
}
