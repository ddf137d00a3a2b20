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

package registry_test

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/config"
	"dirpx.dev/rtx/descriptor"
	"dirpx.dev/rtx/registry"
)

// TestConcurrentRegisterAndLookup verifies that Register/Lookup/Entries/Count
// are race-free and consistent under concurrent use.
func TestConcurrentRegisterAndLookup(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	decls := make([]*descriptor.Descriptor, 10)
	for i := range decls {
		decls[i] = descriptor.MustNew(fmt.Sprintf(`Pkg\T%d`, i), descriptor.KindClass)
	}

	// Register once (sequential) to establish baseline.
	for _, d := range decls {
		if err := reg.Register(d); err != nil {
			t.Fatalf("register %s: %v", d, err)
		}
	}

	wg := sync.WaitGroup{}
	workers := runtime.GOMAXPROCS(0) * 4

	// Readers, using a different case than the declaration.
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 5000; i++ {
				d := decls[i%len(decls)]
				if got, ok := reg.Lookup(fmt.Sprintf(`pkg\t%d`, i%len(decls))); !ok || got != d {
					t.Errorf("lookup failed for %s: ok=%v got=%v", d, ok, got)
					return
				}
				_ = reg.Count()
				_ = reg.Entries()
			}
		}()
	}

	// Writers (idempotent re-register)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if err := reg.Register(decls[(i+id)%len(decls)]); err != nil {
					t.Errorf("idempotent register: %v", err)
					return
				}
			}
		}(w)
	}

	wg.Wait()

	if reg.Count() != len(decls) {
		t.Fatalf("count mismatch: got %d want %d", reg.Count(), len(decls))
	}
	entries := reg.Entries()
	for i, e := range entries {
		if e.Descriptor != decls[i] || e.Name != decls[i].Name() || e.Alias {
			t.Fatalf("entry %d mismatch: %+v", i, e)
		}
	}
}

// TestConcurrentConflictingRegister verifies that exactly one of many
// distinct descriptors sharing a name wins; the rest get DuplicateTypeError.
func TestConcurrentConflictingRegister(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	workers := runtime.GOMAXPROCS(0) * 4

	var (
		wg      sync.WaitGroup
		wins    atomic.Int32
		winners = make([]*descriptor.Descriptor, workers)
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			// Every worker spells the name differently.
			name := "Shared"
			if id%2 == 1 {
				name = "SHARED"
			}
			d := descriptor.MustNew(name, descriptor.KindClass)
			err := reg.Register(d)
			switch {
			case err == nil:
				wins.Add(1)
				winners[id] = d
			case errors.Is(err, registry.ErrDuplicateType):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(w)
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("winners: got %d want 1", wins.Load())
	}
	got, ok := reg.Lookup("shared")
	if !ok {
		t.Fatalf("lookup after race missed")
	}
	found := false
	for _, d := range winners {
		if d != nil && d == got {
			found = true
		}
	}
	if !found {
		t.Fatalf("registry holds a descriptor that did not win")
	}
}

// TestResetSnapshot ensures Reset is safe and Entries returns a stable snapshot.
func TestResetSnapshot(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	a := descriptor.MustNew("A", descriptor.KindClass)
	_ = reg.Register(a)
	_ = reg.Register(descriptor.MustNew("B", descriptor.KindInterface))
	_ = reg.Alias(a, "AA")

	snap := reg.Entries()
	reg.Reset()

	if reg.Count() != 0 {
		t.Fatalf("count after reset: got %d want 0", reg.Count())
	}
	if _, ok := reg.Lookup("A"); ok {
		t.Fatalf("lookup after reset must miss")
	}
	if len(snap) != 3 || !snap[2].Alias || snap[2].Name != "AA" {
		t.Fatalf("snapshot changed unexpectedly: %+v", snap)
	}
}

// This ensures the interface is satisfied; not a test but a compile-time check.
var _ apis.Registry = registry.New(config.DefaultConfig())
