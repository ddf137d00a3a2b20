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

package apis

import "dirpx.dev/rtx/descriptor"

// Registry maps case-insensitive type names to descriptors for one
// execution context. Lookups must be safe to run concurrently with each
// other and with mutations; mutations are serialized by the implementation.
type Registry interface {
	// Register binds d under its canonical name. Registering the same
	// descriptor again is a no-op; a different descriptor under the same
	// name fails without changing state.
	Register(d *descriptor.Descriptor) error
	// Alias binds an additional name to the already registered d.
	// Aliasing a name that already denotes d is a no-op.
	Alias(d *descriptor.Descriptor, alias string) error
	// Lookup returns the descriptor bound to name, if any. It never autoloads.
	Lookup(name string) (*descriptor.Descriptor, bool)
	// Key returns the normalized lookup key for name.
	Key(name string) (string, error)
	// Names returns canonical names of the given kind in registration order.
	// Aliases are not included.
	Names(kind descriptor.Kind) []string
	// Entries returns a snapshot of every binding, aliases included, in
	// registration order.
	Entries() []Entry
	// Count returns the number of registered descriptors (aliases excluded).
	Count() int
	// Reset clears all bindings.
	Reset()
}

// Entry is a single (name, descriptor) binding in a Registry snapshot.
type Entry struct {
	// Name is the bound name as it was declared.
	Name string
	// Descriptor is the bound descriptor.
	Descriptor *descriptor.Descriptor
	// Alias is true when Name is an alias rather than the canonical name.
	Alias bool
}
