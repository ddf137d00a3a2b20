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

// Package fields enumerates the instance fields of an object that are
// visible from a caller's type context.
package fields

import (
	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/descriptor"
	"dirpx.dev/rtx/hierarchy"
	"dirpx.dev/rtx/values"
)

// Enumerator produces visibility-scoped snapshots of instance fields.
// An Enumerator is immutable and safe for concurrent use.
type Enumerator struct {
	copier   apis.Copier
	maxDepth int
}

// New returns an Enumerator that copies values with copier (values.Copier
// when nil) and bounds chain walks by maxDepth.
func New(copier apis.Copier, maxDepth int) *Enumerator {
	if copier == nil {
		copier = values.Copier{}
	}
	return &Enumerator{copier: copier, maxDepth: maxDepth}
}

// Enumerate returns the fields of inst visible from caller, as an
// independent snapshot. caller nil is the global scope.
//
// A nil instance yields nil; an instance with no visible fields yields an
// empty, non-nil slice.
//
// Declared fields are collected from the most-derived level to the root;
// the first visible declaration of a name shadows the rest. Unset slots are
// skipped. Dynamic properties follow the declared fields. Property bags
// yield their dynamic properties only.
func (e *Enumerator) Enumerate(inst apis.Instance, caller *descriptor.Descriptor) []apis.Property {
	if values.IsNil(inst) {
		return nil
	}
	d := inst.Descriptor()
	if d == nil {
		return nil
	}

	out := make([]apis.Property, 0, d.SlotCount())
	seen := make(map[string]struct{}, d.SlotCount())

	if !d.IsPropertyBag() {
		for _, level := range hierarchy.Chain(d, e.maxDepth) {
			for _, f := range level.Fields() {
				if _, dup := seen[f.Name]; dup {
					continue
				}
				if !Visible(f, caller, e.maxDepth) {
					continue
				}
				v := inst.Slot(f.Slot)
				if values.IsUnset(values.Deref(v)) {
					continue
				}
				seen[f.Name] = struct{}{}
				out = append(out, apis.Property{Name: f.Name, Value: e.copier.Copy(v)})
			}
		}
	}

	for _, p := range inst.DynamicProperties() {
		if _, dup := seen[p.Name]; dup {
			continue
		}
		if values.IsUnset(values.Deref(p.Value)) {
			continue
		}
		seen[p.Name] = struct{}{}
		out = append(out, apis.Property{Name: p.Name, Value: e.copier.Copy(p.Value)})
	}
	return out
}

// Visible reports whether f may be read from caller.
//
//   - public: always.
//   - protected: caller is the declaring type, or a descendant or ancestor of it.
//   - private: caller is exactly the declaring type.
func Visible(f descriptor.Field, caller *descriptor.Descriptor, maxDepth int) bool {
	switch f.Visibility {
	case descriptor.Public:
		return true
	case descriptor.Protected:
		return caller != nil && hierarchy.InChain(caller, f.Declaring, maxDepth)
	case descriptor.Private:
		return caller != nil && caller == f.Declaring
	default:
		return false
	}
}
