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

package descriptor

import (
	"errors"
	"fmt"
	"strings"

	"dirpx.dev/rtx/names"
)

// PropertyBagName is the canonical name of the built-in generic object type.
const PropertyBagName = "stdClass"

var (
	// ErrEmptyName is returned when a descriptor or field name is blank.
	ErrEmptyName = errors.New("rtx(descriptor): empty name")
	// ErrInvalidKind is returned for an unknown Kind value.
	ErrInvalidKind = errors.New("rtx(descriptor): invalid kind")
	// ErrInvalidVisibility is returned for an unknown Visibility value.
	ErrInvalidVisibility = errors.New("rtx(descriptor): invalid visibility")
	// ErrInvalidBase is returned when a base is not a class or is given to an interface.
	ErrInvalidBase = errors.New("rtx(descriptor): invalid base type")
	// ErrNotInterface is returned when an implemented type is not an interface.
	ErrNotInterface = errors.New("rtx(descriptor): implemented type is not an interface")
	// ErrDuplicateField is returned when a level declares the same field twice.
	ErrDuplicateField = errors.New("rtx(descriptor): duplicate field")
	// ErrInterfaceFields is returned when fields are declared on an interface.
	ErrInterfaceFields = errors.New("rtx(descriptor): interfaces cannot declare fields")
)

// Field is one declared instance field.
type Field struct {
	// Name is the case-sensitive field name.
	Name string
	// Visibility is the declared access scope.
	Visibility Visibility
	// Slot is the index of the field in an instance's slot array. Slots are
	// numbered after all base slots, so every level of a chain has its own range.
	Slot int
	// Declaring is the descriptor that declared the field.
	Declaring *Descriptor
}

// Descriptor is the immutable metadata of one declared type.
//
// Descriptors are created once by New and never mutated afterwards. The base
// must exist before a derived descriptor is built, which keeps every chain
// acyclic; walks over chains are nonetheless bounded by their callers.
type Descriptor struct {
	name       string
	kind       Kind
	base       *Descriptor
	interfaces []*Descriptor
	fields     []Field
	slots      int
	bag        bool
}

// FieldSpec declares a field for New.
type FieldSpec struct {
	Name       string
	Visibility Visibility
}

type settings struct {
	base       *Descriptor
	interfaces []*Descriptor
	fields     []FieldSpec
	bag        bool
}

// Option configures a descriptor under construction.
type Option func(*settings)

// WithBase sets the parent class.
func WithBase(base *Descriptor) Option {
	return func(s *settings) { s.base = base }
}

// WithInterfaces appends implemented (for classes) or extended (for
// interfaces) interface descriptors.
func WithInterfaces(ifaces ...*Descriptor) Option {
	return func(s *settings) { s.interfaces = append(s.interfaces, ifaces...) }
}

// WithField appends a declared field.
func WithField(name string, vis Visibility) Option {
	return func(s *settings) { s.fields = append(s.fields, FieldSpec{Name: name, Visibility: vis}) }
}

// WithFields appends several declared fields in order.
func WithFields(fields ...FieldSpec) Option {
	return func(s *settings) { s.fields = append(s.fields, fields...) }
}

// AsPropertyBag marks the descriptor as a generic property bag whose
// instances carry only dynamic fields.
func AsPropertyBag() Option {
	return func(s *settings) { s.bag = true }
}

// New builds a descriptor. The name is stored in canonical form (leading
// namespace separators removed).
func New(name string, kind Kind, opts ...Option) (*Descriptor, error) {
	if names.IsBlank(name) {
		return nil, ErrEmptyName
	}
	canonical := names.Canonical(name)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, kind)
	}

	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	d := &Descriptor{name: canonical, kind: kind, bag: s.bag}

	if s.base != nil {
		if kind == KindInterface || s.base.kind != KindClass {
			return nil, fmt.Errorf("%w: %s cannot extend %s %s", ErrInvalidBase, canonical, s.base.kind, s.base.name)
		}
		d.base = s.base
		d.slots = s.base.slots
	}

	seenIface := make(map[*Descriptor]struct{}, len(s.interfaces))
	for _, iface := range s.interfaces {
		if iface == nil {
			continue
		}
		if iface.kind != KindInterface {
			return nil, fmt.Errorf("%w: %s", ErrNotInterface, iface.name)
		}
		if _, dup := seenIface[iface]; dup {
			continue
		}
		seenIface[iface] = struct{}{}
		d.interfaces = append(d.interfaces, iface)
	}

	if kind == KindInterface && len(s.fields) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInterfaceFields, canonical)
	}

	seenField := make(map[string]struct{}, len(s.fields))
	for _, f := range s.fields {
		fname := strings.TrimSpace(f.Name)
		if fname == "" {
			return nil, fmt.Errorf("%w: field of %s", ErrEmptyName, canonical)
		}
		if !f.Visibility.Valid() {
			return nil, fmt.Errorf("%w: %s::%s", ErrInvalidVisibility, canonical, fname)
		}
		if _, dup := seenField[fname]; dup {
			return nil, fmt.Errorf("%w: %s::%s", ErrDuplicateField, canonical, fname)
		}
		seenField[fname] = struct{}{}
		d.fields = append(d.fields, Field{
			Name:       fname,
			Visibility: f.Visibility,
			Slot:       d.slots,
			Declaring:  d,
		})
		d.slots++
	}

	return d, nil
}

// MustNew is like New but panics on error.
func MustNew(name string, kind Kind, opts ...Option) *Descriptor {
	d, err := New(name, kind, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

var propertyBag = MustNew(PropertyBagName, KindClass, AsPropertyBag())

// PropertyBag returns the built-in generic property-bag descriptor.
func PropertyBag() *Descriptor {
	return propertyBag
}

// Name returns the canonical name.
func (d *Descriptor) Name() string { return d.name }

// Kind returns the type kind.
func (d *Descriptor) Kind() Kind { return d.kind }

// IsInterface reports whether d is an interface.
func (d *Descriptor) IsInterface() bool { return d.kind == KindInterface }

// IsPropertyBag reports whether d is a generic property-bag type.
func (d *Descriptor) IsPropertyBag() bool { return d.bag }

// Base returns the parent class, or nil.
func (d *Descriptor) Base() *Descriptor { return d.base }

// Interfaces returns the interfaces declared directly on d.
func (d *Descriptor) Interfaces() []*Descriptor {
	out := make([]*Descriptor, len(d.interfaces))
	copy(out, d.interfaces)
	return out
}

// Fields returns the fields declared directly on d, in declaration order.
func (d *Descriptor) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Field looks up a field declared directly on d.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// SlotCount returns the number of slots an instance of d needs, including
// every base level.
func (d *Descriptor) SlotCount() int { return d.slots }

// String returns the canonical name.
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	return d.name
}
