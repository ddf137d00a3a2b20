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

// Package objects provides the reference object model: an instance of a
// descriptor with one slot per declared field plus insertion-ordered
// dynamic properties.
package objects

import (
	"errors"
	"fmt"
	"sync"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/descriptor"
	"dirpx.dev/rtx/hierarchy"
	"dirpx.dev/rtx/values"
)

var (
	// ErrInterface is returned when instantiating an interface.
	ErrInterface = errors.New("rtx(objects): cannot instantiate an interface")
	// ErrNilDescriptor is returned when instantiating without a descriptor.
	ErrNilDescriptor = errors.New("rtx(objects): nil descriptor")
	// ErrNoSuchField is returned when a declared field cannot be found.
	ErrNoSuchField = errors.New("rtx(objects): no such field")
	// ErrSlotOutOfRange is returned for a slot index outside the instance.
	ErrSlotOutOfRange = errors.New("rtx(objects): slot out of range")
)

// Object is an instance of a class descriptor. Object is safe for concurrent use.
type Object struct {
	desc *descriptor.Descriptor

	mu       sync.RWMutex
	slots    []any
	dynNames []string
	dyn      map[string]any
}

// Ensure Object implements apis.Instance.
var _ apis.Instance = (*Object)(nil)

// New instantiates d. Declared slots start as nil.
func New(d *descriptor.Descriptor) (*Object, error) {
	if d == nil {
		return nil, ErrNilDescriptor
	}
	if d.IsInterface() {
		return nil, fmt.Errorf("%w: %s", ErrInterface, d.Name())
	}
	return &Object{
		desc:  d,
		slots: make([]any, d.SlotCount()),
		dyn:   make(map[string]any),
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(d *descriptor.Descriptor) *Object {
	o, err := New(d)
	if err != nil {
		panic(err)
	}
	return o
}

// NewBag returns a property-bag object holding props in order.
func NewBag(props ...apis.Property) *Object {
	o := MustNew(descriptor.PropertyBag())
	for _, p := range props {
		o.setDynamic(p.Name, p.Value)
	}
	return o
}

// Descriptor returns the runtime type.
func (o *Object) Descriptor() *descriptor.Descriptor {
	return o.desc
}

// Slot returns the value of declared slot i, or values.Unset when i is out of range.
func (o *Object) Slot(i int) any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if i < 0 || i >= len(o.slots) {
		return values.Unset
	}
	return o.slots[i]
}

// SetSlot stores v in declared slot i.
func (o *Object) SetSlot(i int, v any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if i < 0 || i >= len(o.slots) {
		return fmt.Errorf("%w: %d of %d", ErrSlotOutOfRange, i, len(o.slots))
	}
	o.slots[i] = v
	return nil
}

// DynamicProperties returns dynamic properties in insertion order. Values
// are returned as stored, without copying.
func (o *Object) DynamicProperties() []apis.Property {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]apis.Property, 0, len(o.dynNames))
	for _, n := range o.dynNames {
		out = append(out, apis.Property{Name: n, Value: o.dyn[n]})
	}
	return out
}

// Set stores v in the most-derived declared field called name, or in a
// dynamic property when no level declares it.
func (o *Object) Set(name string, v any) {
	if f, ok := o.lookup(name); ok {
		_ = o.SetSlot(f.Slot, v)
		return
	}
	o.setDynamic(name, v)
}

// SetField stores v in the field name declared by declaring, which must be
// on the object's base chain. It addresses fields shadowed by a derived level.
func (o *Object) SetField(declaring *descriptor.Descriptor, name string, v any) error {
	f, ok := o.field(declaring, name)
	if !ok {
		return fmt.Errorf("%w: %s::%s", ErrNoSuchField, declaring, name)
	}
	return o.SetSlot(f.Slot, v)
}

// Get returns the value of the most-derived declared field called name, or
// of the dynamic property name. Unset fields are reported as absent.
func (o *Object) Get(name string) (any, bool) {
	if f, ok := o.lookup(name); ok {
		v := o.Slot(f.Slot)
		if values.IsUnset(v) {
			return nil, false
		}
		return v, true
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.dyn[name]
	return v, ok
}

// Unset removes the value of name: declared fields become values.Unset,
// dynamic properties are deleted.
func (o *Object) Unset(name string) {
	if f, ok := o.lookup(name); ok {
		_ = o.SetSlot(f.Slot, values.Unset)
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.dyn[name]; !ok {
		return
	}
	delete(o.dyn, name)
	for i, n := range o.dynNames {
		if n == name {
			o.dynNames = append(o.dynNames[:i], o.dynNames[i+1:]...)
			break
		}
	}
}

func (o *Object) setDynamic(name string, v any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.dyn[name]; !ok {
		o.dynNames = append(o.dynNames, name)
	}
	o.dyn[name] = v
}

func (o *Object) lookup(name string) (descriptor.Field, bool) {
	for _, level := range hierarchy.Chain(o.desc, 0) {
		if f, ok := level.Field(name); ok {
			return f, true
		}
	}
	return descriptor.Field{}, false
}

func (o *Object) field(declaring *descriptor.Descriptor, name string) (descriptor.Field, bool) {
	if declaring == nil {
		return descriptor.Field{}, false
	}
	for _, level := range hierarchy.Chain(o.desc, 0) {
		if level == declaring {
			return level.Field(name)
		}
	}
	return descriptor.Field{}, false
}
