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

// Package values is the reference value representation used by rtx objects:
// shared references, the unset marker and deep copies of field values.
//
// Objects are handles. Copying a value that holds an object copies the
// handle, never the object, which matches how hosted languages pass objects.
// Containers, structs and pointers are copied all the way down.
package values

import (
	"reflect"
	"sync"

	"dirpx.dev/rtx/apis"
)

// Category classifies a raw slot value.
type Category uint8

const (
	// CategoryValue is any plain value (scalar, container, nil).
	CategoryValue Category = iota
	// CategoryObject is an object handle (apis.Instance).
	CategoryObject
	// CategoryRef is a reference cell shared between holders.
	CategoryRef
	// CategoryUnset marks a slot whose value was removed.
	CategoryUnset
)

type unset struct{}

// Unset marks a slot with no value. Enumerations skip unset slots.
var Unset any = unset{}

// IsUnset reports whether v is the Unset marker.
func IsUnset(v any) bool {
	_, ok := v.(unset)
	return ok
}

// Ref is a reference cell: several slots may hold the same *Ref and observe
// each other's writes. Ref is safe for concurrent use.
type Ref struct {
	mu sync.RWMutex
	v  any
}

// NewRef returns a reference holding v.
func NewRef(v any) *Ref {
	return &Ref{v: v}
}

// Get returns the referenced value.
func (r *Ref) Get() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.v
}

// Set replaces the referenced value.
func (r *Ref) Set(v any) {
	r.mu.Lock()
	r.v = v
	r.mu.Unlock()
}

// Cloner is implemented by values that know how to deep-copy themselves.
type Cloner interface {
	DeepCopy() any
}

// Classify returns the category of v.
func Classify(v any) Category {
	switch x := v.(type) {
	case unset:
		return CategoryUnset
	case *Ref:
		if x == nil {
			return CategoryValue
		}
		return CategoryRef
	case apis.Instance:
		if IsNil(x) {
			return CategoryValue
		}
		return CategoryObject
	default:
		return CategoryValue
	}
}

// IsObject reports whether v is a live object handle.
func IsObject(v any) bool {
	return Classify(v) == CategoryObject
}

// Deref follows references until a non-reference value is reached. The
// number of hops is bounded in case references point at each other.
func Deref(v any) any {
	for i := 0; i < maxDerefHops; i++ {
		r, ok := v.(*Ref)
		if !ok || r == nil {
			return v
		}
		v = r.Get()
	}
	return v
}

const maxDerefHops = 32

// IsNil reports whether v is nil or a typed nil pointer, map, slice, func,
// chan or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// Copy returns a deep copy of v with references dereferenced. Objects are
// kept as handles. Structs, pointers and containers are copied recursively,
// except for unexported struct fields, which are copied shallowly. A value
// implementing Cloner copies itself.
func Copy(v any) any {
	var c copier
	return c.any(v)
}

// Copier is the default apis.Copier.
type Copier struct{}

// Copy implements apis.Copier.
func (Copier) Copy(v any) any { return Copy(v) }

// Ensure Copier implements apis.Copier.
var _ apis.Copier = Copier{}

var (
	instanceType = reflect.TypeFor[apis.Instance]()
	clonerType   = reflect.TypeFor[Cloner]()
	refType      = reflect.TypeFor[*Ref]()
)

// copier deep-copies one value graph. Pointers and maps seen before map to
// their existing copy, so shared and cyclic structure is preserved.
type copier struct {
	seen map[visit]reflect.Value
}

type visit struct {
	ptr uintptr
	typ reflect.Type
}

func (c *copier) any(v any) any {
	switch x := Deref(v).(type) {
	case nil:
		return nil
	case unset:
		return x
	case *Ref:
		// Deref gave up: the references form a cycle.
		return nil
	case Cloner:
		return x.DeepCopy()
	case apis.Instance:
		return x
	default:
		return c.value(reflect.ValueOf(x)).Interface()
	}
}

func (c *copier) value(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Invalid:
		return rv
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return rv
		}
	}

	t := rv.Type()
	if rv.Kind() != reflect.Interface {
		switch {
		case t.Implements(instanceType):
			return rv
		case t == refType:
			return reflect.ValueOf(NewRef(c.any(rv.Interface().(*Ref).Get())))
		case t.Implements(clonerType):
			if out := rv.Interface().(Cloner).DeepCopy(); out != nil && reflect.TypeOf(out).AssignableTo(t) {
				return reflect.ValueOf(out)
			}
		}
	}

	switch rv.Kind() {
	case reflect.Interface:
		out := c.any(rv.Interface())
		if out == nil {
			return reflect.Zero(t)
		}
		ov := reflect.ValueOf(out)
		if !ov.Type().AssignableTo(t) {
			return rv
		}
		return ov
	case reflect.Pointer:
		key := visit{rv.Pointer(), t}
		if out, ok := c.seen[key]; ok {
			return out
		}
		out := reflect.New(t.Elem())
		c.remember(key, out)
		out.Elem().Set(c.value(rv.Elem()))
		return out
	case reflect.Struct:
		out := reflect.New(t).Elem()
		out.Set(rv)
		for i := 0; i < rv.NumField(); i++ {
			// Unexported fields keep the shallow copy made by Set.
			if f := out.Field(i); f.CanSet() {
				f.Set(c.value(rv.Field(i)))
			}
		}
		return out
	case reflect.Slice:
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(c.value(rv.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(t).Elem()
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(c.value(rv.Index(i)))
		}
		return out
	case reflect.Map:
		key := visit{rv.Pointer(), t}
		if out, ok := c.seen[key]; ok {
			return out
		}
		out := reflect.MakeMapWithSize(t, rv.Len())
		c.remember(key, out)
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), c.value(iter.Value()))
		}
		return out
	default:
		// Scalars are values already; funcs and channels are shared.
		return rv
	}
}

func (c *copier) remember(key visit, out reflect.Value) {
	if c.seen == nil {
		c.seen = make(map[visit]reflect.Value)
	}
	c.seen[key] = out
}
