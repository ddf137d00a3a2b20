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

// Instance is an object as seen by the registry: a runtime descriptor fixed
// at construction, declared slots and dynamic properties.
type Instance interface {
	// Descriptor returns the runtime type. It never changes for an instance.
	Descriptor() *descriptor.Descriptor
	// Slot returns the current value of declared slot i.
	Slot(i int) any
	// DynamicProperties returns dynamic properties in insertion order.
	DynamicProperties() []Property
}

// Property is a named value.
type Property struct {
	Name  string
	Value any
}

// Copier deep-copies field values so results never alias instance state.
type Copier interface {
	Copy(v any) any
}

// CopierFunc adapts a function to Copier.
type CopierFunc func(v any) any

// Copy calls f(v).
func (f CopierFunc) Copy(v any) any {
	return f(v)
}
