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

package hierarchy_test

import (
	"fmt"
	"testing"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/descriptor"
	"dirpx.dev/rtx/hierarchy"
	"dirpx.dev/rtx/objects"
)

type fixture struct {
	animal, dog, puppy, cat *descriptor.Descriptor
	living, pet, loyal      *descriptor.Descriptor
}

func newFixture() fixture {
	var f fixture
	f.living = descriptor.MustNew("Living", descriptor.KindInterface)
	f.pet = descriptor.MustNew("Pet", descriptor.KindInterface, descriptor.WithInterfaces(f.living))
	f.loyal = descriptor.MustNew("Loyal", descriptor.KindInterface, descriptor.WithInterfaces(f.living))
	f.animal = descriptor.MustNew("Animal", descriptor.KindClass)
	f.dog = descriptor.MustNew("Dog", descriptor.KindClass, descriptor.WithBase(f.animal), descriptor.WithInterfaces(f.pet, f.loyal))
	f.puppy = descriptor.MustNew("Puppy", descriptor.KindClass, descriptor.WithBase(f.dog))
	f.cat = descriptor.MustNew("Cat", descriptor.KindClass, descriptor.WithBase(f.animal))
	return f
}

func TestChain(t *testing.T) {
	f := newFixture()
	got := hierarchy.Chain(f.puppy, 0)
	if len(got) != 3 || got[0] != f.puppy || got[1] != f.dog || got[2] != f.animal {
		t.Fatalf("Chain(Puppy) = %v", got)
	}
	if got := hierarchy.Chain(f.puppy, 2); len(got) != 2 {
		t.Fatalf("Chain bounded by 2 = %v", got)
	}
	if got := hierarchy.Chain(nil, 0); len(got) != 0 {
		t.Fatalf("Chain(nil) = %v", got)
	}
}

func TestInterfaces_Transitive(t *testing.T) {
	f := newFixture()
	got := hierarchy.Interfaces(f.puppy, 0)
	want := []*descriptor.Descriptor{f.pet, f.loyal, f.living}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("Interfaces(Puppy) = %v, want %v", got, want)
	}
	if got := hierarchy.Interfaces(f.pet, 0); len(got) != 1 || got[0] != f.living {
		t.Fatalf("Interfaces(Pet) = %v", got)
	}
	if got := hierarchy.Interfaces(f.cat, 0); len(got) != 0 {
		t.Fatalf("Interfaces(Cat) = %v", got)
	}
}

func TestIsSubtype(t *testing.T) {
	f := newFixture()
	tests := []struct {
		d, target *descriptor.Descriptor
		want      bool
	}{
		{f.puppy, f.puppy, true},
		{f.puppy, f.dog, true},
		{f.puppy, f.animal, true},
		{f.puppy, f.living, true},
		{f.dog, f.puppy, false},
		{f.cat, f.dog, false},
		{f.cat, f.pet, false},
		{f.pet, f.living, true},
		{nil, f.animal, false},
		{f.dog, nil, false},
	}
	for _, tt := range tests {
		if got := hierarchy.IsSubtype(tt.d, tt.target, 0); got != tt.want {
			t.Fatalf("IsSubtype(%v, %v) = %v, want %v", tt.d, tt.target, got, tt.want)
		}
	}
}

func TestIsSubtype_BoundedDepth(t *testing.T) {
	root := descriptor.MustNew("L0", descriptor.KindClass)
	cur := root
	for i := 1; i <= 10; i++ {
		cur = descriptor.MustNew(fmt.Sprintf("L%d", i), descriptor.KindClass, descriptor.WithBase(cur))
	}
	if !hierarchy.IsSubtype(cur, root, 11) {
		t.Fatalf("root must be reachable within 11 levels")
	}
	if hierarchy.IsSubtype(cur, root, 5) {
		t.Fatalf("walk must stop after 5 levels")
	}
}

func TestInChain(t *testing.T) {
	f := newFixture()
	if !hierarchy.InChain(f.puppy, f.animal, 0) || !hierarchy.InChain(f.animal, f.puppy, 0) {
		t.Fatalf("ancestor and descendant must be in one chain")
	}
	if hierarchy.InChain(f.cat, f.dog, 0) {
		t.Fatalf("siblings are not in one chain")
	}
	if hierarchy.InChain(nil, f.dog, 0) {
		t.Fatalf("nil is in no chain")
	}
}

func TestIsInstanceOf(t *testing.T) {
	f := newFixture()
	rex := objects.MustNew(f.puppy)
	if !hierarchy.IsInstanceOf(rex, f.pet, 0) {
		t.Fatalf("Puppy instance must be a Pet")
	}
	if hierarchy.IsInstanceOf(rex, f.cat, 0) {
		t.Fatalf("Puppy instance is not a Cat")
	}
	var none *objects.Object
	if hierarchy.IsInstanceOf(none, f.animal, 0) {
		t.Fatalf("typed nil is an instance of nothing")
	}
	var iface apis.Instance
	if hierarchy.IsInstanceOf(iface, f.animal, 0) {
		t.Fatalf("nil interface is an instance of nothing")
	}
}
