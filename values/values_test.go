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

package values_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"dirpx.dev/rtx/descriptor"
	"dirpx.dev/rtx/objects"
	"dirpx.dev/rtx/values"
)

type point struct{ X, Y int }

type tagged struct{ tags []string }

func (t *tagged) DeepCopy() any {
	return &tagged{tags: append([]string(nil), t.tags...)}
}

func TestClassify(t *testing.T) {
	obj := objects.MustNew(descriptor.MustNew("Thing", descriptor.KindClass))
	var nilObj *objects.Object
	var nilRef *values.Ref
	tests := []struct {
		name string
		v    any
		want values.Category
	}{
		{"int", 1, values.CategoryValue},
		{"nil", nil, values.CategoryValue},
		{"object", obj, values.CategoryObject},
		{"typed nil object", nilObj, values.CategoryValue},
		{"ref", values.NewRef(1), values.CategoryRef},
		{"nil ref", nilRef, values.CategoryValue},
		{"unset", values.Unset, values.CategoryUnset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := values.Classify(tt.v); got != tt.want {
				t.Fatalf("Classify(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
	if !values.IsObject(obj) || values.IsObject(1) {
		t.Fatalf("IsObject mismatch")
	}
}

func TestDeref(t *testing.T) {
	inner := values.NewRef("x")
	outer := values.NewRef(inner)
	if got := values.Deref(outer); got != "x" {
		t.Fatalf("Deref(ref->ref->x) = %v", got)
	}
	inner.Set("y")
	if got := values.Deref(outer); got != "y" {
		t.Fatalf("Deref after Set = %v", got)
	}

	a := values.NewRef(nil)
	b := values.NewRef(a)
	a.Set(b)
	if _, ok := values.Deref(a).(*values.Ref); !ok {
		t.Fatalf("Deref of a reference cycle must stop at a reference")
	}
	if got := values.Copy(a); got != nil {
		t.Fatalf("Copy of a reference cycle = %v, want nil", got)
	}
}

func TestCopy_Containers(t *testing.T) {
	src := map[string]any{
		"list":  []any{1, "two", []int{3}},
		"ref":   values.NewRef([]string{"a"}),
		"point": point{1, 2},
		"arr":   [2][]int{{1}, {2}},
	}
	got := values.Copy(src).(map[string]any)

	want := map[string]any{
		"list":  []any{1, "two", []int{3}},
		"ref":   []string{"a"},
		"point": point{1, 2},
		"arr":   [2][]int{{1}, {2}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Copy mismatch (-want +got):\n%s", diff)
	}

	// Mutating the copy must not affect the source.
	got["list"].([]any)[2].([]int)[0] = 99
	got["ref"].([]string)[0] = "z"
	got["arr"].([2][]int)[0][0] = 42
	if src["list"].([]any)[2].([]int)[0] != 3 {
		t.Fatalf("nested slice aliased")
	}
	if values.Deref(src["ref"]).([]string)[0] != "a" {
		t.Fatalf("referenced slice aliased")
	}
	if src["arr"].([2][]int)[0][0] != 1 {
		t.Fatalf("array element aliased")
	}
}

type payload struct {
	Items []int
	Count *int
	Meta  map[string]any
	Owner *objects.Object
}

func TestCopy_StructAndPointer(t *testing.T) {
	owner := objects.MustNew(descriptor.MustNew("Owner", descriptor.KindClass))
	n := 1
	pl := payload{Items: []int{1}, Count: &n, Meta: map[string]any{"k": []int{2}}, Owner: owner}
	src := []any{pl, &n, &pl}

	got := values.Copy(src).([]any)

	pl.Items[0] = 99
	n = 42
	pl.Meta["k"].([]int)[0] = 7

	byValue := got[0].(payload)
	if byValue.Items[0] != 1 || *byValue.Count != 1 || byValue.Meta["k"].([]int)[0] != 2 {
		t.Fatalf("struct copy aliased the source: %+v count=%d", byValue, *byValue.Count)
	}
	if byValue.Owner != owner {
		t.Fatalf("object field must stay a handle")
	}
	if p := got[1].(*int); p == &n || *p != 1 {
		t.Fatalf("pointer copy aliased the source: %d", *p)
	}
	if p := got[2].(*payload); p == &pl || p.Items[0] != 1 || *p.Count != 1 {
		t.Fatalf("pointer-to-struct copy aliased the source: %+v", p)
	}
}

type node struct {
	Name string
	Next *node
}

func TestCopy_PointerCycle(t *testing.T) {
	a := &node{Name: "a"}
	a.Next = &node{Name: "b", Next: a}

	got := values.Copy(a).(*node)
	if got == a || got.Next == a.Next {
		t.Fatalf("cycle nodes must be copied")
	}
	if got.Next.Next != got {
		t.Fatalf("cycle not preserved in the copy")
	}
	a.Name = "changed"
	if got.Name != "a" {
		t.Fatalf("copy aliased the source")
	}
}

func TestCopy_ObjectsAreHandles(t *testing.T) {
	obj := objects.MustNew(descriptor.MustNew("Thing", descriptor.KindClass))
	got := values.Copy([]any{obj})
	if got.([]any)[0] != obj {
		t.Fatalf("objects must be copied as handles")
	}
}

func TestCopy_Cloner(t *testing.T) {
	src := &tagged{tags: []string{"a"}}
	got := values.Copy(src).(*tagged)
	if got == src {
		t.Fatalf("Cloner must produce a new value")
	}
	got.tags[0] = "b"
	if src.tags[0] != "a" {
		t.Fatalf("Cloner copy aliased")
	}
}

func TestCopy_Scalars(t *testing.T) {
	for _, v := range []any{nil, 1, "s", 2.5, true, values.Unset} {
		if got := values.Copy(v); got != v {
			t.Fatalf("Copy(%v) = %v", v, got)
		}
	}
	var nilSlice []int
	if got := values.Copy(nilSlice).([]int); got != nil {
		t.Fatalf("Copy(nil slice) = %v", got)
	}
}
