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

// Package manifest reads type declarations from JSON documents and
// declares them into a context, either up front or on demand through a
// directory-backed autoloader.
//
// A manifest looks like:
//
//	{
//	  "types": [
//	    {"name": "Pet", "kind": "interface"},
//	    {"name": "Animal", "kind": "class",
//	     "fields": [{"name": "secret", "visibility": "private"}]},
//	    {"name": "Dog", "kind": "class", "extends": "Animal",
//	     "implements": ["Pet"], "fields": [{"name": "name"}]}
//	  ],
//	  "aliases": {"K9": "Dog"}
//	}
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"

	"dirpx.dev/rtx/descriptor"
	"dirpx.dev/rtx/names"
)

var (
	// ErrInvalid wraps decoding and validation failures.
	ErrInvalid = errors.New("rtx(manifest): invalid manifest")
	// ErrUnresolved is returned when a base or interface name cannot be resolved.
	ErrUnresolved = errors.New("rtx(manifest): unresolved type reference")
	// ErrCycle is returned when declarations in one manifest extend each other.
	ErrCycle = errors.New("rtx(manifest): inheritance cycle")
	// ErrAlias is returned when an alias cannot be bound.
	ErrAlias = errors.New("rtx(manifest): alias failed")
)

// Manifest is a set of declarations.
type Manifest struct {
	Types []TypeDecl `json:"types" validate:"dive"`
	// Aliases maps alias names to original type names.
	Aliases map[string]string `json:"aliases,omitempty" validate:"dive,keys,required,endkeys,required"`
}

// TypeDecl declares one type.
type TypeDecl struct {
	Name       string      `json:"name" validate:"required"`
	Kind       string      `json:"kind" validate:"required,oneof=class interface"`
	Extends    string      `json:"extends,omitempty"`
	Implements []string    `json:"implements,omitempty" validate:"dive,required"`
	Fields     []FieldDecl `json:"fields,omitempty" validate:"dive"`
}

// FieldDecl declares one instance field. Visibility defaults to public.
type FieldDecl struct {
	Name       string `json:"name" validate:"required"`
	Visibility string `json:"visibility,omitempty" validate:"omitempty,oneof=public protected private"`
}

// Target is the context declarations are applied to. *rtx.Context implements it.
type Target interface {
	Resolve(ctx context.Context, name string, autoload bool) (*descriptor.Descriptor, bool)
	Declare(d *descriptor.Descriptor) error
	ClassAlias(ctx context.Context, original, alias string, autoload bool) bool
}

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode reads and validates a manifest. Unknown fields are rejected.
func Decode(r io.Reader) (*Manifest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Parse decodes a manifest from bytes.
func Parse(data []byte) (*Manifest, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks structural rules: required names, known kinds and
// visibilities, and no type declared twice.
func (m *Manifest) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	seen := make(map[string]struct{}, len(m.Types))
	for _, t := range m.Types {
		key, err := names.Key(t.Name)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: type %q declared twice", ErrInvalid, t.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Apply declares every type of m into t, then binds the aliases.
//
// Bases and interfaces declared in the same manifest are declared first
// regardless of their position. Other references are resolved through t
// with autoload on ctx. Types already declared in t under the same name are
// left as they are.
func (m *Manifest) Apply(ctx context.Context, t Target) error {
	a := applier{
		ctx:    ctx,
		target: t,
		decls:  make(map[string]TypeDecl, len(m.Types)),
		state:  make(map[string]int, len(m.Types)),
	}
	for _, decl := range m.Types {
		key, _ := names.Key(decl.Name)
		a.decls[key] = decl
	}
	for _, decl := range m.Types {
		if _, err := a.declare(decl.Name); err != nil {
			return err
		}
	}

	aliases := make([]string, 0, len(m.Aliases))
	for alias := range m.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		if !t.ClassAlias(ctx, m.Aliases[alias], alias, true) {
			return fmt.Errorf("%w: %s -> %s", ErrAlias, alias, m.Aliases[alias])
		}
	}
	return nil
}

const (
	pending = iota
	visiting
	done
)

type applier struct {
	ctx    context.Context
	target Target
	decls  map[string]TypeDecl
	state  map[string]int
}

// declare returns the descriptor for name, declaring it from the manifest
// when it is part of it.
func (a *applier) declare(name string) (*descriptor.Descriptor, error) {
	key, err := names.Key(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	decl, local := a.decls[key]
	if !local || a.state[key] == done {
		if d, ok := a.target.Resolve(a.ctx, name, !local); ok {
			return d, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnresolved, names.Canonical(name))
	}
	if a.state[key] == visiting {
		return nil, fmt.Errorf("%w: %s", ErrCycle, decl.Name)
	}
	if d, ok := a.target.Resolve(a.ctx, decl.Name, false); ok {
		a.state[key] = done
		return d, nil
	}

	a.state[key] = visiting
	d, err := decl.build(a.declare)
	if err != nil {
		return nil, err
	}
	if err := a.target.Declare(d); err != nil {
		return nil, fmt.Errorf("declaring %s: %w", d.Name(), err)
	}
	a.state[key] = done
	return d, nil
}

// Descriptor builds the descriptor for decl, resolving references with resolve.
func (decl TypeDecl) Descriptor(resolve func(name string) (*descriptor.Descriptor, error)) (*descriptor.Descriptor, error) {
	return decl.build(resolve)
}

func (decl TypeDecl) build(resolve func(name string) (*descriptor.Descriptor, error)) (*descriptor.Descriptor, error) {
	kind, err := descriptor.ParseKind(decl.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var opts []descriptor.Option
	if decl.Extends != "" {
		base, err := resolve(decl.Extends)
		if err != nil {
			return nil, fmt.Errorf("%s extends: %w", decl.Name, err)
		}
		opts = append(opts, descriptor.WithBase(base))
	}
	for _, name := range decl.Implements {
		iface, err := resolve(name)
		if err != nil {
			return nil, fmt.Errorf("%s implements: %w", decl.Name, err)
		}
		opts = append(opts, descriptor.WithInterfaces(iface))
	}
	for _, f := range decl.Fields {
		vis, err := descriptor.ParseVisibility(f.Visibility)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		opts = append(opts, descriptor.WithField(f.Name, vis))
	}

	d, err := descriptor.New(decl.Name, kind, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return d, nil
}
