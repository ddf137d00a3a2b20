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

package rtx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/builder"
	"dirpx.dev/rtx/config"
	"dirpx.dev/rtx/descriptor"
	"dirpx.dev/rtx/diag"
	"dirpx.dev/rtx/fields"
	"dirpx.dev/rtx/hierarchy"
	"dirpx.dev/rtx/registry"
	"dirpx.dev/rtx/values"
)

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("rtx: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("rtx: builder returned nil resolver")
	// ErrUnsupportedOperation is returned by operations that are disabled by
	// configuration, such as resolving a type name from a runtime string.
	ErrUnsupportedOperation = errors.New("rtx: unsupported operation")
)

// Context is one isolated execution environment owning its own type
// registry. Contexts share nothing; independent contexts may be used in
// parallel. All methods are safe for concurrent use.
type Context struct {
	logger   *slog.Logger
	reporter apis.Reporter
	copier   apis.Copier

	// buildMu serializes mutations and reconfiguration so a snapshot is
	// never published half-built.
	buildMu sync.Mutex
	// st is the current snapshot.
	st atomic.Pointer[state]
}

// state is an immutable snapshot. Writers build a new state and swap it in.
type state struct {
	cfg    apis.Config
	reg    apis.Registry
	res    apis.Resolver
	bld    apis.Builder
	loader apis.Autoloader
	enum   *fields.Enumerator
}

// New creates a Context. The built-in property-bag type is registered
// first, followed by any WithDeclarations descriptors.
func New(opts ...Option) (*Context, error) {
	o := options{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := config.Validate(o.cfg); err != nil {
		return nil, err
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.reporter == nil {
		o.reporter = diag.NewSlogReporter(o.logger)
	}
	if o.builder == nil {
		o.builder = builder.New(o.logger)
	}
	if o.copier == nil {
		o.copier = values.Copier{}
	}

	c := &Context{logger: o.logger, reporter: o.reporter, copier: o.copier}

	reg := o.builder.BuildRegistry(o.cfg, nil)
	if reg == nil {
		return nil, ErrNilRegistry
	}
	res := o.builder.BuildResolver(o.cfg, reg, o.loader)
	if res == nil {
		return nil, ErrNilResolver
	}
	c.st.Store(c.newState(o.cfg, reg, res, o.builder, o.loader))

	if err := reg.Register(descriptor.PropertyBag()); err != nil {
		return nil, err
	}
	for _, d := range o.decls {
		if err := reg.Register(d); err != nil {
			return nil, fmt.Errorf("rtx: declaring %s: %w", d, err)
		}
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Context {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Config returns the active configuration.
func (c *Context) Config() apis.Config {
	return c.st.Load().cfg
}

// Registry returns the active registry.
func (c *Context) Registry() apis.Registry {
	return c.st.Load().reg
}

// Resolver returns the active resolver.
func (c *Context) Resolver() apis.Resolver {
	return c.st.Load().res
}

// Logger returns the context logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Reconfigure validates cfg and rebuilds the registry and resolver through
// the builder. Existing bindings are migrated to the new registry.
func (c *Context) Reconfigure(cfg apis.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}

	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	old := c.st.Load()
	nreg := old.bld.BuildRegistry(cfg, old.reg)
	if nreg == nil {
		return ErrNilRegistry
	}
	nres := old.bld.BuildResolver(cfg, nreg, old.loader)
	if nres == nil {
		return ErrNilResolver
	}
	c.st.Store(c.newState(cfg, nreg, nres, old.bld, old.loader))
	return nil
}

// SetAutoloader replaces the autoload hook. A nil loader disables autoloading.
func (c *Context) SetAutoloader(loader apis.Autoloader) error {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	old := c.st.Load()
	nres := old.bld.BuildResolver(old.cfg, old.reg, loader)
	if nres == nil {
		return ErrNilResolver
	}
	c.st.Store(c.newState(old.cfg, old.reg, nres, old.bld, loader))
	return nil
}

// Declare registers d. It fails with a *registry.DuplicateTypeError when the
// name already denotes a different type.
func (c *Context) Declare(d *descriptor.Descriptor) error {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()
	return c.st.Load().reg.Register(d)
}

// Resolve looks a type up by name, invoking the autoload hook on a miss when
// autoload is true. An autoload hook that resolves names itself must pass on
// the ctx it was given.
func (c *Context) Resolve(ctx context.Context, name string, autoload bool) (*descriptor.Descriptor, bool) {
	if strings.TrimSpace(name) == "" {
		return nil, false
	}
	return c.st.Load().res.Resolve(ctx, name, autoload)
}

// ClassExists reports whether name resolves to a class.
func (c *Context) ClassExists(ctx context.Context, name string, autoload bool) bool {
	d, ok := c.Resolve(ctx, name, autoload)
	return ok && d.Kind() == descriptor.KindClass
}

// InterfaceExists reports whether name resolves to an interface.
func (c *Context) InterfaceExists(ctx context.Context, name string, autoload bool) bool {
	d, ok := c.Resolve(ctx, name, autoload)
	return ok && d.Kind() == descriptor.KindInterface
}

// DeclaredClasses returns the canonical names of all classes in
// declaration order. Aliases are not included.
func (c *Context) DeclaredClasses() []string {
	return c.st.Load().reg.Names(descriptor.KindClass)
}

// DeclaredInterfaces returns the canonical names of all interfaces in
// declaration order.
func (c *Context) DeclaredInterfaces() []string {
	return c.st.Load().reg.Names(descriptor.KindInterface)
}

// ClassAlias binds alias to the type named original. It returns true when,
// afterwards, alias resolves (without autoload) to exactly that type.
// Invalid arguments and failures are reported on the diagnostic channel.
func (c *Context) ClassAlias(ctx context.Context, original, alias string, autoload bool) bool {
	const op = "class_alias"
	if strings.TrimSpace(original) == "" {
		c.report(apis.CodeInvalidArgument, op, original, "original type name must not be empty")
		return false
	}
	if strings.TrimSpace(alias) == "" {
		c.report(apis.CodeInvalidArgument, op, alias, "alias name must not be empty")
		return false
	}

	// Resolve outside the build lock: the autoload hook may declare types.
	d, ok := c.Resolve(ctx, original, autoload)
	if !ok {
		c.report(apis.CodeNotFound, op, original, fmt.Sprintf("type %q not found", original))
		return false
	}

	c.buildMu.Lock()
	err := c.st.Load().reg.Alias(d, alias)
	c.buildMu.Unlock()
	if err != nil {
		code := apis.CodeInvalidArgument
		if errors.Is(err, registry.ErrDuplicateType) {
			code = apis.CodeDuplicateType
		}
		c.report(code, op, alias, err.Error())
	}

	got, ok := c.st.Load().reg.Lookup(alias)
	return ok && got == d
}

// ClassOf returns the canonical class name of inst.
func (c *Context) ClassOf(inst apis.Instance) (string, bool) {
	if values.IsNil(inst) || inst.Descriptor() == nil {
		return "", false
	}
	return inst.Descriptor().Name(), true
}

// ParentClass returns the canonical name of the base class of inst's type.
func (c *Context) ParentClass(inst apis.Instance) (string, bool) {
	if values.IsNil(inst) || inst.Descriptor() == nil {
		return "", false
	}
	base := inst.Descriptor().Base()
	if base == nil {
		return "", false
	}
	return base.Name(), true
}

// ClassImplements returns the canonical names of every interface
// implemented by inst's type. A nil instance yields nil.
func (c *Context) ClassImplements(inst apis.Instance) []string {
	if values.IsNil(inst) || inst.Descriptor() == nil {
		return nil
	}
	ifaces := hierarchy.Interfaces(inst.Descriptor(), c.Config().MaxChainDepth)
	out := make([]string, 0, len(ifaces))
	for _, d := range ifaces {
		out = append(out, d.Name())
	}
	return out
}

// IsInstanceOf reports whether inst is an instance of the type named
// target, or of a subtype of it. target is resolved without autoload: a
// type that is not yet declared cannot be a supertype of a live object.
func (c *Context) IsInstanceOf(inst apis.Instance, target string) bool {
	t, ok := c.Resolve(context.Background(), target, false)
	if !ok {
		return false
	}
	return hierarchy.IsInstanceOf(inst, t, c.Config().MaxChainDepth)
}

// IsA reports whether v is of type className or one of its subtypes.
//
// v is normally an object. With allowString, a string v is treated as a type
// name and resolved with autoload; that path must be enabled through
// Config.AllowStringNames, otherwise IsA fails with ErrUnsupportedOperation.
// Without allowString a string v is never a match.
func (c *Context) IsA(ctx context.Context, v any, className string, allowString bool) (bool, error) {
	d, err := c.typeOf(ctx, v, allowString, "is_a")
	if err != nil || d == nil {
		return false, err
	}
	t, ok := c.Resolve(ctx, className, false)
	if !ok {
		return false, nil
	}
	return hierarchy.IsSubtype(d, t, c.Config().MaxChainDepth), nil
}

// IsSubclassOf is like IsA but false when v's type is className itself.
func (c *Context) IsSubclassOf(ctx context.Context, v any, className string, allowString bool) (bool, error) {
	d, err := c.typeOf(ctx, v, allowString, "is_subclass_of")
	if err != nil || d == nil {
		return false, err
	}
	t, ok := c.Resolve(ctx, className, false)
	if !ok || t == d {
		return false, nil
	}
	return hierarchy.IsSubtype(d, t, c.Config().MaxChainDepth), nil
}

// ObjectVars returns the fields of inst visible from caller as an
// independent snapshot. caller nil is the global scope. A nil instance
// yields nil.
func (c *Context) ObjectVars(inst apis.Instance, caller *descriptor.Descriptor) []apis.Property {
	return c.st.Load().enum.Enumerate(inst, caller)
}

// ObjectVarsFrom is ObjectVars with the caller named. An empty callerName
// is the global scope; an unknown caller name is treated the same way.
func (c *Context) ObjectVarsFrom(inst apis.Instance, callerName string) []apis.Property {
	var caller *descriptor.Descriptor
	if strings.TrimSpace(callerName) != "" {
		caller, _ = c.Resolve(context.Background(), callerName, false)
	}
	return c.ObjectVars(inst, caller)
}

// typeOf extracts the runtime type of an object or, when permitted, of a
// type name held in a string.
func (c *Context) typeOf(ctx context.Context, v any, allowString bool, op string) (*descriptor.Descriptor, error) {
	switch x := values.Deref(v).(type) {
	case apis.Instance:
		if values.IsNil(x) {
			return nil, nil
		}
		return x.Descriptor(), nil
	case string:
		if !allowString {
			return nil, nil
		}
		if !c.Config().AllowStringNames {
			c.report(apis.CodeUnsupported, op, x, "resolving type names from strings is disabled")
			return nil, fmt.Errorf("%w: %s with a type name string", ErrUnsupportedOperation, op)
		}
		d, _ := c.Resolve(ctx, x, true)
		return d, nil
	default:
		return nil, nil
	}
}

func (c *Context) report(code apis.Code, op, arg, msg string) {
	c.reporter.Report(apis.Diagnostic{Code: code, Op: op, Arg: arg, Message: msg})
}

func (c *Context) newState(cfg apis.Config, reg apis.Registry, res apis.Resolver, bld apis.Builder, loader apis.Autoloader) *state {
	return &state{
		cfg:    cfg,
		reg:    reg,
		res:    res,
		bld:    bld,
		loader: loader,
		enum:   fields.New(c.copier, cfg.MaxChainDepth),
	}
}
