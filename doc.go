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

// Package rtx provides a runtime type registry for a managed language
// runtime that hosts dynamically declared types.
//
// rtx answers the questions a language's reflection helpers ask about
// declared types: does a class or interface with this name exist, which
// types are declared, is this object an instance of that type, which of its
// fields can the calling code see, and can this type be reached under a
// second name.
//
// # Design
//
// Each execution environment owns one Context. A Context holds an
// immutable snapshot of four things:
//
//   - Config: knobs that bound chain walks, enable resolving type names
//     from runtime strings, and select the cache in front of name
//     normalization.
//
//   - Registry: a case-insensitive mapping from qualified type names to
//     descriptors, plus aliases. Descriptors are immutable; a name is bound
//     once and stays bound for the life of the context.
//
//   - Resolver: a chain of strategies. The registry strategy answers hits;
//     on a miss with autoload requested, the autoload strategy calls the
//     context's Autoloader once and looks the name up again.
//
//   - Builder: the factory that constructs Registry and Resolver for a
//     Config. Reconfigure migrates bindings into a freshly built registry.
//
// Contexts never share state. There is no process-wide registry, so
// independent contexts (for example, one per request, or one per test) can
// run in parallel.
//
// # Surface
//
// The helpers of the hosted language map onto Context methods:
//
//	class_exists       ClassExists(ctx, name, autoload)
//	interface_exists   InterfaceExists(ctx, name, autoload)
//	get_class          ClassOf(obj)
//	get_parent_class   ParentClass(obj)
//	class_implements   ClassImplements(obj)
//	get_declared_*     DeclaredClasses(), DeclaredInterfaces()
//	is_a               IsA(ctx, v, name, allowString)
//	is_subclass_of     IsSubclassOf(ctx, v, name, allowString)
//	get_object_vars    ObjectVars(obj, caller)
//	class_alias        ClassAlias(ctx, original, alias, autoload)
//
// # Autoloading
//
// The Autoloader is invoked with the canonical name that missed and the
// context.Context of the resolution. It declares types through Declare as a
// side effect. The context marks the call chain: while the hook runs for a
// name, resolving that same name again on the chain, that is from inside the
// hook with the ctx it was given, reports "not found" instead of recursing.
// Resolutions of the name from other goroutines wait for the running hook
// and then see what it declared. No lock is held while the hook runs, so it
// may call back into the Context.
//
// # Concurrency model
//
// Lookups, listings, subtype queries and field enumeration read the current
// snapshot without taking locks. Declare, ClassAlias, SetAutoloader and
// Reconfigure serialize on a build mutex. Field enumeration returns deep
// copies, so later writes to an object never show through a previous result.
//
// # Errors
//
// A name that does not resolve is an expected outcome and is reported as
// (nil, false). Declaring a name already bound to a different type fails
// with *registry.DuplicateTypeError. Malformed arguments to ClassAlias are
// reported on the diagnostic channel (apis.Reporter) and the call returns
// false. Disabled operations fail with ErrUnsupportedOperation.
package rtx
