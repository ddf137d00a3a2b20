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

import "context"

// Autoloader declares types on demand when a lookup misses.
//
// TryAutoload is called with the canonical name that was not found. It
// declares the type as a side effect (normally through the context's
// Declare) and reports whether it attempted a load. The caller looks the
// name up again after the call regardless of the result.
//
// ctx identifies the resolution call chain that triggered the load. A hook
// that resolves names itself must pass ctx on: resolving the name being
// loaded with that ctx reports it as not found instead of recursing, while
// callers on other chains wait for the load to finish.
type Autoloader interface {
	TryAutoload(ctx context.Context, name string) bool
}

// AutoloadFunc adapts a function to Autoloader.
type AutoloadFunc func(ctx context.Context, name string) bool

// TryAutoload calls f(ctx, name).
func (f AutoloadFunc) TryAutoload(ctx context.Context, name string) bool {
	return f(ctx, name)
}
