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

import (
	"time"

	"dirpx.dev/rtx/cache/strategy"
)

// Config carries read-only knobs for registries, resolvers and enumerators.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// MaxChainDepth bounds every walk over a base chain or interface graph.
	// Acts as a safety guard against malformed descriptor graphs.
	MaxChainDepth int

	// AllowStringNames enables resolving a type name supplied as a runtime
	// string value (is_a with allow_string). When false that path fails with
	// an unsupported-operation error instead of silently returning false.
	AllowStringNames bool

	// KeyCache selects the cache in front of name normalization.
	KeyCache strategy.Strategy

	// KeyCacheSize is the capacity of the name-key cache. Ignored for None.
	KeyCacheSize int

	// KeyCacheTTL is the entry lifetime for the TTL strategy.
	KeyCacheTTL time.Duration
}
