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
	"context"

	"dirpx.dev/rtx/descriptor"
)

// Strategy is a pluggable resolution step. A Resolver chains strategies in
// order and stops at the first one that handles the name.
type Strategy interface {
	// TryResolve attempts to resolve name. It returns (d, true) if handled;
	// otherwise (nil, false) to fall through.
	TryResolve(ctx context.Context, name string, autoload bool) (*descriptor.Descriptor, bool)
}
