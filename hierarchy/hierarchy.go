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

// Package hierarchy answers subtype questions over descriptor graphs.
//
// Every walk is bounded by a maximum depth so that a malformed graph cannot
// turn a query into an endless loop. A non-positive depth selects
// config.DefaultMaxChainDepth.
package hierarchy

import (
	"dirpx.dev/rtx/apis"
	"dirpx.dev/rtx/config"
	"dirpx.dev/rtx/descriptor"
	"dirpx.dev/rtx/values"
)

// Chain returns d followed by its ancestors, most-derived first, stopping
// after maxDepth descriptors.
func Chain(d *descriptor.Descriptor, maxDepth int) []*descriptor.Descriptor {
	maxDepth = depth(maxDepth)
	var out []*descriptor.Descriptor
	for cur := d; cur != nil && len(out) < maxDepth; cur = cur.Base() {
		out = append(out, cur)
	}
	return out
}

// Interfaces returns every interface d implements, directly, through its
// ancestors, or through interfaces extending other interfaces. Each
// interface appears once, in first-seen order. An interface descriptor
// itself is not part of its own result.
func Interfaces(d *descriptor.Descriptor, maxDepth int) []*descriptor.Descriptor {
	maxDepth = depth(maxDepth)
	seen := make(map[*descriptor.Descriptor]struct{})
	var out []*descriptor.Descriptor

	var queue []*descriptor.Descriptor
	for _, level := range Chain(d, maxDepth) {
		queue = append(queue, level.Interfaces()...)
	}
	// Bound the traversal by nodes visited as well; the seen set alone
	// guarantees termination on a finite graph.
	for steps := 0; len(queue) > 0 && steps < maxDepth*maxDepth; steps++ {
		cur := queue[0]
		queue = queue[1:]
		if _, dup := seen[cur]; dup || cur == d {
			continue
		}
		seen[cur] = struct{}{}
		out = append(out, cur)
		queue = append(queue, cur.Interfaces()...)
	}
	return out
}

// IsSubtype reports whether target is d, an ancestor of d, or an interface
// implemented by d.
func IsSubtype(d, target *descriptor.Descriptor, maxDepth int) bool {
	if d == nil || target == nil {
		return false
	}
	for _, level := range Chain(d, maxDepth) {
		if level == target {
			return true
		}
	}
	if !target.IsInterface() {
		return false
	}
	for _, iface := range Interfaces(d, maxDepth) {
		if iface == target {
			return true
		}
	}
	return false
}

// InChain reports whether a and b lie on one base chain: a is b, an
// ancestor of b, or a descendant of b. Interfaces are not considered.
func InChain(a, b *descriptor.Descriptor, maxDepth int) bool {
	if a == nil || b == nil {
		return false
	}
	return onChain(a, b, maxDepth) || onChain(b, a, maxDepth)
}

// IsInstanceOf reports whether inst's runtime type is target or a subtype
// of it. A nil instance is an instance of nothing.
func IsInstanceOf(inst apis.Instance, target *descriptor.Descriptor, maxDepth int) bool {
	if values.IsNil(inst) {
		return false
	}
	return IsSubtype(inst.Descriptor(), target, maxDepth)
}

// onChain reports whether ancestor is d or one of d's ancestors.
func onChain(d, ancestor *descriptor.Descriptor, maxDepth int) bool {
	for _, level := range Chain(d, maxDepth) {
		if level == ancestor {
			return true
		}
	}
	return false
}

func depth(maxDepth int) int {
	if maxDepth <= 0 {
		return config.DefaultMaxChainDepth
	}
	return maxDepth
}
