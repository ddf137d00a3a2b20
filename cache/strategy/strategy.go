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

package strategy

import (
	"fmt"
	"strings"
)

// Strategy selects the eviction policy of a name-key cache.
//
// # Overview
//
// Type names are normalized (canonicalized and case folded) on every lookup.
// A cache in front of the normalizer trades a little memory for skipping the
// folding work on hot names. Strategy picks the class of cache; capacity and
// TTL are configured separately.
//
// # Values
//
//   - LRU     : least recently used eviction.
//   - TwoQueue: separates names seen once from names seen repeatedly,
//     so a scan over many one-off names does not flush the hot set.
//   - TTL     : least recently used eviction plus per-entry expiry.
//   - None    : caching disabled.
//
// # Contract
//
//   - Existing values MUST keep their meaning; new values may be appended.
//   - Strategy is a plain integer and safe to copy between goroutines.
type Strategy int

const (
	// LRU selects least recently used eviction.
	LRU Strategy = iota
	// TwoQueue selects the 2Q policy.
	TwoQueue
	// TTL selects least recently used eviction with entry expiry. A positive
	// TTL duration must be configured alongside it.
	TTL
	// None disables caching.
	None
)

// String returns a stable token for known values and "Unknown(<n>)" otherwise.
// It never panics, so corrupted values can still be logged.
func (cs Strategy) String() string {
	switch cs {
	case LRU:
		return "LRU"
	case TwoQueue:
		return "2Q"
	case TTL:
		return "TTL"
	case None:
		return "None"
	default:
		return fmt.Sprintf("Unknown(%d)", cs)
	}
}

// Valid reports whether cs is a known strategy.
func (cs Strategy) Valid() bool {
	return cs >= LRU && cs <= None
}

// Parse converts a textual strategy into a Strategy. Matching is
// case-insensitive and ignores surrounding whitespace.
//
// Accepted inputs: "LRU", "2Q" (or "TwoQueue"), "TTL", "None".
func Parse(s string) (Strategy, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return None, fmt.Errorf("cache: empty strategy")
	}

	switch strings.ToUpper(trimmed) {
	case "LRU":
		return LRU, nil
	case "2Q", "TWOQUEUE":
		return TwoQueue, nil
	case "TTL":
		return TTL, nil
	case "NONE":
		return None, nil
	default:
		return None, fmt.Errorf("cache: unknown strategy %q", s)
	}
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Strategy {
	strategy, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return strategy
}

// MarshalText implements encoding.TextMarshaler. Unknown values are rejected
// so they are never persisted.
func (cs Strategy) MarshalText() ([]byte, error) {
	if !cs.Valid() {
		return nil, fmt.Errorf("cache: cannot marshal unknown strategy %d", cs)
	}
	return []byte(cs.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Parse.
func (cs *Strategy) UnmarshalText(text []byte) error {
	value, err := Parse(string(text))
	if err != nil {
		return err
	}
	*cs = value
	return nil
}
