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

package descriptor

import (
	"fmt"
	"strings"
)

// Visibility is the access scope of a declared field.
type Visibility uint8

const (
	// Public fields are visible from any scope.
	Public Visibility = iota
	// Protected fields are visible from the declaring type and from types
	// related to it through the base chain (descendants and ancestors).
	Protected
	// Private fields are visible only from the exact declaring type.
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return fmt.Sprintf("Unknown(%d)", v)
	}
}

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v <= Private
}

// ParseVisibility parses a visibility name case-insensitively. An empty
// string yields Public, matching the declaration default.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "public":
		return Public, nil
	case "protected":
		return Protected, nil
	case "private":
		return Private, nil
	default:
		return Public, fmt.Errorf("descriptor: unknown visibility %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Visibility) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("descriptor: cannot marshal unknown visibility %d", v)
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Visibility) UnmarshalText(text []byte) error {
	p, err := ParseVisibility(string(text))
	if err != nil {
		return err
	}
	*v = p
	return nil
}
