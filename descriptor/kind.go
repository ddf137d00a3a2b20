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

// Kind classifies a declared type.
type Kind uint8

const (
	// KindClass is an instantiable type with fields and an optional base class.
	KindClass Kind = iota
	// KindInterface is a contract type. Interfaces carry no fields and no base
	// class; they may extend other interfaces.
	KindInterface
)

// String returns "class", "interface" or "Unknown(<n>)".
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindClass || k == KindInterface
}

// ParseKind parses a kind name case-insensitively, ignoring surrounding space.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "class":
		return KindClass, nil
	case "interface":
		return KindInterface, nil
	case "":
		return KindClass, fmt.Errorf("descriptor: empty kind")
	default:
		return KindClass, fmt.Errorf("descriptor: unknown kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("descriptor: cannot marshal unknown kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
