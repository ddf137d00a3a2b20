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

package names

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"dirpx.dev/rtx/cache"
)

// Separator is the namespace separator of qualified type names.
const Separator = `\`

// ErrEmptyName is returned when a name holds nothing but whitespace and
// namespace separators.
var ErrEmptyName = errors.New("rtx(names): empty type name")

// Canonical strips leading namespace separators: `\App\Model` -> `App\Model`.
// Whitespace is part of the name, so ` App` and `App` are different names.
func Canonical(name string) string {
	return strings.TrimLeft(name, Separator)
}

// IsBlank reports whether name holds nothing but whitespace and namespace
// separators.
func IsBlank(name string) bool {
	return strings.TrimFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || string(r) == Separator
	}) == ""
}

// Fold returns the case-folded form of name. Names that differ only in case
// fold to the same string.
func Fold(name string) string {
	if isASCII(name) {
		return strings.ToLower(name)
	}
	// A Caser keeps state between calls and must not be shared across goroutines.
	return cases.Fold().String(name)
}

// Key returns the lookup key for name: canonical form, case folded.
func Key(name string) (string, error) {
	if IsBlank(name) {
		return "", ErrEmptyName
	}
	return Fold(Canonical(name)), nil
}

// Normalizer computes lookup keys, memoizing them in an optional cache.
// A Normalizer is safe for concurrent use when its cache is.
type Normalizer struct {
	cache cache.Cache[string, string]
}

// NewNormalizer returns a Normalizer backed by c. A nil cache disables memoization.
func NewNormalizer(c cache.Cache[string, string]) *Normalizer {
	return &Normalizer{cache: c}
}

// Key returns the lookup key for name.
func (n *Normalizer) Key(name string) (string, error) {
	if n == nil || n.cache == nil {
		return Key(name)
	}
	if k, ok := n.cache.Get(name); ok {
		return k, nil
	}
	k, err := Key(name)
	if err != nil {
		return "", err
	}
	n.cache.Add(name, k)
	return k, nil
}

// Equal reports whether a and b name the same type.
func Equal(a, b string) bool {
	ka, err := Key(a)
	if err != nil {
		return false
	}
	kb, err := Key(b)
	if err != nil {
		return false
	}
	return ka == kb
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
