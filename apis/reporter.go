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

import "fmt"

// Code classifies a diagnostic.
type Code uint8

const (
	// CodeInvalidArgument reports a malformed argument, such as an empty name.
	CodeInvalidArgument Code = iota
	// CodeNotFound reports a type name that did not resolve.
	CodeNotFound
	// CodeDuplicateType reports a name already bound to a different type.
	CodeDuplicateType
	// CodeUnsupported reports a disabled or unimplemented operation.
	CodeUnsupported
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeNotFound:
		return "not_found"
	case CodeDuplicateType:
		return "duplicate_type"
	case CodeUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// Diagnostic is a structured, non-fatal report.
type Diagnostic struct {
	Code Code
	// Op is the surface operation that produced the report, e.g. "class_alias".
	Op string
	// Arg is the offending argument, if any.
	Arg string
	// Message is a human-readable explanation.
	Message string
}

// Reporter is the diagnostic channel. Report must not panic or otherwise
// interrupt the caller's control flow.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) {
	f(d)
}
