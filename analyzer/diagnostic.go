// Copyright 2022 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package analyzer implements the expression analyzer (C3), the
// predicate toolkit's non-range-hint half (C4), the scan/join
// rewriters (C5), the block builder and liveness analysis (C6), and
// the exchange step collector (C7).
package analyzer

import (
	"fmt"

	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/yugawara-go/yugawara/scalar"
)

// DiagnosticCode names the violated rule behind a non-fatal user
// diagnostic (spec §7: diagnostics are one of the four failure kinds,
// distinct from the fatal "invalid IR" errors below).
type DiagnosticCode int

const (
	CodeUnknown DiagnosticCode = iota
	CodeUnsupportedType
	CodeAmbiguousType
	CodeInconsistentType
	CodeUnresolvedVariable
	CodeInconsistentElements
	CodeUnsupportedFeature
)

func (c DiagnosticCode) String() string {
	switch c {
	case CodeUnsupportedType:
		return "unsupported_type"
	case CodeAmbiguousType:
		return "ambiguous_type"
	case CodeInconsistentType:
		return "inconsistent_type"
	case CodeUnresolvedVariable:
		return "unresolved_variable"
	case CodeInconsistentElements:
		return "inconsistent_elements"
	case CodeUnsupportedFeature:
		return "unsupported_feature"
	default:
		return "unknown"
	}
}

// Diagnostic is a non-fatal, user-facing analysis finding: it never
// aborts resolution by itself (spec §4.3's "well-formed error" rule —
// the analyzer still produces the closest well-formed type and keeps
// going). Cause chains an underlying Go error when the diagnostic was
// raised in response to one (e.g. a provider lookup failure surfaced
// per spec §7's provider-failures rule).
type Diagnostic struct {
	Code    DiagnosticCode
	Message string
	Region  scalar.Region
	Cause   error
}

func (d Diagnostic) Error() string {
	if d.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", d.Code, d.Message, d.Cause)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

func newDiagnostic(code DiagnosticCode, region scalar.Region, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Region: region}
}

// Fatal "invalid IR" error kinds (spec §7): these indicate the
// compiler was handed a malformed graph, not a user mistake, and
// always abort the pipeline outright. Grounded on the teacher's use of
// gopkg.in/src-d/go-errors.v1 for its own closed set of semantic error
// kinds (sql/errors_test.go): each kind is declared once and every
// instance is created via NewKind(...).New(args...), giving a stable
// kind identity errors.Is can match against.
var (
	ErrMultipleEntryPoints = goerrors.NewKind("analyzer: graph has multiple entry points, want exactly one")
	ErrUnregisteredBlock   = goerrors.NewKind("analyzer: operator %v belongs to no block")
	ErrUndefinedVariable   = goerrors.NewKind("analyzer: variable %v used without a reaching definition")
	ErrMultiplyDefined     = goerrors.NewKind("analyzer: variable %v is defined in more than one block")
	ErrMalformedGraph      = goerrors.NewKind("analyzer: malformed graph: %s")
)
