// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package diag defines the error taxonomy shared by every stage of the
// compiler. All errors are fatal: the first one aborts the transformation.
package diag

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Kind classifies where in the pipeline an error originated.
type Kind int

const (
	// Lexical marks a malformed line or an embedded tab.
	Lexical Kind = iota + 1
	// Indentation marks an indent that matches no open level.
	Indentation
	// Semantic marks a line the dialect cannot interpret.
	Semantic
	// Identity marks a strict-mode lookup that missed the identity store.
	Identity
	// Emission marks a model that cannot be rendered consistently.
	Emission
	// Internal marks a broken invariant in the compiler itself.
	Internal
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Indentation:
		return "indentation error"
	case Semantic:
		return "semantic error"
	case Identity:
		return "identity error"
	case Emission:
		return "emission error"
	case Internal:
		return "internal error"
	default:
		return "error"
	}
}

// Error is a classified, optionally line-numbered compiler error.
type Error struct {
	Kind    Kind
	File    string
	Line    int // 0 when the error is not tied to a line
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s", e.File, e.Kind, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Diagnostic renders the error as an HCL diagnostic so it can be printed with
// hcl's diagnostic writers.
func (e *Error) Diagnostic() *hcl.Diagnostic {
	d := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  capitalize(e.Kind.String()),
		Detail:   e.Message,
	}
	if e.Line > 0 {
		d.Subject = &hcl.Range{
			Filename: e.File,
			Start:    hcl.Pos{Line: e.Line, Column: 1},
			End:      hcl.Pos{Line: e.Line, Column: 1},
		}
	}
	return d
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

// Errorf builds an Error of the given kind.
func Errorf(kind Kind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// As reports whether err is (or wraps) a *Error and returns it.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Is reports whether err is (or wraps) a *Error of the given kind.
func Is(err error, kind Kind) bool {
	de, ok := As(err)
	return ok && de.Kind == kind
}

// WithFile stamps the source file onto err when it is a *Error that does not
// carry one yet. Other errors are returned unchanged.
func WithFile(err error, file string) error {
	if de, ok := As(err); ok && de.File == "" {
		de.File = file
	}
	return err
}
