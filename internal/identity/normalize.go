// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package identity

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Normalize canonicalizes a logical path: forward slashes become
// backslashes, separators are collapsed, surrounding separators and spaces
// are trimmed and the result is case folded, because installed paths are
// case-insensitive on Windows.
func Normalize(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "/", `\`)
	for strings.Contains(p, `\\`) {
		p = strings.ReplaceAll(p, `\\`, `\`)
	}
	p = strings.Trim(p, `\`)
	return cases.Fold().String(p)
}

// Format renders an identifier in registry format: upper case hex groups.
func Format(id uuid.UUID) string {
	return strings.ToUpper(id.String())
}

// Compact renders an identifier as 32 upper case hex digits, for embedding
// in element ids.
func Compact(id uuid.UUID) string {
	return strings.ReplaceAll(Format(id), "-", "")
}
