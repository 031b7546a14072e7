// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ahl

import (
	"regexp"
	"strings"

	"github.com/vk/swix/internal/diag"
)

// referenceRegex matches every $(swix. token up to its closing parenthesis.
// The second group is empty when the reference is never closed.
var referenceRegex = regexp.MustCompile(`\$\(swix\.([^()]*)(\))?`)

// partsRegex splits a reference body into <group>.<name>. The name may
// contain dots.
var partsRegex = regexp.MustCompile(`^([A-Za-z0-9_]+)\.([^\s]+)$`)

// Expand replaces every variable reference in s in a single left-to-right
// pass. Substituted text is not scanned again.
func (r *Root) Expand(line int, s string) (string, error) {
	if !strings.Contains(s, "$(") {
		return s, nil
	}

	var out strings.Builder
	last := 0
	for _, m := range referenceRegex.FindAllStringSubmatchIndex(s, -1) {
		if m[4] < 0 {
			return "", diag.Errorf(diag.Semantic, line, "unterminated variable reference %q", s[m[0]:m[1]])
		}
		body := s[m[2]:m[3]]
		parts := partsRegex.FindStringSubmatch(body)
		if parts == nil {
			return "", diag.Errorf(diag.Semantic, line,
				"malformed variable reference %q: expected $(swix.<group>.<name>)", s[m[0]:m[1]])
		}
		value, err := r.resolve(line, parts[1], parts[2])
		if err != nil {
			return "", err
		}
		out.WriteString(s[last:m[0]])
		out.WriteString(value)
		last = m[1]
	}
	out.WriteString(s[last:])
	return out.String(), nil
}

func (r *Root) resolve(line int, group, name string) (string, error) {
	switch group {
	case "var":
		if v, ok := r.Variables[name]; ok {
			return v, nil
		}
		return "", diag.Errorf(diag.Semantic, line, "undefined variable %q", name)
	case "env":
		lookup := r.LookupEnv
		if lookup == nil {
			return "", diag.Errorf(diag.Semantic, line, "undefined environment variable %q", name)
		}
		if v, ok := lookup(name); ok {
			return v, nil
		}
		return "", diag.Errorf(diag.Semantic, line, "undefined environment variable %q", name)
	default:
		return "", diag.Errorf(diag.Semantic, line, "unknown variable group %q in $(swix.%s.%s)", group, group, name)
	}
}

// expandAttributes returns a copy of attrs with every value expanded.
func (r *Root) expandAttributes(line int, attrs []Attribute) ([]Attribute, error) {
	out := make([]Attribute, len(attrs))
	for i, a := range attrs {
		v, err := r.Expand(line, a.Value)
		if err != nil {
			return nil, err
		}
		out[i] = Attribute{Name: a.Name, Value: v}
	}
	return out, nil
}
