// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package swix

import (
	"fmt"
	"strings"

	"github.com/vk/swix/internal/ahl"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// attrs reads typed attribute values from an item's scope. Inherited values
// come from the nearest enclosing frame; local values only from the item's
// own line.
type attrs struct {
	scope *ahl.Scope
}

func (a attrs) text(name, fallback string) string {
	return strings.TrimSpace(a.scope.Get(name, fallback))
}

func (a attrs) local(name string) string {
	v, _ := a.scope.LookupLocal(name)
	return strings.TrimSpace(v)
}

// integer decodes name as a whole number.
func (a attrs) integer(name string, fallback int) (int, error) {
	raw, ok := a.scope.Lookup(name)
	if !ok {
		return fallback, nil
	}
	val, err := convert.Convert(cty.StringVal(strings.TrimSpace(raw)), cty.Number)
	if err != nil {
		return 0, fmt.Errorf("attribute '%s': %q is not a number", name, raw)
	}
	var n int
	if err := gocty.FromCtyValue(val, &n); err != nil {
		return 0, fmt.Errorf("attribute '%s': %q is not a whole number", name, raw)
	}
	return n, nil
}

// boolean decodes name as true or false.
func (a attrs) boolean(name string, fallback bool) (bool, error) {
	raw, ok := a.scope.Lookup(name)
	if !ok {
		return fallback, nil
	}
	val, err := convert.Convert(cty.StringVal(strings.ToLower(strings.TrimSpace(raw))), cty.Bool)
	if err != nil {
		return false, fmt.Errorf("attribute '%s': %q is not a boolean", name, raw)
	}
	var b bool
	if err := gocty.FromCtyValue(val, &b); err != nil {
		return false, fmt.Errorf("attribute '%s': %w", name, err)
	}
	return b, nil
}
