package hcl_adapter

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// toVariable converts an evaluated attribute into the text a variable
// reference expands to. Only primitive values have a text form.
func toVariable(name string, val cty.Value) (string, error) {
	if val.IsNull() {
		return "", fmt.Errorf("variable '%s' must not be null", name)
	}
	if !val.IsWhollyKnown() {
		return "", fmt.Errorf("variable '%s' has an unknown value", name)
	}
	if !val.Type().IsPrimitiveType() {
		return "", fmt.Errorf("variable '%s' must be a string, number or bool, got %s", name, val.Type().FriendlyName())
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("variable '%s': %w", name, err)
	}
	var out string
	if err := gocty.FromCtyValue(str, &out); err != nil {
		return "", fmt.Errorf("variable '%s': %w", name, err)
	}
	return out, nil
}
