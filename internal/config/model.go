package config

import (
	"fmt"
	"sort"
	"strings"
)

// Model holds variable definitions and where each one came from.
type Model struct {
	Variables map[string]string
	Sources   map[string]string
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		Variables: make(map[string]string),
		Sources:   make(map[string]string),
	}
}

// Set defines name. A later definition replaces an earlier one.
func (m *Model) Set(name, value, source string) {
	m.Variables[name] = value
	m.Sources[name] = source
}

// Merge copies every definition of other into m, other winning.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	for name, value := range other.Variables {
		m.Set(name, value, other.Sources[name])
	}
}

// Names returns the defined names in lexical order.
func (m *Model) Names() []string {
	names := make([]string, 0, len(m.Variables))
	for n := range m.Variables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseAssignment splits a NAME=VALUE command line definition.
func ParseAssignment(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid variable definition %q: expected NAME=VALUE", s)
	}
	if !validName(name) {
		return "", "", fmt.Errorf("invalid variable name %q: use letters, digits and '_'", name)
	}
	return name, value, nil
}

func validName(name string) bool {
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return name != ""
}
