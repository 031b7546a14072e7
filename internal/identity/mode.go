// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package identity

import (
	"fmt"
	"strings"
)

// Mode selects how the persisted identity table is read and updated.
type Mode int

const (
	// ModeNone never reads or writes the table: every identifier is new.
	ModeNone Mode = iota
	// ModeRead reuses stored identifiers and never writes the table.
	ModeRead
	// ModeAppend reuses stored identifiers and adds newly minted ones.
	ModeAppend
	// ModePrune reuses stored identifiers and rewrites the table with only
	// the entries requested during this run.
	ModePrune
	// ModeStrict reuses stored identifiers and fails on any key the table
	// does not already contain.
	ModeStrict
)

var modeNames = map[Mode]string{
	ModeNone:   "none",
	ModeRead:   "read",
	ModeAppend: "append",
	ModePrune:  "prune",
	ModeStrict: "strict",
}

// ModeNames lists the accepted mode names in declaration order.
func ModeNames() []string {
	return []string{"none", "read", "append", "prune", "strict"}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("invalid identity mode %q: must be one of %s", s, strings.Join(ModeNames(), ", "))
}

// reads reports whether the mode loads an existing table.
func (m Mode) reads() bool { return m != ModeNone }

// writes reports whether the mode persists the table.
func (m Mode) writes() bool { return m == ModeAppend || m == ModePrune }
