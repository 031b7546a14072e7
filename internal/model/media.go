// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"
	"strings"
)

// Compression is a cabinet compression level.
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionLow    Compression = "low"
	CompressionMedium Compression = "medium"
	CompressionHigh   Compression = "high"
	CompressionMSZip  Compression = "mszip"
)

// Compressions lists the accepted compression levels.
var Compressions = []Compression{CompressionNone, CompressionLow, CompressionMedium, CompressionHigh, CompressionMSZip}

// ParseCompression accepts a compression level name, case-insensitively.
func ParseCompression(s string) (Compression, error) {
	for _, c := range Compressions {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	names := make([]string, len(Compressions))
	for i, c := range Compressions {
		names[i] = string(c)
	}
	return "", fmt.Errorf("invalid compression %q: must be one of %s", s, strings.Join(names, ", "))
}

// MaxSplit is the exclusive upper bound of Cab.Split.
const MaxSplit = 100

// Cab is a cabinet declaration.
type Cab struct {
	Name        string
	Compression Compression
	Split       int // number of cabinet volumes, 0 < Split < MaxSplit
	Embed       bool
	Line        int
}

// Validate checks the cab's own fields.
func (c *Cab) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("cab name must not be empty")
	}
	if c.Split <= 0 || c.Split >= MaxSplit {
		return fmt.Errorf("cab %q: split must be greater than 0 and less than %d, got %d", c.Name, MaxSplit, c.Split)
	}
	if _, err := ParseCompression(string(c.Compression)); err != nil {
		return fmt.Errorf("cab %q: %w", c.Name, err)
	}
	return nil
}

// VolumeName returns the cabinet file name of volume i (0-based). The first
// volume keeps the plain name.
func (c *Cab) VolumeName(i int) string {
	base := strings.TrimSuffix(c.Name, ".cab")
	if i == 0 {
		return base + ".cab"
	}
	return fmt.Sprintf("%s_%d.cab", base, i+1)
}
