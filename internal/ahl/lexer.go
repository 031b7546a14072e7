// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package ahl

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/vk/swix/internal/diag"
)

// Class is the keyword class of a line.
type Class int

const (
	// Item is a line without a keyword.
	Item Class = iota
	// Section is a `:name` line opening a nested context.
	Section
	// InlineSection is a `!name key` line: a section holding exactly one item.
	InlineSection
	// Meta is a `?name` directive altering attribute state.
	Meta
)

// String implements fmt.Stringer.
func (c Class) String() string {
	switch c {
	case Section:
		return "section"
	case InlineSection:
		return "inline-section-item"
	case Meta:
		return "meta"
	default:
		return "item"
	}
}

// Attribute is one name=value pair from a line.
type Attribute struct {
	Name  string
	Value string
}

// LineRecord is a single tokenized source line.
type LineRecord struct {
	Line       int
	Indent     int
	Class      Class
	Keyword    string // empty for items
	Key        string
	HasKey     bool
	Attributes []Attribute
}

var (
	keywordRegex = regexp.MustCompile(`^([:!?])([A-Za-z_][A-Za-z0-9_]*)`)
	keyRegex     = regexp.MustCompile(`^(?:"(?:[^"]|"")*"|[^=\r\n!?:,"]+)`)
	attrRegex    = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*) *= *("(?:[^"]|"")*"|[^=\r\n!?:,"]+)`)
)

var keywordClasses = map[byte]Class{
	':': Section,
	'!': InlineSection,
	'?': Meta,
}

// Lex reads every line from r and returns the records of the non-blank ones
// in source order.
func Lex(r io.Reader) ([]LineRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []LineRecord
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		rec, ok, err := ParseLine(lineNum, scanner.Text())
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return records, nil
}

// ParseLine tokenizes a single raw line. The boolean result is false for
// blank and comment-only lines.
func ParseLine(lineNum int, raw string) (LineRecord, bool, error) {
	raw = strings.TrimSuffix(raw, "\r")
	if strings.ContainsRune(raw, '\t') {
		return LineRecord{}, false, diag.Errorf(diag.Lexical, lineNum, "tab characters are not allowed")
	}

	text := strings.TrimRight(stripComment(raw), " ")
	body := strings.TrimLeft(text, " ")
	if body == "" {
		return LineRecord{}, false, nil
	}

	rec := LineRecord{Line: lineNum, Indent: len(text) - len(body)}
	rest := body

	if m := keywordRegex.FindStringSubmatch(rest); m != nil {
		rec.Class = keywordClasses[m[1][0]]
		rec.Keyword = m[2]
		rest = rest[len(m[0]):]
		if rest != "" && rest[0] != ' ' && !strings.HasPrefix(rest, "::") {
			return LineRecord{}, false, diag.Errorf(diag.Lexical, lineNum, "unexpected %q after keyword %q", rest, m[0])
		}
	}

	rest = strings.TrimLeft(rest, " ")
	if rest != "" && !strings.HasPrefix(rest, "::") {
		loc := keyRegex.FindStringIndex(rest)
		if loc == nil {
			return LineRecord{}, false, diag.Errorf(diag.Lexical, lineNum, "cannot parse %q", rest)
		}
		rec.Key = unquote(strings.TrimRight(rest[:loc[1]], " "))
		rec.HasKey = true
		rest = strings.TrimLeft(rest[loc[1]:], " ")
	}

	if rest == "" {
		return rec, true, nil
	}
	if !strings.HasPrefix(rest, "::") {
		return LineRecord{}, false, diag.Errorf(diag.Lexical, lineNum, "expected '::' before attributes, found %q", rest)
	}

	attrs, err := parseAttributes(lineNum, rest[2:])
	if err != nil {
		return LineRecord{}, false, err
	}
	rec.Attributes = attrs
	return rec, true, nil
}

// parseAttributes consumes a comma-separated name=value list. A repeated
// name keeps its first position and takes the last value.
func parseAttributes(lineNum int, list string) ([]Attribute, error) {
	var attrs []Attribute
	index := make(map[string]int)

	rest := list
	for {
		rest = strings.TrimLeft(rest, " ")
		m := attrRegex.FindStringSubmatch(rest)
		if m == nil {
			if rest == "" {
				return nil, diag.Errorf(diag.Lexical, lineNum, "expected attribute after '::' or ','")
			}
			return nil, diag.Errorf(diag.Lexical, lineNum, "malformed attribute %q", rest)
		}
		name, value := m[1], unquote(strings.TrimRight(m[2], " "))
		if i, seen := index[name]; seen {
			attrs[i].Value = value
		} else {
			index[name] = len(attrs)
			attrs = append(attrs, Attribute{Name: name, Value: value})
		}

		rest = strings.TrimLeft(rest[len(m[0]):], " ")
		if rest == "" {
			return attrs, nil
		}
		if rest[0] != ',' {
			return nil, diag.Errorf(diag.Lexical, lineNum, "expected ',' between attributes, found %q", rest)
		}
		rest = rest[1:]
	}
}

// stripComment cuts the line at the first `//` that is not inside a quoted
// string, judged by the parity of the quotes before it.
func stripComment(s string) string {
	quotes := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			quotes++
		case s[i] == '/' && i+1 < len(s) && s[i+1] == '/' && quotes%2 == 0:
			return s[:i]
		}
	}
	return s
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}
