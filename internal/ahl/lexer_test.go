package ahl

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/swix/internal/diag"
)

func TestParseLine(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		skip     bool
		expected LineRecord
	}{
		{
			name:     "bare item",
			raw:      "TARGETDIR",
			expected: LineRecord{Line: 1, Key: "TARGETDIR", HasKey: true},
		},
		{
			name:     "indented item with attributes",
			raw:      "   Subtest::id=123",
			expected: LineRecord{Line: 1, Indent: 3, Key: "Subtest", HasKey: true, Attributes: []Attribute{{"id", "123"}}},
		},
		{
			name:     "quoted key with escaped quote",
			raw:      `  "Another ""big"" test"`,
			expected: LineRecord{Line: 1, Indent: 2, Key: `Another "big" test`, HasKey: true},
		},
		{
			name:     "bare key with inner spaces",
			raw:      "Program Files   ::id=PF",
			expected: LineRecord{Line: 1, Key: "Program Files", HasKey: true, Attributes: []Attribute{{"id", "PF"}}},
		},
		{
			name:     "section",
			raw:      ":cabFiles",
			expected: LineRecord{Line: 1, Class: Section, Keyword: "cabFiles"},
		},
		{
			name:     "section with attributes",
			raw:      ":files ::cab=cab1, to=INSTALLDIR",
			expected: LineRecord{Line: 1, Class: Section, Keyword: "files", Attributes: []Attribute{{"cab", "cab1"}, {"to", "INSTALLDIR"}}},
		},
		{
			name:     "inline section item",
			raw:      `    !services MySvc ::start=auto, displayName="My Service"`,
			expected: LineRecord{Line: 1, Indent: 4, Class: InlineSection, Keyword: "services", Key: "MySvc", HasKey: true, Attributes: []Attribute{{"start", "auto"}, {"displayName", "My Service"}}},
		},
		{
			name:     "meta directive",
			raw:      "?defaults ::cab=cab2",
			expected: LineRecord{Line: 1, Class: Meta, Keyword: "defaults", Attributes: []Attribute{{"cab", "cab2"}}},
		},
		{
			name:     "duplicate attribute keeps position, last value wins",
			raw:      "a ::x=1, y=2, x=3",
			expected: LineRecord{Line: 1, Key: "a", HasKey: true, Attributes: []Attribute{{"x", "3"}, {"y", "2"}}},
		},
		{
			name:     "comment stripped",
			raw:      "bin // the binaries",
			expected: LineRecord{Line: 1, Key: "bin", HasKey: true},
		},
		{
			name:     "comment marker inside quotes is kept",
			raw:      `url ::href="http://example.com" // trailing`,
			expected: LineRecord{Line: 1, Key: "url", HasKey: true, Attributes: []Attribute{{"href", "http://example.com"}}},
		},
		{
			name:     "empty quoted value",
			raw:      `a ::b=""`,
			expected: LineRecord{Line: 1, Key: "a", HasKey: true, Attributes: []Attribute{{"b", ""}}},
		},
		{
			name: "blank line",
			raw:  "     ",
			skip: true,
		},
		{
			name: "comment only",
			raw:  "   // nothing here",
			skip: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, ok, err := ParseLine(1, tc.raw)
			require.NoError(t, err)
			if tc.skip {
				require.False(t, ok)
				return
			}
			require.True(t, ok)
			if diff := cmp.Diff(tc.expected, rec); diff != "" {
				t.Errorf("LineRecord mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLine_Errors(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "tab indentation", raw: "\tfoo"},
		{name: "embedded tab", raw: "foo ::a=\tb"},
		{name: "missing attribute list separator", raw: "foo bar=1"},
		{name: "empty attribute list", raw: "foo ::"},
		{name: "trailing comma", raw: "foo ::a=1,"},
		{name: "missing value", raw: "foo ::a="},
		{name: "missing comma", raw: `foo ::a="1" b=2`},
		{name: "keyword glued to text", raw: ":files=1"},
		{name: "unterminated quote", raw: `"abc`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseLine(9, tc.raw)
			require.Error(t, err)
			de, ok := diag.As(err)
			require.True(t, ok)
			assert.Equal(t, diag.Lexical, de.Kind)
			assert.Equal(t, 9, de.Line)
		})
	}
}

func TestLex_SkipsBlankLinesAndNumbersLines(t *testing.T) {
	src := ":directories\r\n\n TARGETDIR\n\n  // comment\n  Test\n"
	records, err := Lex(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 1, records[0].Line)
	assert.Equal(t, 3, records[1].Line)
	assert.Equal(t, 1, records[1].Indent)
	assert.Equal(t, 6, records[2].Line)
	assert.Equal(t, 2, records[2].Indent)
}

func TestLex_ReportsLineOfTab(t *testing.T) {
	_, err := Lex(strings.NewReader("a\nb\n\tc\n"))
	require.Error(t, err)
	de, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, 3, de.Line)
}
