package swix

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/swix/internal/diag"
	"github.com/vk/swix/internal/model"
)

func compile(t *testing.T, src string, opts Options) (*model.Document, error) {
	t.Helper()
	return Compile(context.Background(), strings.NewReader(src), opts)
}

func mustCompile(t *testing.T, src string) *model.Document {
	t.Helper()
	doc, err := compile(t, src, Options{SourcePath: "test.swr"})
	require.NoError(t, err)
	return doc
}

func TestCompile_CabsInDeclarationOrder(t *testing.T) {
	doc := mustCompile(t, ":cabFiles\n  cab1\n  cab2\n  cab3\n")

	want := []*model.Cab{
		{Name: "cab1", Compression: model.CompressionMSZip, Split: 1, Embed: true, Line: 2},
		{Name: "cab2", Compression: model.CompressionMSZip, Split: 1, Embed: true, Line: 3},
		{Name: "cab3", Compression: model.CompressionMSZip, Split: 1, Embed: true, Line: 4},
	}
	if diff := cmp.Diff(want, doc.Cabs); diff != "" {
		t.Errorf("cabs mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_DirectoryTree(t *testing.T) {
	doc := mustCompile(t, ":directories\n TARGETDIR\n  Test\n   Subtest::id=123\n  \"Another test\"")

	type dir struct {
		Name     string
		ID       string
		Children []dir
	}
	var convert func([]*model.Directory) []dir
	convert = func(ds []*model.Directory) []dir {
		var out []dir
		for _, d := range ds {
			out = append(out, dir{Name: d.Name, ID: d.ExplicitID, Children: convert(d.Children)})
		}
		return out
	}

	want := []dir{
		{Name: "TARGETDIR", Children: []dir{
			{Name: "Test", Children: []dir{{Name: "Subtest", ID: "123"}}},
			{Name: "Another test"},
		}},
	}
	if diff := cmp.Diff(want, convert(doc.Directories)); diff != "" {
		t.Errorf("directory tree mismatch (-want +got):\n%s", diff)
	}

	sub := doc.Directories[0].Children[0].Children[0]
	assert.Equal(t, `TARGETDIR\Test\Subtest`, sub.LogicalPath())
	assert.Same(t, doc.Directories[0].Children[0], sub.Parent)
}

func TestCompile_FilesInheritAttributes(t *testing.T) {
	src := `
:cabFiles :: compression=high
  main :: split=3, embed=false
:files :: to=INSTALLDIR, cab=main
  bin/app.exe :: vital=true, id=AppExe
    !services AppSvc :: start=AUTO, displayName="App ""Service"""
    :shortcuts :: dir=ProgramMenuFolder
      App
      "App (safe mode)" :: arguments=/safe, advertise=false
  ?defaults :: to=BIN
    bin/tool.exe :: name=tool64.exe
  bin/readme.txt
`
	doc := mustCompile(t, src)

	require.Len(t, doc.Cabs, 1)
	assert.Equal(t, model.CompressionHigh, doc.Cabs[0].Compression)
	assert.Equal(t, 3, doc.Cabs[0].Split)
	assert.False(t, doc.Cabs[0].Embed)

	want := []*model.Component{
		{
			Source: "bin/app.exe", DirRef: "INSTALLDIR", CabRef: "main", ExplicitID: "AppExe", Vital: true, Line: 5,
			Services: []*model.Service{{
				Name: "AppSvc", DisplayName: `App "Service"`, Start: model.StartAuto, ErrorControl: model.ErrorNormal, Line: 6,
			}},
			Shortcuts: []*model.Shortcut{
				{Name: "App", DirRef: "ProgramMenuFolder", Advertise: true, Line: 8},
				{Name: "App (safe mode)", DirRef: "ProgramMenuFolder", Arguments: "/safe", Line: 9},
			},
		},
		{Source: "bin/tool.exe", TargetName: "tool64.exe", DirRef: "BIN", CabRef: "main", Line: 11},
		{Source: "bin/readme.txt", DirRef: "INSTALLDIR", CabRef: "main", Line: 12},
	}
	if diff := cmp.Diff(want, doc.Components, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_VariablesAndSet(t *testing.T) {
	src := `
:files
  ?set :: cab=$(swix.var.Cab)
  $(swix.var.Bin)/app.exe :: to=$(swix.env.TARGET)
`
	doc, err := compile(t, src, Options{
		Variables: map[string]string{"Cab": "main", "Bin": "out"},
		LookupEnv: func(name string) (string, bool) {
			if name == "TARGET" {
				return "INSTALLDIR", true
			}
			return "", false
		},
	})
	require.NoError(t, err)
	require.Len(t, doc.Components, 1)
	c := doc.Components[0]
	assert.Equal(t, "out/app.exe", c.Source)
	assert.Equal(t, "main", c.CabRef)
	assert.Equal(t, "INSTALLDIR", c.DirRef)
}

func TestCompile_ReportsUnusedAttributes(t *testing.T) {
	src := ":cabFiles\n  main :: compresion=high\n"

	type report struct {
		Line  int
		Names []string
	}
	var got []report
	_, err := compile(t, src, Options{OnUnused: func(line int, names []string) {
		got = append(got, report{line, names})
	}})
	require.NoError(t, err)
	assert.Equal(t, []report{{2, []string{"compresion"}}}, got)
}

func TestCompile_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		kind    diag.Kind
		line    int
		message string
	}{
		{
			name: "unknown root section",
			src:  ":registry\n",
			kind: diag.Semantic, line: 1, message: `unknown section "registry"`,
		},
		{
			name: "item at root",
			src:  "app.exe\n",
			kind: diag.Semantic, line: 1, message: "items not allowed here",
		},
		{
			name: "file without cab",
			src:  ":files :: to=INSTALLDIR\n  app.exe\n",
			kind: diag.Semantic, line: 2, message: "missing required attribute 'cab'",
		},
		{
			name: "file without directory",
			src:  ":files\n  app.exe :: cab=main\n",
			kind: diag.Semantic, line: 2, message: "missing required attribute 'to'",
		},
		{
			name: "split out of range",
			src:  ":cabFiles\n  main :: split=100\n",
			kind: diag.Semantic, line: 2, message: "split must be greater than 0 and less than 100",
		},
		{
			name: "split not a number",
			src:  ":cabFiles\n  main :: split=two\n",
			kind: diag.Semantic, line: 2, message: `attribute 'split': "two" is not a number`,
		},
		{
			name: "split not whole",
			src:  ":cabFiles\n  main :: split=1.5\n",
			kind: diag.Semantic, line: 2, message: "is not a whole number",
		},
		{
			name: "bad compression",
			src:  ":cabFiles\n  main :: compression=ultra\n",
			kind: diag.Semantic, line: 2, message: `invalid compression "ultra"`,
		},
		{
			name: "bad boolean",
			src:  ":cabFiles\n  main :: embed=maybe\n",
			kind: diag.Semantic, line: 2, message: `attribute 'embed': "maybe" is not a boolean`,
		},
		{
			name: "duplicate cab",
			src:  ":cabFiles\n  main\n  main\n",
			kind: diag.Semantic, line: 3, message: `cab "main" already declared on line 2`,
		},
		{
			name: "duplicate sibling directory",
			src:  ":directories\n  TARGETDIR\n  targetdir\n",
			kind: diag.Semantic, line: 3, message: `directory "targetdir" already declared on line 2`,
		},
		{
			name: "cab takes no body",
			src:  ":cabFiles\n  main\n    extra\n",
			kind: diag.Semantic, line: 3, message: "items not allowed here",
		},
		{
			name: "bad service start",
			src:  ":files :: to=A, cab=c\n  app.exe\n    !services Svc :: start=sometimes\n",
			kind: diag.Semantic, line: 3, message: `invalid start "sometimes"`,
		},
		{
			name: "shortcut without dir",
			src:  ":files :: to=A, cab=c\n  app.exe\n    !shortcuts App\n",
			kind: diag.Semantic, line: 3, message: "missing required attribute 'dir'",
		},
		{
			name: "undefined variable",
			src:  ":cabFiles\n  $(swix.var.Missing)\n",
			kind: diag.Semantic, line: 2, message: "Missing",
		},
		{
			name: "tab",
			src:  ":cabFiles\n\tmain\n",
			kind: diag.Lexical, line: 2, message: "tab",
		},
		{
			name: "between levels",
			src:  ":directories\n  A\n      B\n    C\n",
			kind: diag.Indentation, line: 4, message: "falls between indentation",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compile(t, tc.src, Options{SourcePath: "bad.swr", LookupEnv: func(string) (string, bool) { return "", false }})
			require.Error(t, err)
			de, ok := diag.As(err)
			require.True(t, ok, "expected a diagnostic, got %T: %v", err, err)
			assert.Equal(t, tc.kind, de.Kind)
			assert.Equal(t, tc.line, de.Line)
			assert.Equal(t, "bad.swr", de.File)
			assert.Contains(t, de.Message, tc.message)
		})
	}
}
