package ahl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/swix/internal/diag"
)

// journal collects finish events and item attributes from the toy dialect.
type journal struct {
	events []string
}

func (j *journal) add(format string, args ...any) {
	j.events = append(j.events, fmt.Sprintf(format, args...))
}

// toyRoot accepts `:list` (flat items) and `:tree` (nested items).
type toyRoot struct {
	j *journal
	h *Handlers
}

func newToyRoot(j *journal) *toyRoot {
	r := &toyRoot{j: j}
	r.h = NewHandlers().
		HandleSection("list", func(scope *Scope) (Context, error) { return newToyList(j, scope), nil }).
		HandleSection("tree", func(scope *Scope) (Context, error) { return newToyTree(j, "tree"), nil })
	return r
}

func (r *toyRoot) Handlers() *Handlers { return r.h }
func (r *toyRoot) Finish() error       { r.j.add("finish root"); return nil }

type toyList struct {
	j *journal
	h *Handlers
}

func newToyList(j *journal, scope *Scope) *toyList {
	l := &toyList{j: j}
	l.h = NewHandlers().HandleItems(func(key string, scope *Scope) (Context, error) {
		j.add("item %s color=%s", key, scope.Get("color", "-"))
		return l, nil
	})
	return l
}

func (l *toyList) Handlers() *Handlers { return l.h }
func (l *toyList) Finish() error       { l.j.add("finish list"); return nil }

type toyTree struct {
	j    *journal
	name string
	h    *Handlers
}

func newToyTree(j *journal, name string) *toyTree {
	t := &toyTree{j: j, name: name}
	t.h = NewHandlers().
		HandleItems(func(key string, scope *Scope) (Context, error) {
			if key == "bad" {
				return nil, errors.New("bad node")
			}
			return newToyTree(j, key), nil
		}).
		HandleSection("list", func(scope *Scope) (Context, error) { return newToyList(j, scope), nil })
	return t
}

func (t *toyTree) Handlers() *Handlers { return t.h }
func (t *toyTree) Finish() error       { t.j.add("finish %s", t.name); return nil }

func runToy(t *testing.T, src string, root Root, onUnused UnusedFunc) (*journal, error) {
	t.Helper()
	records, err := Lex(strings.NewReader(src))
	require.NoError(t, err)
	j := &journal{}
	d := NewDispatcher(context.Background(), onUnused)
	return j, d.Run(records, newToyRoot(j), NewRootScope(root))
}

func TestDispatch_FlatItemsInOrder(t *testing.T) {
	j, err := runToy(t, ":list ::color=red\n  one\n  two ::color=blue\n  three\n", Root{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"item one color=red",
		"item two color=blue",
		"item three color=red",
		"finish list",
		"finish root",
	}, j.events)
}

func TestDispatch_NestedItemsFinishInnermostFirst(t *testing.T) {
	j, err := runToy(t, ":tree\n a\n  b\n  c\n d\n", Root{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"finish b", "finish c", "finish a", "finish d", "finish tree", "finish root"}, j.events)
}

func TestDispatch_InlineSectionClosesWithItem(t *testing.T) {
	src := ":tree\n a\n  !list x ::color=green\n  b\n"
	j, err := runToy(t, src, Root{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"item x color=green",
		"finish list",
		"finish b",
		"finish a",
		"finish tree",
		"finish root",
	}, j.events)
}

func TestDispatch_DefaultsAppliesToNestedLinesOnly(t *testing.T) {
	src := `
:list
  one
  ?defaults ::color=red
    two
    three
  four
`
	j, err := runToy(t, src, Root{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"item one color=-",
		"item two color=red",
		"item three color=red",
		"item four color=-",
		"finish list",
		"finish root",
	}, j.events, "the list context is finished once, not by the directive")
}

func TestDispatch_SetAffectsFollowingSiblings(t *testing.T) {
	src := `
:list ::color=red
  one
  ?set ::color=blue
  two
`
	j, err := runToy(t, src, Root{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"item one color=red", "item two color=blue", "finish list", "finish root"}, j.events)
}

func TestDispatch_ExpandsKeysAndAttributes(t *testing.T) {
	root := Root{Variables: map[string]string{"C": "pink", "N": "named"}}
	j, err := runToy(t, ":list\n  $(swix.var.N) ::color=$(swix.var.C)\n", root, nil)
	require.NoError(t, err)
	assert.Equal(t, "item named color=pink", j.events[0])
}

func TestDispatch_ReportsUnusedAttributes(t *testing.T) {
	var reported []string
	onUnused := func(line int, names []string) {
		reported = append(reported, fmt.Sprintf("%d:%s", line, strings.Join(names, ",")))
	}
	_, err := runToy(t, ":list ::size=3\n  one ::color=red, shape=round\n", Root{}, onUnused)
	require.NoError(t, err)
	assert.Equal(t, []string{"2:shape", "1:size"}, reported)
}

func TestDispatch_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		line    int
		message string
	}{
		{name: "items at root", src: "stray\n", line: 1, message: "items not allowed here"},
		{name: "unknown section", src: ":nope\n", line: 1, message: `unknown section "nope"`},
		{name: "section with key", src: ":list key\n", line: 1, message: "does not take a key"},
		{name: "unknown meta", src: ":list\n  ?frobnicate\n", line: 2, message: "unknown directive '?frobnicate'"},
		{name: "undefined variable", src: ":list\n  $(swix.var.X)\n", line: 2, message: `undefined variable "X"`},
		{name: "handler error gets line", src: ":tree\n ok\n bad\n", line: 3, message: "bad node"},
		{name: "children of set", src: ":list\n  ?set ::a=1\n    x\n", line: 3, message: "items not allowed here"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runToy(t, tc.src, Root{}, nil)
			require.Error(t, err)
			de, ok := diag.As(err)
			require.True(t, ok, "expected a diag.Error, got %T", err)
			assert.Equal(t, diag.Semantic, de.Kind)
			assert.Equal(t, tc.line, de.Line)
			assert.Contains(t, de.Message, tc.message)
		})
	}
}

func TestHandlers_DuplicateRegistrationPanics(t *testing.T) {
	h := NewHandlers().HandleSection("a", func(*Scope) (Context, error) { return nil, nil })
	assert.Panics(t, func() { h.HandleSection("a", func(*Scope) (Context, error) { return nil, nil }) })
	assert.Panics(t, func() { h.HandleMeta("set", func(*Node, *LineRecord) (*Node, error) { return nil, nil }) })
}
