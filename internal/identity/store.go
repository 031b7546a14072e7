// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package identity hands out stable 128-bit identifiers for logical keys and
// persists them between builds. Windows Installer detects upgrades by these
// identifiers, so a key that already has one must keep it.
package identity

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/vk/swix/internal/ctxlog"
	"github.com/vk/swix/internal/diag"
	"github.com/vk/swix/internal/fsutil"
)

// Key addresses one identifier: what kind of object it names and the
// normalized logical path of that object.
type Key struct {
	Kind string
	Path string
}

func (k Key) less(o Key) bool {
	if k.Kind != o.Kind {
		return k.Kind < o.Kind
	}
	return k.Path < o.Path
}

var (
	kindRegex  = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	entryRegex = regexp.MustCompile(`^([A-Za-z0-9_]+)"((?:[^"]|"")*)"=(\S+)$`)
)

// Store is the identity table of one transformation. It is not safe for
// concurrent use.
type Store struct {
	mode   Mode
	path   string
	loaded map[Key]uuid.UUID
	issued map[Key]uuid.UUID
	minted int

	newID func() uuid.UUID
}

// New returns an in-memory store with nothing loaded.
func New(mode Mode) *Store {
	return &Store{
		mode:   mode,
		loaded: make(map[Key]uuid.UUID),
		issued: make(map[Key]uuid.UUID),
		newID:  uuid.New,
	}
}

// Open creates a store backed by the file at path. Modes that read load the
// file when it exists; a missing file is an empty table.
func Open(ctx context.Context, path string, mode Mode) (*Store, error) {
	logger := ctxlog.FromContext(ctx)
	s := New(mode)
	s.path = path

	if !mode.reads() {
		logger.Debug("Identity store not read.", "mode", mode.String())
		return s, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("Identity store does not exist yet.", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening identity store: %w", err)
	}
	defer f.Close()

	if err := s.Load(f); err != nil {
		return nil, diag.WithFile(err, path)
	}
	logger.Debug("Identity store loaded.", "path", path, "entries", len(s.loaded), "mode", mode.String())
	return s, nil
}

// Load merges the entries read from r into the table.
func (s *Store) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m := entryRegex.FindStringSubmatch(line)
		if m == nil {
			return diag.Errorf(diag.Identity, lineNum, "malformed identity entry %q", line)
		}
		id, err := uuid.Parse(m[3])
		if err != nil {
			return diag.Errorf(diag.Identity, lineNum, "invalid identifier %q: %v", m[3], err)
		}
		key := Key{Kind: m[1], Path: Normalize(strings.ReplaceAll(m[2], `""`, `"`))}
		if prev, dup := s.loaded[key]; dup && prev != id {
			return diag.Errorf(diag.Identity, lineNum, "conflicting identifiers for %s '%s'", key.Kind, key.Path)
		}
		s.loaded[key] = id
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading identity store: %w", err)
	}
	return nil
}

// Get returns the identifier for (kind, logicalPath). Repeated requests for
// the same key within one run return the same identifier.
func (s *Store) Get(kind, logicalPath string) (uuid.UUID, error) {
	if !kindRegex.MatchString(kind) {
		return uuid.Nil, diag.Errorf(diag.Internal, 0, "invalid identity kind %q", kind)
	}
	key := Key{Kind: kind, Path: Normalize(logicalPath)}
	if id, ok := s.issued[key]; ok {
		return id, nil
	}

	id, ok := s.loaded[key]
	if !ok {
		if s.mode == ModeStrict {
			return uuid.Nil, diag.Errorf(diag.Identity, 0, "no stored identifier for %s '%s'", kind, key.Path)
		}
		id = s.newID()
		s.minted++
	}
	s.issued[key] = id
	return id, nil
}

// Minted returns how many identifiers this run created.
func (s *Store) Minted() int { return s.minted }

// Mode returns the store's mode.
func (s *Store) Mode() Mode { return s.mode }

// Path returns the backing file, empty for in-memory stores.
func (s *Store) Path() string { return s.path }

// persisted returns the table the mode would write, keyed and sorted.
func (s *Store) persisted() ([]Key, map[Key]uuid.UUID) {
	table := make(map[Key]uuid.UUID, len(s.loaded)+len(s.issued))
	if s.mode != ModePrune {
		for k, v := range s.loaded {
			table[k] = v
		}
	}
	for k, v := range s.issued {
		table[k] = v
	}

	keys := make([]Key, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys, table
}

// WriteTo serializes the table this store's mode persists: one
// kind"path"=GUID entry per line, sorted by key.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	keys, table := s.persisted()
	bw := bufio.NewWriter(w)
	var n int64
	for _, k := range keys {
		c, err := fmt.Fprintf(bw, "%s\"%s\"=%s\n", k.Kind, strings.ReplaceAll(k.Path, `"`, `""`), Format(table[k]))
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// Pending returns the store file this mode would write. ok is false for
// modes that never write.
func (s *Store) Pending() (f fsutil.File, ok bool, err error) {
	if !s.mode.writes() {
		return fsutil.File{}, false, nil
	}
	if s.path == "" {
		return fsutil.File{}, false, fmt.Errorf("identity store has no backing file")
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return fsutil.File{}, false, fmt.Errorf("serializing identity store: %w", err)
	}
	return fsutil.File{Path: s.path, Data: buf.Bytes(), Perm: 0644}, true, nil
}

// Save persists the table for modes that write; other modes do nothing.
func (s *Store) Save(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	f, ok, err := s.Pending()
	if err != nil {
		return err
	}
	if !ok {
		logger.Debug("Identity store not written.", "mode", s.mode.String())
		return nil
	}
	if err := fsutil.WriteFileAtomic(f.Path, f.Data, f.Perm); err != nil {
		return err
	}
	logger.Debug("Identity store written.", "path", s.path, "minted", s.minted, "mode", s.mode.String())
	return nil
}
