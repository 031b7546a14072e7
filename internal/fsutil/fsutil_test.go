package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.hcl", "a.hcl", "nested/c.hcl", "nested/ignored.txt"} {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.hcl"),
	}, files)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(root, "") })
}

func TestSiblingPath(t *testing.T) {
	assert.Equal(t, "dir/setup.wxs", SiblingPath("dir/setup.swr", ".wxs"))
	assert.Equal(t, "setup.wxs", SiblingPath("setup", ".wxs"))
	assert.Equal(t, "setup", SiblingPath("setup.swr", ""))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.wxs")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	require.NoError(t, WriteFileAtomic(target, []byte("new"), 0644))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no staging files are left behind")
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing", "out.wxs")
	require.Error(t, WriteFileAtomic(target, []byte("x"), 0644))
	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFilesAtomic_AllOrNothing(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "setup.wxs")
	store := filepath.Join(dir, "setup.swr.ids")
	require.NoError(t, os.WriteFile(output, []byte("old"), 0644))
	require.NoError(t, os.Mkdir(store, 0755))

	err := WriteFilesAtomic(
		File{Path: output, Data: []byte("new"), Perm: 0644},
		File{Path: store, Data: []byte("ids"), Perm: 0644},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a regular file")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no staging files are left behind")
}

func TestWriteFilesAtomic_StagingFailurePublishesNothing(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "setup.wxs")

	err := WriteFilesAtomic(
		File{Path: output, Data: []byte("new"), Perm: 0644},
		File{Path: filepath.Join(dir, "missing", "setup.swr.ids"), Data: []byte("ids"), Perm: 0644},
	)
	require.Error(t, err)

	_, err = os.Stat(output)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSnapshotRestore(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "setup.wxs")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0600))

	before, err := takeSnapshot(existing)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(existing, []byte("new"), 0644))
	require.NoError(t, before.restore(existing))

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	info, err := os.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	created := filepath.Join(dir, "setup.swr.ids")
	absent, err := takeSnapshot(created)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(created, []byte("ids"), 0644))
	require.NoError(t, absent.restore(created))
	_, err = os.Stat(created)
	assert.True(t, os.IsNotExist(err))
}
