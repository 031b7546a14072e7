package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File is one file to publish with WriteFilesAtomic.
type File struct {
	Path string
	Data []byte
	Perm os.FileMode
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partially written file and a
// failed write leaves any previous file untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return WriteFilesAtomic(File{Path: path, Data: data, Perm: perm})
}

// WriteFilesAtomic publishes all files or none of them. Every file is staged
// next to its target before anything is renamed. If a rename fails, the
// files already replaced get their previous content back and files that did
// not exist before are removed.
func WriteFilesAtomic(files ...File) (err error) {
	staged := make([]string, 0, len(files))
	defer func() {
		if err != nil {
			for _, tmp := range staged {
				_ = os.Remove(tmp)
			}
		}
	}()

	for _, f := range files {
		tmp, err := stage(f)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}

	previous := make([]*snapshot, len(files))
	for i, f := range files {
		if previous[i], err = takeSnapshot(f.Path); err != nil {
			return err
		}
	}

	for i, f := range files {
		if err = os.Rename(staged[i], f.Path); err != nil {
			err = fmt.Errorf("replacing %s: %w", f.Path, err)
			for j := i - 1; j >= 0; j-- {
				if rerr := previous[j].restore(files[j].Path); rerr != nil {
					err = errors.Join(err, rerr)
				}
			}
			return err
		}
	}
	return nil
}

func stage(f File) (name string, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), "."+filepath.Base(f.Path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("staging %s: %w", f.Path, err)
	}
	name = tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(name)
		}
	}()

	if _, err = tmp.Write(f.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err = tmp.Chmod(f.Perm); err != nil {
		tmp.Close()
		return "", fmt.Errorf("setting mode of %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return name, nil
}

// snapshot is the content a target had before it was replaced.
type snapshot struct {
	exists bool
	data   []byte
	perm   os.FileMode
}

func takeSnapshot(path string) (*snapshot, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("replacing %s: not a regular file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &snapshot{exists: true, data: data, perm: info.Mode().Perm()}, nil
}

func (s *snapshot) restore(path string) error {
	if !s.exists {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		return nil
	}
	tmp, err := stage(File{Path: path, Data: s.data, Perm: s.perm})
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("restoring %s: %w", path, err)
	}
	return nil
}
