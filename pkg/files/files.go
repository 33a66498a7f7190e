// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	// 📁 DirMode is used for every directory created by the manager
	DirMode os.FileMode = 0755

	// 📄 FileMode is used for files written from memory
	FileMode os.FileMode = 0644

	// 🏷️ MarkerName is the sentinel written into otherwise empty category directories
	MarkerName = ".gitkeep"
)

// markerContent is what a fresh marker file holds
var markerContent = []byte("\n")

// IsMarker reports whether a directory entry name is a marker file.
// ".keep" is recognized but never written.
func IsMarker(name string) bool {
	return name == MarkerName || name == ".keep"
}

// 💥 IOError is a filesystem access failure
type IOError struct {
	Op   string // Operation that failed (read, write, remove, ...)
	Path string // Path the operation touched
	Err  error  // Underlying cause
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func ioErr(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

// 💾 Manager performs the filesystem primitives the category handlers are built from
type Manager struct {
	fs afero.Fs
}

// 🏭 New creates a new manager over the given filesystem
func New(fs afero.Fs) *Manager {
	return &Manager{fs: fs}
}

// NewOs creates a manager over the real filesystem
func NewOs() *Manager {
	return New(afero.NewOsFs())
}

// Fs returns the underlying filesystem
func (m *Manager) Fs() afero.Fs {
	return m.fs
}

// 🔍 Exists reports whether path exists
func (m *Manager) Exists(ctx context.Context, path string) (bool, error) {
	ok, err := afero.Exists(m.fs, path)
	if err != nil {
		return false, ioErr("stat", path, err)
	}
	return ok, nil
}

// 📁 MkdirAll creates path and its parents
func (m *Manager) MkdirAll(ctx context.Context, path string) error {
	if err := m.fs.MkdirAll(path, DirMode); err != nil {
		return ioErr("mkdir", path, err)
	}
	return nil
}

// 🗑️ Remove unlinks path if it exists
func (m *Manager) Remove(ctx context.Context, path string) error {
	err := m.fs.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return ioErr("remove", path, err)
}

// 🗑️ RemoveAll removes path and everything below it
func (m *Manager) RemoveAll(ctx context.Context, path string) error {
	if err := m.fs.RemoveAll(path); err != nil {
		return ioErr("remove", path, err)
	}
	return nil
}

// 📖 ReadFile reads the whole file
func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return nil, ioErr("read", path, err)
	}
	return data, nil
}

// ✍️ WriteFileAtomic writes content through a temp file in the same directory and renames it into place
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	tmp, err := afero.TempFile(m.fs, filepath.Dir(path), ".gitopssettings-tmp-*")
	if err != nil {
		return ioErr("write", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = m.fs.Remove(tmpPath)
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return ioErr("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return ioErr("write", path, err)
	}
	if err := m.fs.Chmod(tmpPath, FileMode); err != nil {
		return ioErr("chmod", path, err)
	}
	if err := m.fs.Rename(tmpPath, path); err != nil {
		return ioErr("rename", path, err)
	}
	return nil
}

// 📋 CopyFile copies src to dst keeping the source permissions.
// The destination parent must exist.
func (m *Manager) CopyFile(ctx context.Context, src, dst string) error {
	zerolog.Ctx(ctx).Debug().Str("src", src).Str("dst", dst).Msg("copying file")

	in, err := m.fs.Open(src)
	if err != nil {
		return ioErr("open", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return ioErr("stat", src, err)
	}

	tmp, err := afero.TempFile(m.fs, filepath.Dir(dst), ".gitopssettings-tmp-*")
	if err != nil {
		return ioErr("create", dst, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = m.fs.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return ioErr("copy", src, err)
	}
	if err := tmp.Close(); err != nil {
		return ioErr("write", dst, err)
	}
	if err := m.fs.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return ioErr("chmod", dst, err)
	}
	if err := m.fs.Rename(tmpPath, dst); err != nil {
		return ioErr("rename", dst, err)
	}
	return nil
}

// 🌳 CopyTree recursively copies the directory src into dst.
// Entries for which skip returns true are left out; skip receives the path relative to src.
func (m *Manager) CopyTree(ctx context.Context, src, dst string, skip func(rel string) bool) error {
	return afero.Walk(m.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return ioErr("walk", path, err)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return ioErr("walk", path, err)
		}
		if rel != "." && skip != nil && skip(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		switch {
		case info.IsDir():
			return m.MkdirAll(ctx, target)
		case info.Mode().IsRegular():
			return m.CopyFile(ctx, path, target)
		default:
			zerolog.Ctx(ctx).Debug().Str("path", path).Msg("skipping non-regular entry")
			return nil
		}
	})
}

// 🏷️ WriteMarker writes the marker file into dir
func (m *Manager) WriteMarker(ctx context.Context, dir string) error {
	path := filepath.Join(dir, MarkerName)
	if err := afero.WriteFile(m.fs, path, markerContent, FileMode); err != nil {
		return ioErr("write", path, err)
	}
	return nil
}

// HasMarker reports whether dir holds a marker file
func (m *Manager) HasMarker(ctx context.Context, dir string) (bool, error) {
	return m.Exists(ctx, filepath.Join(dir, MarkerName))
}

// RemoveMarker removes the marker file from dir if present
func (m *Manager) RemoveMarker(ctx context.Context, dir string) error {
	return m.Remove(ctx, filepath.Join(dir, MarkerName))
}
