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

// Package sum computes location independent content digests of files,
// directory trees and in-memory data.
//
// Every digest over a path starts with the path relative to a base directory
// followed by a newline, so the same tree hashes identically no matter where
// it lives on disk.
package sum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/gitopssettings/pkg/files"
	"github.com/zeebo/blake3"
	"gitlab.com/tozd/go/errors"
)

// 🔐 Algorithm selects the digest function
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	BLAKE3 Algorithm = "blake3"
)

// ParseAlgorithm validates an algorithm name, empty means SHA256
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(name)) {
	case "", SHA256:
		return SHA256, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", errors.Errorf("unknown hash algorithm %q", name)
	}
}

func (a Algorithm) new() hash.Hash {
	if a == BLAKE3 {
		return blake3.New()
	}
	return sha256.New()
}

// 🧮 Hasher computes digests over a filesystem
type Hasher struct {
	fs   afero.Fs
	algo Algorithm
}

// 🏭 New creates a hasher, an empty algorithm means SHA256
func New(fs afero.Fs, algo Algorithm) *Hasher {
	if algo == "" {
		algo = SHA256
	}
	return &Hasher{fs: fs, algo: algo}
}

// Algorithm returns the digest function in use
func (h *Hasher) Algorithm() Algorithm {
	return h.algo
}

func (h *Hasher) digest(hh hash.Hash) string {
	return hex.EncodeToString(hh.Sum(nil))
}

// 📄 File hashes the relative name of path followed by the streamed file content.
// base defaults to the directory holding the file.
func (h *Hasher) File(ctx context.Context, path, base string) (string, error) {
	if base == "" {
		base = filepath.Dir(path)
	}

	f, err := h.fs.Open(path)
	if err != nil {
		return "", &files.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	hh := h.algo.new()
	io.WriteString(hh, trimName(path, base)+"\n")
	if _, err := io.Copy(hh, f); err != nil {
		return "", &files.IOError{Op: "read", Path: path, Err: err}
	}
	return h.digest(hh), nil
}

// 🌳 Directory hashes a tree. Child digests are sorted before they are combined
// so enumeration order never matters. When skipMarker is set, marker files in
// path itself contribute nothing; markers deeper in the tree are always hashed.
// base defaults to path.
func (h *Hasher) Directory(ctx context.Context, path, base string, skipMarker bool) (string, error) {
	if base == "" {
		base = path
	}

	entries, err := afero.ReadDir(h.fs, path)
	if err != nil {
		return "", &files.IOError{Op: "readdir", Path: path, Err: err}
	}

	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		if skipMarker && files.IsMarker(entry.Name()) {
			continue
		}

		child := filepath.Join(path, entry.Name())
		switch {
		case entry.IsDir():
			d, err := h.Directory(ctx, child, base, false)
			if err != nil {
				return "", err
			}
			children = append(children, d)
		case entry.Mode().IsRegular():
			d, err := h.File(ctx, child, base)
			if err != nil {
				return "", err
			}
			children = append(children, d)
		default:
			zerolog.Ctx(ctx).Debug().Str("path", child).Msg("ignoring non-regular entry")
		}
	}
	sort.Strings(children)

	hh := h.algo.new()
	io.WriteString(hh, trimName(path, base)+"\n")
	for _, c := range children {
		io.WriteString(hh, c)
	}
	return h.digest(hh), nil
}

// Data hashes raw content with no name token
func (h *Hasher) Data(content []byte) string {
	hh := h.algo.new()
	hh.Write(content)
	return h.digest(hh)
}

// DataFile hashes content as if it were the file at path.
// base defaults to the directory holding path.
func (h *Hasher) DataFile(content []byte, path, base string) string {
	if base == "" {
		base = filepath.Dir(path)
	}
	hh := h.algo.new()
	io.WriteString(hh, trimName(path, base)+"\n")
	hh.Write(content)
	return h.digest(hh)
}

// trimName strips base and then at most one leading separator of each style
func trimName(name, base string) string {
	name = strings.TrimPrefix(name, base)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "\\")
	return name
}
