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

// Package kv is a small durable string store. Values are read from disk on
// every Get, nothing is cached between calls.
package kv

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/gitopssettings/pkg/files"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// StorageDirectoryKey holds the directory configuration is stored in
const StorageDirectoryKey = "gitopssettings.storageDirectory"

// 🗝️ Store reads and writes durable string values
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// 💾 FileStore keeps values in a YAML document
type FileStore struct {
	files *files.Manager
	path  string
}

var _ Store = (*FileStore)(nil)

// 🏭 NewFileStore creates a store backed by the YAML file at path
func NewFileStore(m *files.Manager, path string) *FileStore {
	return &FileStore{files: m, path: path}
}

func (s *FileStore) load(ctx context.Context) (map[string]string, error) {
	ok, err := s.files.Exists(ctx, s.path)
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if !ok {
		return values, nil
	}

	data, err := s.files.ReadFile(ctx, s.path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Errorf("parsing %s: %w", s.path, err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

// Get returns the stored value, or "" when key was never set
func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	values, err := s.load(ctx)
	if err != nil {
		return "", errors.Errorf("loading state: %w", err)
	}
	return values[key], nil
}

// Set persists value under key
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	values, err := s.load(ctx)
	if err != nil {
		return errors.Errorf("loading state: %w", err)
	}
	values[key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.Errorf("encoding state: %w", err)
	}
	if err := s.files.MkdirAll(ctx, filepath.Dir(s.path)); err != nil {
		return errors.Errorf("creating state directory: %w", err)
	}
	if err := s.files.WriteFileAtomic(ctx, s.path, data); err != nil {
		return errors.Errorf("saving state: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("key", key).Str("value", value).Msg("saved setting")
	return nil
}
