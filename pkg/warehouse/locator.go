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

package warehouse

import (
	"context"
	"path/filepath"

	"github.com/walteh/gitopssettings/pkg/kv"
	"github.com/walteh/gitopssettings/pkg/platform"
	"gitlab.com/tozd/go/errors"
)

// ErrStorageDirectoryNotSet is returned when no storage directory was chosen yet
var ErrStorageDirectoryNotSet = errors.Base("storage directory is not set")

// 🧭 Locator resolves the root directory of each location kind
type Locator interface {
	Current(ctx context.Context) (string, error)
	LastImported(ctx context.Context) (string, error)
	Stored(ctx context.Context) (string, error)
}

// 🧭 DefaultLocator resolves locations from fixed roots and the durable store.
// The stored root is read from the store on every call.
type DefaultLocator struct {
	current      string
	lastImported string
	store        kv.Store
}

var _ Locator = (*DefaultLocator)(nil)

// 🏭 NewLocator creates a locator. currentRoot is the live editor directory
// and dataRoot the private directory holding the last imported snapshot.
func NewLocator(id platform.ID, currentRoot, dataRoot string, store kv.Store) *DefaultLocator {
	return &DefaultLocator{
		current:      currentRoot,
		lastImported: platform.NormalizeStoragePath(id, filepath.Join(dataRoot, "last-imported")),
		store:        store,
	}
}

func (l *DefaultLocator) Current(ctx context.Context) (string, error) {
	return l.current, nil
}

func (l *DefaultLocator) LastImported(ctx context.Context) (string, error) {
	return l.lastImported, nil
}

func (l *DefaultLocator) Stored(ctx context.Context) (string, error) {
	dir, err := l.store.Get(ctx, kv.StorageDirectoryKey)
	if err != nil {
		return "", errors.Errorf("reading storage directory: %w", err)
	}
	if dir == "" {
		return "", errors.WithStack(ErrStorageDirectoryNotSet)
	}
	return dir, nil
}
