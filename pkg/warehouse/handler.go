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

	"github.com/walteh/gitopssettings/pkg/files"
	"github.com/walteh/gitopssettings/pkg/sum"
)

// 🔌 Handler synchronizes one configuration category
type Handler interface {
	// Key names the category
	Key() string

	// Type names the handler variant for display
	Type() string

	// Sum digests the category at root, empty value when it has no data there
	Sum(ctx context.Context, kind Kind, root string) (PartialSum, error)

	// Has reports whether the category has data at root. Always true for KindCurrent.
	Has(ctx context.Context, kind Kind, root string) (bool, error)

	// Copy makes the category at to mirror the category at from
	Copy(ctx context.Context, fromKind Kind, from string, toKind Kind, to string) error
}

// layout resolves where a category lives under each location kind
type layout struct {
	key   string
	paths KindMap[string]
	files *files.Manager
	sum   *sum.Hasher
}

func (l *layout) Key() string {
	return l.key
}

func (l *layout) path(kind Kind, root string) string {
	return filepath.Join(root, l.paths.Get(kind))
}

func (l *layout) parentDir(kind Kind, root string) string {
	return filepath.Dir(l.path(kind, root))
}

// hasPayloadOrMarker is the existence rule shared by single file categories
func (l *layout) hasPayloadOrMarker(ctx context.Context, kind Kind, root string) (bool, error) {
	if kind == KindCurrent {
		return true, nil
	}
	ok, err := l.files.Exists(ctx, l.path(kind, root))
	if err != nil || ok {
		return ok, err
	}
	return l.files.HasMarker(ctx, l.parentDir(kind, root))
}
