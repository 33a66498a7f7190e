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

	"github.com/rs/zerolog"
	"github.com/walteh/gitopssettings/pkg/files"
	"github.com/walteh/gitopssettings/pkg/sum"
)

// 🌳 DirectorySyncHandler synchronizes a category made of a free form directory tree
type DirectorySyncHandler struct {
	layout
}

var _ Handler = (*DirectorySyncHandler)(nil)

// 🏭 NewDirectorySyncHandler creates a handler for the directory at paths under each location kind
func NewDirectorySyncHandler(key string, paths KindMap[string], m *files.Manager, h *sum.Hasher) *DirectorySyncHandler {
	return &DirectorySyncHandler{layout{key: key, paths: paths, files: m, sum: h}}
}

func (h *DirectorySyncHandler) Type() string {
	return "directory"
}

func (h *DirectorySyncHandler) Sum(ctx context.Context, kind Kind, root string) (PartialSum, error) {
	path := h.path(kind, root)
	ok, err := h.files.Exists(ctx, path)
	if err != nil {
		return PartialSum{}, err
	}
	if !ok {
		return PartialSum{Key: h.key}, nil
	}

	digest, err := h.sum.Directory(ctx, path, "", true)
	if err != nil {
		return PartialSum{}, err
	}
	return PartialSum{Key: h.key, Value: digest}, nil
}

func (h *DirectorySyncHandler) Has(ctx context.Context, kind Kind, root string) (bool, error) {
	if kind == KindCurrent {
		return true, nil
	}
	return h.files.Exists(ctx, h.path(kind, root))
}

// Copy removes the destination tree and copies the source tree in its place.
// Outside current the destination root always gets a marker; the marker of
// a source is never carried into current.
func (h *DirectorySyncHandler) Copy(ctx context.Context, fromKind Kind, from string, toKind Kind, to string) error {
	ok, err := h.Has(ctx, fromKind, from)
	if err != nil || !ok {
		return err
	}

	fromPath := h.path(fromKind, from)
	toPath := h.path(toKind, to)
	if err := h.files.RemoveAll(ctx, toPath); err != nil {
		return err
	}

	exists, err := h.files.Exists(ctx, fromPath)
	if err != nil {
		return err
	}
	if exists {
		var skip func(string) bool
		if toKind == KindCurrent {
			skip = files.IsMarker
		}
		if err := h.files.CopyTree(ctx, fromPath, toPath, skip); err != nil {
			return err
		}
	} else if err := h.files.MkdirAll(ctx, toPath); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("category", h.key).
		Str("from", fromPath).
		Str("to", toPath).
		Bool("source_exists", exists).
		Msg("synchronized directory")

	if toKind == KindCurrent {
		return nil
	}
	return h.files.WriteMarker(ctx, toPath)
}
