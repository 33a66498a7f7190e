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

// 📄 FileSyncHandler synchronizes a category made of a single file
type FileSyncHandler struct {
	layout
}

var _ Handler = (*FileSyncHandler)(nil)

// 🏭 NewFileSyncHandler creates a handler for the file at paths under each location kind
func NewFileSyncHandler(key string, paths KindMap[string], m *files.Manager, h *sum.Hasher) *FileSyncHandler {
	return &FileSyncHandler{layout{key: key, paths: paths, files: m, sum: h}}
}

func (h *FileSyncHandler) Type() string {
	return "file"
}

func (h *FileSyncHandler) Sum(ctx context.Context, kind Kind, root string) (PartialSum, error) {
	path := h.path(kind, root)
	ok, err := h.files.Exists(ctx, path)
	if err != nil {
		return PartialSum{}, err
	}
	if !ok {
		return PartialSum{Key: h.key}, nil
	}

	digest, err := h.sum.File(ctx, path, "")
	if err != nil {
		return PartialSum{}, err
	}
	return PartialSum{Key: h.key, Value: digest}, nil
}

func (h *FileSyncHandler) Has(ctx context.Context, kind Kind, root string) (bool, error) {
	return h.hasPayloadOrMarker(ctx, kind, root)
}

// Copy replaces the destination file with the source file. A source without
// a file clears the destination. Outside current, the parent directory keeps
// a marker exactly when no file was copied.
func (h *FileSyncHandler) Copy(ctx context.Context, fromKind Kind, from string, toKind Kind, to string) error {
	ok, err := h.Has(ctx, fromKind, from)
	if err != nil || !ok {
		return err
	}

	toParent := h.parentDir(toKind, to)
	if err := h.files.MkdirAll(ctx, toParent); err != nil {
		return err
	}

	fromPath := h.path(fromKind, from)
	toPath := h.path(toKind, to)
	if err := h.files.Remove(ctx, toPath); err != nil {
		return err
	}

	copied, err := h.files.Exists(ctx, fromPath)
	if err != nil {
		return err
	}
	if copied {
		if err := h.files.CopyFile(ctx, fromPath, toPath); err != nil {
			return err
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("category", h.key).
		Str("from", fromPath).
		Str("to", toPath).
		Bool("copied", copied).
		Msg("synchronized file")

	if toKind == KindCurrent {
		return nil
	}
	if copied {
		return h.files.RemoveMarker(ctx, toParent)
	}
	return h.files.WriteMarker(ctx, toParent)
}
