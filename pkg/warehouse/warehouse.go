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

	"github.com/rs/zerolog"
	"github.com/walteh/gitopssettings/pkg/config"
	"github.com/walteh/gitopssettings/pkg/files"
	"github.com/walteh/gitopssettings/pkg/host"
	"github.com/walteh/gitopssettings/pkg/log"
	"github.com/walteh/gitopssettings/pkg/sum"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Category keys, in registration order
const (
	KeySettings          = "settings"
	KeyKeyboardShortcuts = "keyboardShortcuts"
	KeySnippets          = "snippets"
	KeyTasks             = "tasks"
	KeyExtensions        = "extensions"
)

// nested places a category file under a directory named after its key outside current
func nested(key, name string) KindMap[string] {
	return KindMap[string]{
		Current:      name,
		LastImported: filepath.Join(key, name),
		Stored:       filepath.Join(key, name),
	}
}

// 🏪 Warehouse owns the active category handlers and copies configuration
// between the three location kinds. Calls must not overlap.
type Warehouse struct {
	handlers []Handler
	locator  Locator
	files    *files.Manager
	console  *log.Logger
}

// 🔧 Options configures a warehouse
type Options struct {
	Synchronize config.Synchronize
	Files       *files.Manager
	Hasher      *sum.Hasher
	Extensions  host.Extensions
	Ignore      []string // extension name patterns left alone
	Locator     Locator
	Console     *log.Logger // optional, prints per category results of copies
}

// 🏭 New builds the handlers of every enabled category
func New(opts Options) (*Warehouse, error) {
	if opts.Files == nil || opts.Hasher == nil || opts.Locator == nil {
		return nil, errors.New("files, hasher and locator are required")
	}

	w := &Warehouse{
		locator: opts.Locator,
		files:   opts.Files,
		console: opts.Console,
	}

	sync := opts.Synchronize
	if sync.Settings {
		w.handlers = append(w.handlers, NewFileSyncHandler(KeySettings, nested(KeySettings, "settings.json"), opts.Files, opts.Hasher))
	}
	if sync.KeyboardShortcuts {
		w.handlers = append(w.handlers, NewFileSyncHandler(KeyKeyboardShortcuts, nested(KeyKeyboardShortcuts, "keybindings.json"), opts.Files, opts.Hasher))
	}
	if sync.UserSnippets {
		paths := KindMap[string]{Current: "snippets", LastImported: "snippets", Stored: "snippets"}
		w.handlers = append(w.handlers, NewDirectorySyncHandler(KeySnippets, paths, opts.Files, opts.Hasher))
	}
	if sync.UserTasks {
		w.handlers = append(w.handlers, NewFileSyncHandler(KeyTasks, nested(KeyTasks, "tasks.json"), opts.Files, opts.Hasher))
	}
	if sync.Extensions {
		if opts.Extensions == nil {
			return nil, errors.New("extension synchronization needs an extensions host")
		}
		h, err := NewExtensionsHandler(KeyExtensions, nested(KeyExtensions, "extensions.json"), opts.Files, opts.Hasher, opts.Extensions, opts.Ignore)
		if err != nil {
			return nil, err
		}
		w.handlers = append(w.handlers, h)
	}

	return w, nil
}

// Keys lists the active categories in registration order
func (w *Warehouse) Keys() []string {
	keys := make([]string, 0, len(w.handlers))
	for _, h := range w.handlers {
		keys = append(keys, h.Key())
	}
	return keys
}

func (w *Warehouse) resolve(ctx context.Context, kind Kind) (string, error) {
	switch kind {
	case KindLastImported:
		return w.locator.LastImported(ctx)
	case KindStored:
		return w.locator.Stored(ctx)
	default:
		return w.locator.Current(ctx)
	}
}

// 🧮 Sum digests every active category at the location of kind
func (w *Warehouse) Sum(ctx context.Context, kind Kind) (Sum, error) {
	root, err := w.resolve(ctx, kind)
	if err != nil {
		return nil, errors.Errorf("resolving %s location: %w", kind, err)
	}
	return w.sumAt(ctx, kind, root)
}

func (w *Warehouse) sumAt(ctx context.Context, kind Kind, root string) (Sum, error) {
	partials := make(Sum, len(w.handlers))

	var g errgroup.Group
	for i, h := range w.handlers {
		g.Go(func() error {
			p, err := h.Sum(ctx, kind, root)
			if err != nil {
				return errors.Errorf("summing %s at %s: %w", h.Key(), kind, err)
			}
			partials[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("kind", kind.String()).Str("root", root).Stringer("sum", partials).Msg("computed sum")
	return partials, nil
}

// SumOfCurrent digests the live configuration
func (w *Warehouse) SumOfCurrent(ctx context.Context) (Sum, error) {
	return w.Sum(ctx, KindCurrent)
}

// SumOfLastImported digests the snapshot of the last import
func (w *Warehouse) SumOfLastImported(ctx context.Context) (Sum, error) {
	return w.Sum(ctx, KindLastImported)
}

// SumOfStored digests the storage directory
func (w *Warehouse) SumOfStored(ctx context.Context) (Sum, error) {
	return w.Sum(ctx, KindStored)
}

// copy runs every handler's copy concurrently. The first failure fails the
// whole copy; categories that already finished stay copied.
func (w *Warehouse) copy(ctx context.Context, name string, fromKind Kind, from string, toKind Kind, to string) error {
	if w.console != nil {
		w.console.StartTransfer(ctx, log.TransferOperation{Name: name, From: fromKind.String(), To: toKind.String(), Destination: to})
		defer w.console.EndTransfer(ctx)
	}

	var g errgroup.Group
	for _, h := range w.handlers {
		g.Go(func() error {
			op := log.CategoryOperation{Key: h.Key(), Handler: h.Type()}

			has, err := h.Has(ctx, fromKind, from)
			if err == nil && has {
				err = h.Copy(ctx, fromKind, from, toKind, to)
			}

			switch {
			case err != nil:
				op.IsFailed, op.Status = true, "failed"
			case !has:
				op.IsSkipped, op.Status = true, "nothing to copy"
			default:
				op.IsSynced, op.Status = true, "synced"
			}
			if w.console != nil {
				w.console.LogCategory(ctx, op)
			}

			if err != nil {
				return errors.Errorf("copying %s from %s to %s: %w", h.Key(), fromKind, toKind, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (w *Warehouse) copyKinds(ctx context.Context, name string, fromKind, toKind Kind) error {
	from, err := w.resolve(ctx, fromKind)
	if err != nil {
		return errors.Errorf("resolving %s location: %w", fromKind, err)
	}
	to, err := w.resolve(ctx, toKind)
	if err != nil {
		return errors.Errorf("resolving %s location: %w", toKind, err)
	}
	return w.copy(ctx, name, fromKind, from, toKind, to)
}

// 📥 ImportStored copies the storage directory over the live configuration
// and then refreshes the last imported snapshot
func (w *Warehouse) ImportStored(ctx context.Context) error {
	if err := w.copyKinds(ctx, "import", KindStored, KindCurrent); err != nil {
		return err
	}
	return w.RefreshLastImported(ctx)
}

// ReimportLastImported copies the last imported snapshot over the live
// configuration without touching the snapshot
func (w *Warehouse) ReimportLastImported(ctx context.Context) error {
	return w.copyKinds(ctx, "reimport", KindLastImported, KindCurrent)
}

// RefreshLastImported snapshots the live configuration
func (w *Warehouse) RefreshLastImported(ctx context.Context) error {
	root, err := w.locator.LastImported(ctx)
	if err != nil {
		return errors.Errorf("resolving %s location: %w", KindLastImported, err)
	}
	if err := w.files.MkdirAll(ctx, root); err != nil {
		return err
	}
	return w.copyKinds(ctx, "refresh", KindCurrent, KindLastImported)
}

// 📤 ExportCurrent writes the live configuration to dir in the stored layout
func (w *Warehouse) ExportCurrent(ctx context.Context, dir string) error {
	if err := w.files.MkdirAll(ctx, dir); err != nil {
		return err
	}
	from, err := w.locator.Current(ctx)
	if err != nil {
		return errors.Errorf("resolving %s location: %w", KindCurrent, err)
	}
	return w.copy(ctx, "export", KindCurrent, from, KindStored, dir)
}
