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

package operation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/gitopssettings/pkg/host"
	"github.com/walteh/gitopssettings/pkg/kv"
	"gitlab.com/tozd/go/errors"
)

// 📤 ExportCurrentData writes the current configuration to dir in the
// storage layout. An empty dir asks for one, starting at the storage
// directory; cancelling does nothing.
func (o *Operator) ExportCurrentData(ctx context.Context, dir string) error {
	return o.wrap(ctx, func(ctx context.Context) error {
		if dir == "" {
			storage, err := o.storageDirectory(ctx)
			if err != nil {
				return err
			}
			dir, err = o.ui.PickFolder(ctx, "Select folder to store exported data", storage)
			if err != nil {
				return err
			}
			if dir == "" {
				return nil
			}
		}

		if err := o.data.ExportCurrent(ctx, dir); err != nil {
			return errors.Errorf("exporting to %s: %w", dir, err)
		}
		return o.notifySuccessfulExport(ctx, dir)
	})
}

// 📁 SetStorageDirectory remembers dir as the storage directory. An empty
// dir asks for one; cancelling keeps the previous value.
func (o *Operator) SetStorageDirectory(ctx context.Context, dir string) error {
	return o.wrap(ctx, func(ctx context.Context) error {
		if dir == "" {
			var err error
			dir, err = o.ui.PickFolder(ctx, "Select folder to use as storage", "")
			if err != nil {
				return err
			}
			if dir == "" {
				return nil
			}
		}

		if err := o.store.Set(ctx, kv.StorageDirectoryKey, dir); err != nil {
			return errors.Errorf("saving storage directory: %w", err)
		}
		zerolog.Ctx(ctx).Info().Str("dir", dir).Msg("storage directory set")
		return o.notifier.show(ctx, o.calledByUser, host.KindInfo, fmt.Sprintf("Storage directory set to %s.", dir))
	})
}

// 📂 OpenStorageDirectory shows the storage directory in the file browser
func (o *Operator) OpenStorageDirectory(ctx context.Context) error {
	return o.wrap(ctx, func(ctx context.Context) error {
		storage, err := o.storageDirectory(ctx)
		if err != nil {
			return err
		}
		if storage == "" {
			return o.notifyMissingStorageDirectory(ctx)
		}
		return o.open(ctx, storage)
	})
}
