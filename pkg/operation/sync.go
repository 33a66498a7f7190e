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

	"github.com/rs/zerolog"
	"github.com/walteh/gitopssettings/pkg/host"
	"github.com/walteh/gitopssettings/pkg/warehouse"
	"golang.org/x/sync/errgroup"
)

// 🔍 CheckForUpdates fetches the storage repository and tells the user
// whether it is dirty, ahead or behind. Nothing is imported.
func (o *Operator) CheckForUpdates(ctx context.Context) error {
	return o.wrap(ctx, o.checkForUpdates)
}

func (o *Operator) checkForUpdates(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	storage, err := o.storageDirectory(ctx)
	if err != nil {
		return err
	}
	if storage == "" {
		return o.notifyMissingStorageDirectory(ctx)
	}

	ops := o.newGit()
	root, err := ops.FindRoot(ctx, storage)
	if err != nil {
		return err
	}
	if err := ops.Fetch(ctx); err != nil {
		return err
	}

	clean, err := ops.IsWorkingTreeClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return o.notifyDirtyWorkingTree(ctx, root, storage)
	}

	ahead, err := ops.Ahead(ctx)
	if err != nil {
		return err
	}
	behind, err := ops.Behind(ctx)
	if err != nil {
		return err
	}
	logger.Debug().Str("root", root).Int("ahead", ahead).Int("behind", behind).Msg("checked repository")

	if ahead != 0 || behind != 0 {
		return o.notifyAheadOrBehind(ctx, ahead, behind, root, storage)
	}
	if o.calledByUser {
		return o.notifyUpToDate(ctx)
	}
	return nil
}

// currentAndLastImported computes both sums concurrently
func (o *Operator) currentAndLastImported(ctx context.Context) (current, lastImported warehouse.Sum, err error) {
	var g errgroup.Group
	g.Go(func() (err error) {
		current, err = o.data.SumOfCurrent(ctx)
		return err
	})
	g.Go(func() (err error) {
		lastImported, err = o.data.SumOfLastImported(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return current, lastImported, nil
}

// confirmLocalChanges asks before overwriting a current configuration that
// changed since the last import. It reports whether to go on.
func (o *Operator) confirmLocalChanges(ctx context.Context, current, lastImported warehouse.Sum) (bool, error) {
	if current.Equals(lastImported) {
		return true, nil
	}
	zerolog.Ctx(ctx).Debug().Strs("changed", current.Differs(lastImported)).Msg("current configuration changed since last import")
	return o.confirmCurrentDataOverwrite(ctx)
}

// 📥 ImportDataWithoutPull imports the storage directory as it is. A failed
// fetch only warns, and a dirty or outdated repository asks for confirmation.
func (o *Operator) ImportDataWithoutPull(ctx context.Context) error {
	return o.wrap(ctx, o.importDataWithoutPull)
}

func (o *Operator) importDataWithoutPull(ctx context.Context) error {
	storage, err := o.storageDirectory(ctx)
	if err != nil {
		return err
	}
	if storage == "" {
		return o.notifyMissingStorageDirectory(ctx)
	}

	current, lastImported, err := o.currentAndLastImported(ctx)
	if err != nil {
		return err
	}
	if ok, err := o.confirmLocalChanges(ctx, current, lastImported); err != nil || !ok {
		return err
	}

	ops := o.newGit()
	root, err := ops.FindRoot(ctx, storage)
	if err != nil {
		return err
	}
	if err := o.warnOnFailure(ctx, ops.Fetch(ctx)); err != nil {
		return err
	}

	clean, err := ops.IsWorkingTreeClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		if ok, err := o.confirmDirtyWorkingTree(ctx, root); err != nil || !ok {
			return err
		}
	}

	ahead, err := ops.Ahead(ctx)
	if err != nil {
		return err
	}
	behind, err := ops.Behind(ctx)
	if err != nil {
		return err
	}
	if behind != 0 {
		if ok, err := o.confirmBehind(ctx, ahead, behind, root); err != nil || !ok {
			return err
		}
	}

	if err := o.data.ImportStored(ctx); err != nil {
		return err
	}
	return o.notifySuccessfulImport(ctx, ahead, root, storage)
}

// 📥 ImportData fast forwards the storage repository and imports it. When
// the current configuration already matches, only the last imported
// snapshot is refreshed.
func (o *Operator) ImportData(ctx context.Context) error {
	return o.wrap(ctx, o.importData)
}

func (o *Operator) importData(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	storage, err := o.storageDirectory(ctx)
	if err != nil {
		return err
	}
	if storage == "" {
		return o.notifyMissingStorageDirectory(ctx)
	}

	current, lastImported, err := o.currentAndLastImported(ctx)
	if err != nil {
		return err
	}
	if ok, err := o.confirmLocalChanges(ctx, current, lastImported); err != nil || !ok {
		return err
	}

	ops := o.newGit()
	root, err := ops.FindRoot(ctx, storage)
	if err != nil {
		return err
	}
	if err := ops.Fetch(ctx); err != nil {
		return err
	}
	clean, err := ops.IsWorkingTreeClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return o.notifyDirtyWorkingTree(ctx, root, storage)
	}

	if err := ops.PullFastForward(ctx); err != nil {
		return err
	}
	ahead, err := ops.Ahead(ctx)
	if err != nil {
		return err
	}
	behind, err := ops.Behind(ctx)
	if err != nil {
		return err
	}
	if behind != 0 {
		return o.notifyBehindAfterFastForward(ctx, ahead, behind, root, storage)
	}

	stored, err := o.data.SumOfStored(ctx)
	if err != nil {
		return err
	}
	if current.Equals(stored) {
		logger.Debug().Msg("current configuration already matches storage")
		if !stored.Equals(lastImported) {
			if err := o.data.RefreshLastImported(ctx); err != nil {
				return err
			}
		}
		return o.notifySuccessfulImport(ctx, ahead, root, storage)
	}

	logger.Debug().Strs("changed", current.Differs(stored)).Msg("importing stored configuration")
	if err := o.data.ImportStored(ctx); err != nil {
		return err
	}
	return o.notifySuccessfulImport(ctx, ahead, root, storage)
}

// ⏪ ReimportLastImported restores the configuration of the last import
func (o *Operator) ReimportLastImported(ctx context.Context) error {
	return o.wrap(ctx, func(ctx context.Context) error {
		if err := o.data.ReimportLastImported(ctx); err != nil {
			return err
		}
		return o.notifier.show(ctx, o.calledByUser, host.KindInfo, "Last imported configuration restored.")
	})
}

// 📸 RefreshLastImported records the current configuration as the last imported one
func (o *Operator) RefreshLastImported(ctx context.Context) error {
	return o.wrap(ctx, func(ctx context.Context) error {
		if err := o.data.RefreshLastImported(ctx); err != nil {
			return err
		}
		return o.notifier.show(ctx, o.calledByUser, host.KindInfo, "Current configuration recorded as last imported.")
	})
}
