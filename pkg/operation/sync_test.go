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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gitopssettings/pkg/files"
	"github.com/walteh/gitopssettings/pkg/host"
	"github.com/walteh/gitopssettings/pkg/kv"
	"gitlab.com/tozd/go/errors"
)

const (
	storageDir = "/repo/vscode"
	repoRoot   = "/repo"
)

const overwritePrompt = "Last applied configuration differs from the current one. Override your current configuration?"

func TestCheckForUpdates(t *testing.T) {
	tests := []struct {
		name         string
		storage      string
		calledByUser bool
		silent       bool
		setup        func(e *env)
		wantOpened   []string
		wantStorage  string
		wantReported bool
	}{
		{
			name:         "missing_storage_directory",
			calledByUser: true,
			setup: func(e *env) {
				e.ui.expectMessage(host.KindError, "Storage directory is not set.", "", "Set storage directory")
			},
		},
		{
			name:         "missing_storage_directory_then_set",
			calledByUser: false,
			setup: func(e *env) {
				e.ui.expectMessage(host.KindError, "Storage directory is not set.", "Set storage directory", "Set storage directory")
				e.ui.On("PickFolder", "Select folder to use as storage", "").Return(storageDir, nil).Once()
				e.ui.expectMessage(host.KindInfo, "Storage directory set to /repo/vscode.", "")
			},
			wantStorage: storageDir,
		},
		{
			name:         "dirty_working_tree",
			storage:      storageDir,
			calledByUser: true,
			setup: func(e *env) {
				e.git.repository(storageDir, repoRoot, false, 0, 0)
				e.ui.expectMessage(host.KindError, "Repository /repo is dirty.", "Open storage directory",
					"Open root of the repository", "Open storage directory")
			},
			wantOpened: []string{storageDir},
		},
		{
			name:         "ahead_at_repository_root",
			storage:      repoRoot,
			calledByUser: true,
			setup: func(e *env) {
				e.git.repository(repoRoot, repoRoot, true, 2, 0)
				e.ui.expectMessage(host.KindInfo,
					"Current branch is ahead by 2 commits in repository /repo. Remember to publish your changes.",
					"", "Open storage directory")
			},
		},
		{
			name:         "ahead_and_behind",
			storage:      storageDir,
			calledByUser: true,
			setup: func(e *env) {
				e.git.repository(storageDir, repoRoot, true, 1, 3)
				e.ui.expectMessage(host.KindWarning,
					"Current branch is behind by 3 and ahead by 1 commits in repository /repo.",
					"Open root of the repository", "Open root of the repository", "Open storage directory")
			},
			wantOpened: []string{repoRoot},
		},
		{
			name:    "behind_offers_import",
			storage: storageDir,
			setup: func(e *env) {
				e.git.repository(storageDir, repoRoot, true, 0, 4)
				e.ui.expectMessage(host.KindInfo,
					"Current branch is behind by 4 commits in repository /repo. Do you want to import data?",
					"No, open storage directory",
					"Yes, fast forward and import", "No, open root of the repository", "No, open storage directory")
			},
			wantOpened: []string{storageDir},
		},
		{
			name:         "up_to_date_user",
			storage:      storageDir,
			calledByUser: true,
			setup: func(e *env) {
				e.git.repository(storageDir, repoRoot, true, 0, 0)
				e.ui.expectMessage(host.KindInfo, "Your configuration is up to date!", "")
			},
		},
		{
			name:    "up_to_date_background_is_quiet",
			storage: storageDir,
			setup: func(e *env) {
				e.git.repository(storageDir, repoRoot, true, 0, 0)
			},
		},
		{
			name:    "fetch_failure_background_silenced",
			storage: storageDir,
			silent:  true,
			setup: func(e *env) {
				e.git.On("FindRoot", storageDir).Return(repoRoot, nil).Once()
				e.git.On("Fetch").Return(gitFailure("git fetch")).Once()
			},
		},
		{
			name:         "fetch_failure_user_reported",
			storage:      storageDir,
			calledByUser: true,
			silent:       true,
			setup: func(e *env) {
				e.git.On("FindRoot", storageDir).Return(repoRoot, nil).Once()
				e.git.On("Fetch").Return(gitFailure("git fetch")).Once()
				e.ui.expectMessage(host.KindError, "Command git fetch failed: exit status 128.", "")
			},
			wantReported: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, tt.storage)
			e.conf.Base.SilentGitFailures = tt.silent
			tt.setup(e)

			err := e.operator(t, tt.calledByUser).CheckForUpdates(e.ctx)
			if tt.wantReported {
				require.Error(t, err)
				assert.True(t, IsReported(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantOpened, e.opened)
			if tt.wantStorage != "" {
				got, _ := e.store.Get(e.ctx, kv.StorageDirectoryKey)
				assert.Equal(t, tt.wantStorage, got)
			}
		})
	}
}

func TestCheckForUpdatesFollowUpImport(t *testing.T) {
	e := newEnv(t, storageDir)

	e.git.repository(storageDir, repoRoot, true, 0, 1)
	e.ui.expectMessage(host.KindInfo,
		"Current branch is behind by 1 commits in repository /repo. Do you want to import data?",
		"Yes, fast forward and import",
		"Yes, fast forward and import", "No, open root of the repository", "No, open storage directory")

	e.data.sums("a", "a")
	e.git.On("FindRoot", storageDir).Return(repoRoot, nil).Once()
	e.git.On("Fetch").Return(nil).Once()
	e.git.On("IsWorkingTreeClean").Return(true, nil).Once()
	e.git.On("PullFastForward").Return(nil).Once()
	e.git.On("Ahead").Return(0, nil).Once()
	e.git.On("Behind").Return(0, nil).Once()
	e.data.On("SumOfStored").Return(sumOf("b"), nil).Once()
	e.data.On("ImportStored").Return(nil).Once()
	e.ui.expectMessage(host.KindInfo, "Configuration imported successfully (repository /repo)!", "")

	require.NoError(t, e.operator(t, false).CheckForUpdates(e.ctx))
}

func TestImportDataWithoutPull(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *env)
	}{
		{
			name: "local_changes_declined",
			setup: func(e *env) {
				e.data.sums("a", "b")
				e.ui.On("Confirm", host.KindWarning, overwritePrompt, "Yes, overwrite", "No, don't do anything").Return(false, nil).Once()
			},
		},
		{
			name: "fetch_failure_only_warns",
			setup: func(e *env) {
				e.data.sums("a", "a")
				e.git.On("FindRoot", storageDir).Return(repoRoot, nil).Once()
				e.git.On("Fetch").Return(gitFailure("git fetch")).Once()
				e.ui.expectMessage(host.KindWarning, "Command git fetch failed: exit status 128.", "")
				e.git.On("IsWorkingTreeClean").Return(true, nil).Once()
				e.git.On("Ahead").Return(0, nil).Once()
				e.git.On("Behind").Return(0, nil).Once()
				e.data.On("ImportStored").Return(nil).Once()
				e.ui.expectMessage(host.KindInfo, "Configuration imported successfully (repository /repo)!", "")
			},
		},
		{
			name: "dirty_working_tree_declined",
			setup: func(e *env) {
				e.data.sums("a", "a")
				e.git.repository(storageDir, repoRoot, false, 0, 0)
				e.ui.On("Confirm", host.KindWarning, "Working tree is dirty in repository /repo. Continue?",
					"Yes, continue with dirty working tree", "No, don't do anything").Return(false, nil).Once()
			},
		},
		{
			name: "dirty_working_tree_accepted",
			setup: func(e *env) {
				e.data.sums("a", "a")
				e.git.On("FindRoot", storageDir).Return(repoRoot, nil).Once()
				e.git.On("Fetch").Return(nil).Once()
				e.git.On("IsWorkingTreeClean").Return(false, nil).Once()
				e.ui.On("Confirm", host.KindWarning, "Working tree is dirty in repository /repo. Continue?",
					"Yes, continue with dirty working tree", "No, don't do anything").Return(true, nil).Once()
				e.git.On("Ahead").Return(0, nil).Once()
				e.git.On("Behind").Return(0, nil).Once()
				e.data.On("ImportStored").Return(nil).Once()
				e.ui.expectMessage(host.KindInfo, "Configuration imported successfully (repository /repo)!", "")
			},
		},
		{
			name: "behind_and_ahead_confirmed",
			setup: func(e *env) {
				e.data.sums("a", "b")
				e.ui.On("Confirm", host.KindWarning, overwritePrompt, "Yes, overwrite", "No, don't do anything").Return(true, nil).Once()
				e.git.repository(storageDir, repoRoot, true, 1, 2)
				e.ui.On("Confirm", host.KindWarning,
					"Current branch is behind by 2 and ahead by 1 commits in repository /repo. Do you want to continue import?",
					"Yes, continue", "No, don't do anything").Return(true, nil).Once()
				e.data.On("ImportStored").Return(nil).Once()
				e.ui.expectMessage(host.KindInfo,
					"Configuration imported successfully! However current branch is ahead by 1 commits in repository /repo. Remember to publish your changes.",
					"", "Open root of the repository", "Open storage directory")
			},
		},
		{
			name: "behind_declined",
			setup: func(e *env) {
				e.data.sums("a", "a")
				e.git.repository(storageDir, repoRoot, true, 0, 2)
				e.ui.On("Confirm", host.KindWarning,
					"Current branch is behind by 2 commits in repository /repo. Do you want to continue import?",
					"Yes, continue", "No, don't do anything").Return(false, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, storageDir)
			tt.setup(e)
			require.NoError(t, e.operator(t, true).ImportDataWithoutPull(e.ctx))
		})
	}
}

func TestImportData(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(e *env)
		wantReported bool
		wantErr      bool
	}{
		{
			name: "imports_changed_storage",
			setup: func(e *env) {
				e.data.sums("a", "a")
				e.git.repository(storageDir, repoRoot, true, 0, 0)
				e.git.On("PullFastForward").Return(nil).Once()
				e.data.On("SumOfStored").Return(sumOf("b"), nil).Once()
				e.data.On("ImportStored").Return(nil).Once()
				e.ui.expectMessage(host.KindInfo, "Configuration imported successfully (repository /repo)!", "")
			},
		},
		{
			name: "current_matches_storage_refreshes_last_imported",
			setup: func(e *env) {
				e.data.sums("a", "b")
				e.ui.On("Confirm", host.KindWarning, overwritePrompt, "Yes, overwrite", "No, don't do anything").Return(true, nil).Once()
				e.git.repository(storageDir, repoRoot, true, 0, 0)
				e.git.On("PullFastForward").Return(nil).Once()
				e.data.On("SumOfStored").Return(sumOf("a"), nil).Once()
				e.data.On("RefreshLastImported").Return(nil).Once()
				e.ui.expectMessage(host.KindInfo, "Configuration imported successfully (repository /repo)!", "")
			},
		},
		{
			name: "everything_equal_copies_nothing",
			setup: func(e *env) {
				e.data.sums("a", "a")
				e.git.repository(storageDir, repoRoot, true, 0, 0)
				e.git.On("PullFastForward").Return(nil).Once()
				e.data.On("SumOfStored").Return(sumOf("a"), nil).Once()
				e.ui.expectMessage(host.KindInfo, "Configuration imported successfully (repository /repo)!", "")
			},
		},
		{
			name: "local_changes_declined",
			setup: func(e *env) {
				e.data.sums("a", "b")
				e.ui.On("Confirm", host.KindWarning, overwritePrompt, "Yes, overwrite", "No, don't do anything").Return(false, nil).Once()
			},
		},
		{
			name: "dirty_working_tree_stops",
			setup: func(e *env) {
				e.data.sums("a", "a")
				e.git.repository(storageDir, repoRoot, false, 0, 0)
				e.ui.expectMessage(host.KindError, "Repository /repo is dirty.", "",
					"Open root of the repository", "Open storage directory")
			},
		},
		{
			name: "still_behind_after_fast_forward",
			setup: func(e *env) {
				e.data.sums("a", "a")
				e.git.On("FindRoot", storageDir).Return(repoRoot, nil).Once()
				e.git.On("Fetch").Return(nil).Once()
				e.git.On("IsWorkingTreeClean").Return(true, nil).Once()
				e.git.On("PullFastForward").Return(nil).Once()
				e.git.On("Ahead").Return(2, nil).Once()
				e.git.On("Behind").Return(1, nil).Once()
				e.ui.expectMessage(host.KindError,
					"After fast forward current branch is still behind by 1 and ahead by 2 commits in repository /repo.",
					"", "Open root of the repository", "Open storage directory")
			},
		},
		{
			name: "pull_failure_reported",
			setup: func(e *env) {
				e.data.sums("a", "a")
				e.git.On("FindRoot", storageDir).Return(repoRoot, nil).Once()
				e.git.On("Fetch").Return(nil).Once()
				e.git.On("IsWorkingTreeClean").Return(true, nil).Once()
				e.git.On("PullFastForward").Return(gitFailure("git pull --ff-only")).Once()
				e.ui.expectMessage(host.KindError, "Command git pull --ff-only failed: exit status 128.", "")
			},
			wantErr:      true,
			wantReported: true,
		},
		{
			name: "copy_failure_propagates",
			setup: func(e *env) {
				e.data.sums("a", "a")
				e.git.repository(storageDir, repoRoot, true, 0, 0)
				e.git.On("PullFastForward").Return(nil).Once()
				e.data.On("SumOfStored").Return(sumOf("b"), nil).Once()
				e.data.On("ImportStored").Return(&files.IOError{Op: "write", Path: "/x", Err: errors.New("read-only")}).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, storageDir)
			tt.setup(e)

			err := e.operator(t, true).ImportData(e.ctx)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantReported, IsReported(err))
		})
	}
}

func TestImportDataMissingStorageDirectory(t *testing.T) {
	e := newEnv(t, "")
	e.ui.expectMessage(host.KindError, "Storage directory is not set.", "", "Set storage directory")
	require.NoError(t, e.operator(t, true).ImportData(e.ctx))
}

func TestReimportAndRefresh(t *testing.T) {
	e := newEnv(t, storageDir)
	op := e.operator(t, true)

	e.data.On("ReimportLastImported").Return(nil).Once()
	e.ui.expectMessage(host.KindInfo, "Last imported configuration restored.", "")
	require.NoError(t, op.ReimportLastImported(e.ctx))

	e.data.On("RefreshLastImported").Return(nil).Once()
	e.ui.expectMessage(host.KindInfo, "Current configuration recorded as last imported.", "")
	require.NoError(t, op.RefreshLastImported(e.ctx))
}
