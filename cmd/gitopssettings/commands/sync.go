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

package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/walteh/gitopssettings/cmd/gitopssettings/opts"
	"github.com/walteh/gitopssettings/pkg/operation"
)

const importTitle = "Importing configuration"

// NewImportCmd creates the import command
func NewImportCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Fast forward the storage repository and import it",
		Long: `Import brings the stored configuration into the editor.
It will:
1. Ask before overwriting local changes made since the last import
2. Fetch the storage repository and refuse to touch a dirty one
3. Fast forward the current branch
4. Copy every enabled category from storage into the editor
5. Record the result as the last imported configuration`,
		Args: cobra.NoArgs,
		RunE: runE(o, "import", importTitle, func(ctx context.Context, op *operation.Operator) error {
			return op.ImportData(ctx)
		}),
	}
}

// NewImportWithoutPullCmd creates the import-without-pull command
func NewImportWithoutPullCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "import-without-pull",
		Short: "Import the storage directory as it is",
		Long: `Import-without-pull copies the storage directory into the editor without
moving the repository. A failed fetch only warns, and a dirty or outdated
repository asks for confirmation.`,
		Args: cobra.NoArgs,
		RunE: runE(o, "import-without-pull", importTitle, func(ctx context.Context, op *operation.Operator) error {
			return op.ImportDataWithoutPull(ctx)
		}),
	}
}

// NewCheckCmd creates the check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the storage repository for updates",
		Args:  cobra.NoArgs,
		RunE: runE(o, "check", checkTitle, func(ctx context.Context, op *operation.Operator) error {
			return op.CheckForUpdates(ctx)
		}),
	}
}

// NewReimportCmd creates the reimport command
func NewReimportCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "reimport",
		Short: "Restore the configuration of the last import",
		Args:  cobra.NoArgs,
		RunE: runE(o, "reimport", "Restoring last imported configuration", func(ctx context.Context, op *operation.Operator) error {
			return op.ReimportLastImported(ctx)
		}),
	}
}

// NewRefreshBaselineCmd creates the refresh-baseline command
func NewRefreshBaselineCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-baseline",
		Short: "Record the current configuration as the last imported one",
		Args:  cobra.NoArgs,
		RunE: runE(o, "refresh-baseline", "Recording current configuration", func(ctx context.Context, op *operation.Operator) error {
			return op.RefreshLastImported(ctx)
		}),
	}
}
