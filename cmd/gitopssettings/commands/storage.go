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

// NewExportCmd creates the export command
func NewExportCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Export the current configuration",
		Long: `Export writes the current configuration in the storage layout. Without a
directory it asks for one, starting at the storage directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			return runE(o, "export", "Exporting current configuration", func(ctx context.Context, op *operation.Operator) error {
				return op.ExportCurrentData(ctx, dir)
			})(cmd, args)
		},
	}
}

// NewSetStorageCmd creates the set-storage command
func NewSetStorageCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "set-storage [dir]",
		Short: "Choose the directory holding the stored configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			return runE(o, "set-storage", "Setting storage directory", func(ctx context.Context, op *operation.Operator) error {
				return op.SetStorageDirectory(ctx, dir)
			})(cmd, args)
		},
	}
}

// NewOpenStorageCmd creates the open-storage command
func NewOpenStorageCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "open-storage",
		Short: "Show the storage directory in the file browser",
		Args:  cobra.NoArgs,
		RunE: runE(o, "open-storage", "Opening storage directory", func(ctx context.Context, op *operation.Operator) error {
			return op.OpenStorageDirectory(ctx)
		}),
	}
}
