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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/gitopssettings/cmd/gitopssettings/commands"
	"github.com/walteh/gitopssettings/cmd/gitopssettings/opts"
	"github.com/walteh/gitopssettings/pkg/operation"
)

func main() {
	o := &opts.RootOpts{}

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "gitopssettings",
		Short: "Keep VS Code configuration in a git repository",
		Long: `gitopssettings synchronizes VS Code settings, keybindings, snippets, tasks
and extensions with a storage directory inside a git repository. The last
imported configuration is kept aside so local and remote changes can be told
apart.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging()
			cmd.SetContext(logger.WithContext(cmd.Context()))
			initRootOpts(o)
			return nil
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(
		commands.NewImportCmd(o),
		commands.NewImportWithoutPullCmd(o),
		commands.NewCheckCmd(o),
		commands.NewExportCmd(o),
		commands.NewSetStorageCmd(o),
		commands.NewOpenStorageCmd(o),
		commands.NewReimportCmd(o),
		commands.NewRefreshBaselineCmd(o),
		commands.NewStatusCmd(o),
		commands.NewWatchCmd(o),
		newVersionCmd(),
	)

	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// git failures were already shown by the operator
		if !operation.IsReported(err) {
			reportFailure(ctx, o, err)
		}
		os.Exit(1)
	}
}

func reportFailure(ctx context.Context, o *opts.RootOpts, err error) {
	if o.Notifier == nil {
		fmt.Fprintf(os.Stderr, "gitopssettings: %v\n", err)
		return
	}
	zerolog.Ctx(ctx).Debug().Msgf("%+v", err)
	o.Notifier.ReportFailure(ctx, err)
}
