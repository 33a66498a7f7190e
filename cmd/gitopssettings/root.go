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
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/gitopssettings/cmd/gitopssettings/opts"
	"github.com/walteh/gitopssettings/pkg/exec"
	"github.com/walteh/gitopssettings/pkg/files"
	"github.com/walteh/gitopssettings/pkg/host"
	"github.com/walteh/gitopssettings/pkg/log"
	"github.com/walteh/gitopssettings/pkg/operation"
	"github.com/walteh/gitopssettings/pkg/platform"
)

var (
	// Flags
	configFile   string
	debugLogging bool
	assumeYes    bool
)

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (yaml, json or hcl)")
	cmd.PersistentFlags().BoolVarP(&debugLogging, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")
}

// setupLogging configures zerolog based on flags
func setupLogging() zerolog.Logger {
	if debugLogging {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}

// initRootOpts fills o once flags are parsed
func initRootOpts(o *opts.RootOpts) {
	// console messages are mirrored to zerolog only when debugging
	mirror := zerolog.Disabled
	if debugLogging {
		mirror = zerolog.DebugLevel
	}

	o.ConfigFile = configFile
	o.Console = log.New(os.Stdout, mirror)
	o.UI = host.NewTerminal(o.Console, assumeYes)
	o.Notifier = operation.NewNotifier(o.UI)
	o.Files = files.NewOs()
	o.Runner = exec.OsRunner{}
	o.Platform = platform.Current()
}
