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

package opts

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/gitopssettings/pkg/config"
	"github.com/walteh/gitopssettings/pkg/directory"
	"github.com/walteh/gitopssettings/pkg/exec"
	"github.com/walteh/gitopssettings/pkg/files"
	"github.com/walteh/gitopssettings/pkg/git"
	"github.com/walteh/gitopssettings/pkg/host"
	"github.com/walteh/gitopssettings/pkg/kv"
	"github.com/walteh/gitopssettings/pkg/lock"
	"github.com/walteh/gitopssettings/pkg/log"
	"github.com/walteh/gitopssettings/pkg/operation"
	"github.com/walteh/gitopssettings/pkg/platform"
	"github.com/walteh/gitopssettings/pkg/sum"
	"github.com/walteh/gitopssettings/pkg/warehouse"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Console    *log.Logger
	UI         host.UI
	Notifier   *operation.Notifier
	Files      *files.Manager
	Runner     exec.Runner
	Platform   platform.ID
}

// Load reads the configuration file again. Long running commands call it
// before every run so edits apply without a restart.
func (o *RootOpts) Load(ctx context.Context) (*config.Config, error) {
	return config.LoadOrDefault(ctx, o.ConfigFile)
}

// DataRoot is the directory holding the tool's own state
func (o *RootOpts) DataRoot(conf *config.Config) (string, error) {
	if conf.Paths.StateDir != "" {
		return conf.Paths.StateDir, nil
	}
	return platform.DataPath()
}

// Store opens the key value store inside the data root
func (o *RootOpts) Store(conf *config.Config) (kv.Store, error) {
	root, err := o.DataRoot(conf)
	if err != nil {
		return nil, err
	}
	return kv.NewFileStore(o.Files, filepath.Join(root, "state.yaml")), nil
}

// Lock takes the process wide lock in the data root
func (o *RootOpts) Lock(ctx context.Context, conf *config.Config) (func(), error) {
	root, err := o.DataRoot(conf)
	if err != nil {
		return nil, err
	}
	return lock.Acquire(ctx, filepath.Join(root, ".lock"))
}

// Open shows path in the platform file browser
func (o *RootOpts) Open(ctx context.Context, path string) error {
	return directory.OpenInExternalBrowser(ctx, o.Runner, o.Platform, path)
}

// 🏭 Operator wires a fresh operator for one invocation
func (o *RootOpts) Operator(ctx context.Context, conf *config.Config, calledByUser bool) (*operation.Operator, error) {
	dataRoot, err := o.DataRoot(conf)
	if err != nil {
		return nil, err
	}
	store, err := o.Store(conf)
	if err != nil {
		return nil, err
	}

	currentRoot := conf.Paths.ConfigurationDir
	if currentRoot == "" {
		currentRoot = platform.ConfigurationPath()
	}
	binary := conf.Paths.EditorBinary
	if binary == "" {
		binary = platform.EditorBinary(o.Platform)
	}
	extensionsDir := conf.Paths.ExtensionsDir
	if extensionsDir == "" {
		extensionsDir = platform.ExtensionsPath(o.Platform, os.Getenv)
	}

	zerolog.Ctx(ctx).Debug().
		Str("current", currentRoot).
		Str("data", dataRoot).
		Str("editor", binary).
		Str("extensions", extensionsDir).
		Bool("called_by_user", calledByUser).
		Msg("wiring operator")

	data, err := warehouse.New(warehouse.Options{
		Synchronize: conf.Synchronize,
		Files:       o.Files,
		Hasher:      sum.New(o.Files.Fs(), sum.Algorithm(conf.Hash.Algorithm)),
		Extensions:  host.NewCLI(o.Files.Fs(), o.Runner, binary, extensionsDir),
		Ignore:      conf.Extensions.Ignore,
		Locator:     warehouse.NewLocator(o.Platform, currentRoot, dataRoot, store),
		Console:     o.Console,
	})
	if err != nil {
		return nil, errors.Errorf("creating warehouse: %w", err)
	}

	return operation.New(operation.Options{
		CalledByUser: calledByUser,
		Config:       conf,
		Warehouse:    data,
		Git: func() operation.Git {
			return git.New(o.Files.Fs(), o.Runner)
		},
		UI:       o.UI,
		Store:    store,
		Open:     o.Open,
		Notifier: o.Notifier,
	})
}
