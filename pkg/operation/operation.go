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
	"github.com/walteh/gitopssettings/pkg/config"
	"github.com/walteh/gitopssettings/pkg/git"
	"github.com/walteh/gitopssettings/pkg/host"
	"github.com/walteh/gitopssettings/pkg/kv"
	"github.com/walteh/gitopssettings/pkg/warehouse"
	"gitlab.com/tozd/go/errors"
)

// 🏪 Warehouse compares and copies configuration between location kinds
type Warehouse interface {
	SumOfCurrent(ctx context.Context) (warehouse.Sum, error)
	SumOfLastImported(ctx context.Context) (warehouse.Sum, error)
	SumOfStored(ctx context.Context) (warehouse.Sum, error)
	ImportStored(ctx context.Context) error
	ReimportLastImported(ctx context.Context) error
	RefreshLastImported(ctx context.Context) error
	ExportCurrent(ctx context.Context, dir string) error
}

var _ Warehouse = (*warehouse.Warehouse)(nil)

// 🌿 Git is the repository holding the storage directory
type Git interface {
	FindRoot(ctx context.Context, innerPath string) (string, error)
	Fetch(ctx context.Context) error
	PullFastForward(ctx context.Context) error
	IsWorkingTreeClean(ctx context.Context) (bool, error)
	Ahead(ctx context.Context) (int, error)
	Behind(ctx context.Context) (int, error)
}

var _ Git = (*git.Operations)(nil)

// Opener shows a directory to the user
type Opener func(ctx context.Context, path string) error

// 🔧 Options contains everything an operator needs
type Options struct {
	// CalledByUser is false for background runs
	CalledByUser bool
	Config       *config.Config
	Warehouse    Warehouse
	// Git creates fresh operations for every action
	Git      func() Git
	UI       host.UI
	Store    kv.Store
	Open     Opener
	Notifier *Notifier
}

// 🎮 Operator runs the user facing actions. It is built per invocation.
type Operator struct {
	calledByUser bool
	conf         *config.Config
	data         Warehouse
	newGit       func() Git
	ui           host.UI
	store        kv.Store
	open         Opener
	notifier     *Notifier
}

// 🏭 New creates a new operator with the given options
func New(opts Options) (*Operator, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Warehouse == nil {
		return nil, errors.Errorf("warehouse is required")
	}
	if opts.Git == nil {
		return nil, errors.Errorf("git is required")
	}
	if opts.UI == nil {
		return nil, errors.Errorf("ui is required")
	}
	if opts.Store == nil {
		return nil, errors.Errorf("store is required")
	}
	if opts.Open == nil {
		return nil, errors.Errorf("opener is required")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NewNotifier(opts.UI)
	}
	return &Operator{
		calledByUser: opts.CalledByUser,
		conf:         opts.Config,
		data:         opts.Warehouse,
		newGit:       opts.Git,
		ui:           opts.UI,
		store:        opts.Store,
		open:         opts.Open,
		notifier:     notifier,
	}, nil
}

// asUser is the operator used by follow up actions the user picked
func (o *Operator) asUser() *Operator {
	cp := *o
	cp.calledByUser = true
	return &cp
}

func (o *Operator) storageDirectory(ctx context.Context) (string, error) {
	dir, err := o.store.Get(ctx, kv.StorageDirectoryKey)
	if err != nil {
		return "", errors.Errorf("reading storage directory: %w", err)
	}
	return dir, nil
}

// 📣 ReportedError is a git failure that was already shown to the user
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

// IsReported reports whether err was already shown to the user
func IsReported(err error) bool {
	var rep *ReportedError
	return errors.As(err, &rep)
}

// wrap turns git failures of an action into a notification. The action
// still fails, with a ReportedError, unless the notification was silenced.
// Every other error is returned untouched.
func (o *Operator) wrap(ctx context.Context, action func(ctx context.Context) error) error {
	err := action(ctx)
	if err == nil {
		return nil
	}

	var opErr *git.OperationError
	if !errors.As(err, &opErr) {
		return err
	}

	zerolog.Ctx(ctx).Debug().Err(err).Bool("called_by_user", o.calledByUser).Msg("git operation failed")
	if o.silenced() {
		return nil
	}
	if nerr := o.notifier.show(ctx, o.calledByUser, host.KindError, opErr.Message); nerr != nil {
		return nerr
	}
	return &ReportedError{Err: err}
}

// warnOnFailure downgrades a git failure to a warning and lets the flow continue
func (o *Operator) warnOnFailure(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var opErr *git.OperationError
	if !errors.As(err, &opErr) {
		return err
	}

	zerolog.Ctx(ctx).Debug().Err(err).Msg("git operation failed, continuing")
	if o.silenced() {
		return nil
	}
	return o.notifier.show(ctx, o.calledByUser, host.KindWarning, opErr.Message)
}

func (o *Operator) silenced() bool {
	return !o.calledByUser && o.conf.Base.SilentGitFailures
}
