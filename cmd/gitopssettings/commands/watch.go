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
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/gitopssettings/cmd/gitopssettings/opts"
	"github.com/walteh/gitopssettings/pkg/background"
	"github.com/walteh/gitopssettings/pkg/config"
	"github.com/walteh/gitopssettings/pkg/lock"
	"github.com/walteh/gitopssettings/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

const checkTitle = "Checking for configuration updates"

// NewWatchCmd creates the watch command
func NewWatchCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Check for updates in the background",
		Long: `Watch checks the storage repository right away and then every
base.updates_check_interval minutes. With base.single_updates_check it exits
after the first check that completes. Interrupt to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = zerolog.Ctx(ctx).With().Str("command", "watch").Logger().WithContext(ctx)

			conf, err := o.Load(ctx)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			w := &watcher{opts: o, conf: conf}
			job := background.New(w.interval, w.check)
			if conf.Base.SingleUpdatesCheck {
				job.Callback = background.Once(job, w.check)
			}
			job.Start(ctx, true)

			finished := make(chan struct{})
			go func() {
				job.Wait()
				close(finished)
			}()

			select {
			case <-ctx.Done():
				zerolog.Ctx(ctx).Debug().Msg("stopping watch")
				job.Stop()
				<-finished
			case <-finished:
			}
			return nil
		},
	}
}

// watcher runs background update checks with the latest readable configuration
type watcher struct {
	opts *opts.RootOpts

	mu   sync.Mutex
	conf *config.Config
}

func (w *watcher) interval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conf.Base.UpdatesInterval()
}

func (w *watcher) reload(ctx context.Context) *config.Config {
	w.mu.Lock()
	defer w.mu.Unlock()

	conf, err := w.opts.Load(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("keeping previous configuration")
		return w.conf
	}
	w.conf = conf
	return conf
}

// check runs one background update check. A git failure that was already
// shown counts as done.
func (w *watcher) check(ctx context.Context) error {
	conf := w.reload(ctx)

	release, err := w.opts.Lock(ctx, conf)
	if errors.Is(err, lock.ErrBusy) {
		zerolog.Ctx(ctx).Debug().Msg("another operation is running, skipping check")
		return err
	}
	if err != nil {
		w.opts.Notifier.ReportFailure(ctx, err)
		return err
	}
	defer release()

	op, err := w.opts.Operator(ctx, conf, false)
	if err != nil {
		w.opts.Notifier.ReportFailure(ctx, err)
		return err
	}

	w.opts.Console.Header(checkTitle)
	err = op.CheckForUpdates(ctx)
	if err != nil && !operation.IsReported(err) {
		w.opts.Notifier.ReportFailure(ctx, err)
		return err
	}
	return nil
}
