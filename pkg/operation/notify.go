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
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/gitopssettings/pkg/host"
)

// 🔔 Notifier shows messages with follow up actions. One notifier is shared
// by every operator of a process so repeated background messages are dropped.
type Notifier struct {
	ui   host.UI
	mu   sync.Mutex
	last string
}

// 🏭 NewNotifier creates a notifier showing messages through ui
func NewNotifier(ui host.UI) *Notifier {
	return &Notifier{ui: ui}
}

type action struct {
	title string
	run   func(ctx context.Context) error
}

// show displays msg unless a background call repeats the previous message.
// The chosen action, if any, runs before show returns.
func (n *Notifier) show(ctx context.Context, calledByUser bool, kind host.MessageKind, msg string, actions ...action) error {
	n.mu.Lock()
	if !calledByUser && n.last == msg {
		n.mu.Unlock()
		zerolog.Ctx(ctx).Debug().Str("message", msg).Msg("skipping repeated message")
		return nil
	}
	n.last = msg
	n.mu.Unlock()

	titles := make([]string, 0, len(actions))
	for _, a := range actions {
		titles = append(titles, a.title)
	}

	chosen, err := n.ui.ShowMessage(ctx, kind, msg, titles...)
	if err != nil {
		return err
	}
	for _, a := range actions {
		if a.title == chosen {
			return a.run(ctx)
		}
	}
	return nil
}

// ReportFailure shows an unexpected failure of a whole action
func (n *Notifier) ReportFailure(ctx context.Context, err error) {
	zerolog.Ctx(ctx).Error().Err(err).Msg("gitopssettings failed")
	if _, uerr := n.ui.ShowMessage(ctx, host.KindError, fmt.Sprintf("GitOpsSettings failed: %s.", err.Error())); uerr != nil {
		zerolog.Ctx(ctx).Error().Err(uerr).Msg("showing failure")
	}
}

func (o *Operator) openAction(title, path string) action {
	return action{title: title, run: func(ctx context.Context) error {
		return o.open(ctx, path)
	}}
}

// openActions offers the repository root only when it is not the storage directory itself
func (o *Operator) openActions(root, storage string) []action {
	if root != storage {
		return []action{
			o.openAction("Open root of the repository", root),
			o.openAction("Open storage directory", storage),
		}
	}
	return []action{o.openAction("Open storage directory", storage)}
}

func (o *Operator) notifyMissingStorageDirectory(ctx context.Context) error {
	set := action{title: "Set storage directory", run: func(ctx context.Context) error {
		return o.asUser().SetStorageDirectory(ctx, "")
	}}
	return o.notifier.show(ctx, o.calledByUser, host.KindError, "Storage directory is not set.", set)
}

func (o *Operator) notifyDirtyWorkingTree(ctx context.Context, root, storage string) error {
	msg := fmt.Sprintf("Repository %s is dirty.", root)
	return o.notifier.show(ctx, o.calledByUser, host.KindError, msg, o.openActions(root, storage)...)
}

func (o *Operator) notifyAheadOrBehind(ctx context.Context, ahead, behind int, root, storage string) error {
	switch {
	case ahead != 0 && behind != 0:
		msg := fmt.Sprintf("Current branch is behind by %d and ahead by %d commits in repository %s.", behind, ahead, root)
		return o.notifier.show(ctx, o.calledByUser, host.KindWarning, msg, o.openActions(root, storage)...)
	case ahead != 0:
		msg := fmt.Sprintf("Current branch is ahead by %d commits in repository %s. Remember to publish your changes.", ahead, root)
		return o.notifier.show(ctx, o.calledByUser, host.KindInfo, msg, o.openActions(root, storage)...)
	case behind != 0:
		msg := fmt.Sprintf("Current branch is behind by %d commits in repository %s. Do you want to import data?", behind, root)
		actions := []action{{title: "Yes, fast forward and import", run: func(ctx context.Context) error {
			return o.asUser().ImportData(ctx)
		}}}
		if root != storage {
			actions = append(actions, o.openAction("No, open root of the repository", root))
		}
		actions = append(actions, o.openAction("No, open storage directory", storage))
		return o.notifier.show(ctx, o.calledByUser, host.KindInfo, msg, actions...)
	default:
		return nil
	}
}

func (o *Operator) notifyBehindAfterFastForward(ctx context.Context, ahead, behind int, root, storage string) error {
	var msg string
	if ahead != 0 {
		msg = fmt.Sprintf("After fast forward current branch is still behind by %d and ahead by %d commits in repository %s.", behind, ahead, root)
	} else {
		msg = fmt.Sprintf("After fast forward current branch is still behind by %d commits in repository %s.", behind, root)
	}
	return o.notifier.show(ctx, o.calledByUser, host.KindError, msg, o.openActions(root, storage)...)
}

func (o *Operator) notifyUpToDate(ctx context.Context) error {
	return o.notifier.show(ctx, o.calledByUser, host.KindInfo, "Your configuration is up to date!")
}

func (o *Operator) notifySuccessfulExport(ctx context.Context, path string) error {
	msg := fmt.Sprintf("Current configuration exported to %s.", path)
	return o.notifier.show(ctx, o.calledByUser, host.KindInfo, msg, o.openAction("Open export directory", path))
}

func (o *Operator) notifySuccessfulImport(ctx context.Context, ahead int, root, storage string) error {
	if ahead != 0 {
		msg := fmt.Sprintf("Configuration imported successfully! However current branch is ahead by %d commits in repository %s. Remember to publish your changes.", ahead, root)
		return o.notifier.show(ctx, o.calledByUser, host.KindInfo, msg, o.openActions(root, storage)...)
	}
	msg := fmt.Sprintf("Configuration imported successfully (repository %s)!", root)
	return o.notifier.show(ctx, o.calledByUser, host.KindInfo, msg)
}

func (o *Operator) confirmCurrentDataOverwrite(ctx context.Context) (bool, error) {
	return o.ui.Confirm(ctx, host.KindWarning,
		"Last applied configuration differs from the current one. Override your current configuration?",
		"Yes, overwrite",
		"No, don't do anything")
}

func (o *Operator) confirmDirtyWorkingTree(ctx context.Context, root string) (bool, error) {
	return o.ui.Confirm(ctx, host.KindWarning,
		fmt.Sprintf("Working tree is dirty in repository %s. Continue?", root),
		"Yes, continue with dirty working tree",
		"No, don't do anything")
}

func (o *Operator) confirmBehind(ctx context.Context, ahead, behind int, root string) (bool, error) {
	var msg string
	if ahead != 0 {
		msg = fmt.Sprintf("Current branch is behind by %d and ahead by %d commits in repository %s. Do you want to continue import?", behind, ahead, root)
	} else {
		msg = fmt.Sprintf("Current branch is behind by %d commits in repository %s. Do you want to continue import?", behind, root)
	}
	return o.ui.Confirm(ctx, host.KindWarning, msg, "Yes, continue", "No, don't do anything")
}
