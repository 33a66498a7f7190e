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

package host

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/gitopssettings/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ MessageKind is the severity a message is shown with
type MessageKind string

const (
	KindInfo    MessageKind = "info"
	KindWarning MessageKind = "warning"
	KindError   MessageKind = "error"
)

const dismiss = "Dismiss"

// 🪟 UI is how the tool talks to the person using it
type UI interface {
	// ShowMessage displays msg and lets the user pick one of actions.
	// It returns the chosen action, or "" when none was picked.
	ShowMessage(ctx context.Context, kind MessageKind, msg string, actions ...string) (string, error)

	// Confirm asks a yes/no question and reports whether ok was chosen
	Confirm(ctx context.Context, kind MessageKind, msg, ok, cancel string) (bool, error)

	// PickFolder asks for a directory. It returns "" when the user cancels.
	PickFolder(ctx context.Context, title, defaultPath string) (string, error)
}

// 🖥️ Terminal implements UI on top of the console logger and pterm prompts
type Terminal struct {
	logger      *log.Logger
	interactive bool
	assumeYes   bool
}

var _ UI = (*Terminal)(nil)

// 🏭 NewTerminal creates a terminal UI. Prompts are only shown when stdin is a terminal.
func NewTerminal(logger *log.Logger, assumeYes bool) *Terminal {
	fd := os.Stdin.Fd()
	return &Terminal{
		logger:      logger,
		interactive: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		assumeYes:   assumeYes,
	}
}

func (t *Terminal) print(kind MessageKind, msg string) {
	switch kind {
	case KindError:
		t.logger.Error(msg)
	case KindWarning:
		t.logger.Warning(msg)
	default:
		t.logger.Info(msg)
	}
}

func (t *Terminal) ShowMessage(ctx context.Context, kind MessageKind, msg string, actions ...string) (string, error) {
	t.print(kind, msg)
	if len(actions) == 0 || !t.interactive {
		return "", nil
	}

	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions(append(append([]string{}, actions...), dismiss)).
		WithDefaultText("What next?").
		Show()
	if err != nil {
		return "", errors.Errorf("showing actions: %w", err)
	}
	if choice == dismiss {
		return "", nil
	}
	return choice, nil
}

func (t *Terminal) Confirm(ctx context.Context, kind MessageKind, msg, ok, cancel string) (bool, error) {
	t.print(kind, msg)
	if t.assumeYes {
		zerolog.Ctx(ctx).Debug().Str("answer", ok).Msg("confirmed by flag")
		return true, nil
	}
	if !t.interactive {
		t.logger.Warning("Not confirmed, rerun with --yes to proceed without a terminal.")
		return false, nil
	}

	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions([]string{ok, cancel}).
		WithDefaultText("Continue?").
		Show()
	if err != nil {
		return false, errors.Errorf("showing confirmation: %w", err)
	}
	return choice == ok, nil
}

func (t *Terminal) PickFolder(ctx context.Context, title, defaultPath string) (string, error) {
	if !t.interactive {
		t.logger.Warning("No directory given and no terminal to ask for one.")
		return "", nil
	}

	input := pterm.DefaultInteractiveTextInput.WithDefaultText(title)
	if defaultPath != "" {
		input = input.WithDefaultValue(defaultPath)
	}
	answer, err := input.Show()
	if err != nil {
		return "", errors.Errorf("reading directory: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", nil
	}
	return ExpandPath(answer)
}

// ExpandPath resolves a leading ~ and makes p absolute
func ExpandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Errorf("resolving home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", p, err)
	}
	return abs, nil
}
