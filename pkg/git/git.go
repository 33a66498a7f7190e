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

package git

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/gitopssettings/pkg/exec"
	"github.com/walteh/gitopssettings/pkg/files"
	"gitlab.com/tozd/go/errors"
)

// 💥 OperationError is a failed git invocation, or a path outside any repository
type OperationError struct {
	Cause   error
	Message string
}

func (e *OperationError) Error() string {
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// IsOperational reports whether err carries an OperationError
func IsOperational(err error) bool {
	var opErr *OperationError
	return errors.As(err, &opErr)
}

// 🚫 NotARepositoryError is the cause of an OperationError from FindRoot
type NotARepositoryError struct {
	Path string
}

func (e *NotARepositoryError) Error() string {
	return fmt.Sprintf("Directory %s is not part of a Git repository. Did you forget to run git init?", e.Path)
}

var driveRoot = regexp.MustCompile(`(?i)^[a-z]:(\\\\?|//?)$`)

// 🔧 Operations runs git commands against one repository.
// FindRoot must succeed before any other method is used.
type Operations struct {
	Root string

	fs     afero.Fs
	runner exec.Runner
}

// 🏭 New creates git operations that discover repositories on fs and run git through runner
func New(fs afero.Fs, runner exec.Runner) *Operations {
	return &Operations{fs: fs, runner: runner}
}

// 🔍 FindRoot walks up from innerPath to the first directory holding a .git
// entry, remembers it as Root and returns it
func (o *Operations) FindRoot(ctx context.Context, innerPath string) (string, error) {
	check := innerPath
	for check != "" && check != "/" && !driveRoot.MatchString(check) {
		entries, err := afero.ReadDir(o.fs, check)
		if err != nil {
			return "", &files.IOError{Op: "readdir", Path: check, Err: err}
		}
		for _, entry := range entries {
			if entry.Name() == ".git" {
				o.Root = check
				zerolog.Ctx(ctx).Debug().Str("root", check).Msg("found repository root")
				return check, nil
			}
		}

		parent := filepath.Dir(check)
		if parent == check {
			break
		}
		check = parent
	}

	nre := &NotARepositoryError{Path: innerPath}
	return "", &OperationError{Cause: nre, Message: nre.Error()}
}

func (o *Operations) run(ctx context.Context, args ...string) (*exec.Result, error) {
	cmd := append([]string{"git"}, args...)
	res := o.runner.Run(ctx, exec.Command(cmd...).InDir(o.Root))
	if res.IsError() {
		return nil, &OperationError{
			Cause:   res.Err,
			Message: fmt.Sprintf("Command %s failed: %s.", res.CmdLine(), res.ErrorMessage()),
		}
	}
	return res, nil
}

func (o *Operations) count(ctx context.Context, revRange string) (int, error) {
	res, err := o.run(ctx, "rev-list", "--count", revRange)
	if err != nil {
		return 0, err
	}
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, &OperationError{
			Cause:   err,
			Message: fmt.Sprintf("Command %s returned unexpected output %q.", res.CmdLine(), out),
		}
	}
	return n, nil
}

// Fetch runs git fetch
func (o *Operations) Fetch(ctx context.Context) error {
	_, err := o.run(ctx, "fetch")
	return err
}

// PullFastForward runs git pull --ff-only
func (o *Operations) PullFastForward(ctx context.Context) error {
	_, err := o.run(ctx, "pull", "--ff-only")
	return err
}

// IsWorkingTreeClean reports whether git status --short prints nothing
func (o *Operations) IsWorkingTreeClean(ctx context.Context) (bool, error) {
	res, err := o.run(ctx, "status", "--short")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) == "", nil
}

// Behind counts upstream commits missing from HEAD
func (o *Operations) Behind(ctx context.Context) (int, error) {
	return o.count(ctx, "HEAD..@{u}")
}

// Ahead counts local commits not yet on the upstream
func (o *Operations) Ahead(ctx context.Context) (int, error) {
	return o.count(ctx, "@{u}..HEAD")
}
