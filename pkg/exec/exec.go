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

package exec

import (
	"bytes"
	"context"
	"fmt"
	osexec "os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ⏱️ DefaultTimeout bounds every process unless overridden
const DefaultTimeout = 60 * time.Second

// 💥 ExitError reports a process that ran but exited non-zero
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process exited with %d", e.Code)
}

// 📦 Result captures everything a finished process produced
type Result struct {
	Cmd    []string
	Err    error
	Stdout string
	Stderr string
}

// CmdLine renders the command as a single line
func (r *Result) CmdLine() string {
	return strings.Join(r.Cmd, " ")
}

// IsError reports whether the process failed to start, timed out or exited non-zero
func (r *Result) IsError() bool {
	return r.Err != nil
}

// ErrorMessage returns the failure message followed by the trimmed stderr
// when there is any, or "" on success
func (r *Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	if stderr := strings.TrimSpace(r.Stderr); stderr != "" {
		return r.Err.Error() + ": " + stderr
	}
	return r.Err.Error()
}

// 🏃 Runner runs processes
type Runner interface {
	Run(ctx context.Context, p *Process) *Result
}

// 🔧 Process describes a command to run
type Process struct {
	Cmd     []string
	Dir     string
	Timeout time.Duration
}

// 🏭 Command creates a process with the default timeout in the current directory
func Command(cmd ...string) *Process {
	return &Process{Cmd: cmd, Timeout: DefaultTimeout}
}

// InDir sets the working directory
func (p *Process) InDir(dir string) *Process {
	p.Dir = dir
	return p
}

// WithTimeout overrides the timeout
func (p *Process) WithTimeout(d time.Duration) *Process {
	p.Timeout = d
	return p
}

// OsRunner runs processes on the host
type OsRunner struct{}

// Run executes p and never returns a nil result. Failures are reported through Result.Err.
func (OsRunner) Run(ctx context.Context, p *Process) *Result {
	res := &Result{Cmd: p.Cmd}
	if len(p.Cmd) == 0 {
		res.Err = errors.New("empty command")
		return res
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := zerolog.Ctx(ctx)
	logger.Debug().Strs("cmd", p.Cmd).Str("dir", p.Dir).Msg("running process")

	var stdout, stderr bytes.Buffer
	cmd := osexec.CommandContext(ctx, p.Cmd[0], p.Cmd[1:]...)
	cmd.Dir = p.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	var exitErr *osexec.ExitError
	switch {
	case err == nil:
	case ctx.Err() == context.DeadlineExceeded:
		res.Err = errors.Errorf("timed out after %s", timeout)
	case errors.As(err, &exitErr):
		res.Err = &ExitError{Code: exitErr.ExitCode()}
	default:
		res.Err = err
	}

	if res.Err != nil {
		logger.Debug().Strs("cmd", p.Cmd).Str("stderr", res.Stderr).Err(res.Err).Msg("process failed")
	}
	return res
}
