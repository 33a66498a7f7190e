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

// Package exectest provides a mock process runner for tests.
package exectest

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"
	"github.com/walteh/gitopssettings/pkg/exec"
)

// 🎭 Runner is a mock exec.Runner keyed on the rendered command line
type Runner struct {
	mock.Mock
}

var _ exec.Runner = (*Runner)(nil)

// Run implements exec.Runner
func (r *Runner) Run(ctx context.Context, p *exec.Process) *exec.Result {
	args := r.Called(strings.Join(p.Cmd, " "), p.Dir)
	res := args.Get(0).(*exec.Result)
	res.Cmd = p.Cmd
	return res
}

// Expect registers a command line run in dir producing stdout and err
func (r *Runner) Expect(cmdLine, dir, stdout string, err error) *mock.Call {
	return r.On("Run", cmdLine, dir).Return(&exec.Result{Stdout: stdout, Err: err}).Once()
}
