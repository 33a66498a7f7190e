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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/gitopssettings/cmd/gitopssettings/opts"
	"github.com/walteh/gitopssettings/pkg/host"
	"github.com/walteh/gitopssettings/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// action is one user facing operation run under the process lock
type action func(ctx context.Context, op *operation.Operator) error

// runE loads the configuration, takes the lock and runs fn with an operator
// acting for the user. title is printed while it runs.
func runE(o *opts.RootOpts, name, title string, fn action) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := zerolog.Ctx(cmd.Context()).With().Str("command", name).Logger().WithContext(cmd.Context())

		conf, err := o.Load(ctx)
		if err != nil {
			return errors.Errorf("loading config: %w", err)
		}

		release, err := o.Lock(ctx, conf)
		if err != nil {
			return err
		}
		defer release()

		op, err := o.Operator(ctx, conf, true)
		if err != nil {
			return errors.Errorf("creating operator: %w", err)
		}

		o.Console.Header(title)
		return fn(ctx, op)
	}
}

// dirArg expands the optional directory argument
func dirArg(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", nil
	}
	return host.ExpandPath(args[0])
}
