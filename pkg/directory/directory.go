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

package directory

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/gitopssettings/pkg/exec"
	"github.com/walteh/gitopssettings/pkg/platform"
	"gitlab.com/tozd/go/errors"
)

// opener returns the command showing a directory in the desktop file browser
func opener(id platform.ID) string {
	switch id {
	case platform.Windows:
		return "explorer"
	case platform.Darwin:
		return "open"
	default:
		return "xdg-open"
	}
}

// 📂 OpenInExternalBrowser shows path in the desktop file browser
func OpenInExternalBrowser(ctx context.Context, runner exec.Runner, id platform.ID, path string) error {
	res := runner.Run(ctx, exec.Command(opener(id), path))

	zerolog.Ctx(ctx).Debug().Str("cmd", res.CmdLine()).Bool("failed", res.IsError()).Msg("opened directory")

	if !res.IsError() {
		return nil
	}
	// explorer exits 1 even when the window opened
	var exitErr *exec.ExitError
	if id == platform.Windows && errors.As(res.Err, &exitErr) && exitErr.Code == 1 {
		return nil
	}
	return errors.Errorf("opening %s: %s", path, res.ErrorMessage())
}
