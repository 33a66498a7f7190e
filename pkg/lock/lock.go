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

package lock

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrBusy is returned when another process holds the lock
var ErrBusy = errors.Base("another gitopssettings operation is in progress")

// 🔒 Acquire takes an exclusive, non-blocking lock on path.
// The returned function releases it.
func Acquire(ctx context.Context, path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Errorf("creating lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Errorf("acquiring lock %s: %w", path, err)
	}
	if !locked {
		return nil, errors.WithStack(ErrBusy)
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("acquired lock")
	return func() {
		if err := fl.Unlock(); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("releasing lock")
		}
	}, nil
}
