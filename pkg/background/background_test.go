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

package background

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func every(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

func TestPeriodicJob(t *testing.T) {
	t.Run("immediate_run", func(t *testing.T) {
		var calls atomic.Int32
		job := New(every(time.Hour), func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})
		job.MinInterval = time.Millisecond

		job.Start(testContext(t), true)
		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

		job.Stop()
		job.Wait()
		assert.Equal(t, int32(1), calls.Load(), "next run is an hour away")
	})

	t.Run("runs_after_interval", func(t *testing.T) {
		var calls atomic.Int32
		job := New(every(20*time.Millisecond), func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})
		job.MinInterval = time.Millisecond

		started := time.Now()
		job.Start(testContext(t), false)
		require.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, time.Millisecond)
		assert.GreaterOrEqual(t, time.Since(started), 40*time.Millisecond, "each run waits a full interval")

		job.Stop()
		job.Wait()
	})

	t.Run("stop_before_first_run", func(t *testing.T) {
		var calls atomic.Int32
		job := New(every(time.Hour), func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})
		job.MinInterval = time.Millisecond

		job.Start(testContext(t), false)
		job.Stop()
		job.Wait()
		assert.Zero(t, calls.Load())
	})

	t.Run("restart_replaces_timeline", func(t *testing.T) {
		var calls atomic.Int32
		job := New(every(time.Hour), func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})
		job.MinInterval = time.Millisecond

		job.Start(testContext(t), false)
		job.Start(testContext(t), true)
		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
		job.Stop()
		job.Wait()
	})
}

func TestOnce(t *testing.T) {
	t.Run("stops_after_success", func(t *testing.T) {
		var calls atomic.Int32
		job := New(every(time.Millisecond), nil)
		job.MinInterval = time.Millisecond
		job.Callback = Once(job, func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})

		job.Start(testContext(t), true)
		job.Wait()
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("keeps_running_until_success", func(t *testing.T) {
		var calls atomic.Int32
		job := New(every(time.Millisecond), nil)
		job.MinInterval = time.Millisecond
		job.Callback = Once(job, func(ctx context.Context) error {
			if calls.Add(1) < 3 {
				return errors.New("not yet")
			}
			return nil
		})

		job.Start(testContext(t), true)
		job.Wait()
		assert.Equal(t, int32(3), calls.Load())
	})
}
