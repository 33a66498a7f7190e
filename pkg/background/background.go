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
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMinInterval is how often a waiting timeline rechecks the interval
const DefaultMinInterval = time.Second

// ⏰ PeriodicJob runs Callback every Interval. Interval is re-read on every
// poll so a changed setting applies to the running timeline.
type PeriodicJob struct {
	Interval    func() time.Duration
	Callback    func(ctx context.Context) error
	MinInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// 🏭 New creates a job; minInterval defaults to DefaultMinInterval
func New(interval func() time.Duration, callback func(ctx context.Context) error) *PeriodicJob {
	return &PeriodicJob{
		Interval:    interval,
		Callback:    callback,
		MinInterval: DefaultMinInterval,
	}
}

// ▶️ Start stops any running timeline and begins a new one. With immediate
// the callback runs right away, otherwise after the first full interval.
func (j *PeriodicJob) Start(ctx context.Context, immediate bool) {
	j.Stop()

	j.mu.Lock()
	defer j.mu.Unlock()

	tctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	j.cancel = cancel
	j.done = done

	go func() {
		defer close(done)
		j.timeline(tctx, immediate)
	}()
}

// ⏹️ Stop ends the running timeline. A callback already running is left to finish.
func (j *PeriodicJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
}

// Wait blocks until the current timeline has ended, including its last callback
func (j *PeriodicJob) Wait() {
	j.mu.Lock()
	done := j.done
	j.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (j *PeriodicJob) timeline(ctx context.Context, immediate bool) {
	logger := zerolog.Ctx(ctx)

	for {
		if !immediate && !j.wait(ctx) {
			return
		}
		immediate = false

		if err := j.Callback(context.WithoutCancel(ctx)); err != nil {
			logger.Debug().Err(err).Msg("periodic job failed")
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// wait polls every MinInterval until Interval has elapsed since the call.
// It reports false when the timeline was stopped meanwhile.
func (j *PeriodicJob) wait(ctx context.Context) bool {
	poll := j.MinInterval
	if poll <= 0 {
		poll = DefaultMinInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if time.Since(start) >= j.Interval() {
				return true
			}
		}
	}
}

// 🎯 Once wraps callback so the job stops after the first successful run
func Once(job *PeriodicJob, callback func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := callback(ctx); err != nil {
			return err
		}
		job.Stop()
		return nil
	}
}
