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
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gitopssettings/pkg/config"
	"github.com/walteh/gitopssettings/pkg/files"
	"github.com/walteh/gitopssettings/pkg/git"
	"github.com/walteh/gitopssettings/pkg/host"
	"github.com/walteh/gitopssettings/pkg/kv"
	"github.com/walteh/gitopssettings/pkg/warehouse"
	"gitlab.com/tozd/go/errors"
)

// 🔧 MockUI is a mock implementation of host.UI
type MockUI struct {
	mock.Mock
}

func (m *MockUI) ShowMessage(ctx context.Context, kind host.MessageKind, msg string, actions ...string) (string, error) {
	if len(actions) == 0 {
		actions = nil
	}
	result := m.Called(kind, msg, actions)
	return result.String(0), result.Error(1)
}

func (m *MockUI) Confirm(ctx context.Context, kind host.MessageKind, msg, ok, cancel string) (bool, error) {
	result := m.Called(kind, msg, ok, cancel)
	return result.Bool(0), result.Error(1)
}

func (m *MockUI) PickFolder(ctx context.Context, title, defaultPath string) (string, error) {
	result := m.Called(title, defaultPath)
	return result.String(0), result.Error(1)
}

// expectMessage registers a message and the action the user picks in reply
func (m *MockUI) expectMessage(kind host.MessageKind, msg, choice string, actions ...string) *mock.Call {
	var want []string
	if len(actions) > 0 {
		want = actions
	}
	return m.On("ShowMessage", kind, msg, want).Return(choice, nil).Once()
}

// 🔧 MockGit is a mock implementation of the Git interface
type MockGit struct {
	mock.Mock
}

func (m *MockGit) FindRoot(ctx context.Context, innerPath string) (string, error) {
	result := m.Called(innerPath)
	return result.String(0), result.Error(1)
}

func (m *MockGit) Fetch(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockGit) PullFastForward(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockGit) IsWorkingTreeClean(ctx context.Context) (bool, error) {
	result := m.Called()
	return result.Bool(0), result.Error(1)
}

func (m *MockGit) Ahead(ctx context.Context) (int, error) {
	result := m.Called()
	return result.Int(0), result.Error(1)
}

func (m *MockGit) Behind(ctx context.Context) (int, error) {
	result := m.Called()
	return result.Int(0), result.Error(1)
}

// repository registers a repository at root in the given state
func (m *MockGit) repository(storage, root string, clean bool, ahead, behind int) {
	m.On("FindRoot", storage).Return(root, nil).Once()
	m.On("Fetch").Return(nil).Once()
	m.On("IsWorkingTreeClean").Return(clean, nil).Once()
	if clean {
		m.On("Ahead").Return(ahead, nil).Once()
		m.On("Behind").Return(behind, nil).Once()
	}
}

// 🔧 MockWarehouse is a mock implementation of the Warehouse interface
type MockWarehouse struct {
	mock.Mock
}

func sumResult(result mock.Arguments) (warehouse.Sum, error) {
	s, _ := result.Get(0).(warehouse.Sum)
	return s, result.Error(1)
}

func (m *MockWarehouse) SumOfCurrent(ctx context.Context) (warehouse.Sum, error) {
	return sumResult(m.Called())
}

func (m *MockWarehouse) SumOfLastImported(ctx context.Context) (warehouse.Sum, error) {
	return sumResult(m.Called())
}

func (m *MockWarehouse) SumOfStored(ctx context.Context) (warehouse.Sum, error) {
	return sumResult(m.Called())
}

// sums registers the current and last imported sums
func (m *MockWarehouse) sums(current, lastImported string) {
	m.On("SumOfCurrent").Return(sumOf(current), nil).Once()
	m.On("SumOfLastImported").Return(sumOf(lastImported), nil).Once()
}

func (m *MockWarehouse) ImportStored(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockWarehouse) ReimportLastImported(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockWarehouse) RefreshLastImported(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockWarehouse) ExportCurrent(ctx context.Context, dir string) error {
	return m.Called(dir).Error(0)
}

// mapStore is an in memory kv.Store
type mapStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *mapStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *mapStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

var _ kv.Store = (*mapStore)(nil)

func sumOf(value string) warehouse.Sum {
	return warehouse.Sum{{Key: "settings", Value: value}}
}

type env struct {
	ctx      context.Context
	ui       *MockUI
	git      *MockGit
	data     *MockWarehouse
	store    *mapStore
	conf     *config.Config
	notifier *Notifier

	mu     sync.Mutex
	opened []string
}

func newEnv(t *testing.T, storage string) *env {
	e := &env{
		ctx:   zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background()),
		ui:    &MockUI{},
		git:   &MockGit{},
		data:  &MockWarehouse{},
		store: &mapStore{values: map[string]string{}},
		conf:  config.Default(),
	}
	e.notifier = NewNotifier(e.ui)
	if storage != "" {
		e.store.values[kv.StorageDirectoryKey] = storage
	}
	t.Cleanup(func() {
		e.ui.AssertExpectations(t)
		e.git.AssertExpectations(t)
		e.data.AssertExpectations(t)
	})
	return e
}

func (e *env) operator(t *testing.T, calledByUser bool) *Operator {
	t.Helper()
	op, err := New(Options{
		CalledByUser: calledByUser,
		Config:       e.conf,
		Warehouse:    e.data,
		Git:          func() Git { return e.git },
		UI:           e.ui,
		Store:        e.store,
		Open: func(ctx context.Context, path string) error {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.opened = append(e.opened, path)
			return nil
		},
		Notifier: e.notifier,
	})
	require.NoError(t, err, "creating operator")
	return op
}

func gitFailure(cmd string) error {
	return &git.OperationError{
		Cause:   errors.New("exit status 128"),
		Message: "Command " + cmd + " failed: exit status 128.",
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name         string
		calledByUser bool
		silent       bool
		err          error
		expectShown  bool
		wantReported bool
		wantErr      bool
	}{
		{name: "success", calledByUser: true},
		{name: "git_failure_user", calledByUser: true, silent: true, err: gitFailure("git fetch"), expectShown: true, wantReported: true, wantErr: true},
		{name: "git_failure_background_silent", silent: true, err: gitFailure("git fetch")},
		{name: "git_failure_background_loud", err: gitFailure("git fetch"), expectShown: true, wantReported: true, wantErr: true},
		{name: "io_failure_passes_through", calledByUser: true, err: &files.IOError{Op: "read", Path: "/x", Err: errors.New("denied")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, "/repo")
			e.conf.Base.SilentGitFailures = tt.silent
			if tt.expectShown {
				e.ui.expectMessage(host.KindError, "Command git fetch failed: exit status 128.", "")
			}

			err := e.operator(t, tt.calledByUser).wrap(e.ctx, func(ctx context.Context) error { return tt.err })
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantReported, IsReported(err))
		})
	}
}

func TestWarnOnFailure(t *testing.T) {
	e := newEnv(t, "/repo")
	e.ui.expectMessage(host.KindWarning, "Command git fetch failed: exit status 128.", "")

	op := e.operator(t, true)
	require.NoError(t, op.warnOnFailure(e.ctx, gitFailure("git fetch")))
	require.NoError(t, op.warnOnFailure(e.ctx, nil))

	ioErr := &files.IOError{Op: "read", Path: "/x", Err: errors.New("denied")}
	assert.Equal(t, ioErr, op.warnOnFailure(e.ctx, ioErr))
}

func TestNotifierSuppressesRepeatedBackgroundMessages(t *testing.T) {
	e := newEnv(t, "/repo")
	e.ui.expectMessage(host.KindInfo, "first", "")
	e.ui.expectMessage(host.KindInfo, "second", "")
	e.ui.expectMessage(host.KindInfo, "second", "")

	require.NoError(t, e.notifier.show(e.ctx, false, host.KindInfo, "first"))
	require.NoError(t, e.notifier.show(e.ctx, false, host.KindInfo, "first"), "repeated background message is dropped")
	require.NoError(t, e.notifier.show(e.ctx, false, host.KindInfo, "second"))
	require.NoError(t, e.notifier.show(e.ctx, true, host.KindInfo, "second"), "user messages are never dropped")
}

func TestNotifierReportFailure(t *testing.T) {
	e := newEnv(t, "/repo")
	e.ui.expectMessage(host.KindError, "GitOpsSettings failed: disk full.", "")
	e.notifier.ReportFailure(e.ctx, errors.New("disk full"))
}
