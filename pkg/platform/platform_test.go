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

package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeProc(files map[string]string) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		if s, ok := files[name]; ok {
			return []byte(s), nil
		}
		return nil, os.ErrNotExist
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		goos string
		proc map[string]string
		want ID
	}{
		{name: "windows", goos: "windows", want: Windows},
		{name: "darwin", goos: "darwin", want: Darwin},
		{name: "plain_linux", goos: "linux", proc: map[string]string{"/proc/version": "Linux version 6.1.0-generic"}, want: Linux},
		{name: "no_proc", goos: "linux", want: Linux},
		{name: "wsl_osrelease", goos: "linux", proc: map[string]string{"/proc/sys/kernel/osrelease": "5.15.90.1-microsoft-standard-WSL2"}, want: WSL},
		{name: "wsl_version_uppercase", goos: "linux", proc: map[string]string{"/proc/version": "Linux version 4.4.0-19041-Microsoft"}, want: WSL},
		{name: "freebsd_falls_back_to_linux", goos: "freebsd", want: Linux},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detect(tt.goos, fakeProc(tt.proc)))
		})
	}
}

func TestCurrentIsMemoized(t *testing.T) {
	assert.Equal(t, Current(), Current())
	assert.Equal(t, ConfigurationPath(), ConfigurationPath())
}

func TestConfigurationPath(t *testing.T) {
	env := map[string]string{"HOME": "/home/dev", "APPDATA": "/appdata", "USERPROFILE": "/profile"}
	getenv := func(k string) string { return env[k] }

	tests := []struct {
		id         ID
		want       string
		extensions string
	}{
		{id: Windows, want: filepath.Join("/appdata", "Code", "User"), extensions: filepath.Join("/profile", ".vscode", "extensions")},
		{id: Darwin, want: filepath.Join("/home/dev", "Library", "Application Support", "Code", "User"), extensions: filepath.Join("/home/dev", ".vscode", "extensions")},
		{id: WSL, want: filepath.Join("/home/dev", ".vscode-server", "data", "User"), extensions: filepath.Join("/home/dev", ".vscode-server", "extensions")},
		{id: Linux, want: filepath.Join("/home/dev", ".config", "Code", "User"), extensions: filepath.Join("/home/dev", ".vscode", "extensions")},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			assert.Equal(t, tt.want, configurationPath(tt.id, getenv))
			assert.Equal(t, tt.extensions, ExtensionsPath(tt.id, getenv))
		})
	}
}

func TestNormalizeStoragePath(t *testing.T) {
	assert.Equal(t, "c:/Users/dev/state", NormalizeStoragePath(Windows, "/c:/Users/dev/state"))
	assert.Equal(t, `c:\state`, NormalizeStoragePath(Windows, `\c:\state`))
	assert.Equal(t, "c:/state", NormalizeStoragePath(Windows, "c:/state"))
	assert.Equal(t, "/home/dev/state", NormalizeStoragePath(Linux, "/home/dev/state"))
}

func TestEditorBinary(t *testing.T) {
	assert.Equal(t, "code.cmd", EditorBinary(Windows))
	assert.Equal(t, "code", EditorBinary(WSL))
}
