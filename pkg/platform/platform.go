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
	"runtime"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// 🖥️ ID identifies the operating system family the editor runs on
type ID string

const (
	Darwin  ID = "darwin"
	Linux   ID = "linux"
	Windows ID = "windows"
	WSL     ID = "wsl"
)

// wslVersionFiles are read in order, the first one mentioning wsl or microsoft wins
var wslVersionFiles = []string{"/proc/sys/kernel/osrelease", "/proc/version"}

var current = sync.OnceValue(func() ID {
	return detect(runtime.GOOS, os.ReadFile)
})

// 🎯 Current returns the platform of this process, computed once
func Current() ID {
	return current()
}

func detect(goos string, readFile func(string) ([]byte, error)) ID {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return Darwin
	}
	for _, path := range wslVersionFiles {
		data, err := readFile(path)
		if err != nil {
			continue
		}
		s := strings.ToLower(string(data))
		if strings.Contains(s, "wsl") || strings.Contains(s, "microsoft") {
			return WSL
		}
	}
	return Linux
}

var configuration = sync.OnceValue(func() string {
	return configurationPath(Current(), os.Getenv)
})

// 📁 ConfigurationPath returns the live VS Code user directory, computed once
func ConfigurationPath() string {
	return configuration()
}

func configurationPath(id ID, getenv func(string) string) string {
	switch id {
	case Windows:
		return filepath.Join(getenv("APPDATA"), "Code", "User")
	case Darwin:
		return filepath.Join(getenv("HOME"), "Library", "Application Support", "Code", "User")
	case WSL:
		return filepath.Join(getenv("HOME"), ".vscode-server", "data", "User")
	default:
		return filepath.Join(getenv("HOME"), ".config", "Code", "User")
	}
}

var data = sync.OnceValues(func() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Errorf("resolving user config directory: %w", err)
	}
	return filepath.Join(dir, "gitopssettings"), nil
})

// 🗄️ DataPath returns the private directory the tool keeps its own state in
func DataPath() (string, error) {
	return data()
}

// NormalizeStoragePath strips one leading separator from p on windows,
// where a rooted "/c:/..." form is not a usable path.
func NormalizeStoragePath(id ID, p string) string {
	if id != Windows {
		return p
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") {
		return p[1:]
	}
	return p
}

// EditorBinary returns the name of the VS Code command line launcher
func EditorBinary(id ID) string {
	if id == Windows {
		return "code.cmd"
	}
	return "code"
}

// ExtensionsPath returns the directory VS Code installs user extensions into
func ExtensionsPath(id ID, getenv func(string) string) string {
	switch id {
	case Windows:
		return filepath.Join(getenv("USERPROFILE"), ".vscode", "extensions")
	case WSL:
		return filepath.Join(getenv("HOME"), ".vscode-server", "extensions")
	default:
		return filepath.Join(getenv("HOME"), ".vscode", "extensions")
	}
}
