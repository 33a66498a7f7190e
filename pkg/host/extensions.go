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

package host

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"github.com/walteh/gitopssettings/pkg/exec"
	"github.com/walteh/gitopssettings/pkg/files"
)

// 💥 ToolError is a failed invocation of the editor's command line tool
type ToolError struct {
	Cause   error
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

// 🧩 Extension is an entry of the editor's extension registry
type Extension struct {
	ID      string
	Builtin bool
}

// 🔌 Extensions manages the editor's installed extensions
type Extensions interface {
	// ListInstalled returns user visible extension ids, one per line of the CLI output
	ListInstalled(ctx context.Context, dir string) ([]string, error)

	// Registry returns every extension the editor knows about
	Registry(ctx context.Context) ([]Extension, error)

	Install(ctx context.Context, id string) error
	Uninstall(ctx context.Context, id string) error
}

// 🔧 CLI drives the editor through its command line launcher
type CLI struct {
	binary        string
	extensionsDir string
	fs            afero.Fs
	runner        exec.Runner
}

var _ Extensions = (*CLI)(nil)

// 🏭 NewCLI creates a CLI using binary (code or code.cmd) and the registry kept in extensionsDir
func NewCLI(fs afero.Fs, runner exec.Runner, binary, extensionsDir string) *CLI {
	return &CLI{
		binary:        binary,
		extensionsDir: extensionsDir,
		fs:            fs,
		runner:        runner,
	}
}

func (c *CLI) stdout(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := append([]string{c.binary}, args...)
	res := c.runner.Run(ctx, exec.Command(cmd...).InDir(dir))
	if res.IsError() {
		return "", &ToolError{
			Cause:   res.Err,
			Message: fmt.Sprintf("Command %s failed: %s.", res.CmdLine(), res.ErrorMessage()),
		}
	}
	return res.Stdout, nil
}

// ListInstalled runs the launcher with --list-extensions in dir
func (c *CLI) ListInstalled(ctx context.Context, dir string) ([]string, error) {
	out, err := c.stdout(ctx, dir, "--list-extensions")
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, line := range strings.Split(out, "\n") {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Install installs an extension by id
func (c *CLI) Install(ctx context.Context, id string) error {
	zerolog.Ctx(ctx).Info().Str("extension", id).Msg("installing extension")
	_, err := c.stdout(ctx, "", "--install-extension", id)
	return err
}

// Uninstall removes an extension by id
func (c *CLI) Uninstall(ctx context.Context, id string) error {
	zerolog.Ctx(ctx).Info().Str("extension", id).Msg("uninstalling extension")
	_, err := c.stdout(ctx, "", "--uninstall-extension", id)
	return err
}

type registryEntry struct {
	Identifier struct {
		ID string `json:"id"`
	} `json:"identifier"`
	Metadata struct {
		IsBuiltin bool `json:"isBuiltin"`
	} `json:"metadata"`
}

// Registry reads extensions.json from the extensions directory.
// A missing registry is empty.
func (c *CLI) Registry(ctx context.Context) ([]Extension, error) {
	path := filepath.Join(c.extensionsDir, "extensions.json")
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			zerolog.Ctx(ctx).Debug().Str("path", path).Msg("no extension registry")
			return nil, nil
		}
		return nil, &files.IOError{Op: "read", Path: path, Err: err}
	}

	var entries []registryEntry
	if err := json.Unmarshal(jsonc.ToJSON(data), &entries); err != nil {
		return nil, &files.IOError{Op: "parse", Path: path, Err: err}
	}

	exts := make([]Extension, 0, len(entries))
	for _, e := range entries {
		exts = append(exts, Extension{ID: e.Identifier.ID, Builtin: e.Metadata.IsBuiltin})
	}
	return exts, nil
}
