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

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
// Expressions can read the environment through the env object, e.g.
// state_dir = "${env.HOME}/.gitopssettings".
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// every block and attribute is optional, nil means keep the default
type hclConfig struct {
	Base *struct {
		SilentGitFailures    *bool `hcl:"silent_git_failures,optional"`
		SingleUpdatesCheck   *bool `hcl:"single_updates_check,optional"`
		UpdatesCheckInterval *int  `hcl:"updates_check_interval,optional"`
	} `hcl:"base,block"`
	Synchronize *struct {
		Settings          *bool `hcl:"settings,optional"`
		KeyboardShortcuts *bool `hcl:"keyboard_shortcuts,optional"`
		UserSnippets      *bool `hcl:"user_snippets,optional"`
		UserTasks         *bool `hcl:"user_tasks,optional"`
		Extensions        *bool `hcl:"extensions,optional"`
	} `hcl:"synchronize,block"`
	Paths *struct {
		ConfigurationDir *string `hcl:"configuration_dir,optional"`
		StateDir         *string `hcl:"state_dir,optional"`
		EditorBinary     *string `hcl:"editor_binary,optional"`
		ExtensionsDir    *string `hcl:"extensions_dir,optional"`
	} `hcl:"paths,block"`
	Extensions *struct {
		Ignore []string `hcl:"ignore,optional"`
	} `hcl:"extensions,block"`
	Hash *struct {
		Algorithm *string `hcl:"algorithm,optional"`
	} `hcl:"hash,block"`
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte, filename string, cfg *Config) error {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return errors.Errorf("parsing HCL: %s", diags.Error())
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(os.Environ()), &hclCfg)
	if diags.HasErrors() {
		return errors.Errorf("decoding HCL: %s", diags.Error())
	}

	if b := hclCfg.Base; b != nil {
		set(&cfg.Base.SilentGitFailures, b.SilentGitFailures)
		set(&cfg.Base.SingleUpdatesCheck, b.SingleUpdatesCheck)
		set(&cfg.Base.UpdatesCheckInterval, b.UpdatesCheckInterval)
	}
	if s := hclCfg.Synchronize; s != nil {
		set(&cfg.Synchronize.Settings, s.Settings)
		set(&cfg.Synchronize.KeyboardShortcuts, s.KeyboardShortcuts)
		set(&cfg.Synchronize.UserSnippets, s.UserSnippets)
		set(&cfg.Synchronize.UserTasks, s.UserTasks)
		set(&cfg.Synchronize.Extensions, s.Extensions)
	}
	if ps := hclCfg.Paths; ps != nil {
		set(&cfg.Paths.ConfigurationDir, ps.ConfigurationDir)
		set(&cfg.Paths.StateDir, ps.StateDir)
		set(&cfg.Paths.EditorBinary, ps.EditorBinary)
		set(&cfg.Paths.ExtensionsDir, ps.ExtensionsDir)
	}
	if e := hclCfg.Extensions; e != nil && e.Ignore != nil {
		cfg.Extensions.Ignore = e.Ignore
	}
	if h := hclCfg.Hash; h != nil {
		set(&cfg.Hash.Algorithm, h.Algorithm)
	}

	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// evalContext exposes environ as the env object
func evalContext(environ []string) *hcl.EvalContext {
	env := map[string]cty.Value{}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}
