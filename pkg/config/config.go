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
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/gitopssettings/pkg/sum"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser decodes one configuration format over an already defaulted config
type Parser interface {
	// 📝 Parse decodes data into cfg, leaving unset values alone
	Parse(ctx context.Context, data []byte, filename string, cfg *Config) error

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var parsers []Parser

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// ⚙️ Base holds the general behavior switches
type Base struct {
	SilentGitFailures    bool `json:"silent_git_failures" yaml:"silent_git_failures"`
	SingleUpdatesCheck   bool `json:"single_updates_check" yaml:"single_updates_check"`
	UpdatesCheckInterval int  `json:"updates_check_interval" yaml:"updates_check_interval"` // minutes
}

// UpdatesInterval is the pause between background update checks
func (b Base) UpdatesInterval() time.Duration {
	return time.Duration(b.UpdatesCheckInterval) * time.Minute
}

// 🔄 Synchronize enables categories one by one
type Synchronize struct {
	Settings          bool `json:"settings" yaml:"settings"`
	KeyboardShortcuts bool `json:"keyboard_shortcuts" yaml:"keyboard_shortcuts"`
	UserSnippets      bool `json:"user_snippets" yaml:"user_snippets"`
	UserTasks         bool `json:"user_tasks" yaml:"user_tasks"`
	Extensions        bool `json:"extensions" yaml:"extensions"`
}

// 📁 Paths overrides locations that are normally derived from the platform
type Paths struct {
	ConfigurationDir string `json:"configuration_dir" yaml:"configuration_dir"`
	StateDir         string `json:"state_dir" yaml:"state_dir"`
	EditorBinary     string `json:"editor_binary" yaml:"editor_binary"`
	ExtensionsDir    string `json:"extensions_dir" yaml:"extensions_dir"`
}

// 🧩 Extensions tunes extension synchronization
type Extensions struct {
	Ignore []string `json:"ignore" yaml:"ignore"`
}

// 🧮 Hash selects the digest algorithm
type Hash struct {
	Algorithm string `json:"algorithm" yaml:"algorithm"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Base        Base        `json:"base" yaml:"base"`
	Synchronize Synchronize `json:"synchronize" yaml:"synchronize"`
	Paths       Paths       `json:"paths" yaml:"paths"`
	Extensions  Extensions  `json:"extensions" yaml:"extensions"`
	Hash        Hash        `json:"hash" yaml:"hash"`

	location string
}

// 🏭 Default returns the configuration used when no file sets a value
func Default() *Config {
	return &Config{
		Base: Base{
			SilentGitFailures:    true,
			SingleUpdatesCheck:   true,
			UpdatesCheckInterval: 60,
		},
		Synchronize: Synchronize{
			Settings:          true,
			KeyboardShortcuts: true,
			UserSnippets:      true,
			UserTasks:         true,
			Extensions:        true,
		},
		Hash: Hash{Algorithm: string(sum.SHA256)},
	}
}

// Location is the file the configuration was read from, empty for defaults
func (cfg *Config) Location() string {
	return cfg.location
}

// DefaultPath is where the configuration file lives when --config is not given
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Errorf("resolving user config directory: %w", err)
	}
	return filepath.Join(dir, "gitopssettings", "config.yaml"), nil
}

// 🎯 Load loads the configuration from a file, over the defaults
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("unsupported file extension %q", filepath.Ext(path))
	}

	cfg := Default()
	if err := p.Parse(ctx, data, path, cfg); err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or the default path when path is empty. Only a
// missing default file falls back to the defaults; an explicit path must exist.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}

	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("no configuration file, using defaults")
		return Default(), nil
	}
	return Load(ctx, path)
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.Base.UpdatesCheckInterval <= 0 {
		return errors.Errorf("base.updates_check_interval must be positive, got %d", cfg.Base.UpdatesCheckInterval)
	}
	algo, err := sum.ParseAlgorithm(cfg.Hash.Algorithm)
	if err != nil {
		return errors.Errorf("hash.algorithm: %w", err)
	}
	cfg.Hash.Algorithm = string(algo)
	for _, p := range cfg.Extensions.Ignore {
		if !doublestar.ValidatePattern(p) {
			return errors.Errorf("extensions.ignore: invalid pattern %q", p)
		}
	}

	cfg.Paths.ConfigurationDir = clean(cfg.Paths.ConfigurationDir)
	cfg.Paths.StateDir = clean(cfg.Paths.StateDir)
	cfg.Paths.ExtensionsDir = clean(cfg.Paths.ExtensionsDir)

	return nil
}

func clean(p string) string {
	if p == "" {
		return p
	}
	return filepath.Clean(p)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte, filename string, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Errorf("parsing YAML: %w", err)
	}
	return nil
}
