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

package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/tidwall/jsonc"
	"github.com/walteh/gitopssettings/pkg/files"
	"github.com/walteh/gitopssettings/pkg/host"
	"github.com/walteh/gitopssettings/pkg/sum"
	"gitlab.com/tozd/go/errors"
)

// 🧩 ExtensionData is one installed extension. Fields are declared in
// alphabetical order so the encoded form has sorted keys.
type ExtensionData struct {
	Enabled bool   `json:"enabled"`
	Name    string `json:"name"`
}

// 🧩 ExtensionsHandler synchronizes the set of installed extensions.
// Enabled state is not synchronized: every record is normalized to enabled.
type ExtensionsHandler struct {
	layout
	host   host.Extensions
	ignore []string
}

var _ Handler = (*ExtensionsHandler)(nil)

// 🏭 NewExtensionsHandler creates the extensions handler. Extension names
// matching any ignore pattern are left alone on every side.
func NewExtensionsHandler(key string, paths KindMap[string], m *files.Manager, h *sum.Hasher, ext host.Extensions, ignore []string) (*ExtensionsHandler, error) {
	for _, p := range ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid extension ignore pattern %q", p)
		}
	}
	return &ExtensionsHandler{
		layout: layout{key: key, paths: paths, files: m, sum: h},
		host:   ext,
		ignore: ignore,
	}, nil
}

func (h *ExtensionsHandler) Type() string {
	return "extensions"
}

func (h *ExtensionsHandler) Sum(ctx context.Context, kind Kind, root string) (PartialSum, error) {
	ok, err := h.Has(ctx, kind, root)
	if err != nil {
		return PartialSum{}, err
	}
	if !ok {
		return PartialSum{Key: h.key}, nil
	}

	records, err := h.data(ctx, kind, root)
	if err != nil {
		return PartialSum{}, err
	}
	encoded, err := encode(records, "")
	if err != nil {
		return PartialSum{}, err
	}
	return PartialSum{Key: h.key, Value: h.sum.Data(encoded)}, nil
}

func (h *ExtensionsHandler) Has(ctx context.Context, kind Kind, root string) (bool, error) {
	return h.hasPayloadOrMarker(ctx, kind, root)
}

// Copy into current installs and uninstalls extensions one at a time until the
// installed set matches the source. The first failure stops the sequence and
// nothing already done is undone. Copy anywhere else writes the record list.
func (h *ExtensionsHandler) Copy(ctx context.Context, fromKind Kind, from string, toKind Kind, to string) error {
	ok, err := h.Has(ctx, fromKind, from)
	if err != nil || !ok {
		return err
	}

	fromData, err := h.data(ctx, fromKind, from)
	if err != nil {
		return err
	}

	if toKind == KindCurrent {
		toData, err := h.data(ctx, toKind, to)
		if err != nil {
			return err
		}
		return h.converge(ctx, fromData, toData)
	}

	parent := h.parentDir(toKind, to)
	if err := h.files.MkdirAll(ctx, parent); err != nil {
		return err
	}
	encoded, err := encode(fromData, "   ")
	if err != nil {
		return err
	}
	if err := h.files.WriteFileAtomic(ctx, h.path(toKind, to), encoded); err != nil {
		return err
	}
	return h.files.RemoveMarker(ctx, parent)
}

func (h *ExtensionsHandler) converge(ctx context.Context, want, have []ExtensionData) error {
	logger := zerolog.Ctx(ctx)
	toInstall := difference(want, have)
	toUninstall := difference(have, want)
	logger.Debug().Strs("install", toInstall).Strs("uninstall", toUninstall).Msg("converging extensions")

	for _, name := range toInstall {
		if err := h.host.Install(ctx, name); err != nil {
			return errors.Errorf("installing extension %s: %w", name, err)
		}
	}
	for _, name := range toUninstall {
		if err := h.host.Uninstall(ctx, name); err != nil {
			return errors.Errorf("uninstalling extension %s: %w", name, err)
		}
	}
	return nil
}

func (h *ExtensionsHandler) data(ctx context.Context, kind Kind, root string) ([]ExtensionData, error) {
	var records []ExtensionData
	if kind == KindCurrent {
		names, err := h.host.ListInstalled(ctx, root)
		if err != nil {
			return nil, err
		}
		registry, err := h.host.Registry(ctx)
		if err != nil {
			return nil, err
		}
		builtin := map[string]bool{}
		for _, e := range registry {
			if e.Builtin {
				builtin[strings.ToLower(e.ID)] = true
			}
		}
		for _, n := range names {
			if !builtin[strings.ToLower(n)] {
				records = append(records, ExtensionData{Name: n})
			}
		}
	} else {
		path := h.path(kind, root)
		ok, err := h.files.Exists(ctx, path)
		if err != nil {
			return nil, err
		}
		if ok {
			raw, err := h.files.ReadFile(ctx, path)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(jsonc.ToJSON(raw), &records); err != nil {
				return nil, &files.IOError{Op: "parse", Path: path, Err: err}
			}
		}
	}

	kept := make([]ExtensionData, 0, len(records))
	for _, r := range records {
		if h.ignored(r.Name) {
			continue
		}
		kept = append(kept, ExtensionData{Name: r.Name, Enabled: true})
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Name < kept[j].Name })
	return kept, nil
}

func (h *ExtensionsHandler) ignored(name string) bool {
	for _, p := range h.ignore {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// encode renders records as JSON with sorted keys, indented when indent is set
func encode(records []ExtensionData, indent string) ([]byte, error) {
	if records == nil {
		records = []ExtensionData{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(records); err != nil {
		return nil, errors.Errorf("encoding extensions: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// difference returns the names in a that are not in b, in a's order
func difference(a, b []ExtensionData) []string {
	in := make(map[string]bool, len(b))
	for _, r := range b {
		in[r.Name] = true
	}
	var out []string
	for _, r := range a {
		if !in[r.Name] {
			out = append(out, r.Name)
		}
	}
	return out
}
