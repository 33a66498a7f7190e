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

package sum

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gitopssettings/pkg/files"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func writeTree(t *testing.T, fs afero.Fs, root string, tree map[string]string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(root, files.DirMode), "creating root %s", root)
	for name, content := range tree {
		require.NoError(t, afero.WriteFile(fs, root+"/"+name, []byte(content), files.FileMode), "writing %s", name)
	}
}

func TestData(t *testing.T) {
	h := New(afero.NewMemMapFs(), SHA256)

	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", h.Data(nil))
	assert.Equal(t, h.Data([]byte("a.txt\nabc")), h.DataFile([]byte("abc"), "/x/a.txt", ""))
	assert.Equal(t, h.Data([]byte("y/a.txt\nabc")), h.DataFile([]byte("abc"), "/x/y/a.txt", "/x"))
}

func TestFile(t *testing.T) {
	ctx := testContext(t)
	fs := afero.NewMemMapFs()
	h := New(fs, SHA256)

	writeTree(t, fs, "/one", map[string]string{"settings.json": `{"a":1}`})
	writeTree(t, fs, "/two/deeper", map[string]string{"settings.json": `{"a":1}`})
	writeTree(t, fs, "/three", map[string]string{"settings.json": `{"a":2}`})

	t.Run("location_independent", func(t *testing.T) {
		a, err := h.File(ctx, "/one/settings.json", "")
		require.NoError(t, err)
		b, err := h.File(ctx, "/two/deeper/settings.json", "")
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, h.DataFile([]byte(`{"a":1}`), "/one/settings.json", ""), a)
	})

	t.Run("content_sensitive", func(t *testing.T) {
		a, err := h.File(ctx, "/one/settings.json", "")
		require.NoError(t, err)
		b, err := h.File(ctx, "/three/settings.json", "")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("name_sensitive", func(t *testing.T) {
		writeTree(t, fs, "/four", map[string]string{"other.json": `{"a":1}`})
		a, err := h.File(ctx, "/one/settings.json", "")
		require.NoError(t, err)
		b, err := h.File(ctx, "/four/other.json", "")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := h.File(ctx, "/nowhere/settings.json", "")
		require.Error(t, err)
		var ioe *files.IOError
		assert.True(t, errors.As(err, &ioe), "error should be an IOError")
	})
}

func TestDirectory(t *testing.T) {
	ctx := testContext(t)

	t.Run("order_independent", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		h := New(fs, SHA256)
		writeTree(t, fs, "/a", map[string]string{"z.json": "z", "m.json": "m", "sub/b.json": "b"})
		// same entries written in a different order
		writeTree(t, fs, "/b/root", map[string]string{"sub/b.json": "b", "m.json": "m"})
		writeTree(t, fs, "/b/root", map[string]string{"z.json": "z"})

		x, err := h.Directory(ctx, "/a", "", false)
		require.NoError(t, err)
		y, err := h.Directory(ctx, "/b/root", "", false)
		require.NoError(t, err)
		assert.Equal(t, x, y)
	})

	t.Run("content_sensitive", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		h := New(fs, SHA256)
		writeTree(t, fs, "/a", map[string]string{"sub/b.json": "b"})
		writeTree(t, fs, "/b", map[string]string{"sub/b.json": "c"})

		x, err := h.Directory(ctx, "/a", "", false)
		require.NoError(t, err)
		y, err := h.Directory(ctx, "/b", "", false)
		require.NoError(t, err)
		assert.NotEqual(t, x, y)
	})

	t.Run("marker_only_equals_empty", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		h := New(fs, SHA256)
		writeTree(t, fs, "/marked", map[string]string{files.MarkerName: "\n"})
		writeTree(t, fs, "/empty", nil)

		x, err := h.Directory(ctx, "/marked", "", true)
		require.NoError(t, err)
		y, err := h.Directory(ctx, "/empty", "", true)
		require.NoError(t, err)
		assert.Equal(t, x, y)

		z, err := h.Directory(ctx, "/marked", "", false)
		require.NoError(t, err)
		assert.NotEqual(t, x, z, "marker is hashed when not skipped")
	})

	t.Run("nested_markers_are_hashed", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		h := New(fs, SHA256)
		writeTree(t, fs, "/a", map[string]string{"sub/x.json": "x"})
		writeTree(t, fs, "/b", map[string]string{"sub/x.json": "x", "sub/" + files.MarkerName: "\n"})

		x, err := h.Directory(ctx, "/a", "", true)
		require.NoError(t, err)
		y, err := h.Directory(ctx, "/b", "", true)
		require.NoError(t, err)
		assert.NotEqual(t, x, y)
	})

	t.Run("missing_directory", func(t *testing.T) {
		h := New(afero.NewMemMapFs(), SHA256)
		_, err := h.Directory(ctx, "/nowhere", "", true)
		require.Error(t, err)
		var ioe *files.IOError
		assert.True(t, errors.As(err, &ioe))
	})
}

func TestAlgorithm(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		want          Algorithm
		expectedError string
	}{
		{name: "default", input: "", want: SHA256},
		{name: "sha256", input: "sha256", want: SHA256},
		{name: "blake3_uppercase", input: "BLAKE3", want: BLAKE3},
		{name: "unknown", input: "md5", expectedError: `unknown hash algorithm "md5"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("blake3_differs_from_sha256", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		a := New(fs, SHA256).Data([]byte("extensions"))
		b := New(fs, BLAKE3).Data([]byte("extensions"))
		assert.Len(t, b, 64, "blake3 digests are 32 bytes hex encoded")
		assert.NotEqual(t, a, b)
		assert.Regexp(t, "^[0-9a-f]+$", b)
	})
}
