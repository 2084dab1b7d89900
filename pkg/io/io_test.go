package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pinboard/pkg/board"
	perrors "github.com/matzehuels/pinboard/pkg/errors"
)

const boardJSON = `{
  "config": {"columns": 3, "width": 960},
  "items": [
    {"id": "p1", "title": "Sunrise", "height": 240},
    {"id": "p2", "image": "photos/lake.jpg"},
    {"id": "p3", "color": "#e0a458", "height": 90}
  ]
}`

const boardTOML = `
[config]
columns = 3
width = 960

[[items]]
id = "p1"
title = "Sunrise"
height = 240.0

[[items]]
id = "p2"
image = "photos/lake.jpg"
`

func TestReadJSON(t *testing.T) {
	f, err := ReadJSON(strings.NewReader(boardJSON), board.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, f.Config.Columns)
	assert.Equal(t, 960.0, f.Config.Width)
	assert.Equal(t, board.DefaultConfig().Padding, f.Config.Padding, "missing fields keep defaults")
	require.Len(t, f.Items, 3)
	require.NotNil(t, f.Items[0].Height)
	assert.Equal(t, 240.0, *f.Items[0].Height)
	assert.Nil(t, f.Items[1].Height, "item p2 height should be unknown")
}

func TestReadTOML(t *testing.T) {
	f, err := ReadTOML(strings.NewReader(boardTOML), board.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, f.Config.Columns)
	require.Len(t, f.Items, 2)
	assert.Equal(t, "photos/lake.jpg", f.Items[1].Image)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  perrors.Code
	}{
		{"malformed", `{"items": [`, perrors.ErrCodeInvalidFormat},
		{"unknown field", `{"items": [], "colour": "red"}`, perrors.ErrCodeInvalidFormat},
		{"missing id", `{"items": [{"title": "x"}]}`, perrors.ErrCodeInvalidInput},
		{"duplicate id", `{"items": [{"id": "a"}, {"id": "a"}]}`, perrors.ErrCodeInvalidInput},
		{"traversal", `{"items": [{"id": "a", "image": "../../etc/passwd"}]}`, perrors.ErrCodeInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ReadJSON(strings.NewReader(tt.input), board.DefaultConfig())
			require.Error(t, err)
			assert.Nil(t, f)
			assert.Equal(t, tt.code, perrors.GetCode(err), "%v", err)
		})
	}
}

func TestReadTOMLUnknownKey(t *testing.T) {
	_, err := ReadTOML(strings.NewReader("colour = \"red\"\n"), board.DefaultConfig())
	assert.Equal(t, perrors.ErrCodeInvalidFormat, perrors.GetCode(err))
}

func TestImportBoard(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "board.json")
	tomlPath := filepath.Join(dir, "board.toml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(boardJSON), 0o644))
	require.NoError(t, os.WriteFile(tomlPath, []byte(boardTOML), 0o644))

	for _, path := range []string{jsonPath, tomlPath} {
		f, err := ImportBoard(path, board.DefaultConfig())
		require.NoError(t, err, path)
		assert.Equal(t, dir, f.Dir)
		assert.Equal(t, filepath.Join(dir, "photos", "lake.jpg"), f.ImagePath(f.Items[1]))
		assert.Empty(t, f.ImagePath(f.Items[0]), "item without image")
	}

	_, err := ImportBoard(filepath.Join(dir, "missing.json"), board.DefaultConfig())
	assert.Equal(t, perrors.ErrCodeFileNotFound, perrors.GetCode(err))
}

func TestWriteLayout(t *testing.T) {
	f, err := ReadJSON(strings.NewReader(boardJSON), board.DefaultConfig())
	require.NoError(t, err)
	b, err := f.Board()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteLayout(b.Snapshot(), &buf))

	var decoded board.Layout
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded), "output is not valid JSON")
	assert.Equal(t, 3, decoded.Columns)
	require.Len(t, decoded.Items, 3)
	assert.Equal(t, 640+decoded.Padding, decoded.Items[2].Frame.X)

	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, ExportLayout(b.Snapshot(), path))
	_, err = os.Stat(path)
	assert.NoError(t, err, "layout file not written")
}
