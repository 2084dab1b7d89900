package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pinboard/pkg/board"
	perrors "github.com/matzehuels/pinboard/pkg/errors"
)

// File is the decoded content of a board file.
type File struct {
	Config board.Config `json:"config" toml:"config"`
	Items  []board.Item `json:"items" toml:"items"`

	// Dir is the directory image paths are relative to. It is set by
	// [ImportBoard] and left empty by the stream readers.
	Dir string `json:"-" toml:"-"`
}

// ReadJSON decodes a JSON board from r. Config fields missing from the input
// keep the values from defaults.
//
// ReadJSON returns an INVALID_FORMAT error if the JSON is malformed and an
// INVALID_INPUT error if an item fails validation or two items share an ID.
// ReadJSON does not close r.
func ReadJSON(r io.Reader, defaults board.Config) (*File, error) {
	f := &File{Config: defaults}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode board json")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// ReadTOML decodes a TOML board from r. It behaves like [ReadJSON].
func ReadTOML(r io.Reader, defaults board.Config) (*File, error) {
	f := &File{Config: defaults}
	md, err := toml.NewDecoder(r).Decode(f)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode board toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "unknown board keys: %v", undecoded)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// ImportBoard reads the board file at path. Files ending in .toml are read
// with [ReadTOML], everything else with [ReadJSON]. The returned File's Dir
// is the directory containing path.
func ImportBoard(path string, defaults board.Config) (*File, error) {
	fh, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "board file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()

	var f *File
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		f, err = ReadTOML(fh, defaults)
	} else {
		f, err = ReadJSON(fh, defaults)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Dir = filepath.Dir(path)
	return f, nil
}

// Board builds a [board.Board] from the file.
func (f *File) Board() (*board.Board, error) {
	return board.New(f.Items, f.Config)
}

// ImagePath resolves an item's image path against the file's directory.
func (f *File) ImagePath(it board.Item) string {
	if it.Image == "" {
		return ""
	}
	return filepath.Join(f.Dir, filepath.FromSlash(it.Image))
}

// Validate checks every item and rejects duplicate IDs.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Items))
	for i, it := range f.Items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if seen[it.ID] {
			return perrors.New(perrors.ErrCodeInvalidInput, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}
