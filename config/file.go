// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
)

// OS is an [fs.FS] backed directly by the operating system. Unlike
// [os.DirFS] it accepts absolute and relative paths as they are.
var OS fs.FS = osFS{}

type osFS struct{}

func (osFS) Open(name string) (fs.File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// FileReader is an io.Reader that handles opening a file for reading automatically.
type FileReader struct {
	path string

	openOnce sync.Once
	openErr  error
	fs       fs.FS
	file     io.ReadCloser
}

// NewFileReader configures a FileReader.
func NewFileReader(fs fs.FS, path string) *FileReader {
	return &FileReader{
		path: path,
		fs:   fs,
	}
}

// Read implements the Read interface.
func (r *FileReader) Read(b []byte) (int, error) {
	r.openOnce.Do(func() {
		r.file, r.openErr = r.fs.Open(r.path)
	})
	if r.openErr != nil {
		return 0, r.openErr
	}
	return r.file.Read(b)
}

// Close implements the io.Closer interface.
func (r *FileReader) Close() error {
	if r.openErr != nil || r.file == nil {
		return nil
	}

	err := r.file.Close()
	r.file = nil
	return err
}

// File represents a Source backed by a single settings file whose
// format is chosen from its extension.
type File struct {
	fs   fs.FS
	path string
}

// FromFile returns a Source which will apply its config from the file at
// the given path within fsys. Supported formats are YAML (.yaml, .yml),
// JSON (.json), TOML (.toml) and key=value for any other extension.
func FromFile(fsys fs.FS, path string) File {
	return File{
		fs:   fsys,
		path: path,
	}
}

// Path returns the path of the underlying file.
func (src File) Path() string {
	return src.path
}

// Apply implements the Source interface.
func (src File) Apply(store Store) error {
	r := NewFileReader(src.fs, src.path)
	switch strings.ToLower(path.Ext(src.path)) {
	case ".yaml", ".yml":
		return FromYaml(r).Apply(store)
	case ".json":
		return FromJson(r).Apply(store)
	case ".toml":
		return FromToml(r).Apply(store)
	default:
		return FromKeyValue(r).Apply(store)
	}
}
