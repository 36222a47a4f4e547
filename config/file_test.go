// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

type fsFunc func(string) (fs.File, error)

func (f fsFunc) Open(path string) (fs.File, error) {
	return f(path)
}

func TestFileReader_Read(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the fs.FS fails to open the file", func(t *testing.T) {
			openErr := errors.New("failed to open")
			fs := fsFunc(func(s string) (fs.File, error) {
				return nil, openErr
			})

			r := NewFileReader(fs, "config.yaml")
			_, err := io.ReadAll(r)
			if !assert.ErrorIs(t, err, openErr) {
				return
			}
		})

		t.Run("if Read is called again after the open failed", func(t *testing.T) {
			openErr := errors.New("failed to open")
			fs := fsFunc(func(s string) (fs.File, error) {
				return nil, openErr
			})

			r := NewFileReader(fs, "config.yaml")
			_, _ = r.Read(make([]byte, 1))
			_, err := r.Read(make([]byte, 1))
			if !assert.ErrorIs(t, err, openErr) {
				return
			}
		})
	})
}

func TestFileReader_Close(t *testing.T) {
	t.Run("will not return an error", func(t *testing.T) {
		t.Run("if Close is called before the underlying file has been opened", func(t *testing.T) {
			fs := fsFunc(func(s string) (fs.File, error) {
				return nil, nil
			})

			r := NewFileReader(fs, "config.yaml")
			err := r.Close()
			if !assert.Nil(t, err) {
				return
			}
		})

		t.Run("if the open failed with a typed nil file", func(t *testing.T) {
			openErr := errors.New("failed to open")
			fs := fsFunc(func(s string) (fs.File, error) {
				var f *os.File
				return f, openErr
			})

			r := NewFileReader(fs, "config.yaml")
			_, err := io.ReadAll(r)
			if !assert.ErrorIs(t, err, openErr) {
				return
			}

			err = r.Close()
			if !assert.Nil(t, err) {
				return
			}
		})
	})
}

func TestFile_Apply(t *testing.T) {
	fsys := fstest.MapFS{
		"settings.yaml": &fstest.MapFile{Data: []byte("DEBUG: true\nWORKERS: 4\n")},
		"settings.yml":  &fstest.MapFile{Data: []byte("DEBUG: true\nWORKERS: 4\n")},
		"settings.json": &fstest.MapFile{Data: []byte(`{"DEBUG": true, "WORKERS": 4}`)},
		"settings.toml": &fstest.MapFile{Data: []byte("DEBUG = true\nWORKERS = 4\n")},
		"settings.env":  &fstest.MapFile{Data: []byte("DEBUG=true\nWORKERS=4\n")},
		"settings.cfg":  &fstest.MapFile{Data: []byte("DEBUG=true\nWORKERS=4\n")},
	}

	t.Run("will pick the decoder from the extension", func(t *testing.T) {
		testCases := []struct {
			Name    string
			Path    string
			Workers any
		}{
			{Name: "yaml", Path: "settings.yaml", Workers: int64(4)},
			{Name: "yml", Path: "settings.yml", Workers: int64(4)},
			{Name: "json", Path: "settings.json", Workers: int64(4)},
			{Name: "toml", Path: "settings.toml", Workers: int64(4)},
			{Name: "env", Path: "settings.env", Workers: int64(4)},
			{Name: "unknown extension", Path: "settings.cfg", Workers: int64(4)},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				src := FromFile(fsys, testCase.Path)
				if !assert.Equal(t, testCase.Path, src.Path()) {
					return
				}

				s, err := Read(src)
				if !assert.Nil(t, err) {
					return
				}
				if !assert.Equal(t, true, s.Get("DEBUG")) {
					return
				}
				if !assert.Equal(t, testCase.Workers, s.Get("WORKERS")) {
					return
				}
			})
		}
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the file does not exist", func(t *testing.T) {
			_, err := Read(FromFile(fsys, "missing.yaml"))
			if !assert.ErrorIs(t, err, fs.ErrNotExist) {
				return
			}
		})

		t.Run("if the file does not exist on the OS file system", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.yaml")

			_, err := Read(FromFile(OS, path))
			if !assert.ErrorIs(t, err, fs.ErrNotExist) {
				return
			}
			if !assert.Equal(t, "open "+path+": no such file or directory", err.Error()) {
				return
			}
		})

		t.Run("if the file contents are invalid", func(t *testing.T) {
			fsys := fstest.MapFS{
				"broken.json": &fstest.MapFile{Data: []byte(`{`)},
			}

			_, err := Read(FromFile(fsys, "broken.json"))

			var ierr InvalidJsonError
			if !assert.ErrorAs(t, err, &ierr) {
				return
			}
		})
	})

	t.Run("will read absolute paths", func(t *testing.T) {
		t.Run("if the OS file system is used", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.yaml")
			err := os.WriteFile(path, []byte("SECRET_KEY: abc\n"), 0o600)
			if !assert.Nil(t, err) {
				return
			}

			s, err := Read(FromFile(OS, path))
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "abc", s.Get("SECRET_KEY")) {
				return
			}
		})
	})
}
