// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/z5labs/appconfig/config/key"
	"github.com/z5labs/appconfig/internal/try"

	"github.com/joho/godotenv"
)

// KeyValue represents a Source where its underlying format is
// KEY=value lines, as found in .env files.
type KeyValue struct {
	r io.Reader
}

// FromKeyValue returns a source which will apply its config from KEY=value
// lines parsed from the given io.Reader. Each value is parsed as a JSON
// literal, falling back to the raw string, the same as environment variables.
// Keys are applied in sorted order.
func FromKeyValue(r io.Reader) KeyValue {
	return KeyValue{r: r}
}

// InvalidKeyValueError occurs if the underlying io.Reader contains malformed lines.
type InvalidKeyValueError struct {
	cause error
}

// Error implements the error interface.
func (e InvalidKeyValueError) Error() string {
	return fmt.Sprintf("invalid key=value file: %s", e.cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e InvalidKeyValueError) Unwrap() error {
	return e.cause
}

// Apply implements the Source interface.
func (src KeyValue) Apply(store Store) (err error) {
	c, _ := src.r.(io.Closer)
	defer try.Close(&err, c)

	b, err := io.ReadAll(src.r)
	if err != nil {
		return err
	}

	m, err := godotenv.Parse(bytes.NewReader(b))
	if err != nil {
		return InvalidKeyValueError{cause: err}
	}

	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)

	for _, k := range names {
		err = store.Set(key.Name(k), Literal(m[k]))
		if err != nil {
			return err
		}
	}
	return nil
}
