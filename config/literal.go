// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"encoding/json"
	"io"
	"strings"
)

// Literal parses s as a single JSON literal. If s is not valid JSON,
// s itself is returned unmodified.
//
// Integral numbers are returned as int64, all other numbers as float64.
func Literal(s string) any {
	v, ok := decodeLiteral(s)
	if !ok {
		return s
	}
	return v
}

func decodeLiteral(s string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	err := dec.Decode(&v)
	if err != nil {
		return nil, false
	}

	// trailing data means s was more than one literal
	_, err = dec.Token()
	if err != io.EOF {
		return nil, false
	}
	return normalizeNumbers(v)
}

func normalizeNumbers(v any) (any, bool) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		f, err := x.Float64()
		if err != nil {
			return nil, false
		}
		return f, true
	case []any:
		for i, e := range x {
			ne, ok := normalizeNumbers(e)
			if !ok {
				return nil, false
			}
			x[i] = ne
		}
		return x, true
	case map[string]any:
		for k, e := range x {
			ne, ok := normalizeNumbers(e)
			if !ok {
				return nil, false
			}
			x[k] = ne
		}
		return x, true
	default:
		return v, true
	}
}
