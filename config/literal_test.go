// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLiteral(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected any
	}{
		{name: "integer", input: "42", expected: int64(42)},
		{name: "negative integer", input: "-7", expected: int64(-7)},
		{name: "surrounding whitespace", input: " 42\n", expected: int64(42)},
		{name: "integer beyond int64", input: "92233720368547758070", expected: 92233720368547758070.0},
		{name: "exponent", input: "1e3", expected: 1000.0},
		{name: "number out of float range", input: "1e999", expected: "1e999"},
		{name: "trailing data", input: "42 43", expected: "42 43"},
		{name: "trailing garbage", input: "true!", expected: "true!"},
		{name: "bare word", input: "not json", expected: "not json"},
		{name: "url", input: "redis://localhost:6379", expected: "redis://localhost:6379"},
		{name: "nested numbers", input: `{"a": [1, 2.5]}`, expected: map[string]any{"a": []any{int64(1), 2.5}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Literal(tc.input))
		})
	}
}
