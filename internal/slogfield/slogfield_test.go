// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package slogfield

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttrs(t *testing.T) {
	testCases := []struct {
		Name  string
		Attr  slog.Attr
		Key   string
		Value slog.Value
	}{
		{
			Name:  "Error",
			Attr:  Error(errors.New("boom")),
			Key:   "error",
			Value: slog.AnyValue(errors.New("boom")),
		},
		{
			Name:  "String",
			Attr:  String("stage", "defaults"),
			Key:   "stage",
			Value: slog.StringValue("defaults"),
		},
		{
			Name:  "Int",
			Attr:  Int("count", 3),
			Key:   "count",
			Value: slog.IntValue(3),
		},
		{
			Name:  "Bool",
			Attr:  Bool("found", true),
			Key:   "found",
			Value: slog.BoolValue(true),
		},
		{
			Name:  "Path",
			Attr:  Path("settings.yaml"),
			Key:   "path",
			Value: slog.StringValue("settings.yaml"),
		},
		{
			Name:  "Key",
			Attr:  Key("MAIL_SERVER"),
			Key:   "key",
			Value: slog.StringValue("MAIL_SERVER"),
		},
		{
			Name:  "Keys",
			Attr:  Keys([]string{"A", "B"}),
			Key:   "keys",
			Value: slog.AnyValue([]string{"A", "B"}),
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			if !assert.Equal(t, testCase.Key, testCase.Attr.Key) {
				return
			}
			if !assert.Equal(t, testCase.Value.Any(), testCase.Attr.Value.Any()) {
				return
			}
		})
	}
}
