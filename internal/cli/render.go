// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/z5labs/appconfig/config"

	"gopkg.in/yaml.v3"
)

type entry struct {
	key   string
	value any
}

var secretMarkers = []string{"PASSWORD", "SECRET", "TOKEN", "API_KEY", "DSN"}

const masked = "****"

func entries(s *config.Settings, mask bool) []entry {
	es := make([]entry, 0, s.Len())
	for k, v := range s.All() {
		if mask {
			v = maskValue(k, v)
		}
		es = append(es, entry{key: k, value: v})
	}
	return es
}

// maskValue returns v with every secret replaced. Nested tables and
// lists are copied, never modified in place.
func maskValue(k string, v any) any {
	if v == nil {
		return nil
	}
	if isSecret(k) {
		return masked
	}
	return maskNested(v)
}

func isSecret(k string) bool {
	upper := strings.ToUpper(k)
	for _, marker := range secretMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

func maskNested(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, sub := range x {
			m[k] = maskValue(k, sub)
		}
		return m
	case []any:
		l := make([]any, len(x))
		for i, sub := range x {
			l[i] = maskNested(sub)
		}
		return l
	case string:
		return redactURL(x)
	default:
		return v
	}
}

// redactURL hides the password of a connection url.
func redactURL(str string) string {
	if !strings.Contains(str, "://") {
		return str
	}
	u, err := url.Parse(str)
	if err != nil || u.User == nil {
		return str
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return str
	}
	return u.Redacted()
}

type encoder func(io.Writer, []entry) error

var encoders = map[string]encoder{
	"yaml": encodeYaml,
	"json": encodeJson,
}

func encodeYaml(w io.Writer, es []entry) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range es {
		var k, v yaml.Node
		err := k.Encode(e.key)
		if err != nil {
			return err
		}
		err = v.Encode(e.value)
		if err != nil {
			return err
		}
		doc.Content = append(doc.Content, &k, &v)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(doc)
	if err != nil {
		return err
	}
	return enc.Close()
}

func encodeJson(w io.Writer, es []entry) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range es {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")

		k, err := json.Marshal(e.key)
		if err != nil {
			return err
		}
		v, err := json.MarshalIndent(e.value, "  ", "  ")
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
	}
	if len(es) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}
