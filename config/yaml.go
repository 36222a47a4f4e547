// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"io"

	"github.com/z5labs/appconfig/config/key"
	"github.com/z5labs/appconfig/internal/try"

	"gopkg.in/yaml.v3"
)

// Yaml represents a Source where its underlying format is YAML.
type Yaml struct {
	r io.Reader
}

// FromYaml returns a source which will apply its config
// from YAML values parsed from the given io.Reader.
func FromYaml(r io.Reader) Yaml {
	return Yaml{r: r}
}

// InvalidYamlError occurs if the underlying io.Reader contains invalid YAML.
type InvalidYamlError struct {
	cause error
}

// Error implements the error interface.
func (e InvalidYamlError) Error() string {
	return fmt.Sprintf("invalid yaml: %s", e.cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e InvalidYamlError) Unwrap() error {
	return e.cause
}

// Apply implements the Source interface. Keys are applied in document
// order and integers are stored as int64, matching the other sources.
func (src Yaml) Apply(store Store) (err error) {
	c, _ := src.r.(io.Closer)
	defer try.Close(&err, c)

	b, err := io.ReadAll(src.r)
	if err != nil {
		return err
	}

	var doc yaml.Node
	err = yaml.Unmarshal(b, &doc)
	if err != nil {
		return InvalidYamlError{cause: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}

	root := resolveAlias(doc.Content[0])
	if root.ShortTag() == "!!null" {
		return nil
	}
	if root.Kind != yaml.MappingNode {
		return InvalidYamlError{
			cause: fmt.Errorf("line %d: expected a mapping but found %s", root.Line, root.ShortTag()),
		}
	}
	return walkYaml(root, store, nil)
}

// walkYaml applies merge keys before the explicit keys of a mapping,
// so explicit keys always win.
func walkYaml(n *yaml.Node, store Store, chain key.Chain) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].ShortTag() != "!!merge" {
			continue
		}
		err := walkYamlMerge(resolveAlias(n.Content[i+1]), store, chain)
		if err != nil {
			return err
		}
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		kn := n.Content[i]
		if kn.ShortTag() == "!!merge" {
			continue
		}
		vn := resolveAlias(n.Content[i+1])

		name := key.Name(kn.Value)

		if vn.Kind == yaml.MappingNode {
			err := walkYaml(vn, store, appendChain(chain, name))
			if err != nil {
				return err
			}
			continue
		}

		var v any
		err := vn.Decode(&v)
		if err != nil {
			return InvalidYamlError{cause: err}
		}

		err = store.Set(keyOf(chain, name), yamlInts(v))
		if err != nil {
			return err
		}
	}
	return nil
}

func walkYamlMerge(n *yaml.Node, store Store, chain key.Chain) error {
	switch n.Kind {
	case yaml.MappingNode:
		return walkYaml(n, store, chain)
	case yaml.SequenceNode:
		// the first mapping in the list wins
		for i := len(n.Content) - 1; i >= 0; i-- {
			err := walkYamlMerge(resolveAlias(n.Content[i]), store, chain)
			if err != nil {
				return err
			}
		}
		return nil
	default:
		return InvalidYamlError{
			cause: fmt.Errorf("line %d: merge value must be a mapping", n.Line),
		}
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func yamlInts(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case []any:
		for i, e := range x {
			x[i] = yamlInts(e)
		}
		return x
	case map[string]any:
		for k, e := range x {
			x[k] = yamlInts(e)
		}
		return x
	default:
		return v
	}
}
