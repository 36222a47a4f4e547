// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"slices"

	"github.com/z5labs/appconfig/config/key"
)

// Map is an ordinary map[string]any but implements the Source interface.
type Map map[string]any

// Apply implements the Source interface. It recursively walks the underlying
// map to find key value pairs to set on the given store. Keys are visited in
// sorted order so the resulting [Settings] order is stable.
func (m Map) Apply(store Store) error {
	return walkMap(m, store, nil)
}

func walkMap(m map[string]any, store Store, chain key.Chain) error {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)

	for _, k := range names {
		switch x := m[k].(type) {
		case map[string]any:
			err := walkMap(x, store, appendChain(chain, key.Name(k)))
			if err != nil {
				return err
			}
		default:
			err := store.Set(keyOf(chain, key.Name(k)), x)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// keyOf keeps top level keys as a plain key.Name.
func keyOf(chain key.Chain, name key.Name) key.Keyer {
	if len(chain) == 0 {
		return name
	}
	return appendChain(chain, name)
}

func appendChain(chain key.Chain, name key.Name) key.Chain {
	c := make(key.Chain, len(chain), len(chain)+1)
	copy(c, chain)
	return append(c, name)
}
