/* Copyright 2025 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package catalog reads and compiles action catalogs.
//
// A catalog is a YAML document that names a reducer source, some
// creator sources, an initial state, and (since this is a repo of
// lessons) some prose about what the catalog demonstrates.  The demo
// service loads a directory of catalogs and makes a store for each.
package catalog

import (
	"context"
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/Comcast/flange/core"

	"github.com/jsccast/yaml"
)

var (
	// NoReducerSource occurs when a catalog has no reducer.
	NoReducerSource = errors.New("catalog has no reducer")
)

// BadCreator occurs when a creator source in a catalog fails to
// compile.
type BadCreator struct {
	Catalog string
	Name    string
	Err     error
}

func (e *BadCreator) Error() string {
	return `creator "` + e.Name + `" in catalog "` + e.Catalog + `": ` + e.Err.Error()
}

// Catalog is the authored form: sources, not functions.
type Catalog struct {
	// Name is the catalog's id.  ReadDir fills it from the
	// filename when the document doesn't say.
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc is the lesson prose (markdown).  See tools for
	// rendering.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Initial is the store's initial state.
	Initial interface{} `json:"initial,omitempty" yaml:",omitempty"`

	Reducer *core.ReducerSource `json:"reducer" yaml:"reducer"`

	Creators map[string]*core.CreatorSource `json:"creators" yaml:"creators"`
}

// Copy makes a mostly shallow copy.  The source maps are fresh; the
// sources themselves are shared.
func (c *Catalog) Copy() *Catalog {
	if c == nil {
		return nil
	}
	creators := make(map[string]*core.CreatorSource, len(c.Creators))
	for name, cs := range c.Creators {
		creators[name] = cs.Copy()
	}
	return &Catalog{
		Name:     c.Name,
		Doc:      c.Doc,
		Initial:  c.Initial,
		Reducer:  c.Reducer.Copy(),
		Creators: creators,
	}
}

// Compiled is a Catalog whose sources have been run through their
// interpreters.
type Compiled struct {
	Catalog  *Catalog
	Reducer  core.Reducer
	Creators core.Creators
}

// Compile compiles the catalog's reducer and creators using the
// given interpreters (which default to core.DefaultInterpreters).
func (c *Catalog) Compile(ctx context.Context, interpreters core.InterpretersMap) (*Compiled, error) {
	if c.Reducer == nil {
		return nil, NoReducerSource
	}

	reducer, err := c.Reducer.Compile(ctx, interpreters)
	if err != nil {
		return nil, err
	}

	creators := make(core.Creators, len(c.Creators))
	for name, cs := range c.Creators {
		creator, err := cs.Compile(ctx, interpreters)
		if err != nil {
			return nil, &BadCreator{c.Name, name, err}
		}
		creators[name] = creator
	}

	return &Compiled{
		Catalog:  c,
		Reducer:  reducer,
		Creators: creators,
	}, nil
}

// NewStore makes a store from the compiled catalog, seeded with the
// catalog's initial state.
func (cc *Compiled) NewStore(middleware ...core.Middleware) (*core.Store, error) {
	return core.NewStore(cc.Reducer, cc.Catalog.Initial, middleware...)
}

// Read reads one catalog from a YAML file.
func Read(filename string) (*Catalog, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err = yaml.Unmarshal(bs, &c); err != nil {
		return nil, err
	}
	if c.Name == "" {
		name := filepath.Base(filename)
		c.Name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return &c, nil
}

// ReadDir reads all the .yaml catalogs in a directory, keyed by
// catalog name.
func ReadDir(dirname string) (map[string]*Catalog, error) {
	entries, err := ioutil.ReadDir(dirname)
	if err != nil {
		return nil, err
	}
	acc := make(map[string]*Catalog, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		c, err := Read(filepath.Join(dirname, name))
		if err != nil {
			return nil, err
		}
		acc[c.Name] = c
	}
	return acc, nil
}
