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

package catalog

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/Comcast/flange/core"
	_ "github.com/Comcast/flange/interpreters/ecmascript"
)

var counterYAML = `
name: counter
doc: |
  The smallest possible store: one number.
initial:
  count: 0
reducer:
  interpreter: ecmascript
  source: |
    var state = _.state || {count: 0};
    switch (_.action.type) {
    case "count/increment":
        return {count: state.count + 1};
    case "SET_COUNT":
        return {count: _.action.payload};
    default:
        return state;
    }
creators:
  incrementCount:
    interpreter: ecmascript
    source: |
      return {type: "count/increment"};
  setCount:
    interpreter: ecmascript
    source: |
      return {type: "SET_COUNT", payload: _.args[0]};
`

func writeCatalog(t *testing.T, dir, name, src string) string {
	filename := filepath.Join(dir, name)
	if err := ioutil.WriteFile(filename, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestReadAndCompile(t *testing.T) {
	ctx := context.Background()

	dir, err := ioutil.TempDir("", "flange-catalog")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	filename := writeCatalog(t, dir, "counter.yaml", counterYAML)

	c, err := Read(filename)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "counter" {
		t.Fatalf(`name is "%s"`, c.Name)
	}
	if c.Doc == "" {
		t.Fatal("lost the lesson prose")
	}

	compiled, err := c.Compile(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(compiled.Creators) != 2 {
		t.Fatalf("compiled %d creators", len(compiled.Creators))
	}

	store, err := compiled.NewStore()
	if err != nil {
		t.Fatal(err)
	}

	bound, err := core.Bind(compiled.Creators, store.Dispatch)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = bound["incrementCount"](ctx); err != nil {
		t.Fatal(err)
	}
	if _, err = bound["setCount"](ctx, 41); err != nil {
		t.Fatal(err)
	}
	if _, err = bound["incrementCount"](ctx); err != nil {
		t.Fatal(err)
	}

	state := store.State().(map[string]interface{})
	if state["count"] != float64(42) {
		t.Fatalf("count is %v", state["count"])
	}
}

func TestReadDir(t *testing.T) {
	dir, err := ioutil.TempDir("", "flange-catalog")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	writeCatalog(t, dir, "counter.yaml", counterYAML)
	writeCatalog(t, dir, "notes.txt", "not a catalog")

	cs, err := ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 1 {
		t.Fatalf("read %d catalogs", len(cs))
	}
	if _, have := cs["counter"]; !have {
		t.Fatal("no counter catalog")
	}
}

func TestNoReducer(t *testing.T) {
	c := &Catalog{Name: "broken"}
	if _, err := c.Compile(context.Background(), nil); err != NoReducerSource {
		t.Fatalf("got %v", err)
	}
}

func TestBadCreator(t *testing.T) {
	c := &Catalog{
		Name: "broken",
		Reducer: &core.ReducerSource{
			Interpreter: "ecmascript",
			Source:      `return _.state;`,
		},
		Creators: map[string]*core.CreatorSource{
			"oops": {
				Interpreter: "ecmascript",
				Source:      `return {`,
			},
		},
	}
	_, err := c.Compile(context.Background(), nil)
	bad, is := err.(*BadCreator)
	if !is {
		t.Fatalf("got %v", err)
	}
	if bad.Name != "oops" || bad.Catalog != "broken" {
		t.Fatalf(`blamed "%s" in "%s"`, bad.Name, bad.Catalog)
	}
}
