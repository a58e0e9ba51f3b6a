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

package ecmascript

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/Comcast/flange/core"
)

func interpreters() core.InterpretersMap {
	is := core.NewInterpretersMap()
	is["ecmascript"] = NewInterpreter()
	return is
}

func TestCreatorSource(t *testing.T) {
	ctx := context.Background()

	src := &core.CreatorSource{
		Interpreter: "ecmascript",
		Source:      `return {type: "SET_COUNT", payload: _.args[0]};`,
	}

	creator, err := src.Compile(ctx, interpreters())
	if err != nil {
		t.Fatal(err)
	}

	action, err := creator(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]interface{}{"type": "SET_COUNT", "payload": float64(5)}
	if !reflect.DeepEqual(action, want) {
		t.Fatalf("got %#v", action)
	}
}

func TestCreatorSourceNoArgs(t *testing.T) {
	ctx := context.Background()

	src := &core.CreatorSource{
		Interpreter: "ecmascript",
		Source:      `return {type: "count/increment"};`,
	}

	creator, err := src.Compile(ctx, interpreters())
	if err != nil {
		t.Fatal(err)
	}

	action, err := creator(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(action, map[string]interface{}{"type": "count/increment"}) {
		t.Fatalf("got %#v", action)
	}
}

func TestReducerSource(t *testing.T) {
	ctx := context.Background()

	src := &core.ReducerSource{
		Interpreter: "ecmascript",
		Source: `
var state = _.state || {count: 0};
switch (_.action.type) {
case "count/increment":
    return {count: state.count + 1};
case "SET_COUNT":
    return {count: _.action.payload};
default:
    return state;
}
`,
	}

	reducer, err := src.Compile(ctx, interpreters())
	if err != nil {
		t.Fatal(err)
	}

	state, err := reducer.Reduce(ctx, nil, map[string]interface{}{"type": "count/increment"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(state, map[string]interface{}{"count": float64(1)}) {
		t.Fatalf("got %#v", state)
	}

	state, err = reducer.Reduce(ctx, state, map[string]interface{}{"type": "SET_COUNT", "payload": 42})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(state, map[string]interface{}{"count": float64(42)}) {
		t.Fatalf("got %#v", state)
	}
}

func TestScriptedStore(t *testing.T) {
	ctx := context.Background()

	is := interpreters()

	rs := &core.ReducerSource{
		Interpreter: "ecmascript",
		Source: `
var state = _.state || {count: 0};
if (_.action.type == "count/increment") {
    return {count: state.count + 1};
}
return state;
`,
	}
	reducer, err := rs.Compile(ctx, is)
	if err != nil {
		t.Fatal(err)
	}

	store, err := core.NewStore(reducer, map[string]interface{}{"count": float64(0)})
	if err != nil {
		t.Fatal(err)
	}

	cs := &core.CreatorSource{
		Interpreter: "ecmascript",
		Source:      `return {type: "count/increment"};`,
	}
	creator, err := cs.Compile(ctx, is)
	if err != nil {
		t.Fatal(err)
	}

	bound, err := core.Bind(core.Creators{"incrementCount": creator}, store.Dispatch)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = bound["incrementCount"](ctx); err != nil {
		t.Fatal(err)
	}

	state := store.State().(map[string]interface{})
	if state["count"] != float64(1) {
		t.Fatalf("count is %v", state["count"])
	}
}

func TestEnvironmentIsACopy(t *testing.T) {
	ctx := context.Background()

	src := &core.ReducerSource{
		Interpreter: "ecmascript",
		Source: `
_.state.count = 999;
return {count: _.state.count};
`,
	}
	reducer, err := src.Compile(ctx, interpreters())
	if err != nil {
		t.Fatal(err)
	}

	state := map[string]interface{}{"count": float64(0)}
	if _, err = reducer.Reduce(ctx, state, map[string]interface{}{"type": "x"}); err != nil {
		t.Fatal(err)
	}
	if state["count"] != float64(0) {
		t.Fatal("the code mutated the caller's state")
	}
}

func TestBadSource(t *testing.T) {
	ctx := context.Background()

	i := NewInterpreter()
	if _, err := i.Compile(ctx, `return {`); err == nil {
		t.Fatal("expected a compile error")
	}
	if _, err := i.Compile(ctx, 42); err == nil {
		t.Fatal("expected a source type error")
	}
}

func TestInterrupt(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	_, err := i.Exec(ctx, nil, `for (;;) {}`, nil)
	if err != Interrupted {
		t.Fatalf("got %v", err)
	}
}

func TestCronNext(t *testing.T) {
	ctx := context.Background()

	i := NewInterpreter()
	v, err := i.Exec(ctx, nil, `return _.cronNext("* * * * *");`, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, is := v.(string)
	if !is {
		t.Fatalf("got %#v", v)
	}
	when, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Fatal(err)
	}
	if !when.After(time.Now().Add(-time.Minute)) {
		t.Fatalf("suspicious next time %v", when)
	}
}

func TestInterpreterNotFound(t *testing.T) {
	ctx := context.Background()

	src := &core.CreatorSource{
		Interpreter: "fortran",
		Source:      `return {type: "NOPE"};`,
	}
	if _, err := src.Compile(ctx, interpreters()); err != core.InterpreterNotFound {
		t.Fatalf("got %v", err)
	}
}
