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

package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// recorder is a Dispatch stub that remembers what it saw and returns
// a canned value.
type recorder struct {
	actions []interface{}
	ret     interface{}
	err     error
}

func (r *recorder) dispatch(ctx context.Context, action interface{}) (interface{}, error) {
	r.actions = append(r.actions, action)
	if r.ret != nil || r.err != nil {
		return r.ret, r.err
	}
	return action, nil
}

func literal(action interface{}) Creator {
	return func(ctx context.Context, args ...interface{}) (interface{}, error) {
		return action, nil
	}
}

func TestBindKeys(t *testing.T) {
	creators := Creators{
		"addItem":        literal(map[string]interface{}{"type": "ADD_ITEM"}),
		"incrementCount": literal(map[string]interface{}{"type": "count/increment"}),
		"reset":          literal(map[string]interface{}{"type": "RESET"}),
	}

	d := &recorder{}
	bound, err := Bind(creators, d.dispatch)
	if err != nil {
		t.Fatal(err)
	}
	if len(bound) != len(creators) {
		t.Fatalf("got %d entries; wanted %d", len(bound), len(creators))
	}
	for name := range creators {
		if _, have := bound[name]; !have {
			t.Fatalf(`bound map lost "%s"`, name)
		}
	}
}

func TestBindDispatches(t *testing.T) {
	ctx := context.Background()

	want := map[string]interface{}{"type": "ADD_ITEM"}
	d := &recorder{}
	bound, err := Bind(Creators{"addItem": literal(want)}, d.dispatch)
	if err != nil {
		t.Fatal(err)
	}

	got, err := bound["addItem"](ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.actions) != 1 {
		t.Fatalf("dispatch called %d times", len(d.actions))
	}
	if !reflect.DeepEqual(d.actions[0], want) {
		t.Fatalf("dispatched %#v", d.actions[0])
	}
	// The wrapper returns whatever dispatch returned.
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("wrapper returned %#v", got)
	}
}

func TestBindReturnsDispatchValue(t *testing.T) {
	ctx := context.Background()

	d := &recorder{ret: "receipt"}
	bound, err := Bind(Creators{
		"incrementCount": literal(map[string]interface{}{"type": "count/increment"}),
	}, d.dispatch)
	if err != nil {
		t.Fatal(err)
	}

	got, err := bound["incrementCount"](ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "receipt" {
		t.Fatalf("wrapper returned %#v instead of the dispatch result", got)
	}
	if !reflect.DeepEqual(d.actions[0], map[string]interface{}{"type": "count/increment"}) {
		t.Fatalf("dispatched %#v", d.actions[0])
	}
}

func TestBindForwardsArgs(t *testing.T) {
	ctx := context.Background()

	setCount := func(ctx context.Context, args ...interface{}) (interface{}, error) {
		return map[string]interface{}{
			"type":    "SET_COUNT",
			"payload": args[0],
		}, nil
	}

	d := &recorder{}
	bound, err := Bind(Creators{"setCount": setCount}, d.dispatch)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = bound["setCount"](ctx, 5); err != nil {
		t.Fatal(err)
	}

	want := map[string]interface{}{"type": "SET_COUNT", "payload": 5}
	if !reflect.DeepEqual(d.actions[0], want) {
		t.Fatalf("dispatched %#v; wanted %#v", d.actions[0], want)
	}
}

func TestBindDispatchError(t *testing.T) {
	ctx := context.Background()

	problem := errors.New("container said no")

	creatorCalls := 0
	creator := func(ctx context.Context, args ...interface{}) (interface{}, error) {
		creatorCalls++
		return map[string]interface{}{"type": "DOOMED"}, nil
	}

	d := &recorder{err: problem}
	bound, err := Bind(Creators{"doomed": creator}, d.dispatch)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = bound["doomed"](ctx); err != problem {
		t.Fatalf("got %v; wanted the dispatch error unmodified", err)
	}
	// No retry.
	if creatorCalls != 1 {
		t.Fatalf("creator called %d times", creatorCalls)
	}
	if len(d.actions) != 1 {
		t.Fatalf("dispatch called %d times", len(d.actions))
	}
}

func TestBindCreatorError(t *testing.T) {
	ctx := context.Background()

	problem := errors.New("creator blew up")
	creator := func(ctx context.Context, args ...interface{}) (interface{}, error) {
		return nil, problem
	}

	d := &recorder{}
	bound, err := Bind(Creators{"bad": creator}, d.dispatch)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = bound["bad"](ctx); err != problem {
		t.Fatalf("got %v; wanted the creator error unmodified", err)
	}
	// The descriptor never existed, so dispatch never ran.
	if len(d.actions) != 0 {
		t.Fatalf("dispatch called %d times", len(d.actions))
	}
}

func TestBindTwiceIndependent(t *testing.T) {
	ctx := context.Background()

	creators := Creators{"addItem": literal(map[string]interface{}{"type": "ADD_ITEM"})}
	d := &recorder{}

	first, err := Bind(creators, d.dispatch)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Bind(creators, d.dispatch)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = first["addItem"](ctx); err != nil {
		t.Fatal(err)
	}
	if _, err = second["addItem"](ctx); err != nil {
		t.Fatal(err)
	}

	if len(d.actions) != 2 {
		t.Fatalf("dispatch called %d times", len(d.actions))
	}
	if !reflect.DeepEqual(d.actions[0], d.actions[1]) {
		t.Fatalf("the two bound maps don't behave the same: %#v vs %#v",
			d.actions[0], d.actions[1])
	}
}

func TestBindNilCreator(t *testing.T) {
	d := &recorder{}
	_, err := Bind(Creators{"ghost": nil}, d.dispatch)
	if err == nil {
		t.Fatal("expected an eager configuration error")
	}
	nc, is := err.(*NilCreator)
	if !is {
		t.Fatalf("got a %T", err)
	}
	if nc.Name != "ghost" {
		t.Fatalf(`blamed "%s"`, nc.Name)
	}
}

func TestBindNilInputs(t *testing.T) {
	d := &recorder{}
	if _, err := Bind(nil, d.dispatch); err != NoCreators {
		t.Fatalf("got %v", err)
	}
	if _, err := Bind(Creators{}, nil); err != NoDispatch {
		t.Fatalf("got %v", err)
	}

	// An empty map is fine: you get an empty map back.
	bound, err := Bind(Creators{}, d.dispatch)
	if err != nil {
		t.Fatal(err)
	}
	if len(bound) != 0 {
		t.Fatalf("got %d entries", len(bound))
	}
}
