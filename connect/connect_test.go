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

package connect

import (
	"context"
	"testing"

	"github.com/Comcast/flange/core"
)

func counterStore(t *testing.T) *core.Store {
	r := core.ReducerFunc(func(ctx context.Context, state interface{}, action interface{}) (interface{}, error) {
		m := state.(map[string]interface{})
		count := m["count"].(int)
		a := action.(map[string]interface{})
		switch a["type"] {
		case "count/increment":
			count++
		case "SET_COUNT":
			count = a["payload"].(int)
		}
		return map[string]interface{}{"count": count, "noise": "static"}, nil
	})
	s, err := core.NewStore(r, map[string]interface{}{"count": 0, "noise": "static"})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func selectCount(state interface{}) map[string]interface{} {
	m := state.(map[string]interface{})
	return map[string]interface{}{"count": m["count"]}
}

var increment = core.Creators{
	"incrementCount": func(ctx context.Context, args ...interface{}) (interface{}, error) {
		return map[string]interface{}{"type": "count/increment"}, nil
	},
}

// button is a Component with one click handler, which is the whole
// point of all these lessons.
type button struct {
	props Props
	seen  int
}

func (b *button) Receive(ctx context.Context, props Props) {
	b.props = props
	b.seen++
}

func (b *button) click(ctx context.Context, t *testing.T) {
	f, is := b.props["incrementCount"].(core.BoundCreator)
	if !is {
		t.Fatalf("no incrementCount handler in %#v", b.props)
	}
	if _, err := f(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestConnectDirectMapMode(t *testing.T) {
	ctx := context.Background()

	s := counterStore(t)
	b := &button{}

	conn, err := Connect(s, selectCount, &Binding{Creators: increment}, b)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Initial props arrive at connect time.
	if b.seen != 1 {
		t.Fatalf("component received props %d times", b.seen)
	}
	if b.props["count"] != 0 {
		t.Fatalf("initial count prop is %v", b.props["count"])
	}
	// The selector filtered out the unselected field.
	if _, have := b.props["noise"]; have {
		t.Fatal("unselected state leaked into props")
	}

	b.click(ctx, t)

	if b.seen != 2 {
		t.Fatalf("component received props %d times after a click", b.seen)
	}
	if b.props["count"] != 1 {
		t.Fatalf("count prop is %v after a click", b.props["count"])
	}
}

func TestConnectFunctionMode(t *testing.T) {
	ctx := context.Background()

	s := counterStore(t)
	b := &button{}

	binding := &Binding{
		Binder: func(d core.Dispatch) (core.Bound, error) {
			return core.Bind(increment, d)
		},
	}

	conn, err := Connect(s, selectCount, binding, b)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	b.click(ctx, t)

	if b.props["count"] != 1 {
		t.Fatalf("count prop is %v", b.props["count"])
	}
}

func TestConnectDefaultDispatch(t *testing.T) {
	ctx := context.Background()

	s := counterStore(t)
	b := &button{}

	conn, err := Connect(s, selectCount, nil, b)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	d, is := b.props[DispatchProp].(core.Dispatch)
	if !is {
		t.Fatalf("no raw dispatch in %#v", b.props)
	}

	// The exposed capability is the container's own dispatch: an
	// action sent through it lands in the same store.
	if _, err := d(ctx, map[string]interface{}{"type": "SET_COUNT", "payload": 7}); err != nil {
		t.Fatal(err)
	}
	if state := s.State().(map[string]interface{}); state["count"] != 7 {
		t.Fatalf("count is %v", state["count"])
	}
	if b.props["count"] != 7 {
		t.Fatalf("count prop is %v", b.props["count"])
	}
}

func TestConnectAmbiguousBinding(t *testing.T) {
	s := counterStore(t)

	binding := &Binding{
		Creators: increment,
		Binder: func(d core.Dispatch) (core.Bound, error) {
			return core.Bind(increment, d)
		},
	}

	if _, err := Connect(s, nil, binding, nil); err != AmbiguousBinding {
		t.Fatalf("got %v", err)
	}
}

func TestConnectBoundWinsCollision(t *testing.T) {
	s := counterStore(t)

	// A selector that (unwisely) uses an action's name.
	shadow := func(state interface{}) map[string]interface{} {
		return map[string]interface{}{"incrementCount": "not a function"}
	}

	conn, err := Connect(s, shadow, &Binding{Creators: increment}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, is := conn.Props()["incrementCount"].(core.BoundCreator); !is {
		t.Fatal("the bound action lost the collision")
	}
}

func TestConnectClose(t *testing.T) {
	ctx := context.Background()

	s := counterStore(t)
	b := &button{}

	conn, err := Connect(s, selectCount, &Binding{Creators: increment}, b)
	if err != nil {
		t.Fatal(err)
	}

	b.click(ctx, t)
	seen := b.seen

	conn.Close()
	conn.Close() // Twice is harmless.

	if _, err := s.Dispatch(ctx, map[string]interface{}{"type": "count/increment"}); err != nil {
		t.Fatal(err)
	}
	if b.seen != seen {
		t.Fatal("component received props after Close")
	}

	// The bound actions a component kept still work after Close;
	// the connection owned the subscription, not the capability.
	if _, err := b.props["incrementCount"].(core.BoundCreator)(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestConnectNilContainer(t *testing.T) {
	if _, err := Connect(nil, nil, nil, nil); err != NoContainer {
		t.Fatalf("got %v", err)
	}
}

func TestConnectBadCreators(t *testing.T) {
	s := counterStore(t)

	binding := &Binding{Creators: core.Creators{"ghost": nil}}
	_, err := Connect(s, nil, binding, nil)
	if _, is := err.(*core.NilCreator); !is {
		t.Fatalf("got %v", err)
	}
}

// TestTwoComponentsIndependent checks that two connections from one
// store don't share bound maps or props.
func TestTwoComponentsIndependent(t *testing.T) {
	ctx := context.Background()

	s := counterStore(t)
	b1, b2 := &button{}, &button{}

	c1, err := Connect(s, selectCount, &Binding{Creators: increment}, b1)
	if err != nil {
		t.Fatal(err)
	}
	defer c1.Close()

	c2, err := Connect(s, selectCount, &Binding{Creators: increment}, b2)
	if err != nil {
		t.Fatal(err)
	}

	c2.Close()

	b1.click(ctx, t)

	if b1.props["count"] != 1 {
		t.Fatalf("first component's count prop is %v", b1.props["count"])
	}
	if b2.props["count"] != 0 {
		t.Fatalf("closed component's count prop moved to %v", b2.props["count"])
	}
}
