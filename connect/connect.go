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

// Package connect is the connecting layer: it computes the props a
// component sees from a state selector and a binding of action
// creators, and it keeps those props current as the store changes.
//
// A component never holds the store.  It gets a Props map holding a
// subset of the state plus some callable bound actions, and that's
// all it knows.
package connect

import (
	"context"
	"errors"
	"sync"

	"github.com/Comcast/flange/core"
)

var (
	// NoContainer occurs when Connect is given a nil Container.
	NoContainer = errors.New("no container")

	// AmbiguousBinding occurs when a Binding specifies both a
	// Creators map and a Binder function.
	AmbiguousBinding = errors.New("binding has both creators and a binder")
)

// Container is what the connecting layer needs from a state
// container.
//
// A core.Store is one, but the connecting layer doesn't care.
type Container interface {
	// State returns a snapshot of the current state.
	State() interface{}

	// Dispatch submits an action.
	Dispatch(ctx context.Context, action interface{}) (interface{}, error)

	// Subscribe registers a listener and returns its
	// unsubscriber.
	Subscribe(l core.Listener) func()
}

// Selector projects the state to the subset of fields a component
// should see.
//
// A Selector should be a pure function of the state.
type Selector func(state interface{}) map[string]interface{}

// Props is what a component receives: selected state fields plus
// bound actions (or "dispatch" itself; see Binding).
type Props map[string]interface{}

// Binding says how a component gets its callable props.
//
// Exactly one of Creators and Binder may be set:
//
//   - Creators: the direct map mode.  The connecting layer calls
//     core.Bind with the container's dispatch for you.
//
//   - Binder: the function mode, for components that want to shape
//     their own bound map.  The connecting layer hands it the
//     dispatch capability and uses whatever comes back.
//
// Both modes end up honoring the same contract as core.Bind.  A nil
// Binding (or one with neither field set) means the component just
// gets the raw dispatch capability under the prop name "dispatch",
// with no wrapping at all.
type Binding struct {
	Creators core.Creators
	Binder   func(core.Dispatch) (core.Bound, error)
}

// DispatchProp is the prop name that carries the raw dispatch when
// no Binding is given.
const DispatchProp = "dispatch"

// bound normalizes the two Binding modes to a core.Bound.
//
// A nil receiver (or an empty Binding) yields nil, nil: the caller
// should fall back to exposing dispatch itself.
func (b *Binding) bound(dispatch core.Dispatch) (core.Bound, error) {
	if b == nil {
		return nil, nil
	}
	if b.Creators != nil && b.Binder != nil {
		return nil, AmbiguousBinding
	}
	if b.Binder != nil {
		return b.Binder(dispatch)
	}
	if b.Creators != nil {
		return core.Bind(b.Creators, dispatch)
	}
	return nil, nil
}

// Component consumes props.
//
// Receive is called once at connection time and then again for every
// state change, with freshly selected props.  Receive runs on the
// dispatching goroutine, so it shouldn't dawdle.
type Component interface {
	Receive(ctx context.Context, props Props)
}

// ComponentFunc is a Component that's just a function.
type ComponentFunc func(ctx context.Context, props Props)

// Receive calls the function.
func (f ComponentFunc) Receive(ctx context.Context, props Props) {
	f(ctx, props)
}

// Connection is a live link between a Container and a Component.
//
// Close it when the component unmounts.
type Connection struct {
	sync.Mutex

	container Container
	selector  Selector
	component Component

	// callables are computed once, at Connect time.  State props
	// are recomputed on every change; bound actions are not.
	callables Props

	unsub  func()
	closed bool
}

// Connect wires a Component to a Container.
//
// The component's props are the union of the Selector's output and
// the Binding's bound actions, computed per the Binding modes above.
// On a prop name collision, the bound action wins.  The component
// receives its initial props before Connect returns, and new props
// after every subsequent state change until Close.
//
// A nil Selector selects nothing.  A nil Component is allowed; you
// can still use Props() to poll.
func Connect(container Container, selector Selector, binding *Binding, component Component) (*Connection, error) {
	if container == nil {
		return nil, NoContainer
	}

	bound, err := binding.bound(container.Dispatch)
	if err != nil {
		return nil, err
	}

	callables := make(Props, len(bound)+1)
	if bound == nil {
		// Default-dispatch fallback: no wrapping at all.
		callables[DispatchProp] = core.Dispatch(container.Dispatch)
	} else {
		for name, f := range bound {
			callables[name] = f
		}
	}

	c := &Connection{
		container: container,
		selector:  selector,
		component: component,
		callables: callables,
	}

	c.unsub = container.Subscribe(func(ctx context.Context, state interface{}) {
		c.receive(ctx, state)
	})

	c.receive(context.Background(), container.State())

	return c, nil
}

// Props returns the current props: fresh state props plus the
// connection's callables.
func (c *Connection) Props() Props {
	return c.props(c.container.State())
}

func (c *Connection) props(state interface{}) Props {
	props := make(Props, len(c.callables)+4)
	if c.selector != nil {
		for name, v := range c.selector(state) {
			props[name] = v
		}
	}
	for name, v := range c.callables {
		props[name] = v
	}
	return props
}

func (c *Connection) receive(ctx context.Context, state interface{}) {
	c.Lock()
	closed := c.closed
	c.Unlock()
	if closed || c.component == nil {
		return
	}
	c.component.Receive(ctx, c.props(state))
}

// Close unsubscribes from the container.  The component gets no
// props after Close returns.  Closing twice is harmless.
func (c *Connection) Close() {
	c.Lock()
	if c.closed {
		c.Unlock()
		return
	}
	c.closed = true
	c.Unlock()
	c.unsub()
}
