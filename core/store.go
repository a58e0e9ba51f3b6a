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
	"sync"
)

var (
	// NoAction occurs when a nil action is dispatched.
	NoAction = errors.New("no action")

	// NoReducer occurs when NewStore is given a nil Reducer.
	NoReducer = errors.New("no reducer")
)

// Reducer computes the next state from the current state and an
// action.
//
// A Reducer should be pure: same inputs, same output, no side
// effects.  A Reducer that returns an error aborts the dispatch and
// leaves the state unchanged.
type Reducer interface {
	Reduce(ctx context.Context, state interface{}, action interface{}) (interface{}, error)
}

// ReducerFunc is a Reducer that's just a Go function.
type ReducerFunc func(ctx context.Context, state interface{}, action interface{}) (interface{}, error)

// Reduce calls the function.
func (f ReducerFunc) Reduce(ctx context.Context, state interface{}, action interface{}) (interface{}, error) {
	return f(ctx, state, action)
}

// Listener hears about a new state after a dispatch has been
// reduced.
//
// The state given to a Listener is the snapshot taken when the
// reduction committed, which might already be stale by the time the
// Listener runs.  That's the deal.
type Listener func(ctx context.Context, state interface{})

// Middleware wraps a Dispatch to make another Dispatch.
//
// Middlewares compose at store construction: the first Middleware
// given to NewStore is the outermost, and the innermost next is the
// store's own reduce-and-notify step.  A Middleware that wants a
// dispatch to proceed must call next.
type Middleware func(next Dispatch) Dispatch

// Store is a minimal state container: a current state, a Reducer,
// and some Listeners.
//
// A Store is not a singleton, and nothing in this repo treats it as
// one.  Hand out the Dispatch method value (see Bind) rather than the
// Store itself when a consumer only needs to submit actions.
type Store struct {
	sync.RWMutex

	reducer   Reducer
	state     interface{}
	listeners map[int]Listener
	nextSub   int

	// dispatch is the composed middleware chain ending at base().
	dispatch Dispatch
}

// NewStore makes a Store with the given Reducer, initial state, and
// optional Middleware.
func NewStore(reducer Reducer, initial interface{}, middleware ...Middleware) (*Store, error) {
	if reducer == nil {
		return nil, NoReducer
	}

	s := &Store{
		reducer:   reducer,
		state:     initial,
		listeners: make(map[int]Listener, 4),
	}

	d := Dispatch(s.base)
	for i := len(middleware) - 1; 0 <= i; i-- {
		d = middleware[i](d)
	}
	s.dispatch = d

	return s, nil
}

// State returns the current state.
//
// The caller must treat the returned value as read-only.  Reducers
// around here return fresh values rather than mutating, so a
// snapshot stays coherent after the lock is gone.
func (s *Store) State() interface{} {
	s.RLock()
	state := s.state
	s.RUnlock()
	return state
}

// Dispatch runs the action through the middleware chain and then the
// Reducer, notifies Listeners with the new state, and returns the
// action (or whatever the outermost Middleware returns).
//
// A nil action is a NoAction error.  A Reducer error leaves the
// state as it was.
func (s *Store) Dispatch(ctx context.Context, action interface{}) (interface{}, error) {
	if action == nil {
		return nil, NoAction
	}
	return s.dispatch(ctx, action)
}

// base is the innermost Dispatch: reduce, commit, notify.
func (s *Store) base(ctx context.Context, action interface{}) (interface{}, error) {
	s.Lock()
	next, err := s.reducer.Reduce(ctx, s.state, action)
	if err != nil {
		s.Unlock()
		return nil, err
	}
	s.state = next

	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.Unlock()

	// Listeners run outside the lock so they can call State() or
	// even Dispatch() again.
	for _, l := range ls {
		l(ctx, next)
	}

	return action, nil
}

// Subscribe registers a Listener and returns a function that
// unsubscribes it.
//
// Unsubscribing twice is harmless.
func (s *Store) Subscribe(l Listener) func() {
	s.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.Unlock()

	return func() {
		s.Lock()
		delete(s.listeners, id)
		s.Unlock()
	}
}
