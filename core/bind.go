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
)

var (
	// NoDispatch occurs when Bind is given a nil Dispatch.
	NoDispatch = errors.New("no dispatch")

	// NoCreators occurs when Bind is given nil Creators.
	NoCreators = errors.New("no creators")
)

// Dispatch submits an action to a state container for processing.
//
// Dispatch is the only side-effecting operation in this package.  A
// Store provides one, but anything with the right signature will do:
// a middleware chain, a remote forwarder, a test recorder.
//
// The returned value is whatever the container chooses to return
// (conventionally the action itself).
type Dispatch func(ctx context.Context, action interface{}) (interface{}, error)

// Creator is a pure function that makes an action from its
// arguments.
//
// A Creator must not call Dispatch itself and should have no side
// effects.  The ctx is provided for Creators compiled from a
// CreatorSource, whose interpreters want a deadline.
type Creator func(ctx context.Context, args ...interface{}) (interface{}, error)

// Creators maps an action name to its Creator.
type Creators map[string]Creator

// BoundCreator is a Creator that has been fused with a Dispatch.
//
// Calling one invokes the underlying Creator with the given args and
// forwards the resulting action to the captured Dispatch.  The return
// value and error are Dispatch's own, unmodified.
type BoundCreator func(ctx context.Context, args ...interface{}) (interface{}, error)

// Bound maps an action name to its BoundCreator.
//
// A Bound always has exactly the keys of the Creators it was made
// from.
type Bound map[string]BoundCreator

// NilCreator occurs when Bind finds a nil Creator in the given map.
//
// Bind checks eagerly, at bind time, rather than letting the first
// invocation fail.  See Bind.
type NilCreator struct {
	Name string
}

func (e *NilCreator) Error() string {
	return `creator "` + e.Name + `" is nil`
}

// Bind makes a Bound from the given Creators and Dispatch.
//
// Each entry of the result, when called, evaluates its Creator with
// the forwarded arguments and then evaluates dispatch on the
// resulting action.  The entry returns whatever dispatch returns.  A
// Creator error is returned as-is without calling dispatch; a
// dispatch error is returned as-is.  No retries, no caching: every
// call re-invokes the Creator.
//
// Bind verifies its inputs eagerly.  A nil Creator in the map is a
// *NilCreator error here, not a surprise later in an event handler.
//
// Calling Bind twice with the same inputs gives two independent maps
// whose entries behave identically.  The Dispatch is captured by the
// entries and not otherwise exposed.
func Bind(creators Creators, dispatch Dispatch) (Bound, error) {
	if creators == nil {
		return nil, NoCreators
	}
	if dispatch == nil {
		return nil, NoDispatch
	}

	bound := make(Bound, len(creators))
	for name, creator := range creators {
		if creator == nil {
			return nil, &NilCreator{name}
		}
		creator := creator
		bound[name] = func(ctx context.Context, args ...interface{}) (interface{}, error) {
			action, err := creator(ctx, args...)
			if err != nil {
				return nil, err
			}
			return dispatch(ctx, action)
		}
	}

	return bound, nil
}

// MustBind is Bind for static Creators maps, where a bad map is a
// programmer error.
func MustBind(creators Creators, dispatch Dispatch) Bound {
	bound, err := Bind(creators, dispatch)
	if err != nil {
		panic(err)
	}
	return bound
}
