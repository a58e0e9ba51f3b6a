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
	// InterpreterNotFound occurs when you try to Compile a source,
	// and the required interpreter isn't in the given map of
	// interpreters.
	InterpreterNotFound = errors.New("interpreter not found")

	// DefaultInterpreters will be used by Compile if given nil
	// interpreters.
	DefaultInterpreters = NewInterpretersMap()
)

// Interpreter can optionally compile and can execute code for
// Creators and Reducers written in some other language.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code with the given environment exposed
	// to it.  The result of a previous Compile() might be
	// provided.
	Exec(ctx context.Context, env map[string]interface{}, code interface{}, compiled interface{}) (interface{}, error)
}

// InterpretersMap maps an interpreter name, as used in a
// CreatorSource or ReducerSource, to an Interpreter.
type InterpretersMap map[string]Interpreter

// NewInterpretersMap does what you'd think.
func NewInterpretersMap() InterpretersMap {
	return make(InterpretersMap, 4)
}

// CreatorSource can be compiled to a Creator.
//
// The Source is handed to the named Interpreter.  The compiled
// Creator exposes its call arguments to the code as "args".
type CreatorSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source"`
}

// Copy makes a shallow copy.
func (cs *CreatorSource) Copy() *CreatorSource {
	if cs == nil {
		return nil
	}
	return &CreatorSource{
		Interpreter: cs.Interpreter,
		Source:      cs.Source,
	}
}

// Compile attempts to compile the CreatorSource into a Creator using
// the given interpreters, which defaults to DefaultInterpreters.
func (cs *CreatorSource) Compile(ctx context.Context, interpreters InterpretersMap) (Creator, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interpreter, have := interpreters[cs.Interpreter]
	if !have {
		return nil, InterpreterNotFound
	}

	compiled, err := interpreter.Compile(ctx, cs.Source)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, args ...interface{}) (interface{}, error) {
		if args == nil {
			args = []interface{}{}
		}
		env := map[string]interface{}{
			"args": args,
		}
		return interpreter.Exec(ctx, env, cs.Source, compiled)
	}, nil
}

// ReducerSource can be compiled to a Reducer.
//
// The compiled Reducer exposes "state" and "action" to the code,
// which should return the next state.
type ReducerSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source"`
}

// Copy makes a shallow copy.
func (rs *ReducerSource) Copy() *ReducerSource {
	if rs == nil {
		return nil
	}
	return &ReducerSource{
		Interpreter: rs.Interpreter,
		Source:      rs.Source,
	}
}

// Compile attempts to compile the ReducerSource into a Reducer using
// the given interpreters, which defaults to DefaultInterpreters.
func (rs *ReducerSource) Compile(ctx context.Context, interpreters InterpretersMap) (Reducer, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interpreter, have := interpreters[rs.Interpreter]
	if !have {
		return nil, InterpreterNotFound
	}

	compiled, err := interpreter.Compile(ctx, rs.Source)
	if err != nil {
		return nil, err
	}

	return ReducerFunc(func(ctx context.Context, state interface{}, action interface{}) (interface{}, error) {
		env := map[string]interface{}{
			"state":  state,
			"action": action,
		}
		return interpreter.Exec(ctx, env, rs.Source, compiled)
	}), nil
}
