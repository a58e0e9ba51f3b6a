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

// Package ecmascript provides an ECMAScript-compatible interpreter
// for action creators and reducers.
//
// The lessons are about a JavaScript framework, so it's only polite
// that the demo can run creators and reducers written in JavaScript.
package ecmascript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Comcast/flange/core"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)

	// IgnoreExit will prevent the function "exit" from terminating
	// the process.  Halting the process from a creator is only
	// useful for some tests and utilities.  Maybe.
	IgnoreExit = false
)

// init adds an Interpreter as one of the core.DefaultInterpreters.
func init() {
	core.DefaultInterpreters["ecmascript"] = NewInterpreter()
}

// Interpreter implements core.Interpreter using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {
	// Test exposes some runtime capabilities (sleep, log, exit)
	// that production code shouldn't see.
	Test bool
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// AsSource insists that the given code is a string.
func AsSource(src interface{}) (string, error) {
	switch vv := src.(type) {
	case string:
		return vv, nil
	default:
		return "", fmt.Errorf("bad ECMAScript source (%T)", src)
	}
}

// Compile calls goja.Compile.  This step is optional but saves work
// for code that'll run on every button click.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	code, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	code = wrapSrc(code)

	obj, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// Exec implements the core.Interpreter method of the same name.
//
// The given environment is available to the code at _.  For a
// creator that's _.args; for a reducer, _.state and _.action.  The
// code's return value becomes the action (or the next state).
//
// Additional properties at _:
//
//	cronNext(s): Return a string representing (RFC3339Nano) the
//	  next time for the given crontab expression.
//	randstr(): generate a random string.
//
// Testing properties (enabled by the interpreter's Test property):
//
//	sleep(ms): sleep for the given number of milliseconds.
//	log(x): log x as JSON.
//	exit(code, msg): Terminate the process after printing msg.
func (i *Interpreter) Exec(ctx context.Context, env map[string]interface{}, src interface{}, compiled interface{}) (interface{}, error) {
	var p *goja.Program
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return nil, err
		}
	}
	var is bool
	if p, is = compiled.(*goja.Program); !is {
		return nil, fmt.Errorf("ECMAScript bad compilation: %T %#v", compiled, compiled)
	}

	// The code is allowed to modify what it sees, and nobody else
	// should notice.  So the environment goes in as a copy.
	x, err := core.Canonicalize(env)
	if err != nil {
		return nil, err
	}
	here, is := x.(map[string]interface{})
	if !is && x != nil {
		return nil, fmt.Errorf("internal error: %#v copy failed", env)
	}
	if here == nil {
		here = make(map[string]interface{}, 4)
	}

	o := goja.New()

	o.Set("_", here)

	// cronNext parses the given string as a crontab expression
	// using github.com/gorhill/cronexpr.  Returns the next time
	// as a string formatted in time.RFC3339Nano (UTC).
	here["cronNext"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		cronExpr, is := x.(string)
		if !is {
			protest(o, "not a string")
		}

		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	here["randstr"] = func() interface{} {
		return core.Gensym(32)
	}

	if i.Test {
		here["sleep"] = func(n interface{}) interface{} {
			switch vv := n.(type) {
			case goja.Value:
				n = vv.Export()
			}
			ms, is := n.(int64)
			if !is {
				panic(fmt.Sprintf("a %T is not an %T", n, ms))
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return nil
		}

		here["log"] = func(x interface{}) interface{} {
			switch vv := x.(type) {
			case goja.Value:
				x = vv.Export()
			}
			js, err := json.Marshal(&x)
			if err != nil {
				log.Println("ecmascript.log (can't marshal: " + err.Error() + ")")
			} else {
				log.Println(string(js))
			}
			return x
		}

		here["exit"] = func(n interface{}, msg interface{}) interface{} {
			switch vv := msg.(type) {
			case goja.Value:
				msg = vv.Export()
			}
			s, is := msg.(string)
			if !is {
				panic("not a string")
			}
			switch vv := n.(type) {
			case goja.Value:
				n = vv.Export()
			}
			ec, is := n.(int64)
			if !is {
				panic(fmt.Sprintf("a %T is not an %T", n, ec))
			}
			log.Println(s)
			if !IgnoreExit {
				os.Exit(int(ec))
			}
			return msg
		}
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If this Exec method calls cancel() after RunProgram
		// returns, then we'll never see this
		// InterruptedMessage, which is actually the behavior
		// we want.  In that case, we weren't interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := RunProgram(o, p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	// Actions and states leave here canonicalized so that the
	// store, the journal, and the wire all see the same shapes.
	return core.Canonicalize(v.Export())
}

// RunProgram runs the program and turns a Goja panic into an error.
func RunProgram(o *goja.Runtime, p *goja.Program) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	return o.RunProgram(p)
}
