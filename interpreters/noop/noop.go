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

// Package noop provides an interpreter that does nothing, which is
// useful when you want to load or render a catalog without being
// able (or willing) to run its code.
package noop

import (
	"context"
	"log"

	"github.com/Comcast/flange/core"
)

func init() {
	core.DefaultInterpreters["noop"] = NewInterpreter()
}

// Interpreter is an interpreter that ignores its input.
type Interpreter struct {
	// Silent turns off the warnings that Exec otherwise logs.
	Silent bool
}

// NewInterpreter makes a new one, as you might have suspected.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Compile does nothing.
func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	return nil, nil
}

// Exec logs a warning (unless Silent) and returns nil.
func (i *Interpreter) Exec(ctx context.Context, env map[string]interface{}, code interface{}, compiled interface{}) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: noop interpreter ignoring code %v", code)
	}
	return nil, nil
}
