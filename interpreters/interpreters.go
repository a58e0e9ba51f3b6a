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

// Package interpreters gathers this repo's interpreters.
package interpreters

import (
	"github.com/Comcast/flange/core"
	"github.com/Comcast/flange/interpreters/ecmascript"
	"github.com/Comcast/flange/interpreters/noop"
)

// Standard returns the usual set of interpreters.
func Standard() core.InterpretersMap {
	is := core.NewInterpretersMap()

	es := ecmascript.NewInterpreter()
	is["ecmascript"] = es
	is["ecmascript-5.1"] = es

	is["noop"] = noop.NewInterpreter()

	return is
}
