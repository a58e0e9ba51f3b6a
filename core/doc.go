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

// Package core provides the core gear for store-bound actions: a
// reducer-driven state Store, and Bind(), which fuses a map of pure
// action creators with a Dispatch capability.
//
// The primary function is Bind().  Given Creators (a map from action
// name to a pure Creator function) and a Dispatch, Bind returns a
// Bound map with the same keys.  Calling a Bound entry invokes the
// Creator with the forwarded arguments and hands the resulting action
// to Dispatch.  Whatever Dispatch returns is returned to the caller,
// error included.  Bind itself never dispatches anything.
//
// A Creator should not block or perform any IO.  Instead, a Creator
// just returns an action: an opaque, serializable value, usually a
// map with a "type" property.  The shape of an action belongs to the
// Reducer that will process it, not to this package.
//
// The Store here is deliberately small: State() for a snapshot,
// Dispatch() to run an action through the Reducer and notify
// listeners, Subscribe() to hear about new states.  Nothing in this
// package holds a process-wide store; a Dispatch is always passed in
// explicitly.
//
// A Creator can also be written in another language.  A CreatorSource
// specifies an Interpreter (by name) and some Source; Compile() turns
// it into a Creator.  See the interpreters packages.
package core
