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

// Package flange is a set of lessons, packages, and demo programs
// about connecting a centralized state store to component event
// handlers.
//
// A flange is the part that bolts one pipe to another, which is all
// this code really does: it bolts plain action creators to a store's
// dispatch capability so that a component can call a named function
// without ever holding a reference to the store itself.
//
// The interesting packages:
//
//	core        the store, the action binder, and scripted sources
//	connect     the connecting layer that computes component props
//	catalog     YAML catalogs of creators, reducers, and lesson prose
//	tools       rendering lessons and catalog docs as HTML
//
// The lessons/ directory holds the prose. cmd/flanged serves the
// lessons along with a live demo store; cmd/fsimple is the smallest
// possible loop: actions in, states out.
package flange
