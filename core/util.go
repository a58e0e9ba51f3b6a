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
	"crypto/rand"
	"encoding/json"
	"fmt"
)

// Canonicalize returns the value rewritten as generic maps, slices,
// strings, and float64s.
//
// Actions and states travel as JSON between the service, the
// interpreters, and storage, so keeping them in JSON's own shapes
// avoids a lot of type-switch grief.  This implementation just round
// trips through encoding/json.
func Canonicalize(x interface{}) (interface{}, error) {
	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		return nil, err
	}
	return y, nil
}

// Gensym makes a random string of the given length (in hex
// characters).
func Gensym(n int) string {
	bs := make([]byte, (n+1)/2)
	if _, err := rand.Read(bs); err != nil {
		// crypto/rand is documented to always succeed on the
		// platforms we care about.
		panic(err)
	}
	return fmt.Sprintf("%x", bs)[:n]
}
