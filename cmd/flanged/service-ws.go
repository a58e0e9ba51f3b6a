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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	. "github.com/Comcast/flange/util/testutil"

	"github.com/gorilla/websocket"
)

// WebSocketService serves ops at /ws/api on the given mux.
//
// A client sends DOps as JSON and hears every Update (for every
// catalog) as JSON.  The updates are what make the demo page move
// without polling.  Start Fanout first.
func (s *Service) WebSocketService(ctx context.Context, mux *http.ServeMux) error {

	var upgrader = websocket.Upgrader{} // use default options

	api := func(w http.ResponseWriter, r *http.Request) {
		Logf("Service.WebSocketService connection")

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		ctl := make(chan bool)
		defer close(ctl)

		in := make(chan interface{}, 32)
		defer close(in)

		id := c.RemoteAddr().String()
		s.addSink(id, in)
		defer s.remSink(id)

		go func() {
			mt := websocket.TextMessage

		LOOP:
			for {
				select {
				case <-ctl:
					break LOOP
				case <-ctx.Done():
					break LOOP
				case x := <-in:
					if x == nil {
						break LOOP
					}
					Logf("forwarding update %s", JS(x))
					js, err := json.Marshal(&x)
					if err != nil {
						log.Printf("update Marshal error %v on %#v", err, x)
						continue
					}
					if err = c.WriteMessage(mt, js); err != nil {
						log.Println("update write:", err)
					}
				}
			}
		}()

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				log.Println("read error", err)
				break
			}

			var op DOp
			if err := json.Unmarshal(message, &op); err != nil {
				msg := fmt.Sprintf("can't parse: %v", err)
				if err = c.WriteMessage(mt, []byte(msg)); err != nil {
					log.Println("write (err)", err)
				}
				continue
			}
			if err = op.Do(ctx, s); err != nil {
				log.Println("op.Do error", err)
				// The error also rides back on the op
				// itself.
			}
			js, err := json.Marshal(&op)
			if err != nil {
				log.Printf("op Marshal error %v", err)
				continue
			}
			if err = c.WriteMessage(mt, js); err != nil {
				log.Println("op write:", err)
			}
		}
	}

	mux.HandleFunc("/ws/api", api)

	return nil
}
