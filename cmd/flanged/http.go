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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/cookiejar"
	"sort"
	"strings"

	"github.com/Comcast/flange/core"
	"github.com/Comcast/flange/tools"

	"golang.org/x/net/publicsuffix"
)

// HTTPService serves the lessons, the catalogs, a little demo page,
// and a JSON op endpoint.
func (s *Service) HTTPService(ctx context.Context, mux *http.ServeMux, staticDir string) error {

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		s.indexPage(w)
	})

	mux.HandleFunc("/lessons/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/lessons/")
		for _, l := range s.Lessons {
			if l.Name == name {
				if err := tools.RenderLessonPage(l, nil, w); err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
				}
				return
			}
		}
		http.NotFound(w, r)
	})

	mux.HandleFunc("/catalogs/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/catalogs/")
		r0, err := s.Runtime(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if err := tools.RenderCatalogPage(r0.Catalog, nil, w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/api/op", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "POST an op", http.StatusMethodNotAllowed)
			return
		}
		js, err := ioutil.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var op DOp
		if err := json.Unmarshal(js, &op); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// The error (if any) rides back on the op.
		op.Do(r.Context(), s)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(&op); err != nil {
			log.Printf("op encode error %v", err)
		}
	})

	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("catalog")
		state, err := s.GetState(r.Context(), name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(&state); err != nil {
			log.Printf("state encode error %v", err)
		}
	})

	mux.HandleFunc("/demo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, demoPage)
	})

	if staticDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/",
			http.FileServer(http.Dir(staticDir))))
	}

	return nil
}

func (s *Service) indexPage(w io.Writer) {
	tools.RenderPage("flange", nil, w, func(out io.Writer) error {
		f := func(format string, args ...interface{}) {
			fmt.Fprintf(out, format+"\n", args...)
		}

		f(`<h2>Lessons</h2><ul>`)
		for _, l := range s.Lessons {
			f(`<li><a href="/lessons/%s">%s</a></li>`, l.Name, l.Title)
		}
		f(`</ul>`)

		f(`<h2>Catalogs</h2><ul>`)
		cs := s.Catalogs()
		sort.Slice(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
		for _, c := range cs {
			f(`<li><a href="/catalogs/%s">%s</a></li>`, c.Name, c.Name)
		}
		f(`</ul>`)

		f(`<p>The <a href="/demo">demo</a> is one button and one number.</p>`)

		return nil
	})
}

// demoPage is the lessons' demo app: a counter, a button, and a
// click handler that calls one bound action.  The wiring the lessons
// describe happens server-side; the page just names the creator.
var demoPage = `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head><title>counter</title></head>
  <body>
    <h1 id="count">?</h1>
    <button id="increment">+1</button>
    <script>
    var ws = new WebSocket("ws://" + location.host + "/ws/api");
    ws.onopen = function () {
      ws.send(JSON.stringify({getState: {catalog: "counter"}}));
    };
    ws.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      var state = null;
      if (msg.catalog === "counter") state = msg.state;
      if (msg.getState && msg.getState.catalog === "counter") state = msg.getState.state;
      if (state && state.count !== undefined) {
        document.getElementById("count").textContent = state.count;
      }
    };
    document.getElementById("increment").onclick = function () {
      ws.send(JSON.stringify({dispatch: {catalog: "counter", name: "incrementCount"}}));
    };
    </script>
  </body>
</html>
`

// Webhook POSTs updates to a configured URL, with a cookie jar so a
// sticky receiver stays stuck.
type Webhook struct {
	URL string

	jar *cookiejar.Jar
}

// NewWebhook makes a Webhook for the given URL.
func NewWebhook(url string) (*Webhook, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Webhook{
		URL: url,
		jar: jar,
	}, nil
}

// Middleware journals nothing and blocks nobody: it reports each
// accepted action to the webhook and forgets about it.
func (wh *Webhook) Middleware(catalog string) core.Middleware {
	return func(next core.Dispatch) core.Dispatch {
		return func(ctx context.Context, action interface{}) (interface{}, error) {
			result, err := next(ctx, action)
			if err != nil {
				return result, err
			}
			go wh.post(ctx, map[string]interface{}{
				"catalog": catalog,
				"action":  action,
			})
			return result, nil
		}
	}
}

func (wh *Webhook) post(ctx context.Context, x interface{}) {
	js, err := json.Marshal(&x)
	if err != nil {
		log.Printf("Webhook marshal error %v", err)
		return
	}

	req, err := http.NewRequest("POST", wh.URL, bytes.NewReader(js))
	if err != nil {
		log.Printf("Webhook request error %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(ctx)

	// http.Request doesn't itself support cookie jars;
	// http.Client does, and we don't want a client per post.  So
	// the jar is applied by hand.
	if u := req.URL; u != nil {
		for _, cookie := range wh.jar.Cookies(u) {
			req.AddCookie(cookie)
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("Webhook POST error %v", err)
		return
	}
	defer resp.Body.Close()
	ioutil.ReadAll(resp.Body)

	wh.jar.SetCookies(req.URL, resp.Cookies())

	Logf("Webhook POST %s %s", wh.URL, resp.Status)
}
