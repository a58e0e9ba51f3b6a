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

// Package main is flanged, a little service that hosts a store per
// catalog and speaks HTTP, WebSockets, and (optionally) MQTT.
//
// It exists to run the lessons' demos, so it cuts the corners a demo
// can cut.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"github.com/Comcast/flange/util"
)

func main() {

	var (
		configFile  = flag.String("c", "", "Optional YAML config file")
		catalogsDir = flag.String("s", "", "Directory of catalog YAML files")
		lessonsDir  = flag.String("l", "", "Directory of lesson Markdown files")
		dbFile      = flag.String("d", "", "Bolt file for state and journals (empty: no persistence)")
		replay      = flag.Bool("replay", false, "Rebuild state from the journal when no snapshot exists")
		httpPort    = flag.String("p", "", "HTTP port (say \":8080\")")
		staticDir   = flag.String("static", "", "Optional directory served at /static/")
		webhookURL  = flag.String("webhook", "", "Optional URL that gets a POST per accepted action")
		mqttBroker  = flag.String("mqtt", "", "Optional MQTT broker (say \"tcp://localhost:1883\")")
		verbose     = flag.Bool("v", false, "Verbose")
	)

	flag.Parse()

	Verbose = *verbose
	util.Logging = *verbose

	conf := DefaultConfig()
	if *configFile != "" {
		var err error
		if conf, err = LoadConfig(*configFile, conf); err != nil {
			log.Fatalf("config error %v", err)
		}
	}

	// A given flag beats the config file.
	if *catalogsDir != "" {
		conf.CatalogsDir = *catalogsDir
	}
	if *lessonsDir != "" {
		conf.LessonsDir = *lessonsDir
	}
	if *dbFile != "" {
		conf.DBFile = *dbFile
	}
	if *replay {
		conf.Replay = true
	}
	if *httpPort != "" {
		conf.HTTPPort = *httpPort
	}
	if *staticDir != "" {
		conf.StaticDir = *staticDir
	}
	if *webhookURL != "" {
		conf.WebhookURL = *webhookURL
	}
	if *mqttBroker != "" {
		conf.MQTT.Broker = *mqttBroker
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := NewService(ctx, conf)
	if err != nil {
		log.Fatalf("service error %v", err)
	}

	s.Fanout(ctx)

	if conf.MQTT.Broker != "" {
		b := NewMQTTBridge(ctx, s, conf.MQTT)
		if err := b.Start(ctx); err != nil {
			log.Fatalf("MQTT error %v", err)
		}
		defer b.Stop(ctx)
	}

	mux := http.NewServeMux()

	if err := s.WebSocketService(ctx, mux); err != nil {
		log.Fatalf("WebSocket service error %v", err)
	}

	if err := s.HTTPService(ctx, mux, conf.StaticDir); err != nil {
		log.Fatalf("HTTP service error %v", err)
	}

	log.Printf("flanged listening on %s", conf.HTTPPort)
	if err := http.ListenAndServe(conf.HTTPPort, mux); err != nil {
		log.Fatal(err)
	}
}
