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
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"
)

// Config is the flanged configuration.  Every field has a flag, and a
// flag that's given beats the config file.
type Config struct {
	// CatalogsDir holds the catalog YAML files.
	CatalogsDir string `yaml:"catalogs"`

	// LessonsDir holds the lesson Markdown files (optional).
	LessonsDir string `yaml:"lessons"`

	// DBFile names the bolt file for state snapshots and action
	// journals.  Empty means no persistence.
	DBFile string `yaml:"db"`

	// Replay rebuilds state from the journal when no snapshot
	// exists.
	Replay bool `yaml:"replay"`

	// HTTPPort is where the HTTP and WebSocket services listen.
	HTTPPort string `yaml:"httpPort"`

	// StaticDir, if not empty, is served at /static/.
	StaticDir string `yaml:"static"`

	// WebhookURL, if not empty, gets a POST for every accepted
	// action.
	WebhookURL string `yaml:"webhook"`

	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig configures the optional MQTT transport.
type MQTTConfig struct {
	// Broker is the broker address (say "tcp://localhost:1883").
	// Empty means no MQTT.
	Broker string `yaml:"broker"`

	ClientID string `yaml:"clientId"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// OpTopic carries in-bound ops (as JSON DOps).
	OpTopic string `yaml:"opTopic"`

	// UpdateTopic gets out-bound state updates.
	UpdateTopic string `yaml:"updateTopic"`

	// QoS for both subscriptions and publications.
	QoS byte `yaml:"qos"`
}

// DefaultConfig is what you get with no config file and no flags.
func DefaultConfig() *Config {
	return &Config{
		CatalogsDir: "catalogs",
		LessonsDir:  "lessons",
		HTTPPort:    ":8080",
		MQTT: MQTTConfig{
			ClientID:    "flanged",
			OpTopic:     "flange/ops",
			UpdateTopic: "flange/updates",
		},
	}
}

// LoadConfig reads a YAML config file over the given defaults.
func LoadConfig(filename string, conf *Config) (*Config, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(bs, conf); err != nil {
		return nil, err
	}
	return conf, nil
}
