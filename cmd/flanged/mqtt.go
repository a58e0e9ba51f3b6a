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
	"log"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTBridge couples the service to an MQTT broker.  Ops arrive on
// one topic (as JSON DOps); processed ops and state updates go out
// on another.
type MQTTBridge struct {
	Conf   MQTTConfig
	Client mqtt.Client

	s       *Service
	updates chan interface{}
}

// NewMQTTBridge builds the paho client.  Call Start.
func NewMQTTBridge(ctx context.Context, s *Service, conf MQTTConfig) *MQTTBridge {

	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	b := &MQTTBridge{
		Conf:    conf,
		s:       s,
		updates: make(chan interface{}, 1024),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(conf.Broker)
	opts.SetClientID(conf.ClientID)
	opts.Username = conf.Username
	opts.Password = conf.Password

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	}

	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		b.inHandler(ctx, client, msg)
	}

	b.Client = mqtt.NewClient(opts)

	return b
}

// inHandler is the paho publish handler, which hears messages on our
// op topic subscription.
func (b *MQTTBridge) inHandler(ctx context.Context, client mqtt.Client, msg mqtt.Message) {
	Logf("MQTT incoming %s %s", msg.Topic(), msg.Payload())

	var op DOp
	if err := json.Unmarshal(msg.Payload(), &op); err != nil {
		log.Printf("MQTT can't parse op: %v: %s", err, msg.Payload())
		return
	}

	if err := op.Do(ctx, b.s); err != nil {
		log.Printf("MQTT op.Do error %v", err)
		// The error also rides back on the op itself.
	}

	b.publish(&op)
}

// Start connects, subscribes to the op topic, and begins forwarding
// updates out.  Start Fanout first.
func (b *MQTTBridge) Start(ctx context.Context) error {
	Logf("MQTT connecting to %s", b.Conf.Broker)
	if token := b.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	if t := b.Client.Subscribe(b.Conf.OpTopic, b.Conf.QoS, nil); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	Logf("MQTT subscribed to %s", b.Conf.OpTopic)

	b.s.addSink("mqtt", b.updates)

	go b.outLoop(ctx)

	return nil
}

// outLoop publishes state updates to the update topic.
func (b *MQTTBridge) outLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case x := <-b.updates:
			if x == nil {
				return
			}
			b.publish(x)
		}
	}
}

func (b *MQTTBridge) publish(x interface{}) {
	js, err := json.Marshal(&x)
	if err != nil {
		log.Printf("MQTT marshal error %v on %#v", err, x)
		return
	}
	token := b.Client.Publish(b.Conf.UpdateTopic, b.Conf.QoS, false, js)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Printf("MQTT publish error %v", err)
	}
}

// Stop unsubscribes and disconnects.
func (b *MQTTBridge) Stop(ctx context.Context) error {
	b.s.remSink("mqtt")
	if t := b.Client.Unsubscribe(b.Conf.OpTopic); t.Wait() && t.Error() != nil {
		log.Printf("MQTT unsubscribe error %v", t.Error())
	}
	b.Client.Disconnect(100)
	return nil
}
