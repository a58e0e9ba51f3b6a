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

// ToDo: Timers.Suspend, Timers.Resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"
)

// Dispatcher is how a timer submits its action when it fires.
type Dispatcher func(ctx context.Context, catalog string, action interface{}) (interface{}, error)

var (
	Exists   = errors.New("id exists")
	NotFound = errors.New("not found")
)

type TimerEntry struct {
	Id      string      `json:"id"`
	Catalog string      `json:"catalog"`
	Action  interface{} `json:"action"`
	At      time.Time   `json:"at"`

	// Cron, if not empty, reschedules the entry after each
	// firing.
	Cron string `json:"cron,omitempty"`

	ctl chan bool
}

// Timers schedules future dispatches.
type Timers struct {
	Errors chan interface{} `json:"-" yaml:"-"`

	sync.Mutex

	timers   map[string]*TimerEntry
	ctl      chan bool
	dispatch Dispatcher
}

func NewTimers(dispatch Dispatcher) *Timers {
	return &Timers{
		timers:   make(map[string]*TimerEntry, 32),
		dispatch: dispatch,
		ctl:      make(chan bool),
	}
}

func (ts *Timers) MarshalJSON() ([]byte, error) {
	ts.Lock()
	m := map[string]interface{}{
		"map": ts.timers,
	}
	bs, err := json.Marshal(&m)
	ts.Unlock()
	return bs, err
}

// Add schedules a one-shot dispatch after the given duration.
func (ts *Timers) Add(ctx context.Context, id, catalog string, action interface{}, in time.Duration) error {
	return ts.add(ctx, &TimerEntry{
		Id:      id,
		Catalog: catalog,
		Action:  action,
		At:      time.Now().UTC().Add(in),
	})
}

// AddCron schedules a repeating dispatch per a crontab expression.
func (ts *Timers) AddCron(ctx context.Context, id, catalog string, action interface{}, cron string) error {
	c, err := cronexpr.Parse(cron)
	if err != nil {
		return err
	}
	return ts.add(ctx, &TimerEntry{
		Id:      id,
		Catalog: catalog,
		Action:  action,
		At:      c.Next(time.Now()).UTC(),
		Cron:    cron,
	})
}

func (ts *Timers) add(ctx context.Context, te *TimerEntry) error {
	ts.Lock()
	defer ts.Unlock()

	if _, have := ts.timers[te.Id]; have {
		return Exists
	}

	te.ctl = make(chan bool)
	ts.timers[te.Id] = te

	go ts.run(ctx, te)

	return nil
}

// run waits for one firing.  A cron entry reschedules itself; a
// one-shot entry removes itself.
func (ts *Timers) run(ctx context.Context, te *TimerEntry) {
	stop := func() {
		if err := ts.Rem(ctx, te.Id); err != nil && err != NotFound {
			ts.err(fmt.Errorf("Timers rem error %v id=%s", err, te.Id))
		}
	}

	timer := time.NewTimer(te.At.Sub(time.Now()))
	select {
	case <-ctx.Done():
		stop()
	case <-te.ctl:
		// We only get here via a Rem() call.
	case <-ts.ctl:
		stop()
	case <-timer.C:
		Logf("Timers firing %s for %s", te.Id, te.Catalog)
		if _, err := ts.dispatch(ctx, te.Catalog, te.Action); err != nil {
			ts.err(fmt.Errorf("Timers dispatch error %v id=%s", err, te.Id))
		}

		if te.Cron == "" {
			ts.Lock()
			delete(ts.timers, te.Id)
			ts.Unlock()
			return
		}

		// Reschedule.
		c, err := cronexpr.Parse(te.Cron)
		if err != nil {
			// Parsed once already at AddCron, so this
			// shouldn't happen.
			ts.err(fmt.Errorf("Timers cron error %v id=%s", err, te.Id))
			return
		}
		te.At = c.Next(time.Now()).UTC()
		go ts.run(ctx, te)
	}
}

func (ts *Timers) Shutdown() error {
	close(ts.ctl)
	return nil
}

func (ts *Timers) Rem(ctx context.Context, id string) error {
	ts.Lock()
	defer ts.Unlock()

	te, have := ts.timers[id]
	if !have {
		return NotFound
	}

	delete(ts.timers, id)

	close(te.ctl)

	return nil
}

func (ts *Timers) err(err error) {
	if ts.Errors != nil {
		ts.Errors <- err
	} else {
		log.Println(err)
	}
}
