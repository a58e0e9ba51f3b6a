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
	"fmt"
	"log"
	"sync"

	"github.com/Comcast/flange/catalog"
	"github.com/Comcast/flange/core"
	"github.com/Comcast/flange/interpreters"
	"github.com/Comcast/flange/tools"
)

// Update is what the service fans out when a catalog's state
// changes.
type Update struct {
	Catalog string      `json:"catalog"`
	State   interface{} `json:"state"`
}

// Runtime is one catalog, compiled and running: its store and its
// bound creators.
type Runtime struct {
	Catalog *catalog.Catalog
	Store   *core.Store

	// Bound is the catalog's creators bound to the store's
	// dispatch.  The service itself is a consumer of the binding
	// layer; it never hands the store to anybody.
	Bound core.Bound
}

// Service hosts a store per catalog, plus lessons, timers, storage,
// and whatever transports main() turns on.
type Service struct {
	Interpreters core.InterpretersMap

	// Updates carries state changes for the transports to fan
	// out.  Main should set this before any dispatching begins.
	Updates chan interface{}

	// Processing gets operations as they're processed (when
	// set).
	Processing chan interface{}

	// Errors gets errors that have no better home (when set).
	Errors chan interface{}

	Lessons []*tools.Lesson

	sync.RWMutex
	runtimes map[string]*Runtime

	store  *Storage
	timers *Timers
	hook   *Webhook

	// sinks maps a transport connection id to a channel that gets
	// a copy of everything on Updates.  See Fanout.
	sinks sync.Map
}

// UnknownCatalog occurs when an op names a catalog the service
// doesn't host.
type UnknownCatalog struct {
	Name string
}

func (e *UnknownCatalog) Error() string {
	return `catalog "` + e.Name + `" not found`
}

// UnknownCreator occurs when a dispatch op names a creator that
// isn't in the catalog.
type UnknownCreator struct {
	Catalog string
	Name    string
}

func (e *UnknownCreator) Error() string {
	return `creator "` + e.Name + `" not found in catalog "` + e.Catalog + `"`
}

// NewService loads the catalogs and lessons, opens storage, and
// builds a store per catalog.
//
// A catalog with a saved state snapshot resumes from it; otherwise
// the catalog's initial state is used, or the journal is replayed
// when replay is true.
func NewService(ctx context.Context, conf *Config) (*Service, error) {
	s := &Service{
		Interpreters: interpreters.Standard(),
		runtimes:     make(map[string]*Runtime, 8),
	}

	if conf.DBFile != "" {
		store, err := NewStorage(conf.DBFile)
		if err != nil {
			return nil, err
		}
		if err = store.Open(ctx); err != nil {
			return nil, err
		}
		store.Debug = Verbose
		s.store = store
	}

	s.timers = NewTimers(s.Dispatch)

	if conf.WebhookURL != "" {
		hook, err := NewWebhook(conf.WebhookURL)
		if err != nil {
			return nil, err
		}
		s.hook = hook
	}

	if conf.LessonsDir != "" {
		lessons, err := tools.ReadLessons(conf.LessonsDir)
		if err != nil {
			return nil, err
		}
		s.Lessons = lessons
	}

	cs, err := catalog.ReadDir(conf.CatalogsDir)
	if err != nil {
		return nil, err
	}

	for name, c := range cs {
		if err := s.addCatalog(ctx, c, conf); err != nil {
			return nil, fmt.Errorf(`catalog "%s": %v`, name, err)
		}
	}

	return s, nil
}

func (s *Service) addCatalog(ctx context.Context, c *catalog.Catalog, conf *Config) error {
	compiled, err := c.Compile(ctx, s.Interpreters)
	if err != nil {
		return err
	}

	// Resume from a snapshot, or replay the journal, before the
	// store exists, so nobody can dispatch into the middle of a
	// rehydration.
	initial := c.Initial
	if s.store != nil {
		if saved, have, err := s.store.LoadState(ctx, c.Name); err != nil {
			return err
		} else if have {
			initial = saved
		} else if conf.Replay {
			replayed, have, err := s.replay(ctx, c.Name, compiled)
			if err != nil {
				return err
			}
			if have {
				initial = replayed
			}
		}
	}

	middleware := make([]core.Middleware, 0, 2)
	if s.hook != nil {
		middleware = append(middleware, s.hook.Middleware(c.Name))
	}
	if s.store != nil {
		middleware = append(middleware, s.store.Middleware(c.Name))
	}

	store, err := core.NewStore(compiled.Reducer, initial, middleware...)
	if err != nil {
		return err
	}

	bound, err := core.Bind(compiled.Creators, store.Dispatch)
	if err != nil {
		return err
	}

	name := c.Name
	store.Subscribe(func(ctx context.Context, state interface{}) {
		if s.store != nil {
			if err := s.store.SaveState(ctx, name, state); err != nil {
				s.err(err)
			}
		}
		s.update(&Update{Catalog: name, State: state})
	})

	s.Lock()
	s.runtimes[c.Name] = &Runtime{
		Catalog: c,
		Store:   store,
		Bound:   bound,
	}
	s.Unlock()

	return nil
}

// replay runs a catalog's journal through a quiet store (no journal
// middleware, no listeners) and returns the resulting state.
func (s *Service) replay(ctx context.Context, name string, compiled *catalog.Compiled) (interface{}, bool, error) {
	actions, err := s.store.GetJournal(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if len(actions) == 0 {
		return nil, false, nil
	}

	quiet, err := compiled.NewStore()
	if err != nil {
		return nil, false, err
	}
	for _, action := range actions {
		if _, err := quiet.Dispatch(ctx, action); err != nil {
			return nil, false, err
		}
	}

	Logf("replayed %d actions for %s", len(actions), name)

	return quiet.State(), true, nil
}

// Runtime looks up a catalog's runtime.
func (s *Service) Runtime(name string) (*Runtime, error) {
	s.RLock()
	r, have := s.runtimes[name]
	s.RUnlock()
	if !have {
		return nil, &UnknownCatalog{name}
	}
	return r, nil
}

// Catalogs lists the hosted catalogs.
func (s *Service) Catalogs() []*catalog.Catalog {
	s.RLock()
	acc := make([]*catalog.Catalog, 0, len(s.runtimes))
	for _, r := range s.runtimes {
		acc = append(acc, r.Catalog)
	}
	s.RUnlock()
	return acc
}

// Invoke calls a catalog's bound creator by name.
func (s *Service) Invoke(ctx context.Context, catalogName, creatorName string, args ...interface{}) (interface{}, error) {
	r, err := s.Runtime(catalogName)
	if err != nil {
		return nil, err
	}
	f, have := r.Bound[creatorName]
	if !have {
		return nil, &UnknownCreator{catalogName, creatorName}
	}
	return f(ctx, args...)
}

// Dispatch submits a raw action to a catalog's store.
func (s *Service) Dispatch(ctx context.Context, catalogName string, action interface{}) (interface{}, error) {
	r, err := s.Runtime(catalogName)
	if err != nil {
		return nil, err
	}
	return r.Store.Dispatch(ctx, action)
}

// GetState snapshots a catalog's state.
func (s *Service) GetState(ctx context.Context, catalogName string) (interface{}, error) {
	r, err := s.Runtime(catalogName)
	if err != nil {
		return nil, err
	}
	return r.Store.State(), nil
}

// Fanout copies everything on Updates to every registered sink.
// Call once, before starting any transport.
func (s *Service) Fanout(ctx context.Context) {
	if s.Updates == nil {
		s.Updates = make(chan interface{}, 1024)
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case x := <-s.Updates:
				s.sinks.Range(func(k, v interface{}) bool {
					c := v.(chan interface{})
					select {
					case c <- x:
					default:
						log.Printf("%v updates blocked", k)
					}
					return true
				})
			}
		}
	}()
}

func (s *Service) addSink(id string, c chan interface{}) {
	s.sinks.Store(id, c)
}

func (s *Service) remSink(id string) {
	s.sinks.Delete(id)
}

func (s *Service) update(u *Update) {
	if s.Updates == nil {
		return
	}
	select {
	case s.Updates <- u:
	default:
		Logf("Service.Updates blocked")
	}
}

func (s *Service) op(ctx context.Context, x interface{}) {
	if s.Processing == nil {
		return
	}
	select {
	case s.Processing <- x:
	default:
	}
}

func (s *Service) err(err error) {
	if s.Errors != nil {
		select {
		case s.Errors <- err:
			return
		default:
		}
	}
	Logf("Service error %v", err)
}

// Shutdown stops the timers and closes storage.
func (s *Service) Shutdown(ctx context.Context) error {
	if err := s.timers.Shutdown(); err != nil {
		return err
	}
	return s.store.Close(ctx)
}
