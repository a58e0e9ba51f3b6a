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
	"encoding/binary"
	"encoding/json"
	"log"
	"time"

	"github.com/Comcast/flange/core"

	bolt "go.etcd.io/bbolt"
)

const (
	stateKey      = "state"
	journalSuffix = ".journal"
)

// Storage persists catalog states and journals dispatched actions.
//
// One bucket per catalog holds the latest state snapshot; a sibling
// bucket holds the action journal in dispatch order.
type Storage struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

// NewStorage just remembers the filename.  Call Open.
func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

// Open opens the bolt file.
func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// Close closes the bolt file.
func (s *Storage) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s == nil {
		return
	}
	if s.Debug {
		log.Printf("Storage "+format, args...)
	}
}

// SaveState writes the latest state snapshot for a catalog.
func (s *Storage) SaveState(ctx context.Context, catalog string, state interface{}) error {
	if s == nil {
		return nil
	}
	js, err := json.Marshal(&state)
	if err != nil {
		return err
	}
	s.logf("SaveState %s %s", catalog, js)
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(catalog))
		if err != nil {
			return err
		}
		return b.Put([]byte(stateKey), js)
	})
}

// LoadState reads the saved snapshot for a catalog (if any).
func (s *Storage) LoadState(ctx context.Context, catalog string) (interface{}, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	var (
		state interface{}
		have  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(catalog))
		if b == nil {
			return nil
		}
		js := b.Get([]byte(stateKey))
		if js == nil {
			return nil
		}
		have = true
		return json.Unmarshal(js, &state)
	})
	if err != nil {
		return nil, false, err
	}
	s.logf("LoadState %s found=%v", catalog, have)
	return state, have, nil
}

// Journal appends an action to a catalog's journal.
func (s *Storage) Journal(ctx context.Context, catalog string, action interface{}) error {
	if s == nil {
		return nil
	}
	js, err := json.Marshal(&action)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(catalog + journalSuffix))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, js)
	})
}

// GetJournal returns a catalog's journaled actions in dispatch
// order.
func (s *Storage) GetJournal(ctx context.Context, catalog string) ([]interface{}, error) {
	if s == nil {
		return nil, nil
	}
	acc := make([]interface{}, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(catalog + journalSuffix))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var action interface{}
			if err := json.Unmarshal(v, &action); err != nil {
				return err
			}
			acc = append(acc, action)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logf("GetJournal %s found %d actions", catalog, len(acc))
	return acc, nil
}

// Middleware makes a store middleware that journals every action
// that the rest of the chain accepts.
func (s *Storage) Middleware(catalog string) core.Middleware {
	return func(next core.Dispatch) core.Dispatch {
		return func(ctx context.Context, action interface{}) (interface{}, error) {
			result, err := next(ctx, action)
			if err != nil {
				return result, err
			}
			if jerr := s.Journal(ctx, catalog, action); jerr != nil {
				// The dispatch already committed, so the
				// journal is now missing an action.  Say so
				// loudly but don't undo anything.
				log.Printf("Storage journal error %v catalog=%s", jerr, catalog)
			}
			return result, nil
		}
	}
}
