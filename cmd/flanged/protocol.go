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
	"time"

	. "github.com/Comcast/flange/util/testutil"
)

// DOp is a Demo service Operation.
//
// Only one of Dispatch, GetState, or Timer should have a value.
type DOp struct {
	// Dispatch submits an action to a catalog's store, either by
	// creator name or as a raw action.
	Dispatch *DispatchOp `json:"dispatch,omitempty" yaml:",omitempty"`

	// GetState gets a snapshot of a catalog's store.
	GetState *GetStateOp `json:"getState,omitempty" yaml:",omitempty"`

	// Timer adds or removes a scheduled dispatch.
	Timer *TimerOp `json:"timer,omitempty" yaml:",omitempty"`

	// Error will hold an error (if any) that results from
	// processing this operation.
	Error error `json:"-" yaml:"-"`

	// Err will hold a string representation of an error (if any)
	// that results from processing this operation.
	Err string `json:"err,omitempty" yaml:",omitempty"`
}

// erred is a utility function to return values to assign to
// operation Error and Err fields.
func erred(err error) (error, string) {
	if err == nil {
		return nil, ""
	}
	return err, err.Error()
}

func (o *DOp) Do(ctx context.Context, s *Service) error {
	s.op(ctx, map[string]interface{}{
		"do": o,
	})

	var err error
	if o.Dispatch != nil {
		err = o.Dispatch.Do(ctx, s)
	} else if o.GetState != nil {
		err = o.GetState.Do(ctx, s)
	} else if o.Timer != nil {
		err = o.Timer.Do(ctx, s)
	} else {
		err = fmt.Errorf("not implemented: %s", JS(o))
	}

	if err != nil && o.Error == nil {
		o.Error, o.Err = erred(err)
	}

	s.op(ctx, map[string]interface{}{
		"did": o,
	})

	return o.Error
}

// DispatchOp submits one action.
//
// With a Name, the op goes through the catalog's bound creator with
// the given Args, which is the whole binding story in one place.
// With an Action, the op goes straight to the store's dispatch.
// Giving both is an error.
type DispatchOp struct {
	Catalog string `json:"catalog"`

	// Name is a creator name in the catalog.
	Name string        `json:"name,omitempty" yaml:",omitempty"`
	Args []interface{} `json:"args,omitempty" yaml:",omitempty"`

	// Action is a raw action.
	Action interface{} `json:"action,omitempty" yaml:",omitempty"`

	// Result is whatever dispatch returned.
	Result interface{} `json:"result,omitempty" yaml:",omitempty"`
}

func (o *DispatchOp) Do(ctx context.Context, s *Service) error {
	if o.Name != "" && o.Action != nil {
		return fmt.Errorf("both a creator name and a raw action given")
	}

	var (
		result interface{}
		err    error
	)
	if o.Name != "" {
		result, err = s.Invoke(ctx, o.Catalog, o.Name, o.Args...)
	} else if o.Action != nil {
		result, err = s.Dispatch(ctx, o.Catalog, o.Action)
	} else {
		return fmt.Errorf("neither a creator name nor a raw action given")
	}
	if err != nil {
		return err
	}
	o.Result = result
	return nil
}

// GetStateOp copies out a catalog's current state.
type GetStateOp struct {
	Catalog string      `json:"catalog"`
	State   interface{} `json:"state,omitempty" yaml:",omitempty"`
}

func (o *GetStateOp) Do(ctx context.Context, s *Service) error {
	state, err := s.GetState(ctx, o.Catalog)
	if err != nil {
		return err
	}
	o.State = state
	return nil
}

// TimerOp adds or removes a scheduled dispatch.
type TimerOp struct {
	Add *AddTimerOp `json:"add,omitempty" yaml:",omitempty"`
	Rem *RemTimerOp `json:"rem,omitempty" yaml:",omitempty"`
}

func (o *TimerOp) Do(ctx context.Context, s *Service) error {
	if o.Add != nil {
		return o.Add.Do(ctx, s)
	}
	if o.Rem != nil {
		return o.Rem.Do(ctx, s)
	}
	return fmt.Errorf("empty timer op")
}

// AddTimerOp schedules a dispatch, either once after In, or
// repeatedly per a Cron expression.
type AddTimerOp struct {
	Id      string      `json:"id"`
	Catalog string      `json:"catalog"`
	Action  interface{} `json:"action"`

	// In is a duration like "10s".
	In string `json:"in,omitempty" yaml:",omitempty"`

	// Cron is a crontab expression.
	Cron string `json:"cron,omitempty" yaml:",omitempty"`
}

func (o *AddTimerOp) Do(ctx context.Context, s *Service) error {
	if o.Cron != "" {
		return s.timers.AddCron(ctx, o.Id, o.Catalog, o.Action, o.Cron)
	}
	d, err := time.ParseDuration(o.In)
	if err != nil {
		return err
	}
	return s.timers.Add(ctx, o.Id, o.Catalog, o.Action, d)
}

// RemTimerOp cancels a timer by id.
type RemTimerOp struct {
	Id string `json:"id"`
}

func (o *RemTimerOp) Do(ctx context.Context, s *Service) error {
	return s.timers.Rem(ctx, o.Id)
}
