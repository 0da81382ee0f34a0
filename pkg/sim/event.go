// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package sim

import (
	"slices"

	akita "github.com/sarchlab/akita/v4/sim"
)

// A completion marks the moment one or more stages finish executing.  All
// stages finishing at the same instant share one event, hence they retire
// together regardless of how the engine orders simultaneous events.
type completion struct {
	*akita.EventBase
	stages []uint
}

// Schedule the completion of a stage at a given time, joining the event for
// that instant if one is already pending.
func (s *simulation) schedule(stage uint, at float64) {
	if evt, ok := s.pending[at]; ok {
		evt.stages = append(evt.stages, stage)
		return
	}
	//
	evt := &completion{akita.NewEventBase(akita.VTimeInSec(at), s), []uint{stage}}
	s.pending[at] = evt
	s.engine.Schedule(evt)
}

// Handle retires every stage completing at the event's instant, then makes all
// the progress possible before time moves on.  Once enough iterations have
// completed (or the simulation was cancelled) remaining events are ignored.
func (s *simulation) Handle(e akita.Event) error {
	var evt = e.(*completion)
	//
	delete(s.pending, float64(evt.Time()))
	//
	if s.err != nil || s.done >= s.limit {
		return nil
	}
	//
	if s.count >= s.nextCheck {
		s.nextCheck = s.count + cancelCheckInterval
		//
		if s.err = s.ctx.Err(); s.err != nil {
			return nil
		}
	}
	//
	s.now = float64(evt.Time())
	slices.Sort(evt.stages)
	//
	for _, stage := range evt.stages {
		s.complete(stage)
		s.count++
	}
	//
	s.settle()
	//
	return nil
}
