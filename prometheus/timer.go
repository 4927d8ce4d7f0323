// Copyright 2016 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prometheus

import "time"

// Timer is a helper type to time functions. Use NewTimer to create new
// instances.
type Timer struct {
	begin    time.Time
	observer Observer
	now      func() time.Time
}

// NewTimer creates a new Timer. The provided Observer is used to observe a
// duration in seconds. If the Observer is nil, ObserveDuration only returns
// the duration. Timer is usually used to time a function call in the
// following way:
//
//	func TimeMe() {
//	    timer := NewTimer(myHistogram)
//	    defer timer.ObserveDuration()
//	    // Do actual work.
//	}
func NewTimer(o Observer) *Timer {
	return newTimer(o, time.Now)
}

func newTimer(o Observer, now func() time.Time) *Timer {
	return &Timer{
		begin:    now(),
		observer: o,
		now:      now,
	}
}

// ObserveDuration records the duration passed since the Timer was created
// with NewTimer. It calls the Observe method of the Observer provided during
// construction with the duration in seconds as an argument. The observed
// duration is also returned.
func (t *Timer) ObserveDuration() time.Duration {
	d := t.now().Sub(t.begin)
	if t.observer != nil {
		t.observer.Observe(d.Seconds())
	}
	return d
}
