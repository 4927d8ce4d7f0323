// Copyright 2014 The Prometheus Authors
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

import (
	"fmt"
	"math"
)

// Counter is a Metric that represents a single numerical value that only ever
// goes up. That implies that it cannot be used to count items whose number can
// also go down, e.g. the number of currently running goroutines. Those
// "counters" are represented by Gauges.
//
// A Counter is typically used to count requests served, tasks completed, errors
// occurred, etc.
type Counter interface {
	// Inc increments the counter by 1.
	Inc()
	// Add adds the given value to the counter. It returns an error wrapping
	// ErrInvalidDelta if the value is negative or NaN, leaving the counter
	// untouched.
	Add(float64) error
}

// CounterOpts is an alias for Opts. See there for doc comments.
type CounterOpts Opts

type counter struct {
	// valBits contains the bits of the represented float64 value. It has
	// to go first in the struct to guarantee alignment for atomic
	// operations.
	valBits uint64

	desc *Desc
}

func (c *counter) Inc() {
	atomicUpdateFloat(&c.valBits, func(v float64) float64 { return v + 1 })
}

func (c *counter) Add(v float64) error {
	if err := checkCounterDelta(c.desc, v); err != nil {
		return err
	}
	atomicUpdateFloat(&c.valBits, func(old float64) float64 { return old + v })
	return nil
}

func (c *counter) write(s *Series) {
	s.Value = atomicLoadFloat(&c.valBits)
}

func checkCounterDelta(desc *Desc, v float64) error {
	if v < 0 || math.IsNaN(v) {
		return fmt.Errorf("%w: %s cannot be increased by %v", ErrInvalidDelta, desc.fqName, v)
	}
	return nil
}

// CounterVec is a Collector that bundles a set of Counters that all share the
// same Desc, but have different values for their variable labels. This is
// used if you want to count the same thing partitioned by various dimensions
// (e.g. number of HTTP requests, partitioned by response code and
// method). Create instances with Registry.NewCounter.
type CounterVec struct {
	*metricVec[*counter]
}

func newCounterVec(desc *Desc) *CounterVec {
	return &CounterVec{
		metricVec: newMetricVec(desc, func([]string) *counter {
			return &counter{desc: desc}
		}),
	}
}

// GetMetricWithLabelValues returns the Counter for the given slice of label
// values (same order as the variable labels in Desc). If that combination of
// label values is accessed for the first time, a new Counter is created.
//
// An error is returned if the number of label values is not the same as the
// number of variable labels in Desc or if a value is not valid UTF-8.
func (v *CounterVec) GetMetricWithLabelValues(lvs ...string) (Counter, error) {
	c, err := v.getMetricWithLabelValues(lvs)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetMetricWith returns the Counter for the given Labels map (the label names
// must match those of the variable labels in Desc). If that label map is
// accessed for the first time, a new Counter is created.
func (v *CounterVec) GetMetricWith(labels Labels) (Counter, error) {
	c, err := v.getMetricWith(labels)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// WithLabelValues works as GetMetricWithLabelValues, but panics where
// GetMetricWithLabelValues would have returned an error.
func (v *CounterVec) WithLabelValues(lvs ...string) Counter {
	c, err := v.GetMetricWithLabelValues(lvs...)
	if err != nil {
		panic(err)
	}
	return c
}

// With works as GetMetricWith, but panics where GetMetricWithLabels would
// have returned an error.
func (v *CounterVec) With(labels Labels) Counter {
	c, err := v.GetMetricWith(labels)
	if err != nil {
		panic(err)
	}
	return c
}

// Inc increments the series identified by labels by 1.
func (v *CounterVec) Inc(labels Labels) error {
	c, err := v.getMetricWith(labels)
	if err != nil {
		return err
	}
	c.Inc()
	return nil
}

// Add adds delta to the series identified by labels. The delta is checked
// before the series is looked up, so a rejected call never creates one.
func (v *CounterVec) Add(labels Labels, delta float64) error {
	if err := checkCounterDelta(v.desc, delta); err != nil {
		return err
	}
	c, err := v.getMetricWith(labels)
	if err != nil {
		return err
	}
	return c.Add(delta)
}
