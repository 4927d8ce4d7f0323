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

// Gauge is a Metric that represents a single numerical value that can
// arbitrarily go up and down.
//
// A Gauge is typically used for measured values like temperatures or current
// memory usage, but also "counts" that can go up and down, like the number of
// running goroutines.
type Gauge interface {
	// Set sets the Gauge to an arbitrary value.
	Set(float64)
	// Inc increments the Gauge by 1. Use Add to increment it by arbitrary
	// values.
	Inc()
	// Dec decrements the Gauge by 1. Use Sub to decrement it by arbitrary
	// values.
	Dec()
	// Add adds the given value to the Gauge. (The value can be negative,
	// resulting in a decrease of the Gauge.)
	Add(float64)
	// Sub subtracts the given value from the Gauge. (The value can be
	// negative, resulting in an increase of the Gauge.)
	Sub(float64)
}

// GaugeOpts is an alias for Opts. See there for doc comments.
type GaugeOpts Opts

type gauge struct {
	// valBits contains the bits of the represented float64 value. It has
	// to go first in the struct to guarantee alignment for atomic
	// operations.
	valBits uint64
}

func (g *gauge) Set(val float64) { atomicStoreFloat(&g.valBits, val) }

func (g *gauge) Inc() { g.Add(1) }

func (g *gauge) Dec() { g.Add(-1) }

func (g *gauge) Add(val float64) {
	atomicUpdateFloat(&g.valBits, func(old float64) float64 { return old + val })
}

func (g *gauge) Sub(val float64) { g.Add(val * -1) }

func (g *gauge) write(s *Series) {
	s.Value = atomicLoadFloat(&g.valBits)
}

// GaugeVec is a Collector that bundles a set of Gauges that all share the same
// Desc, but have different values for their variable labels. This is used if
// you want to count the same thing partitioned by various dimensions
// (e.g. number of operations queued, partitioned by user and operation
// type). Create instances with Registry.NewGauge.
type GaugeVec struct {
	*metricVec[*gauge]
}

func newGaugeVec(desc *Desc) *GaugeVec {
	return &GaugeVec{
		metricVec: newMetricVec(desc, func([]string) *gauge { return &gauge{} }),
	}
}

// GetMetricWithLabelValues returns the Gauge for the given slice of label
// values (same order as the variable labels in Desc). If that combination of
// label values is accessed for the first time, a new Gauge is created.
func (v *GaugeVec) GetMetricWithLabelValues(lvs ...string) (Gauge, error) {
	g, err := v.getMetricWithLabelValues(lvs)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetMetricWith returns the Gauge for the given Labels map (the label names
// must match those of the variable labels in Desc). If that label map is
// accessed for the first time, a new Gauge is created.
func (v *GaugeVec) GetMetricWith(labels Labels) (Gauge, error) {
	g, err := v.getMetricWith(labels)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// WithLabelValues works as GetMetricWithLabelValues, but panics where
// GetMetricWithLabelValues would have returned an error.
func (v *GaugeVec) WithLabelValues(lvs ...string) Gauge {
	g, err := v.GetMetricWithLabelValues(lvs...)
	if err != nil {
		panic(err)
	}
	return g
}

// With works as GetMetricWith, but panics where GetMetricWithLabels would
// have returned an error.
func (v *GaugeVec) With(labels Labels) Gauge {
	g, err := v.GetMetricWith(labels)
	if err != nil {
		panic(err)
	}
	return g
}

// Set sets the series identified by labels to val.
func (v *GaugeVec) Set(labels Labels, val float64) error {
	g, err := v.getMetricWith(labels)
	if err != nil {
		return err
	}
	g.Set(val)
	return nil
}

// Add adds val, which may be negative, to the series identified by labels.
func (v *GaugeVec) Add(labels Labels, val float64) error {
	g, err := v.getMetricWith(labels)
	if err != nil {
		return err
	}
	g.Add(val)
	return nil
}

// Sub subtracts val from the series identified by labels.
func (v *GaugeVec) Sub(labels Labels, val float64) error {
	return v.Add(labels, -val)
}

// Inc increments the series identified by labels by 1.
func (v *GaugeVec) Inc(labels Labels) error {
	return v.Add(labels, 1)
}

// Dec decrements the series identified by labels by 1.
func (v *GaugeVec) Dec(labels Labels) error {
	return v.Add(labels, -1)
}
