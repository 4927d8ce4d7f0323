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
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/beorn7/perks/quantile"
)

// quantileLabel is used for the label that defines the quantile in a
// summary.
const quantileLabel = "quantile"

// A Summary captures individual observations from an event or sample stream and
// summarizes them in a manner similar to traditional summary statistics: 1. sum
// of observations, 2. observation count, 3. rank estimations.
//
// Quantiles are estimated over the whole lifetime of the series with the
// targeted streaming algorithm of github.com/beorn7/perks.
type Summary interface {
	// Observe adds a single observation to the summary.
	Observe(float64)
}

// DefObjectives are the default Summary quantile values and their respective
// absolute error.
var DefObjectives = map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}

// SummaryOpts bundles the options for creating a Summary metric. It is
// mandatory to set Name and Help to a non-empty string. All other fields are
// optional and can safely be left at their zero value.
type SummaryOpts struct {
	Namespace string
	Subsystem string
	Name      string

	// Help provides information about this Summary. Mandatory!
	Help string

	// ConstLabels are used to attach fixed labels to this metric.
	ConstLabels Labels

	// Objectives defines the quantile rank estimates with their respective
	// absolute error. If Objectives[q] = e, then the value reported for q
	// will be the φ-quantile value for some φ between q-e and q+e. The
	// default value is DefObjectives.
	Objectives map[float64]float64
}

func (o SummaryOpts) fqName() string {
	return BuildFQName(o.Namespace, o.Subsystem, o.Name)
}

func (o SummaryOpts) objectives() (map[float64]float64, error) {
	objectives := o.Objectives
	if len(objectives) == 0 {
		objectives = DefObjectives
	}
	for q, e := range objectives {
		if q < 0 || q > 1 || math.IsNaN(q) {
			return nil, fmt.Errorf("%w: summary %q has quantile %v outside [0, 1]", ErrInvalidDesc, o.fqName(), q)
		}
		if e < 0 || e > 1 || math.IsNaN(e) {
			return nil, fmt.Errorf("%w: summary %q has error %v outside [0, 1]", ErrInvalidDesc, o.fqName(), e)
		}
	}
	return maps.Clone(objectives), nil
}

type summary struct {
	// sortedObjectives is shared by all series of a SummaryVec.
	sortedObjectives []float64

	mtx    sync.Mutex
	stream *quantile.Stream
	sum    float64
	count  uint64
}

func newSummary(objectives map[float64]float64, sortedObjectives []float64) *summary {
	return &summary{
		sortedObjectives: sortedObjectives,
		stream:           quantile.NewTargeted(objectives),
	}
}

func (s *summary) Observe(v float64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	// NaN breaks the ordering the stream relies on.
	if !math.IsNaN(v) {
		s.stream.Insert(v)
	}
	s.sum += v
	s.count++
}

func (s *summary) write(out *Series) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	qs := make([]Quantile, 0, len(s.sortedObjectives))
	for _, rank := range s.sortedObjectives {
		v := math.NaN()
		if s.stream.Count() > 0 {
			v = s.stream.Query(rank)
		}
		qs = append(qs, Quantile{Quantile: rank, Value: v})
	}
	out.Summary = &SummarySnapshot{
		Quantiles:   qs,
		SampleCount: s.count,
		SampleSum:   s.sum,
	}
}

// SummaryVec is a Collector that bundles a set of Summaries that all share the
// same Desc and objectives, but have different values for their variable
// labels. Create instances with Registry.NewSummary.
type SummaryVec struct {
	*metricVec[*summary]
	objectives map[float64]float64
}

func newSummaryVec(desc *Desc, objectives map[float64]float64) *SummaryVec {
	sorted := slices.Sorted(maps.Keys(objectives))
	return &SummaryVec{
		metricVec: newMetricVec(desc, func([]string) *summary {
			return newSummary(objectives, sorted)
		}),
		objectives: objectives,
	}
}

// GetMetricWithLabelValues returns the Summary for the given slice of label
// values (same order as the variable labels in Desc). If that combination of
// label values is accessed for the first time, a new Summary is created.
func (v *SummaryVec) GetMetricWithLabelValues(lvs ...string) (Summary, error) {
	s, err := v.getMetricWithLabelValues(lvs)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetMetricWith returns the Summary for the given Labels map (the label
// names must match those of the variable labels in Desc).
func (v *SummaryVec) GetMetricWith(labels Labels) (Summary, error) {
	s, err := v.getMetricWith(labels)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// WithLabelValues works as GetMetricWithLabelValues, but panics where
// GetMetricWithLabelValues would have returned an error.
func (v *SummaryVec) WithLabelValues(lvs ...string) Summary {
	s, err := v.GetMetricWithLabelValues(lvs...)
	if err != nil {
		panic(err)
	}
	return s
}

// With works as GetMetricWith, but panics where GetMetricWithLabels would
// have returned an error.
func (v *SummaryVec) With(labels Labels) Summary {
	s, err := v.GetMetricWith(labels)
	if err != nil {
		panic(err)
	}
	return s
}

// Observe adds val to the series identified by labels.
func (v *SummaryVec) Observe(labels Labels, val float64) error {
	s, err := v.getMetricWith(labels)
	if err != nil {
		return err
	}
	s.Observe(val)
	return nil
}
