// Copyright 2015 The Prometheus Authors
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
	"slices"
	"sort"
	"sync"
)

// A Histogram counts individual observations from an event or sample stream in
// configurable buckets. Similar to a summary, it also provides a sum of
// observations and an observation count.
//
// On the Prometheus server, quantiles can be calculated from a Histogram using
// the histogram_quantile function in the query language.
type Histogram interface {
	// Observe adds a single observation to the histogram.
	Observe(float64)
}

// bucketLabel is used for the label that defines the upper bound of a
// bucket of a histogram ("le" -> "less or equal").
const bucketLabel = "le"

// DefBuckets are the default Histogram buckets. The default buckets are
// tailored to broadly measure the response time (in seconds) of a network
// service.
var DefBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// LinearBuckets creates 'count' buckets, each 'width' wide, where the lowest
// bucket has an upper bound of 'start'. The final +Inf bucket is not counted
// and not included in the returned slice. The returned slice is meant to be
// used for the Buckets field of HistogramOpts.
//
// The function panics if 'count' is zero or negative.
func LinearBuckets(start, width float64, count int) []float64 {
	if count < 1 {
		panic("LinearBuckets needs a positive count")
	}
	buckets := make([]float64, count)
	for i := range buckets {
		buckets[i] = start
		start += width
	}
	return buckets
}

// ExponentialBuckets creates 'count' buckets, where the lowest bucket has an
// upper bound of 'start' and each following bucket's upper bound is 'factor'
// times the previous bucket's upper bound. The final +Inf bucket is not counted
// and not included in the returned slice.
//
// The function panics if 'count' is 0 or negative, if 'start' is 0 or negative,
// or if 'factor' is less than or equal 1.
func ExponentialBuckets(start, factor float64, count int) []float64 {
	if count < 1 {
		panic("ExponentialBuckets needs a positive count")
	}
	if start <= 0 {
		panic("ExponentialBuckets needs a positive start value")
	}
	if factor <= 1 {
		panic("ExponentialBuckets needs a factor greater than 1")
	}
	buckets := make([]float64, count)
	for i := range buckets {
		buckets[i] = start
		start *= factor
	}
	return buckets
}

// HistogramOpts bundles the options for creating a Histogram metric. It is
// mandatory to set Name and Help to a non-empty string. All other fields are
// optional and can safely be left at their zero value.
type HistogramOpts struct {
	// Namespace, Subsystem, and Name are components of the fully-qualified
	// name of the Histogram (created by joining these components with
	// "_"). Only Name is mandatory, the others merely help structuring the
	// name.
	Namespace string
	Subsystem string
	Name      string

	// Help provides information about this Histogram. Mandatory!
	Help string

	// ConstLabels are used to attach fixed labels to this metric.
	ConstLabels Labels

	// Buckets defines the buckets into which observations are counted. Each
	// element in the slice is the upper inclusive bound of a bucket. The
	// values must be sorted in strictly increasing order. There is no need
	// to add a highest bucket with +Inf bound, it will be added
	// implicitly. The default value is DefBuckets.
	Buckets []float64
}

func (o HistogramOpts) fqName() string {
	return BuildFQName(o.Namespace, o.Subsystem, o.Name)
}

// upperBounds validates the configured buckets and returns them without a
// trailing +Inf.
func (o HistogramOpts) upperBounds() ([]float64, error) {
	buckets := o.Buckets
	if len(buckets) == 0 {
		buckets = DefBuckets
	}
	if math.IsInf(buckets[len(buckets)-1], +1) {
		buckets = buckets[:len(buckets)-1]
	}
	for i, b := range buckets {
		if math.IsNaN(b) {
			return nil, fmt.Errorf("%w: histogram %q has a NaN bucket bound", ErrInvalidDesc, o.fqName())
		}
		if i > 0 && b <= buckets[i-1] {
			return nil, fmt.Errorf(
				"%w: histogram %q buckets must be in increasing order: %v >= %v",
				ErrInvalidDesc, o.fqName(), buckets[i-1], b,
			)
		}
	}
	return slices.Clone(buckets), nil
}

type histogram struct {
	// upperBounds is shared by all series of a HistogramVec and never
	// written to.
	upperBounds []float64

	mtx sync.Mutex
	// counts are per bucket, not cumulative. The last element counts the
	// observations above the highest upper bound.
	counts []uint64
	sum    float64
	count  uint64
}

func newHistogram(upperBounds []float64) *histogram {
	return &histogram{
		upperBounds: upperBounds,
		counts:      make([]uint64, len(upperBounds)+1),
	}
}

func (h *histogram) Observe(v float64) {
	// NaN compares false everywhere and lands in the +Inf bucket.
	i := sort.SearchFloat64s(h.upperBounds, v)

	h.mtx.Lock()
	h.counts[i]++
	h.sum += v
	h.count++
	h.mtx.Unlock()
}

func (h *histogram) write(s *Series) {
	h.mtx.Lock()
	counts := slices.Clone(h.counts)
	sum, count := h.sum, h.count
	h.mtx.Unlock()

	buckets := make([]Bucket, len(counts))
	var cumCount uint64
	for i, c := range counts {
		cumCount += c
		upperBound := math.Inf(+1)
		if i < len(h.upperBounds) {
			upperBound = h.upperBounds[i]
		}
		buckets[i] = Bucket{UpperBound: upperBound, CumulativeCount: cumCount}
	}
	s.Histogram = &HistogramSnapshot{
		Buckets:     buckets,
		SampleCount: count,
		SampleSum:   sum,
	}
}

// HistogramVec is a Collector that bundles a set of Histograms that all share
// the same Desc and buckets, but have different values for their variable
// labels. Create instances with Registry.NewHistogram.
type HistogramVec struct {
	*metricVec[*histogram]
	upperBounds []float64
}

func newHistogramVec(desc *Desc, upperBounds []float64) *HistogramVec {
	return &HistogramVec{
		metricVec: newMetricVec(desc, func([]string) *histogram {
			return newHistogram(upperBounds)
		}),
		upperBounds: upperBounds,
	}
}

// Buckets returns the upper bounds of the histogram, without +Inf.
func (v *HistogramVec) Buckets() []float64 { return slices.Clone(v.upperBounds) }

// GetMetricWithLabelValues returns the Histogram for the given slice of label
// values (same order as the variable labels in Desc). If that combination of
// label values is accessed for the first time, a new Histogram is created.
func (v *HistogramVec) GetMetricWithLabelValues(lvs ...string) (Histogram, error) {
	h, err := v.getMetricWithLabelValues(lvs)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// GetMetricWith returns the Histogram for the given Labels map (the label
// names must match those of the variable labels in Desc).
func (v *HistogramVec) GetMetricWith(labels Labels) (Histogram, error) {
	h, err := v.getMetricWith(labels)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// WithLabelValues works as GetMetricWithLabelValues, but panics where
// GetMetricWithLabelValues would have returned an error.
func (v *HistogramVec) WithLabelValues(lvs ...string) Histogram {
	h, err := v.GetMetricWithLabelValues(lvs...)
	if err != nil {
		panic(err)
	}
	return h
}

// With works as GetMetricWith, but panics where GetMetricWithLabels would
// have returned an error.
func (v *HistogramVec) With(labels Labels) Histogram {
	h, err := v.GetMetricWith(labels)
	if err != nil {
		panic(err)
	}
	return h
}

// Observe adds val to the series identified by labels.
func (v *HistogramVec) Observe(labels Labels, val float64) error {
	h, err := v.getMetricWith(labels)
	if err != nil {
		return err
	}
	h.Observe(val)
	return nil
}
