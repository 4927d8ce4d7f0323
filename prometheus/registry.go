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
	"iter"
	"maps"
	"slices"
	"sync"
)

// Registry registers Prometheus collectors, collects their metrics, and
// hands them out for exposition. A metric name is owned by exactly one
// registration. Registries are safe for concurrent use; enumeration never
// blocks registration or mutation for longer than a slice copy.
type Registry struct {
	mtx        sync.RWMutex
	collectors []Collector
	descs      []*Desc
	byName     map[string]registration
}

type registration struct {
	desc      *Desc
	collector Collector
}

// NewRegistry creates a new, empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]registration{}}
}

// Register registers a new Collector to be included in metrics collection. It
// returns an error if the descriptors provided by the Collector are invalid or
// if any of their names is already taken. In that case nothing is registered.
func (r *Registry) Register(c Collector) error {
	descs := c.Describe()
	for _, d := range descs {
		if d.err != nil {
			return fmt.Errorf("descriptor %s is invalid: %w", d, d.err)
		}
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	seen := make(map[string]*Desc, len(descs))
	for _, d := range descs {
		if existing, ok := r.byName[d.fqName]; ok {
			return &DuplicateNameError{Name: d.fqName, Existing: existing.desc, Requested: d}
		}
		if prev, ok := seen[d.fqName]; ok {
			return &DuplicateNameError{Name: d.fqName, Existing: prev, Requested: d}
		}
		seen[d.fqName] = d
	}
	for _, d := range descs {
		r.byName[d.fqName] = registration{desc: d, collector: c}
		r.descs = append(r.descs, d)
	}
	r.collectors = append(r.collectors, c)
	return nil
}

// MustRegister registers the provided Collectors and panics if any error
// occurs.
func (r *Registry) MustRegister(cs ...Collector) {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// NewCounter creates a counter with the given label schema and registers it.
// If a counter with the same name, label schema and constant labels exists,
// that one is returned instead.
func (r *Registry) NewCounter(opts CounterOpts, labelNames ...string) (*CounterVec, error) {
	desc := NewDesc(Opts(opts).fqName(), opts.Help, CounterValue, labelNames, opts.ConstLabels)
	return registerVec(r, desc,
		func(c Collector) (*CounterVec, bool) {
			v, ok := c.(*CounterVec)
			return v, ok
		},
		func() *CounterVec { return newCounterVec(desc) },
	)
}

// NewGauge creates a gauge with the given label schema and registers it. If a
// gauge with the same name, label schema and constant labels exists, that one
// is returned instead.
func (r *Registry) NewGauge(opts GaugeOpts, labelNames ...string) (*GaugeVec, error) {
	desc := NewDesc(Opts(opts).fqName(), opts.Help, GaugeValue, labelNames, opts.ConstLabels)
	return registerVec(r, desc,
		func(c Collector) (*GaugeVec, bool) {
			v, ok := c.(*GaugeVec)
			return v, ok
		},
		func() *GaugeVec { return newGaugeVec(desc) },
	)
}

// NewHistogram creates a histogram with the given label schema and registers
// it. An existing histogram is only returned if its buckets are equal, too.
// The label name "le" is reserved for the bucket bounds.
func (r *Registry) NewHistogram(opts HistogramOpts, labelNames ...string) (*HistogramVec, error) {
	desc := NewDesc(opts.fqName(), opts.Help, HistogramValue, labelNames, opts.ConstLabels)
	if err := checkReservedLabel(desc, bucketLabel, labelNames, opts.ConstLabels); err != nil {
		return nil, err
	}
	upperBounds, err := opts.upperBounds()
	if err != nil {
		return nil, err
	}
	return registerVec(r, desc,
		func(c Collector) (*HistogramVec, bool) {
			v, ok := c.(*HistogramVec)
			return v, ok && slices.Equal(v.upperBounds, upperBounds)
		},
		func() *HistogramVec { return newHistogramVec(desc, upperBounds) },
	)
}

// NewSummary creates a summary with the given label schema and registers it.
// An existing summary is only returned if its objectives are equal, too. The
// label name "quantile" is reserved.
func (r *Registry) NewSummary(opts SummaryOpts, labelNames ...string) (*SummaryVec, error) {
	desc := NewDesc(opts.fqName(), opts.Help, SummaryValue, labelNames, opts.ConstLabels)
	if err := checkReservedLabel(desc, quantileLabel, labelNames, opts.ConstLabels); err != nil {
		return nil, err
	}
	objectives, err := opts.objectives()
	if err != nil {
		return nil, err
	}
	return registerVec(r, desc,
		func(c Collector) (*SummaryVec, bool) {
			v, ok := c.(*SummaryVec)
			return v, ok && maps.Equal(v.objectives, objectives)
		},
		func() *SummaryVec { return newSummaryVec(desc, objectives) },
	)
}

// MustNewCounter works as NewCounter but panics on error.
func (r *Registry) MustNewCounter(opts CounterOpts, labelNames ...string) *CounterVec {
	return must(r.NewCounter(opts, labelNames...))
}

// MustNewGauge works as NewGauge but panics on error.
func (r *Registry) MustNewGauge(opts GaugeOpts, labelNames ...string) *GaugeVec {
	return must(r.NewGauge(opts, labelNames...))
}

// MustNewHistogram works as NewHistogram but panics on error.
func (r *Registry) MustNewHistogram(opts HistogramOpts, labelNames ...string) *HistogramVec {
	return must(r.NewHistogram(opts, labelNames...))
}

// MustNewSummary works as NewSummary but panics on error.
func (r *Registry) MustNewSummary(opts SummaryOpts, labelNames ...string) *SummaryVec {
	return must(r.NewSummary(opts, labelNames...))
}

// Descs returns the descriptors of all registered metrics in registration
// order.
func (r *Registry) Descs() []*Desc {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return slices.Clone(r.descs)
}

// Enumerate returns every series of every registered metric, grouped by
// metric in registration order and by first observation within a metric.
// Each series is a consistent snapshot; series of different metrics may be
// taken at slightly different times. The sequence can be ranged over any
// number of times.
func (r *Registry) Enumerate() iter.Seq[Series] {
	return func(yield func(Series) bool) {
		r.mtx.RLock()
		collectors := slices.Clone(r.collectors)
		r.mtx.RUnlock()

		for _, c := range collectors {
			for s := range c.Collect() {
				if !yield(s) {
					return
				}
			}
		}
	}
}

// registerVec registers the vector created by create under desc, unless the
// name is already taken by a compatible vector, which reuse recognizes.
func registerVec[V Collector](
	r *Registry,
	desc *Desc,
	reuse func(Collector) (V, bool),
	create func() V,
) (V, error) {
	var zero V
	if desc.err != nil {
		return zero, desc.err
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if existing, ok := r.byName[desc.fqName]; ok {
		if v, ok := reuse(existing.collector); ok && existing.desc.sameSchema(desc) {
			return v, nil
		}
		return zero, &DuplicateNameError{Name: desc.fqName, Existing: existing.desc, Requested: desc}
	}
	v := create()
	r.byName[desc.fqName] = registration{desc: desc, collector: v}
	r.descs = append(r.descs, desc)
	r.collectors = append(r.collectors, v)
	return v, nil
}

func checkReservedLabel(desc *Desc, reserved string, labelNames []string, constLabels Labels) error {
	_, isConst := constLabels[reserved]
	if isConst || slices.Contains(labelNames, reserved) {
		return fmt.Errorf("%w: %q is not allowed as label name in %ss", ErrInvalidDesc, reserved, desc.valueType)
	}
	return nil
}

func must[V any](v V, err error) V {
	if err != nil {
		panic(err)
	}
	return v
}
