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
	"iter"
	"slices"
	"sync"
)

// seriesWriter is implemented by the per-series state of every metric type.
type seriesWriter interface {
	write(*Series)
}

// metricVec is the shared core of CounterVec, GaugeVec, HistogramVec and
// SummaryVec. It bundles the series of one metric, keyed by their label
// values. Series are created lazily on first use and never removed.
type metricVec[T seriesWriter] struct {
	desc      *Desc
	newMetric func(lvs []string) T
	hash      func(lvs []string) uint64

	mtx sync.RWMutex
	// children holds every series, chained per hash to handle collisions.
	children map[uint64][]*vecChild[T]
	// order is append-only, so a snapshot of the slice header stays valid
	// after mtx is released.
	order []*vecChild[T]
}

type vecChild[T any] struct {
	labelValues []string
	metric      T
}

func newMetricVec[T seriesWriter](desc *Desc, newMetric func(lvs []string) T) *metricVec[T] {
	v := &metricVec[T]{
		desc:      desc,
		newMetric: newMetric,
		hash:      hashLabelValues,
		children:  map[uint64][]*vecChild[T]{},
	}
	if len(desc.variableLabels) == 0 {
		// A metric without labels is exposed from the start.
		v.getOrCreate(nil)
	}
	return v
}

// Desc returns the descriptor shared by every series of the vector.
func (v *metricVec[T]) Desc() *Desc { return v.desc }

// Describe implements Collector.
func (v *metricVec[T]) Describe() []*Desc { return []*Desc{v.desc} }

// Collect implements Collector. Series are yielded in creation order.
func (v *metricVec[T]) Collect() iter.Seq[Series] {
	return func(yield func(Series) bool) {
		v.mtx.RLock()
		children := v.order
		v.mtx.RUnlock()

		for _, c := range children {
			s := Series{Desc: v.desc, LabelValues: c.labelValues}
			c.metric.write(&s)
			if !yield(s) {
				return
			}
		}
	}
}

func (v *metricVec[T]) getMetricWithLabelValues(lvs []string) (T, error) {
	if err := validateLabelValues(v.desc.fqName, v.desc.variableLabels, lvs); err != nil {
		var zero T
		return zero, err
	}
	return v.getOrCreate(lvs), nil
}

func (v *metricVec[T]) getMetricWith(labels Labels) (T, error) {
	lvs, err := labelValuesFor(v.desc.fqName, v.desc.variableLabels, labels)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.getOrCreate(lvs), nil
}

// getOrCreate returns the series for lvs, creating it if needed. Concurrent
// first uses of the same label values agree on a single series.
func (v *metricVec[T]) getOrCreate(lvs []string) T {
	h := v.hash(lvs)

	v.mtx.RLock()
	c, ok := v.lookup(h, lvs)
	v.mtx.RUnlock()
	if ok {
		return c.metric
	}

	v.mtx.Lock()
	defer v.mtx.Unlock()
	if c, ok := v.lookup(h, lvs); ok {
		return c.metric
	}
	owned := slices.Clone(lvs)
	c = &vecChild[T]{labelValues: owned, metric: v.newMetric(owned)}
	v.children[h] = append(v.children[h], c)
	v.order = append(v.order, c)
	return c.metric
}

func (v *metricVec[T]) lookup(h uint64, lvs []string) (*vecChild[T], bool) {
	for _, c := range v.children[h] {
		if slices.Equal(c.labelValues, lvs) {
			return c, true
		}
	}
	return nil, false
}

// len returns the number of series created so far.
func (v *metricVec[T]) len() int {
	v.mtx.RLock()
	defer v.mtx.RUnlock()
	return len(v.order)
}
