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
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestHistogramScenario(t *testing.T) {
	reg := NewRegistry()
	latency := reg.MustNewHistogram(HistogramOpts{
		Name:    "latency",
		Help:    "help",
		Buckets: []float64{0.1, 0.5, 1.0},
	})
	for _, v := range []float64{0.05, 0.2, 0.6, 5.0} {
		if err := latency.Observe(nil, v); err != nil {
			t.Fatal(err)
		}
	}

	h := collect(latency)[0].Histogram
	want := []Bucket{
		{UpperBound: 0.1, CumulativeCount: 1},
		{UpperBound: 0.5, CumulativeCount: 2},
		{UpperBound: 1.0, CumulativeCount: 3},
		{UpperBound: math.Inf(+1), CumulativeCount: 4},
	}
	if !slices.Equal(h.Buckets, want) {
		t.Errorf("got buckets %s, want %s", spew.Sdump(h.Buckets), spew.Sdump(want))
	}
	if got, want := h.SampleCount, uint64(4); got != want {
		t.Errorf("got count %d, want %d", got, want)
	}
	if got, want := h.SampleSum, 5.85; math.Abs(got-want) > 1e-9 {
		t.Errorf("got sum %v, want %v", got, want)
	}
}

func TestHistogramBoundsAreInclusive(t *testing.T) {
	reg := NewRegistry()
	h := reg.MustNewHistogram(HistogramOpts{Name: "test", Help: "help", Buckets: []float64{1, 2}}).WithLabelValues()
	h.Observe(1)
	h.Observe(2)
	h.Observe(math.NaN())

	buckets := collect(reg.MustNewHistogram(HistogramOpts{Name: "test", Help: "help", Buckets: []float64{1, 2}}))[0].Histogram.Buckets
	for i, want := range []uint64{1, 2, 3} {
		if got := buckets[i].CumulativeCount; got != want {
			t.Errorf("bucket %d: got %d, want %d", i, got, want)
		}
	}
}

func TestHistogramMatchesNaiveCount(t *testing.T) {
	reg := NewRegistry()
	bounds := LinearBuckets(-5, 1, 11)
	vec := reg.MustNewHistogram(HistogramOpts{Name: "test", Help: "help", Buckets: bounds}, "shard")

	rnd := rand.New(rand.NewPCG(42, 42))
	var observed []float64
	for range 1000 {
		v := rnd.NormFloat64() * 4
		observed = append(observed, v)
		if err := vec.Observe(Labels{"shard": "a"}, v); err != nil {
			t.Fatal(err)
		}
	}

	h := collect(vec)[0].Histogram
	var sum float64
	for _, v := range observed {
		sum += v
	}
	if math.Abs(h.SampleSum-sum) > 1e-9 {
		t.Errorf("got sum %v, want %v", h.SampleSum, sum)
	}
	if h.SampleCount != uint64(len(observed)) {
		t.Errorf("got count %d, want %d", h.SampleCount, len(observed))
	}
	for _, b := range h.Buckets {
		var want uint64
		for _, v := range observed {
			if v <= b.UpperBound {
				want++
			}
		}
		if b.CumulativeCount != want {
			t.Errorf("bucket le=%v: got %d, want %d", b.UpperBound, b.CumulativeCount, want)
		}
	}
}

func TestHistogramDefaultAndInvalidBuckets(t *testing.T) {
	reg := NewRegistry()
	vec := reg.MustNewHistogram(HistogramOpts{Name: "default_buckets", Help: "help"})
	if got := vec.Buckets(); !slices.Equal(got, DefBuckets) {
		t.Errorf("got buckets %v, want %v", got, DefBuckets)
	}

	vec = reg.MustNewHistogram(HistogramOpts{Name: "explicit_inf", Help: "help", Buckets: []float64{1, math.Inf(+1)}})
	if got, want := vec.Buckets(), []float64{1}; !slices.Equal(got, want) {
		t.Errorf("got buckets %v, want %v", got, want)
	}

	for _, buckets := range [][]float64{
		{1, 1},
		{2, 1},
		{1, math.NaN()},
	} {
		_, err := reg.NewHistogram(HistogramOpts{Name: "invalid", Help: "help", Buckets: buckets})
		if !errors.Is(err, ErrInvalidDesc) {
			t.Errorf("buckets %v: expected ErrInvalidDesc, got %v", buckets, err)
		}
	}

	if _, err := reg.NewHistogram(HistogramOpts{Name: "reserved", Help: "help"}, "le"); !errors.Is(err, ErrInvalidDesc) {
		t.Errorf("expected ErrInvalidDesc for label le, got %v", err)
	}
	if _, err := reg.NewHistogram(HistogramOpts{Name: "reserved", Help: "help", ConstLabels: Labels{"le": "1"}}); !errors.Is(err, ErrInvalidDesc) {
		t.Errorf("expected ErrInvalidDesc for const label le, got %v", err)
	}
}

func TestBucketHelpers(t *testing.T) {
	if got, want := LinearBuckets(1, 2, 3), []float64{1, 3, 5}; !slices.Equal(got, want) {
		t.Errorf("LinearBuckets: got %v, want %v", got, want)
	}
	if got, want := ExponentialBuckets(1, 10, 4), []float64{1, 10, 100, 1000}; !slices.Equal(got, want) {
		t.Errorf("ExponentialBuckets: got %v, want %v", got, want)
	}
	for name, f := range map[string]func(){
		"linear count":       func() { LinearBuckets(0, 1, 0) },
		"exponential start":  func() { ExponentialBuckets(0, 2, 3) },
		"exponential factor": func() { ExponentialBuckets(1, 1, 3) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: expected a panic", name)
				}
			}()
			f()
		}()
	}
}

func TestHistogramConcurrency(t *testing.T) {
	reg := NewRegistry()
	vec := reg.MustNewHistogram(HistogramOpts{Name: "test", Help: "help", Buckets: []float64{1, 10}}, "l")

	const n, m = 8, 500
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range m {
				if err := vec.Observe(Labels{"l": "x"}, float64(j%20)); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}

	// Readers must never see a series whose count and buckets disagree.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			for _, s := range collect(vec) {
				h := s.Histogram
				if last := h.Buckets[len(h.Buckets)-1]; last.CumulativeCount != h.SampleCount {
					t.Errorf("torn read: %s", spew.Sdump(h))
					return
				}
				for i := 1; i < len(h.Buckets); i++ {
					if h.Buckets[i].CumulativeCount < h.Buckets[i-1].CumulativeCount {
						t.Errorf("buckets not cumulative: %s", spew.Sdump(h))
						return
					}
				}
			}
		}
	}()
	wg.Wait()
	<-done

	h := collect(vec)[0].Histogram
	if got, want := h.SampleCount, uint64(n*m); got != want {
		t.Errorf("got count %d, want %d", got, want)
	}
	// j%20 in 0..19: 0 and 1 are <= 1, 0..10 are <= 10.
	if got, want := h.Buckets[0].CumulativeCount, uint64(n*m*2/20); got != want {
		t.Errorf("le=1: got %d, want %d", got, want)
	}
	if got, want := h.Buckets[1].CumulativeCount, uint64(n*m*11/20); got != want {
		t.Errorf("le=10: got %d, want %d", got, want)
	}
}
