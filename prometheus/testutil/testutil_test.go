// Copyright 2018 The Prometheus Authors
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

package testutil

import (
	"strings"
	"testing"

	"github.com/prometheus/demoapp/prometheus"
)

func TestToFloat64(t *testing.T) {
	reg := prometheus.NewRegistry()
	gaugeWithValue := reg.MustNewGauge(prometheus.GaugeOpts{Name: "g", Help: "help"})
	gaugeWithValue.WithLabelValues().Set(3.14)

	counterVec := reg.MustNewCounter(prometheus.CounterOpts{Name: "c_total", Help: "help"}, "l")
	counterVec.WithLabelValues("a").Inc()

	if got, want := ToFloat64(gaugeWithValue), 3.14; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := ToFloat64(counterVec), 1.; got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	counterVec.WithLabelValues("b").Inc()
	scenarios := map[string]prometheus.Collector{
		"two series": counterVec,
		"no series":  reg.MustNewGauge(prometheus.GaugeOpts{Name: "empty", Help: "help"}, "l"),
		"histogram":  reg.MustNewHistogram(prometheus.HistogramOpts{Name: "h", Help: "help"}),
		"summary":    reg.MustNewSummary(prometheus.SummaryOpts{Name: "s", Help: "help"}),
	}
	for name, c := range scenarios {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: expected a panic", name)
				}
			}()
			ToFloat64(c)
		}()
	}
}

func TestCollectAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := reg.MustNewCounter(prometheus.CounterOpts{Name: "some_total", Help: "help"}, "label1")
	if got, want := CollectAndCount(c), 0; got != want {
		t.Errorf("unexpected metric count, got %v, want %v", got, want)
	}
	c.WithLabelValues("foo").Inc()
	if got, want := CollectAndCount(c), 1; got != want {
		t.Errorf("unexpected metric count, got %v, want %v", got, want)
	}
	c.WithLabelValues("bar").Inc()
	if got, want := CollectAndCount(c, "some_total"), 2; got != want {
		t.Errorf("unexpected metric count, got %v, want %v", got, want)
	}
	if got, want := CollectAndCount(c, "other_total"), 0; got != want {
		t.Errorf("unexpected metric count, got %v, want %v", got, want)
	}
}

func TestCollectAndCompare(t *testing.T) {
	const metadata = `
		# HELP some_total A value that represents a counter.
		# TYPE some_total counter
	`

	reg := prometheus.NewRegistry()
	c := reg.MustNewCounter(prometheus.CounterOpts{
		Name: "some_total",
		Help: "A value that represents a counter.",
		ConstLabels: prometheus.Labels{
			"label1": "value1",
		},
	})
	c.WithLabelValues().Inc()

	expected := `

		some_total{ label1 = "value1" } 1
	`

	if err := CollectAndCompare(c, strings.NewReader(metadata+expected), "some_total"); err != nil {
		t.Errorf("unexpected collecting result:\n%s", err)
	}
}

func TestCollectAndCompareHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := reg.MustNewHistogram(prometheus.HistogramOpts{
		Name:    "some_histogram",
		Help:    "An example of a histogram",
		Buckets: []float64{1, 2, 3},
	})
	h.WithLabelValues().Observe(2.5)

	expected := `
		# HELP some_histogram An example of a histogram
		# TYPE some_histogram histogram
		some_histogram_bucket{le="1"} 0
		some_histogram_bucket{le="2"} 0
		some_histogram_bucket{le="3"} 1
		some_histogram_bucket{le="+Inf"} 1
		some_histogram_sum 2.5
		some_histogram_count 1
	`

	if err := CollectAndCompare(h, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected collecting result:\n%s", err)
	}
}

func TestNoMetricFilter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := reg.MustNewCounter(prometheus.CounterOpts{
		Name: "some_total",
		Help: "A value that represents a counter.",
	})
	c.WithLabelValues().Inc()

	expected := `
		# HELP some_total A value that represents a counter.
		# TYPE some_total counter

		some_total 1
	`

	if err := GatherAndCompare(reg, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected collecting result:\n%s", err)
	}
}

func TestMetricNotFound(t *testing.T) {
	const metadata = `
		# HELP some_other_metric A value that represents a counter.
		# TYPE some_other_metric counter
	`

	reg := prometheus.NewRegistry()
	c := reg.MustNewCounter(prometheus.CounterOpts{
		Name: "some_total",
		Help: "A value that represents a counter.",
		ConstLabels: prometheus.Labels{
			"label1": "value1",
		},
	})
	c.WithLabelValues().Inc()

	expected := `
		some_other_metric{label1="value1"} 1
	`

	err := CollectAndCompare(c, strings.NewReader(metadata+expected))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "metric output does not match expectation") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGatherAndCompareIgnoresSeriesOrder(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := reg.MustNewCounter(prometheus.CounterOpts{Name: "requests_total", Help: "help"}, "method", "code")
	c.WithLabelValues("POST", "500").Inc()
	c.WithLabelValues("GET", "200").Add(2)

	expected := `
		# HELP requests_total help
		# TYPE requests_total counter
		requests_total{code="200",method="GET"} 2
		requests_total{method="POST",code="500"} 1
	`
	if err := GatherAndCompare(reg, strings.NewReader(expected), "requests_total"); err != nil {
		t.Error(err)
	}
}

func TestGatherAndCompareIgnoresDeclaredOnlyMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustNewCounter(prometheus.CounterOpts{Name: "unused_total", Help: "help"}, "l")
	reg.MustNewGauge(prometheus.GaugeOpts{Name: "used", Help: "help"}).WithLabelValues().Set(1)

	expected := `
		# HELP unused_total help
		# TYPE unused_total counter
		# HELP used help
		# TYPE used gauge
		used 1
	`
	if err := GatherAndCompare(reg, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestGatherAndCompareParseError(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := GatherAndCompare(reg, strings.NewReader("not { valid")); err == nil {
		t.Error("expected a parse error")
	}
}
