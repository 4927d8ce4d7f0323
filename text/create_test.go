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

package text

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/common/expfmt"

	"github.com/prometheus/demoapp/prometheus"
	"github.com/prometheus/demoapp/prometheus/testutil"
)

func render(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	var buf bytes.Buffer
	n, err := WriteRegistry(&buf, reg)
	if err != nil {
		t.Fatal(err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes written, buffer holds %d", n, buf.Len())
	}
	return buf.String()
}

func TestWriteRegistry(t *testing.T) {
	scenarios := []struct {
		setup func(*prometheus.Registry)
		out   string
	}{
		// 0: Counter with labels, in insertion order.
		{
			setup: func(reg *prometheus.Registry) {
				c := reg.MustNewCounter(prometheus.CounterOpts{
					Name: "requests_total",
					Help: "Total requests.",
				}, "method")
				c.WithLabelValues("GET").Inc()
				c.WithLabelValues("POST").Inc()
				c.WithLabelValues("GET").Inc()
				c.WithLabelValues("GET").Inc()
			},
			out: `# HELP requests_total Total requests.
# TYPE requests_total counter
requests_total{method="GET"} 3
requests_total{method="POST"} 1
`,
		},
		// 1: Gauge without labels and special values.
		{
			setup: func(reg *prometheus.Registry) {
				reg.MustNewGauge(prometheus.GaugeOpts{Name: "zero", Help: "Zero."})
				reg.MustNewGauge(prometheus.GaugeOpts{Name: "inf", Help: "Inf."}).WithLabelValues().Set(math.Inf(+1))
				reg.MustNewGauge(prometheus.GaugeOpts{Name: "neg_inf", Help: "-Inf."}).WithLabelValues().Set(math.Inf(-1))
				reg.MustNewGauge(prometheus.GaugeOpts{Name: "nan", Help: "NaN."}).WithLabelValues().Set(math.NaN())
				reg.MustNewGauge(prometheus.GaugeOpts{Name: "real", Help: "Real."}).WithLabelValues().Set(3.14159265358979)
				reg.MustNewGauge(prometheus.GaugeOpts{Name: "big", Help: "Big."}).WithLabelValues().Set(1e21)
			},
			out: `# HELP zero Zero.
# TYPE zero gauge
zero 0
# HELP inf Inf.
# TYPE inf gauge
inf +Inf
# HELP neg_inf -Inf.
# TYPE neg_inf gauge
neg_inf -Inf
# HELP nan NaN.
# TYPE nan gauge
nan NaN
# HELP real Real.
# TYPE real gauge
real 3.14159265358979
# HELP big Big.
# TYPE big gauge
big 1e+21
`,
		},
		// 2: Histogram, le first, then const labels, then variable labels.
		{
			setup: func(reg *prometheus.Registry) {
				h := reg.MustNewHistogram(prometheus.HistogramOpts{
					Name:        "latency",
					Help:        "Latency.",
					ConstLabels: prometheus.Labels{"app": "demo"},
					Buckets:     []float64{0.1, 0.5, 1.0},
				}, "path")
				for _, v := range []float64{0.05, 0.2, 0.6, 5.0} {
					h.WithLabelValues("/").Observe(v)
				}
			},
			out: `# HELP latency Latency.
# TYPE latency histogram
latency_bucket{le="0.1",app="demo",path="/"} 1
latency_bucket{le="0.5",app="demo",path="/"} 2
latency_bucket{le="1",app="demo",path="/"} 3
latency_bucket{le="+Inf",app="demo",path="/"} 4
latency_sum{app="demo",path="/"} 5.85
latency_count{app="demo",path="/"} 4
`,
		},
		// 3: Summary.
		{
			setup: func(reg *prometheus.Registry) {
				s := reg.MustNewSummary(prometheus.SummaryOpts{
					Name:       "processing_seconds",
					Help:       "Processing.",
					Objectives: map[float64]float64{0.9: 0.01, 0.5: 0.05},
				})
				s.WithLabelValues().Observe(2)
			},
			out: `# HELP processing_seconds Processing.
# TYPE processing_seconds summary
processing_seconds{quantile="0.5"} 2
processing_seconds{quantile="0.9"} 2
processing_seconds_sum 2
processing_seconds_count 1
`,
		},
		// 4: Empty summary reports NaN quantiles.
		{
			setup: func(reg *prometheus.Registry) {
				reg.MustNewSummary(prometheus.SummaryOpts{
					Name:       "empty",
					Help:       "Empty.",
					Objectives: map[float64]float64{0.99: 0.001},
				})
			},
			out: `# HELP empty Empty.
# TYPE empty summary
empty{quantile="0.99"} NaN
empty_sum 0
empty_count 0
`,
		},
		// 5: Escaping.
		{
			setup: func(reg *prometheus.Registry) {
				c := reg.MustNewCounter(prometheus.CounterOpts{
					Name: "escaped_total",
					Help: "Help with \\ backslash\nand newline and \"quotes\".",
				}, "value")
				c.WithLabelValues("a\\b\n\"c\"").Inc()
			},
			out: `# HELP escaped_total Help with \\ backslash\nand newline and "quotes".
# TYPE escaped_total counter
escaped_total{value="a\\b\n\"c\""} 1
`,
		},
		// 6: Metrics without series are still declared.
		{
			setup: func(reg *prometheus.Registry) {
				reg.MustNewCounter(prometheus.CounterOpts{Name: "unused_total", Help: "Unused."}, "l")
			},
			out: `# HELP unused_total Unused.
# TYPE unused_total counter
`,
		},
		// 7: Declaration order is registration order, used or not.
		{
			setup: func(reg *prometheus.Registry) {
				reg.MustNewCounter(prometheus.CounterOpts{Name: "first_total", Help: "First."}, "l")
				reg.MustNewGauge(prometheus.GaugeOpts{Name: "second", Help: "Second."}, "l").WithLabelValues("x").Set(2)
				reg.MustNewHistogram(prometheus.HistogramOpts{Name: "third", Help: "Third.", Buckets: []float64{1}}, "l")
			},
			out: `# HELP first_total First.
# TYPE first_total counter
# HELP second Second.
# TYPE second gauge
second{l="x"} 2
# HELP third Third.
# TYPE third histogram
`,
		},
	}

	for i, scenario := range scenarios {
		reg := prometheus.NewRegistry()
		scenario.setup(reg)
		if got := render(t, reg); got != scenario.out {
			t.Errorf(
				"%d. expected out=%q, got %q",
				i, scenario.out, got,
			)
		}
	}
}

func TestWriteRegistryIsDeterministic(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := reg.MustNewCounter(prometheus.CounterOpts{
		Name:        "requests_total",
		Help:        "help",
		ConstLabels: prometheus.Labels{"z": "1", "a": "2", "m": "3"},
	}, "method", "code")
	for _, m := range []string{"GET", "PUT", "POST", "DELETE"} {
		c.WithLabelValues(m, "200").Inc()
	}
	h := reg.MustNewHistogram(prometheus.HistogramOpts{Name: "h", Help: "help"}, "x")
	h.WithLabelValues("1").Observe(0.3)

	first := render(t, reg)
	for range 10 {
		if got := render(t, reg); got != first {
			t.Fatalf("output changed between renders:\n%s\nvs\n%s", first, got)
		}
	}
	if !strings.Contains(first, `requests_total{a="2",m="3",z="1",method="DELETE",code="200"} 1`) {
		t.Errorf("unexpected label order in:\n%s", first)
	}
}

// The reference parser must read back exactly what Gather reports.
func TestWriteRegistryRoundTrip(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := reg.MustNewCounter(prometheus.CounterOpts{Name: "requests_total", Help: "Requests\nby \\ method."}, "method")
	c.WithLabelValues("GET").Inc()
	c.WithLabelValues("we\"ird\\\nvalue").Inc()
	g := reg.MustNewGauge(prometheus.GaugeOpts{Name: "temperature", Help: "help", ConstLabels: prometheus.Labels{"room": "a"}})
	g.WithLabelValues().Set(-12.75)
	h := reg.MustNewHistogram(prometheus.HistogramOpts{Name: "latency", Help: "help", Buckets: prometheus.ExponentialBuckets(0.001, 2, 12)}, "path")
	for i := range 100 {
		h.WithLabelValues("/a").Observe(float64(i) / 37)
	}
	s := reg.MustNewSummary(prometheus.SummaryOpts{Name: "processing", Help: "help"}, "queue")
	for i := range 50 {
		s.WithLabelValues("q").Observe(float64(i))
	}

	out := render(t, reg)
	var parser expfmt.TextParser
	if _, err := parser.TextToMetricFamilies(strings.NewReader(out)); err != nil {
		t.Fatalf("reference parser rejected output: %v\n%s", err, out)
	}
	if err := testutil.GatherAndCompare(reg, strings.NewReader(out)); err != nil {
		t.Error(err)
	}
}

func TestWriteSeriesSkipsMetricsWithoutSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustNewCounter(prometheus.CounterOpts{Name: "unused_total", Help: "Unused."}, "l")
	reg.MustNewGauge(prometheus.GaugeOpts{Name: "used", Help: "Used."})

	var buf bytes.Buffer
	if _, err := WriteSeries(&buf, reg.Enumerate()); err != nil {
		t.Fatal(err)
	}
	want := `# HELP used Used.
# TYPE used gauge
used 0
`
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriterErrorsArePropagated(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustNewGauge(prometheus.GaugeOpts{Name: "g", Help: "help"})
	if _, err := WriteSeries(failingWriter{}, reg.Enumerate()); err == nil {
		t.Error("expected an error from a failing writer")
	}
	if _, err := WriteRegistry(failingWriter{}, reg); err == nil {
		t.Error("expected an error from a failing writer")
	}
}

func TestFormatFloat(t *testing.T) {
	for v, want := range map[float64]string{
		0:           "0",
		1:           "1",
		-1:          "-1",
		0.1:         "0.1",
		1234567:     "1.234567e+06",
		1 << 53:     "9.007199254740992e+15",
		0.000001234: "1.234e-06",
	} {
		if got := formatFloat(v); got != want {
			t.Errorf("formatFloat(%v): got %q, want %q", v, got, want)
		}
	}
}
