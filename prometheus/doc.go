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

// Package prometheus provides the metric primitives of the demo exporter:
// counters, gauges, histograms and summaries partitioned by label values,
// and a Registry that owns metric names and enumerates every series for
// exposition.
//
// A minimal example:
//
//	reg := prometheus.NewRegistry()
//	requests, err := reg.NewCounter(prometheus.CounterOpts{
//		Name: "http_requests_total",
//		Help: "Total HTTP requests.",
//	}, "method", "status")
//	if err != nil {
//		return err
//	}
//	if err := requests.Inc(prometheus.Labels{"method": "GET", "status": "200"}); err != nil {
//		return err
//	}
//
// Series of a metric are created lazily on first use and are never removed.
// A metric without labels has exactly one series, which exists from the
// moment the metric is created.
//
// Mutations and enumeration may run concurrently. Every series yielded by
// Registry.Enumerate is a consistent snapshot: a histogram never shows a
// sample count that disagrees with its buckets. Distinct series are not
// snapshotted atomically with respect to each other.
//
// Histogram and Summary series implement Observer, so a Timer can feed them
// durations:
//
//	timer := prometheus.NewTimer(latency.WithLabelValues("/api/orders"))
//	defer timer.ObserveDuration()
//
// The text exposition of the enumerated series lives in package text, the
// HTTP handler in package promhttp.
package prometheus
