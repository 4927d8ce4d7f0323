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

// Package testutil provides helpers to test code using the prometheus package
// of this module.
//
// ToFloat64 and CollectAndCount give quick access to collected values.
// GatherAndCompare and CollectAndCompare compare the collected metrics with
// an expectation written in the text exposition format, parsed by the
// reference parser of github.com/prometheus/common/expfmt.
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/prometheus/demoapp/prometheus"
)

// ToFloat64 collects all series from the provided Collector. It expects that
// this results in exactly one series of a counter or gauge, and returns its
// value. It panics otherwise.
//
// This function is meant for testing purposes only.
func ToFloat64(c prometheus.Collector) float64 {
	var (
		val float64
		n   int
	)
	for s := range c.Collect() {
		n++
		switch s.Desc.Type() {
		case prometheus.CounterValue, prometheus.GaugeValue:
			val = s.Value
		default:
			panic(fmt.Errorf("collected a %s series, only counters and gauges are supported", s.Desc.Type()))
		}
	}
	if n != 1 {
		panic(fmt.Errorf("collected %d series instead of exactly 1", n))
	}
	return val
}

// CollectAndCount collects all series from the provided Collector and returns
// their number. If metricNames are given, only series of those metrics are
// counted.
func CollectAndCount(c prometheus.Collector, metricNames ...string) int {
	n := 0
	for s := range c.Collect() {
		if len(metricNames) == 0 || slices.Contains(metricNames, s.Desc.Name()) {
			n++
		}
	}
	return n
}

// CollectAndCompare registers the provided Collector with a newly created
// Registry. It then does the same as GatherAndCompare, gathering the metrics
// from that Registry.
func CollectAndCompare(c prometheus.Collector, expected io.Reader, metricNames ...string) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return fmt.Errorf("registering collector failed: %w", err)
	}
	return GatherAndCompare(reg, expected, metricNames...)
}

// GatherAndCompare gathers all metrics from the provided Gatherer and compares
// it to an expected output read from the provided Reader in the Prometheus text
// exposition format. If any metricNames are provided, only metrics with those
// names are compared.
//
// Both sides are normalized first: families by name, label pairs by name and
// series by their labels.
func GatherAndCompare(g prometheus.Gatherer, expected io.Reader, metricNames ...string) error {
	got, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics failed: %w", err)
	}
	if metricNames != nil {
		got = filterMetrics(got, metricNames)
	}
	var tp expfmt.TextParser
	wantMap, err := tp.TextToMetricFamilies(expected)
	if err != nil {
		return fmt.Errorf("parsing expected metrics failed: %w", err)
	}
	want := make([]*dto.MetricFamily, 0, len(wantMap))
	for _, mf := range wantMap {
		// A declared metric without samples has no family in Gather.
		if len(mf.GetMetric()) == 0 {
			continue
		}
		want = append(want, mf)
	}
	return compare(normalizeMetricFamilies(got), normalizeMetricFamilies(want))
}

// compare encodes both sides to the text format, which also puts an implicit
// +Inf bucket where the protobuf form has none.
func compare(got, want []*dto.MetricFamily) error {
	var gotBuf, wantBuf bytes.Buffer
	for _, mf := range got {
		if _, err := expfmt.MetricFamilyToText(&gotBuf, mf); err != nil {
			return fmt.Errorf("encoding gathered metrics failed: %w", err)
		}
	}
	for _, mf := range want {
		if _, err := expfmt.MetricFamilyToText(&wantBuf, mf); err != nil {
			return fmt.Errorf("encoding expected metrics failed: %w", err)
		}
	}
	if wantBuf.String() != gotBuf.String() {
		return fmt.Errorf(`
metric output does not match expectation; want:

%s
got:

%s`, wantBuf.String(), gotBuf.String())
	}
	return nil
}

func filterMetrics(metrics []*dto.MetricFamily, names []string) []*dto.MetricFamily {
	var filtered []*dto.MetricFamily
	for _, m := range metrics {
		if slices.Contains(names, m.GetName()) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func normalizeMetricFamilies(mfs []*dto.MetricFamily) []*dto.MetricFamily {
	for _, mf := range mfs {
		for _, m := range mf.Metric {
			slices.SortFunc(m.Label, func(a, b *dto.LabelPair) int {
				return strings.Compare(a.GetName(), b.GetName())
			})
		}
		slices.SortStableFunc(mf.Metric, func(a, b *dto.Metric) int {
			return strings.Compare(labelsKey(a), labelsKey(b))
		})
	}
	slices.SortFunc(mfs, func(a, b *dto.MetricFamily) int {
		return strings.Compare(a.GetName(), b.GetName())
	})
	return mfs
}

func labelsKey(m *dto.Metric) string {
	var sb strings.Builder
	for _, lp := range m.Label {
		sb.WriteString(lp.GetName())
		sb.WriteByte(0)
		sb.WriteString(lp.GetValue())
		sb.WriteByte(0)
	}
	return sb.String()
}
