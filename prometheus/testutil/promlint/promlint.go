// Copyright 2020 The Prometheus Authors
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

// Package promlint checks metric descriptors for common naming problems.
package promlint

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/prometheus/demoapp/prometheus"
)

// A Problem is an issue detected by a linter.
type Problem struct {
	// The name of the metric indicated by this Problem.
	Metric string

	// A description of the issue for this Problem.
	Text string
}

func (p Problem) String() string { return p.Metric + ": " + p.Text }

func newProblem(d *prometheus.Desc, text string) Problem {
	return Problem{Metric: d.Name(), Text: text}
}

var camelCase = regexp.MustCompile(`[a-z][A-Z]`)

// Units and their possible prefixes recognized by this library. More can
// be added over time as needed.
var (
	baseUnits = map[string]string{
		"seconds": "seconds",
		"bytes":   "bytes",
		"meters":  "meters",
		"celsius": "celsius",
		"ratio":   "ratio",
	}

	unitPrefixes = []string{
		"pico", "nano", "micro", "milli", "centi", "deci",
		"deca", "hecto", "kilo", "kibi", "mega", "mibi",
		"giga", "gibi", "tera", "tebi", "peta", "pebi",
	}

	// Common abbreviations that we'd like to discourage.
	unitAbbreviations = []string{
		"s", "ms", "us", "ns", "sec", "b", "kb", "mb", "gb", "tb", "pb", "m", "h", "d",
	}
)

// Lint runs all checks over the given descriptors and returns the problems
// found, ordered by metric name.
func Lint(descs []*prometheus.Desc) []Problem {
	var problems []Problem
	for _, d := range descs {
		problems = append(problems, lintHelp(d)...)
		problems = append(problems, lintMetricUnits(d)...)
		problems = append(problems, lintCounter(d)...)
		problems = append(problems, lintGauge(d)...)
		problems = append(problems, lintMetricTypeInName(d)...)
		problems = append(problems, lintReservedChars(d)...)
		problems = append(problems, lintCamelCase(d)...)
		problems = append(problems, lintUnitAbbreviations(d)...)
	}
	slices.SortStableFunc(problems, func(a, b Problem) int {
		return strings.Compare(a.Metric, b.Metric)
	})
	return problems
}

func lintHelp(d *prometheus.Desc) []Problem {
	if strings.TrimSpace(d.Help()) == "" {
		return []Problem{newProblem(d, "no help text")}
	}
	return nil
}

// lintCounter detects issues specific to counters, as well as patterns that
// should only be used with counters.
func lintCounter(d *prometheus.Desc) []Problem {
	isCounter := d.Type() == prometheus.CounterValue
	hasTotalSuffix := strings.HasSuffix(d.Name(), "_total")

	switch {
	case isCounter && !hasTotalSuffix:
		return []Problem{newProblem(d, `counter metrics should have "_total" suffix`)}
	case !isCounter && hasTotalSuffix:
		return []Problem{newProblem(d, `non-counter metrics should not have "_total" suffix`)}
	}
	return nil
}

func lintGauge(d *prometheus.Desc) []Problem {
	if d.Type() != prometheus.GaugeValue && strings.HasSuffix(d.Name(), "_timestamp_seconds") {
		return []Problem{newProblem(d, `non-gauge metrics should not have "_timestamp_seconds" suffix`)}
	}
	return nil
}

// lintMetricUnits detects issues with metric unit names.
func lintMetricUnits(d *prometheus.Desc) []Problem {
	unit, base, ok := metricUnits(d.Name())
	if !ok || unit == base {
		return nil
	}
	return []Problem{newProblem(d, fmt.Sprintf("use base unit %q instead of %q", base, unit))}
}

// lintMetricTypeInName detects when metric types are included in the metric
// name.
func lintMetricTypeInName(d *prometheus.Desc) []Problem {
	var problems []Problem
	n := strings.ToLower(d.Name())
	for _, t := range []prometheus.ValueType{
		prometheus.CounterValue, prometheus.GaugeValue, prometheus.HistogramValue, prometheus.SummaryValue,
	} {
		typename := t.String()
		if strings.Contains(n, "_"+typename+"_") || strings.HasSuffix(n, "_"+typename) {
			problems = append(problems, newProblem(d, fmt.Sprintf(`metric name should not include type '%s'`, typename)))
		}
	}
	return problems
}

// lintReservedChars detects colons in metric names.
func lintReservedChars(d *prometheus.Desc) []Problem {
	if strings.Contains(d.Name(), ":") {
		return []Problem{newProblem(d, "metric names should not contain ':'")}
	}
	return nil
}

// lintCamelCase detects metric names and label names written in camelCase.
func lintCamelCase(d *prometheus.Desc) []Problem {
	var problems []Problem
	if camelCase.MatchString(d.Name()) {
		problems = append(problems, newProblem(d, "metric names should be written in 'snake_case' not 'camelCase'"))
	}
	labels := d.VariableLabels()
	for _, lp := range d.ConstLabels() {
		labels = append(labels, lp.Name)
	}
	for _, l := range labels {
		if camelCase.MatchString(l) {
			problems = append(problems, newProblem(d, "label names should be written in 'snake_case' not 'camelCase'"))
		}
	}
	return problems
}

// lintUnitAbbreviations detects abbreviated units in the metric name.
func lintUnitAbbreviations(d *prometheus.Desc) []Problem {
	var problems []Problem
	n := strings.ToLower(d.Name())
	for _, s := range unitAbbreviations {
		if strings.Contains(n, "_"+s+"_") || strings.HasSuffix(n, "_"+s) {
			problems = append(problems, newProblem(d, "metric names should not contain abbreviated units"))
		}
	}
	return problems
}

// metricUnits attempts to detect known unit types used as part of a metric
// name, e.g. "foo_bytes_total" or "bar_baz_milligrams".
func metricUnits(m string) (unit, base string, ok bool) {
	ss := strings.Split(m, "_")
	for _, s := range ss {
		if base, found := baseUnits[s]; found {
			return s, base, true
		}
		for _, p := range unitPrefixes {
			if strings.HasPrefix(s, p) {
				if base, found := baseUnits[s[len(p):]]; found {
					return s, base, true
				}
			}
		}
	}
	return "", "", false
}
