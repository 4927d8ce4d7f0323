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

// Package text creates the simple and flat text-based exposition format
// from the series of a registry.
package text

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/prometheus/demoapp/prometheus"
)

// ContentType is the Content-Type of the output of WriteRegistry and
// WriteSeries.
const ContentType = `text/plain; version=0.0.4; charset=utf-8`

var (
	helpEscaper       = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	labelValueEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)
)

// WriteRegistry writes every metric registered with reg in text format to
// out. It returns the number of bytes written and any error encountered.
//
// Metrics are written in registration order. Each metric gets its HELP and
// TYPE lines even if none of its label combinations has been used yet.
func WriteRegistry(out io.Writer, reg *prometheus.Registry) (int, error) {
	descs := reg.Descs()
	known := make(map[*prometheus.Desc]bool, len(descs))
	for _, d := range descs {
		known[d] = true
	}
	grouped := make(map[*prometheus.Desc][]prometheus.Series, len(descs))
	for s := range reg.Enumerate() {
		// Registered after the Descs call above.
		if !known[s.Desc] {
			known[s.Desc] = true
			descs = append(descs, s.Desc)
		}
		grouped[s.Desc] = append(grouped[s.Desc], s)
	}

	cw := &countingWriter{w: out}
	w := bufio.NewWriter(cw)
	for _, d := range descs {
		writeHeader(w, d)
		for _, s := range grouped[d] {
			if err := writeSeries(w, s); err != nil {
				return cw.n, err
			}
		}
	}
	err := w.Flush()
	return cw.n, err
}

// WriteSeries converts the given series into text format and writes the
// resulting lines to out. It returns the number of bytes written and any
// error encountered.
//
// Every time the descriptor changes a HELP and a TYPE line are written, so
// series must be grouped by metric as Registry.Enumerate does. Only metrics
// that appear in series are written; use WriteRegistry to declare every
// registered metric.
func WriteSeries(out io.Writer, series iter.Seq[prometheus.Series]) (int, error) {
	cw := &countingWriter{w: out}
	w := bufio.NewWriter(cw)

	var current *prometheus.Desc
	for s := range series {
		if s.Desc != current {
			current = s.Desc
			writeHeader(w, s.Desc)
		}
		if err := writeSeries(w, s); err != nil {
			return cw.n, err
		}
	}
	err := w.Flush()
	return cw.n, err
}

func writeHeader(w *bufio.Writer, d *prometheus.Desc) {
	w.WriteString("# HELP ")
	w.WriteString(d.Name())
	w.WriteByte(' ')
	w.WriteString(helpEscaper.Replace(d.Help()))
	w.WriteString("\n# TYPE ")
	w.WriteString(d.Name())
	w.WriteByte(' ')
	w.WriteString(d.Type().String())
	w.WriteByte('\n')
}

func writeSeries(w *bufio.Writer, s prometheus.Series) error {
	name := s.Desc.Name()
	labels := s.Labels()
	switch s.Desc.Type() {
	case prometheus.CounterValue, prometheus.GaugeValue:
		writeSample(w, name, "", "", labels, formatFloat(s.Value))
	case prometheus.HistogramValue:
		if s.Histogram == nil {
			return fmt.Errorf("expected histogram in series %s", name)
		}
		for _, b := range s.Histogram.Buckets {
			writeSample(w, name+"_bucket", "le", formatFloat(b.UpperBound), labels,
				strconv.FormatUint(b.CumulativeCount, 10))
		}
		writeSample(w, name+"_sum", "", "", labels, formatFloat(s.Histogram.SampleSum))
		writeSample(w, name+"_count", "", "", labels, strconv.FormatUint(s.Histogram.SampleCount, 10))
	case prometheus.SummaryValue:
		if s.Summary == nil {
			return fmt.Errorf("expected summary in series %s", name)
		}
		for _, q := range s.Summary.Quantiles {
			writeSample(w, name, "quantile", formatFloat(q.Quantile), labels, formatFloat(q.Value))
		}
		writeSample(w, name+"_sum", "", "", labels, formatFloat(s.Summary.SampleSum))
		writeSample(w, name+"_count", "", "", labels, strconv.FormatUint(s.Summary.SampleCount, 10))
	default:
		return fmt.Errorf("unexpected type %s in series %s", s.Desc.Type(), name)
	}
	return nil
}

// writeSample writes a single sample line. The optional additional label
// (bucket bound or quantile) goes in front of the series labels.
func writeSample(
	w *bufio.Writer,
	name string,
	additionalLabelName, additionalLabelValue string,
	labels []prometheus.LabelPair,
	value string,
) {
	w.WriteString(name)
	if len(labels) > 0 || additionalLabelName != "" {
		separator := byte('{')
		if additionalLabelName != "" {
			writeLabel(w, separator, additionalLabelName, additionalLabelValue)
			separator = ','
		}
		for _, lp := range labels {
			writeLabel(w, separator, lp.Name, lp.Value)
			separator = ','
		}
		w.WriteByte('}')
	}
	w.WriteByte(' ')
	w.WriteString(value)
	w.WriteByte('\n')
}

func writeLabel(w *bufio.Writer, separator byte, name, value string) {
	w.WriteByte(separator)
	w.WriteString(name)
	w.WriteString(`="`)
	labelValueEscaper.WriteString(w, value)
	w.WriteByte('"')
}

// formatFloat renders v in the shortest form that parses back to v.
func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, +1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
