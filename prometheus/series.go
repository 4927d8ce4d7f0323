// Copyright 2026 The Prometheus Authors
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
	"strings"

	dto "github.com/prometheus/client_model/go"
	"google.golang.org/protobuf/proto"
)

// Series is a point-in-time snapshot of one labeled series. Exactly one of
// Value, Histogram and Summary is meaningful, depending on Desc.Type().
// LabelValues follow Desc.VariableLabels() and must not be modified.
type Series struct {
	Desc        *Desc
	LabelValues []string

	Value     float64
	Histogram *HistogramSnapshot
	Summary   *SummarySnapshot
}

// HistogramSnapshot holds cumulative bucket counts. The last bucket always
// has an upper bound of +Inf and a count equal to SampleCount.
type HistogramSnapshot struct {
	Buckets     []Bucket
	SampleCount uint64
	SampleSum   float64
}

// Bucket is one cumulative histogram bucket.
type Bucket struct {
	UpperBound      float64
	CumulativeCount uint64
}

// SummarySnapshot holds the estimated quantiles of a summary series.
type SummarySnapshot struct {
	Quantiles   []Quantile
	SampleCount uint64
	SampleSum   float64
}

// Quantile is one estimated quantile. Value is NaN while the summary has
// no observations.
type Quantile struct {
	Quantile float64
	Value    float64
}

// Labels returns the constant labels of the series followed by its variable
// labels in schema order.
func (s Series) Labels() []LabelPair {
	pairs := make([]LabelPair, 0, len(s.Desc.constLabelPairs)+len(s.LabelValues))
	pairs = append(pairs, s.Desc.constLabelPairs...)
	for i, name := range s.Desc.variableLabels {
		pairs = append(pairs, LabelPair{Name: name, Value: s.LabelValues[i]})
	}
	return pairs
}

func constSeries(desc *Desc, v float64) Series {
	return Series{Desc: desc, Value: v}
}

// toDTO converts s into its protobuf form. Label pairs are sorted by name.
func (s Series) toDTO() (*dto.Metric, error) {
	labels := s.Labels()
	slices.SortFunc(labels, func(a, b LabelPair) int { return strings.Compare(a.Name, b.Name) })
	m := &dto.Metric{Label: make([]*dto.LabelPair, 0, len(labels))}
	for _, lp := range labels {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  proto.String(lp.Name),
			Value: proto.String(lp.Value),
		})
	}
	switch s.Desc.valueType {
	case CounterValue:
		m.Counter = &dto.Counter{Value: proto.Float64(s.Value)}
	case GaugeValue:
		m.Gauge = &dto.Gauge{Value: proto.Float64(s.Value)}
	case HistogramValue:
		if s.Histogram == nil {
			return nil, fmt.Errorf("histogram series %s has no buckets", s.Desc.fqName)
		}
		h := &dto.Histogram{
			SampleCount: proto.Uint64(s.Histogram.SampleCount),
			SampleSum:   proto.Float64(s.Histogram.SampleSum),
		}
		for _, b := range s.Histogram.Buckets {
			// The +Inf bucket is implied by SampleCount.
			if math.IsInf(b.UpperBound, +1) {
				continue
			}
			h.Bucket = append(h.Bucket, &dto.Bucket{
				UpperBound:      proto.Float64(b.UpperBound),
				CumulativeCount: proto.Uint64(b.CumulativeCount),
			})
		}
		m.Histogram = h
	case SummaryValue:
		if s.Summary == nil {
			return nil, fmt.Errorf("summary series %s has no quantiles", s.Desc.fqName)
		}
		sum := &dto.Summary{
			SampleCount: proto.Uint64(s.Summary.SampleCount),
			SampleSum:   proto.Float64(s.Summary.SampleSum),
		}
		for _, q := range s.Summary.Quantiles {
			sum.Quantile = append(sum.Quantile, &dto.Quantile{
				Quantile: proto.Float64(q.Quantile),
				Value:    proto.Float64(q.Value),
			})
		}
		m.Summary = sum
	default:
		return nil, fmt.Errorf("series %s has unsupported type %s", s.Desc.fqName, s.Desc.valueType)
	}
	return m, nil
}
