// Copyright 2016 The Prometheus Authors
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
	"slices"
	"strings"

	"github.com/prometheus/common/model"

	dto "github.com/prometheus/client_model/go"
)

// ValueType is an enumeration of metric types that represent a simple value.
type ValueType int

// Possible values for the ValueType enum.
const (
	_ ValueType = iota
	CounterValue
	GaugeValue
	HistogramValue
	SummaryValue
)

func (v ValueType) String() string {
	switch v {
	case CounterValue:
		return "counter"
	case GaugeValue:
		return "gauge"
	case HistogramValue:
		return "histogram"
	case SummaryValue:
		return "summary"
	default:
		return "untyped"
	}
}

// ToDTO returns the corresponding protobuf metric type.
func (v ValueType) ToDTO() *dto.MetricType {
	switch v {
	case CounterValue:
		return dto.MetricType_COUNTER.Enum()
	case GaugeValue:
		return dto.MetricType_GAUGE.Enum()
	case HistogramValue:
		return dto.MetricType_HISTOGRAM.Enum()
	case SummaryValue:
		return dto.MetricType_SUMMARY.Enum()
	default:
		return dto.MetricType_UNTYPED.Enum()
	}
}

// Desc is the descriptor used by every metric. It is essentially the
// immutable meta-data of a metric: fully-qualified name, help string, type,
// constant label pairs and the names of the variable labels.
//
// Desc instances are created with NewDesc. A Desc that failed validation
// carries the error, returned by Err, and is rejected on registration.
type Desc struct {
	fqName string
	help   string
	// valueType is the kind of every series described.
	valueType ValueType
	// constLabelPairs is sorted by name.
	constLabelPairs []LabelPair
	// variableLabels keeps the order in which the schema was declared.
	variableLabels []string
	err            error
}

// NewDesc allocates and initializes a new Desc. Errors are recorded in the
// Desc and will be reported on registration time. variableLabels and
// constLabels can be nil if no such labels should be set. fqName must not be
// empty.
//
// variableLabels only contain the label names. Their label values are
// variable and therefore not part of the Desc.
func NewDesc(fqName, help string, valueType ValueType, variableLabels []string, constLabels Labels) *Desc {
	d := &Desc{
		fqName:         fqName,
		help:           help,
		valueType:      valueType,
		variableLabels: slices.Clone(variableLabels),
	}
	if help == "" {
		d.err = fmt.Errorf("%w: empty help string for metric %q", ErrInvalidDesc, fqName)
		return d
	}
	if !model.IsValidMetricName(model.LabelValue(fqName)) {
		d.err = fmt.Errorf("%w: %q is not a valid metric name", ErrInvalidDesc, fqName)
		return d
	}
	labelNameSet := map[string]struct{}{}
	for name, value := range constLabels {
		if !checkLabelName(name) {
			d.err = fmt.Errorf("%w: %q is not a valid label name for metric %q", ErrInvalidDesc, name, fqName)
			return d
		}
		if err := validateLabelValues(fqName, []string{name}, []string{value}); err != nil {
			d.err = err
			return d
		}
		labelNameSet[name] = struct{}{}
		d.constLabelPairs = append(d.constLabelPairs, LabelPair{Name: name, Value: value})
	}
	slices.SortFunc(d.constLabelPairs, func(a, b LabelPair) int { return strings.Compare(a.Name, b.Name) })
	for _, name := range d.variableLabels {
		if !checkLabelName(name) {
			d.err = fmt.Errorf("%w: %q is not a valid label name for metric %q", ErrInvalidDesc, name, fqName)
			return d
		}
		if _, ok := labelNameSet[name]; ok {
			d.err = fmt.Errorf("%w: duplicate label name %q for metric %q", ErrInvalidDesc, name, fqName)
			return d
		}
		labelNameSet[name] = struct{}{}
	}
	return d
}

// BuildFQName joins the given three name components by "_". Empty name
// components are ignored. If the name parameter itself is empty, an empty
// string is returned, no matter what.
func BuildFQName(namespace, subsystem, name string) string {
	if name == "" {
		return ""
	}
	switch {
	case namespace != "" && subsystem != "":
		return strings.Join([]string{namespace, subsystem, name}, "_")
	case namespace != "":
		return strings.Join([]string{namespace, name}, "_")
	case subsystem != "":
		return strings.Join([]string{subsystem, name}, "_")
	}
	return name
}

// Name returns the fully-qualified metric name.
func (d *Desc) Name() string { return d.fqName }

// Help returns the help string.
func (d *Desc) Help() string { return d.help }

// Type returns the metric type.
func (d *Desc) Type() ValueType { return d.valueType }

// VariableLabels returns the label schema in declaration order.
func (d *Desc) VariableLabels() []string { return slices.Clone(d.variableLabels) }

// ConstLabels returns the constant labels sorted by name.
func (d *Desc) ConstLabels() []LabelPair { return slices.Clone(d.constLabelPairs) }

// Err returns the problem found while building d, if any.
func (d *Desc) Err() error { return d.err }

func (d *Desc) String() string {
	lpStrings := make([]string, 0, len(d.constLabelPairs))
	for _, lp := range d.constLabelPairs {
		lpStrings = append(lpStrings, fmt.Sprintf("%s=%q", lp.Name, lp.Value))
	}
	return fmt.Sprintf(
		"Desc{fqName: %q, help: %q, type: %s, constLabels: {%s}, variableLabels: %v}",
		d.fqName,
		d.help,
		d.valueType,
		strings.Join(lpStrings, ","),
		d.variableLabels,
	)
}

// sameSchema reports whether o describes the same metric as d apart from the
// help text.
func (d *Desc) sameSchema(o *Desc) bool {
	return d.fqName == o.fqName &&
		d.valueType == o.valueType &&
		slices.Equal(d.variableLabels, o.variableLabels) &&
		slices.Equal(d.constLabelPairs, o.constLabelPairs)
}
