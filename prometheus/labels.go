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
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/common/model"
)

// Labels represents a collection of label name -> value mappings.
type Labels map[string]string

// LabelPair is a single label as it appears on an exposed series.
type LabelPair struct {
	Name  string
	Value string
}

// reservedLabelPrefix is a prefix which is not legal in user-supplied label
// names.
const reservedLabelPrefix = "__"

func checkLabelName(l string) bool {
	return model.LabelName(l).IsValid() && !strings.HasPrefix(l, reservedLabelPrefix)
}

func validateLabelValues(name string, schema, vals []string) error {
	if len(vals) != len(schema) {
		return &UnknownLabelError{Metric: name, Schema: schema, Count: len(vals)}
	}
	for _, val := range vals {
		if !utf8.ValidString(val) {
			return fmt.Errorf("%w: %q for metric %q is not valid UTF-8", ErrInvalidLabelValue, val, name)
		}
	}
	return nil
}

// labelValuesFor orders the values of labels by schema.
func labelValuesFor(name string, schema []string, labels Labels) ([]string, error) {
	mismatch := func() error {
		got := make([]string, 0, len(labels))
		for l := range labels {
			got = append(got, l)
		}
		slices.Sort(got)
		return &UnknownLabelError{Metric: name, Schema: schema, Labels: got, Count: len(got)}
	}
	if len(labels) != len(schema) {
		return nil, mismatch()
	}
	lvs := make([]string, len(schema))
	for i, l := range schema {
		v, ok := labels[l]
		if !ok {
			return nil, mismatch()
		}
		lvs[i] = v
	}
	if err := validateLabelValues(name, schema, lvs); err != nil {
		return nil, err
	}
	return lvs, nil
}
