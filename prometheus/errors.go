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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateName is matched by every *DuplicateNameError.
	ErrDuplicateName = errors.New("duplicate metric name")
	// ErrInvalidDelta is returned when a counter is asked to decrease or to
	// grow by NaN.
	ErrInvalidDelta = errors.New("counter cannot decrease in value")
	// ErrUnknownLabel is matched by every *UnknownLabelError.
	ErrUnknownLabel = errors.New("label set does not match label schema")
	// ErrInvalidLabelValue is returned for label values that are not valid
	// UTF-8.
	ErrInvalidLabelValue = errors.New("invalid label value")
	// ErrInvalidDesc wraps every problem found while building a Desc.
	ErrInvalidDesc = errors.New("invalid metric descriptor")
)

// DuplicateNameError is returned when a metric name is already taken by a
// metric of a different type or label schema.
type DuplicateNameError struct {
	Name      string
	Existing  *Desc
	Requested *Desc
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf(
		"metric %q already registered as %s with labels %v, cannot register %s with labels %v",
		e.Name,
		e.Existing.valueType, e.Existing.variableLabels,
		e.Requested.valueType, e.Requested.variableLabels,
	)
}

// Is makes errors.Is(err, ErrDuplicateName) work.
func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// UnknownLabelError is returned by a mutation whose labels do not match the
// label schema of the metric. Labels is nil when the caller passed label
// values positionally, in which case Count holds the number of values.
type UnknownLabelError struct {
	Metric string
	Schema []string
	Labels []string
	Count  int
}

func (e *UnknownLabelError) Error() string {
	if e.Labels == nil {
		return fmt.Sprintf(
			"metric %q expects %d label values (%s), got %d",
			e.Metric, len(e.Schema), strings.Join(e.Schema, ","), e.Count,
		)
	}
	return fmt.Sprintf(
		"metric %q expects labels [%s], got [%s]",
		e.Metric, strings.Join(e.Schema, ","), strings.Join(e.Labels, ","),
	)
}

// Is makes errors.Is(err, ErrUnknownLabel) work.
func (e *UnknownLabelError) Is(target error) bool { return target == ErrUnknownLabel }
