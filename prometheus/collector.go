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

package prometheus

import (
	"iter"

	dto "github.com/prometheus/client_model/go"
)

// Collector is the interface implemented by anything that can be used by
// Prometheus to collect metrics. A Collector has to be registered for
// collection. See Registry.Register.
//
// The metric vectors returned by the Registry's New* methods are Collectors,
// and so are the process and Go runtime collectors.
type Collector interface {
	// Describe returns the descriptors of all metrics collected by this
	// Collector. The returned descriptors fulfill the consistency and
	// uniqueness requirements described in the Desc documentation. The
	// result must not change during the lifetime of the Collector.
	Describe() []*Desc
	// Collect returns the current series of the Collector. All series of
	// one Desc are yielded contiguously, in the order they were first
	// observed. Collect is called concurrently with metric mutation, so
	// implementations must be safe for that and must never yield a
	// partially updated series.
	Collect() iter.Seq[Series]
}

// Gatherer is the interface for the part of a registry in charge of
// gathering the collected metrics into a number of MetricFamilies.
type Gatherer interface {
	Gather() ([]*dto.MetricFamily, error)
}
