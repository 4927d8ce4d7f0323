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
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/protobuf/proto"
)

// Gather implements Gatherer. It converts the series returned by Enumerate
// into one MetricFamily per metric that has at least one series, in
// registration order. Label pairs of each Metric are sorted by name.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	var (
		families    []*dto.MetricFamily
		current     *dto.MetricFamily
		currentDesc *Desc
	)
	for s := range r.Enumerate() {
		if s.Desc != currentDesc {
			currentDesc = s.Desc
			current = &dto.MetricFamily{
				Name: proto.String(s.Desc.fqName),
				Help: proto.String(s.Desc.help),
				Type: s.Desc.valueType.ToDTO(),
			}
			families = append(families, current)
		}
		m, err := s.toDTO()
		if err != nil {
			return nil, err
		}
		current.Metric = append(current.Metric, m)
	}
	return families, nil
}
