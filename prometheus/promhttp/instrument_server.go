// Copyright 2017 The Prometheus Authors
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

package promhttp

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/demoapp/prometheus"
)

// InstrumentHandlerInFlight is a middleware that wraps the provided
// http.Handler. It sets the provided prometheus.Gauge to the number of
// requests currently handled by the wrapped http.Handler.
func InstrumentHandlerInFlight(g prometheus.Gauge, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.Inc()
		defer g.Dec()
		next.ServeHTTP(w, r)
	})
}

// InstrumentHandlerCounter is a middleware that wraps the provided
// http.Handler to observe the request result with the provided CounterVec.
// The CounterVec may only have the labels "code" and "method", plus the ones
// added with WithLabelFromRequest. It panics otherwise.
//
// If the wrapped Handler does not set a status code, a status code of 200 is
// assumed.
func InstrumentHandlerCounter(counter *prometheus.CounterVec, next http.Handler, opts ...Option) http.Handler {
	o := applyOptions(opts)
	schema := checkLabels(counter.Desc(), o)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := newDelegator(w)
		next.ServeHTTP(d, r)
		counter.WithLabelValues(labelValues(schema, d.Status(), r, o)...).Inc()
	})
}

// InstrumentHandlerDuration is a middleware that wraps the provided
// http.Handler to observe the request duration in seconds with the provided
// HistogramVec. The same label rules as for InstrumentHandlerCounter apply.
func InstrumentHandlerDuration(obs *prometheus.HistogramVec, next http.Handler, opts ...Option) http.Handler {
	o := applyOptions(opts)
	schema := checkLabels(obs.Desc(), o)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := newDelegator(w)
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			obs.WithLabelValues(labelValues(schema, d.Status(), r, o)...).Observe(v)
		}))
		next.ServeHTTP(d, r)
		timer.ObserveDuration()
	})
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(o)
	}
	return o
}

// checkLabels returns the label schema of desc after making sure every label
// can be filled in from a request.
func checkLabels(desc *prometheus.Desc, o *options) []string {
	schema := desc.VariableLabels()
	for _, name := range schema {
		if name == "code" || name == "method" {
			continue
		}
		if _, ok := o.extraLabelsFromRequest[name]; ok {
			continue
		}
		panic(fmt.Errorf("metric %q has label %q, which cannot be derived from a request", desc.Name(), name))
	}
	return schema
}

func labelValues(schema []string, status int, r *http.Request, o *options) []string {
	lvs := make([]string, len(schema))
	for i, name := range schema {
		switch name {
		case "code":
			lvs[i] = strconv.Itoa(status)
		case "method":
			lvs[i] = sanitizeMethod(r.Method, o.extraMethods...)
		default:
			lvs[i] = o.extraLabelsFromRequest[name](r)
		}
	}
	return lvs
}

func sanitizeMethod(m string, extraMethods ...string) string {
	switch m {
	case "GET", "get":
		return "get"
	case "PUT", "put":
		return "put"
	case "HEAD", "head":
		return "head"
	case "POST", "post":
		return "post"
	case "DELETE", "delete":
		return "delete"
	case "CONNECT", "connect":
		return "connect"
	case "OPTIONS", "options":
		return "options"
	case "NOTIFY", "notify":
		return "notify"
	case "TRACE", "trace":
		return "trace"
	case "PATCH", "patch":
		return "patch"
	default:
		for _, method := range extraMethods {
			if strings.EqualFold(m, method) {
				return strings.ToLower(m)
			}
		}
		return "unknown"
	}
}
