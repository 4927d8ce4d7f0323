// Copyright 2022 The Prometheus Authors
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

import "net/http"

// Option are used to configure the instrumentation middlewares.
type Option interface {
	apply(*options)
}

// LabelValueFromRequest is used to compute the label value from request.
type LabelValueFromRequest func(request *http.Request) string

// options store options for the instrumentation middlewares.
type options struct {
	extraMethods           []string
	extraLabelsFromRequest map[string]LabelValueFromRequest
}

func defaultOptions() *options {
	return &options{
		extraLabelsFromRequest: map[string]LabelValueFromRequest{},
	}
}

type optionApplyFunc func(*options)

func (o optionApplyFunc) apply(opt *options) { o(opt) }

// WithExtraMethods adds additional HTTP methods to the list of allowed methods.
// Methods outside that list are reported as "unknown".
func WithExtraMethods(methods ...string) Option {
	return optionApplyFunc(func(o *options) {
		o.extraMethods = methods
	})
}

// WithLabelFromRequest adds a label and its value computed from the request
// to the metrics of an instrumented handler. The metric's label schema must
// contain name.
func WithLabelFromRequest(name string, lvFn LabelValueFromRequest) Option {
	return optionApplyFunc(func(o *options) {
		o.extraLabelsFromRequest[name] = lvFn
	})
}

// WithHandlerName is a shorthand for WithLabelFromRequest with a constant
// "handler" label.
func WithHandlerName(handler string) Option {
	return WithLabelFromRequest("handler", func(*http.Request) string { return handler })
}
