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

// Package promhttp provides tooling around HTTP servers.
//
// HandlerFor serves the series of a Registry in the text, protobuf or
// OpenMetrics exposition format, as negotiated with the scraper.
// InstrumentMetricHandler adds the usual promhttp_metric_handler_* metrics to
// such a handler. The InstrumentHandler* functions wrap any other
// http.Handler to observe requests with counters, histograms and gauges.
package promhttp

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/prometheus/demoapp/prometheus"
	"github.com/prometheus/demoapp/text"
)

const (
	contentTypeHeader     = "Content-Type"
	contentEncodingHeader = "Content-Encoding"
	acceptEncodingHeader  = "Accept-Encoding"
	varyHeader            = "Vary"
)

// HandlerOpts specifies options how to serve metrics via an http.Handler. The
// zero value of HandlerOpts is a reasonable default.
type HandlerOpts struct {
	// ErrorLog specifies an optional logger for errors collecting and
	// serving metrics. If nil, errors are not logged at all.
	ErrorLog *zap.Logger
	// If DisableCompression is true, the handler will never compress the
	// response, even if requested by the client.
	DisableCompression bool
	// If true, the experimental OpenMetrics encoding is offered to clients
	// that ask for it. The text format stays the default.
	EnableOpenMetrics bool
}

// HandlerFor returns an http.Handler for the provided Registry. The behavior
// of the Handler is defined by the provided HandlerOpts.
//
// The text format is written by package text into a buffer before anything
// is sent; an encoding error answers 500. Protobuf and OpenMetrics go through
// Registry.Gather and the encoders of github.com/prometheus/common/expfmt.
func HandlerFor(reg *prometheus.Registry, opts HandlerOpts) http.Handler {
	logger := opts.ErrorLog
	if logger == nil {
		logger = zap.NewNop()
	}

	return http.HandlerFunc(func(rsp http.ResponseWriter, req *http.Request) {
		var contentType expfmt.Format
		if opts.EnableOpenMetrics {
			contentType = expfmt.NegotiateIncludingOpenMetrics(req.Header)
		} else {
			contentType = expfmt.Negotiate(req.Header)
		}

		var (
			mfs  []*dto.MetricFamily
			body bytes.Buffer
		)
		if contentType == expfmt.FmtText {
			if _, err := text.WriteRegistry(&body, reg); err != nil {
				logger.Error("error encoding metrics", zap.Error(err))
				http.Error(rsp, "An error has occurred while encoding metrics:\n\n"+err.Error(), http.StatusInternalServerError)
				return
			}
		} else {
			var err error
			if mfs, err = reg.Gather(); err != nil {
				logger.Error("error gathering metrics", zap.Error(err))
				http.Error(rsp, "An error has occurred while gathering metrics:\n\n"+err.Error(), http.StatusInternalServerError)
				return
			}
		}

		header := rsp.Header()
		header.Add(varyHeader, acceptEncodingHeader)
		var w io.Writer = rsp
		if !opts.DisableCompression && gzipAccepted(req.Header) {
			header.Set(contentEncodingHeader, "gzip")
			gz := gzip.NewWriter(rsp)
			defer func() {
				if err := gz.Close(); err != nil {
					logger.Error("error closing gzip writer", zap.Error(err))
				}
			}()
			w = gz
		}

		if contentType == expfmt.FmtText {
			header.Set(contentTypeHeader, text.ContentType)
			if _, err := body.WriteTo(w); err != nil {
				logger.Error("error writing metrics", zap.Error(err))
			}
			return
		}

		header.Set(contentTypeHeader, string(contentType))
		enc := expfmt.NewEncoder(w, contentType)
		for _, mf := range mfs {
			if err := enc.Encode(mf); err != nil {
				logger.Error("error encoding metric family", zap.String("family", mf.GetName()), zap.Error(err))
				return
			}
		}
		if closer, ok := enc.(expfmt.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Error("error finishing metrics encoding", zap.Error(err))
			}
		}
	})
}

// InstrumentMetricHandler is usually used with an http.Handler returned by
// HandlerFor. It instruments the provided http.Handler with a Counter
// (promhttp_metric_handler_requests_total, partitioned by HTTP status code)
// and a Gauge (promhttp_metric_handler_requests_in_flight), both registered
// with reg. Calling it twice with the same Registry shares the metrics.
func InstrumentMetricHandler(reg *prometheus.Registry, handler http.Handler) (http.Handler, error) {
	cnt, err := reg.NewCounter(prometheus.CounterOpts{
		Name: "promhttp_metric_handler_requests_total",
		Help: "Total number of scrapes by HTTP status code.",
	}, "code")
	if err != nil {
		return nil, err
	}
	// Initialize the most likely HTTP status codes.
	cnt.WithLabelValues("200")
	cnt.WithLabelValues("500")
	cnt.WithLabelValues("503")

	gge, err := reg.NewGauge(prometheus.GaugeOpts{
		Name: "promhttp_metric_handler_requests_in_flight",
		Help: "Current number of scrapes being served.",
	})
	if err != nil {
		return nil, err
	}

	return InstrumentHandlerCounter(cnt, InstrumentHandlerInFlight(gge.WithLabelValues(), handler)), nil
}

// gzipAccepted returns whether the client will accept gzip-encoded content.
func gzipAccepted(header http.Header) bool {
	for _, part := range strings.Split(header.Get(acceptEncodingHeader), ",") {
		enc, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if enc == "gzip" {
			return true
		}
	}
	return false
}
