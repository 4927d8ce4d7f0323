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

package server

import (
	"compress/gzip"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/prometheus/demoapp/prometheus"
	"github.com/prometheus/demoapp/prometheus/testutil"
	"github.com/prometheus/demoapp/prometheus/testutil/promlint"
	"github.com/prometheus/demoapp/text"
)

func testConfig() Config {
	return Config{
		Addr:            "127.0.0.1:0",
		MetricsPath:     "/metrics",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	}
}

func newTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	requests := reg.MustNewCounter(prometheus.CounterOpts{
		Name: "requests_total",
		Help: "Requests by method.",
	}, "method")
	requests.WithLabelValues("GET").Inc()

	s, err := New(reg, testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return s, reg
}

func get(t *testing.T, h http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, vs := range header {
		req.Header[k] = vs
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMetricNamesLint(t *testing.T) {
	_, reg := newTestServer(t)
	require.Empty(t, promlint.Lint(reg.Descs()))
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsText(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, text.ContentType, rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "# TYPE requests_total counter\nrequests_total{method=\"GET\"} 1\n")
	// Request metrics of the server are declared before any request.
	require.Contains(t, rec.Body.String(), "# TYPE demoapp_http_requests_total counter\n")
	// The scrape itself is counted once it has been served.
	require.Contains(t, rec.Body.String(), "promhttp_metric_handler_requests_total{code=\"200\"} 0\n")

	rec = get(t, s.Handler(), "/metrics", nil)
	require.Contains(t, rec.Body.String(), "promhttp_metric_handler_requests_total{code=\"200\"} 1\n")
}

func TestMetricsGzip(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/metrics", http.Header{"Accept-Encoding": {"gzip"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Contains(t, string(body), `requests_total{method="GET"} 1`)
}

func TestMetricsProtobuf(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/metrics", http.Header{
		"Accept": {"application/vnd.google.protobuf;proto=io.prometheus.client.MetricFamily;encoding=delimited"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, string(expfmt.FmtProtoDelim), rec.Header().Get("Content-Type"))

	dec := expfmt.NewDecoder(rec.Body, expfmt.FmtProtoDelim)
	var names []string
	for {
		mf := &dto.MetricFamily{}
		if err := dec.Decode(mf); err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		names = append(names, mf.GetName())
	}
	require.Contains(t, names, "requests_total")
	require.Contains(t, names, "promhttp_metric_handler_requests_in_flight")
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.Contains(t, body, `<a href="/metrics">/metrics</a>`)
	require.Contains(t, body, `<a href="/health">/health</a>`)
	require.Contains(t, body, "<b>requests_total</b> (counter) - Requests by method.")

	require.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/missing", nil).Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestsAreInstrumented(t *testing.T) {
	s, reg := newTestServer(t)

	for range 3 {
		get(t, s.Handler(), "/health", nil)
	}
	get(t, s.Handler(), "/", nil)

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP demoapp_http_requests_total Requests served by the exporter, excluding scrapes.
# TYPE demoapp_http_requests_total counter
demoapp_http_requests_total{code="200",handler="health",method="get"} 3
demoapp_http_requests_total{code="200",handler="index",method="get"} 1
`), "demoapp_http_requests_total"))

	var observed uint64
	for s := range reg.Enumerate() {
		if s.Desc.Name() == "demoapp_http_request_duration_seconds" {
			observed += s.Histogram.SampleCount
		}
	}
	require.Equal(t, uint64(4), observed)
}

func TestNewRejectsBadMetricsPath(t *testing.T) {
	for _, path := range []string{"", "metrics", "/", "/health"} {
		cfg := testConfig()
		cfg.MetricsPath = path
		_, err := New(prometheus.NewRegistry(), cfg, nil)
		require.Error(t, err, "path %q", path)
	}
}

func TestCustomMetricsPath(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsPath = "/stats"
	s, err := New(prometheus.NewRegistry(), cfg, nil)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, get(t, s.Handler(), "/stats", nil).Code)
	require.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/metrics", nil).Code)
}

func TestServe(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	rsp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(rsp.Body)
	require.NoError(t, err)
	require.NoError(t, rsp.Body.Close())
	require.JSONEq(t, `{"status":"ok"}`, string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestRunFailsOnBusyAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.Addr = ln.Addr().String()
	s, err := New(prometheus.NewRegistry(), cfg, nil)
	require.NoError(t, err)
	require.Error(t, s.Run(context.Background()))
}
