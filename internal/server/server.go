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

// Package server is the HTTP surface of the exporter: the metrics endpoint,
// a health check and an index page.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/prometheus/demoapp/internal/errcapture"
	"github.com/prometheus/demoapp/prometheus"
	"github.com/prometheus/demoapp/prometheus/promhttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config configures a Server.
type Config struct {
	Addr            string
	MetricsPath     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server serves the series of a Registry over HTTP.
type Server struct {
	cfg    Config
	reg    *prometheus.Registry
	logger *zap.Logger
	srv    *http.Server
}

// New builds the routes of the server. The request metrics of the server
// itself are registered with reg.
func New(reg *prometheus.Registry, cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case !strings.HasPrefix(cfg.MetricsPath, "/"):
		return nil, fmt.Errorf("metrics path %q must start with a slash", cfg.MetricsPath)
	case cfg.MetricsPath == "/" || cfg.MetricsPath == "/health":
		return nil, fmt.Errorf("metrics path %q collides with a built-in route", cfg.MetricsPath)
	}
	s := &Server{cfg: cfg, reg: reg, logger: logger}

	requests, err := reg.NewCounter(prometheus.CounterOpts{
		Namespace: "demoapp",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Requests served by the exporter, excluding scrapes.",
	}, "handler", "code", "method")
	if err != nil {
		return nil, err
	}
	duration, err := reg.NewHistogram(prometheus.HistogramOpts{
		Namespace: "demoapp",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests served by the exporter, excluding scrapes.",
	}, "handler", "method")
	if err != nil {
		return nil, err
	}
	instrument := func(name string, h http.Handler) http.Handler {
		opt := promhttp.WithHandlerName(name)
		return promhttp.InstrumentHandlerCounter(requests,
			promhttp.InstrumentHandlerDuration(duration, h, opt), opt)
	}

	metrics, err := promhttp.InstrumentMetricHandler(reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog:          logger,
		EnableOpenMetrics: true,
	}))
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+cfg.MetricsPath, metrics)
	mux.Handle("GET /health", instrument("health", http.HandlerFunc(s.health)))
	mux.Handle("GET /{$}", instrument("index", http.HandlerFunc(s.index)))

	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     zap.NewStdLog(logger),
	}
	return s, nil
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully, giving in-flight requests the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve works like Run on an existing listener, which it closes on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) (err error) {
	defer errcapture.Do(&err, ln.Close, "closing listener")

	s.logger.Info("listening", zap.String("address", ln.Addr().String()), zap.String("metrics_path", s.cfg.MetricsPath))

	serveErr := make(chan error, 1)
	go func() { serveErr <- s.srv.Serve(ln) }()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	body, err := json.Marshal(healthResponse{Status: "ok"})
	if err != nil {
		s.logger.Error("encoding health response", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("writing health response", zap.Error(err))
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Prometheus Demo App</title></head>
<body>
<h2>Prometheus Demo App</h2>
<p>Metrics: <a href="{{.MetricsPath}}">{{.MetricsPath}}</a></p>
<p>Health check: <a href="/health">/health</a></p>
<hr>
<p>Exposed metrics:</p>
<ul>
{{- range .Metrics}}
<li><b>{{.Name}}</b> ({{.Type}}) - {{.Help}}</li>
{{- end}}
</ul>
</body>
</html>
`))

type indexMetric struct {
	Name, Type, Help string
}

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	data := struct {
		MetricsPath string
		Metrics     []indexMetric
	}{MetricsPath: s.cfg.MetricsPath}
	for _, d := range s.reg.Descs() {
		data.Metrics = append(data.Metrics, indexMetric{Name: d.Name(), Type: d.Type().String(), Help: d.Help()})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Debug("writing index page", zap.Error(err))
	}
}
