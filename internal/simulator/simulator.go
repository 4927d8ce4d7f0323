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

// Package simulator produces synthetic business metrics: HTTP request
// counts and latencies, online users, the order queue backlog and order
// processing times.
package simulator

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prometheus/demoapp/internal/periodic"
	"github.com/prometheus/demoapp/prometheus"
)

var (
	// Endpoints are the simulated API routes.
	Endpoints = []string{"/api/users", "/api/orders", "/api/products"}
	// Methods are the simulated HTTP methods.
	Methods = []string{"GET", "POST", "PUT"}
	// statuses repeats 200 to make it the most likely outcome.
	statuses = []string{"200", "200", "200", "404", "500"}

	// LatencyBuckets are the bucket bounds of request_duration_seconds.
	LatencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5}
)

const (
	meanLatencySeconds    = 0.2
	baseUsers             = 100
	usersPerHourFromNoon  = 50
	userJitter            = 20
	maxOrderQueue         = 500
	meanProcessingSeconds = 1.5
	processingStdDev      = 0.5
)

// Simulator mutates a fixed set of metrics with random values on every step.
// It is safe to step a Simulator from several goroutines.
type Simulator struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	activeUsers *prometheus.GaugeVec
	queueSize   *prometheus.GaugeVec
	processing  *prometheus.SummaryVec

	logger *zap.Logger
	now    func() time.Time

	// rndMtx guards rnd, which is not safe for concurrent use.
	rndMtx sync.Mutex
	rnd    *rand.Rand
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger for step failures. The default discards logs.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithRand sets the source of randomness, e.g. a seeded one in tests.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) { s.rnd = r }
}

// WithClock sets the clock whose hour drives the number of active users.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// New registers the simulated metrics with reg and returns a Simulator
// mutating them. Registering twice on the same Registry shares the metrics.
func New(reg *prometheus.Registry, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		logger: zap.NewNop(),
		now:    time.Now,
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.requests, err = reg.NewCounter(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, "method", "endpoint", "status"); err != nil {
		return nil, err
	}
	if s.activeUsers, err = reg.NewGauge(prometheus.GaugeOpts{
		Name: "active_users",
		Help: "Number of users currently online.",
	}); err != nil {
		return nil, err
	}
	if s.queueSize, err = reg.NewGauge(prometheus.GaugeOpts{
		Name: "order_queue_size",
		Help: "Number of orders waiting in the queue.",
	}); err != nil {
		return nil, err
	}
	if s.latency, err = reg.NewHistogram(prometheus.HistogramOpts{
		Name:    "request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: LatencyBuckets,
	}, "endpoint"); err != nil {
		return nil, err
	}
	if s.processing, err = reg.NewSummary(prometheus.SummaryOpts{
		Name: "order_processing_seconds",
		Help: "Time spent processing an order in seconds.",
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// sample is everything one step draws at random.
type sample struct {
	method, endpoint, status string
	latency                  float64
	activeUsers              float64
	queueSize                float64
	processing               float64
}

func (s *Simulator) draw() sample {
	hour := s.now().Hour()

	s.rndMtx.Lock()
	defer s.rndMtx.Unlock()

	return sample{
		endpoint:    Endpoints[s.rnd.IntN(len(Endpoints))],
		method:      Methods[s.rnd.IntN(len(Methods))],
		status:      statuses[s.rnd.IntN(len(statuses))],
		latency:     s.rnd.ExpFloat64() * meanLatencySeconds,
		activeUsers: float64(usersAt(hour) + s.rnd.IntN(2*userJitter+1) - userJitter),
		queueSize:   float64(s.rnd.IntN(maxOrderQueue + 1)),
		processing:  math.Max(0, s.rnd.NormFloat64()*processingStdDev+meanProcessingSeconds),
	}
}

// usersAt returns the expected number of users at the given hour of the day.
// It is lowest at noon.
func usersAt(hour int) int {
	d := 12 - hour
	if d < 0 {
		d = -d
	}
	return baseUsers + usersPerHourFromNoon*d
}

// Step simulates one request and refreshes the gauges.
func (s *Simulator) Step() error {
	d := s.draw()

	if err := s.requests.Inc(prometheus.Labels{
		"method":   d.method,
		"endpoint": d.endpoint,
		"status":   d.status,
	}); err != nil {
		return err
	}
	if err := s.latency.Observe(prometheus.Labels{"endpoint": d.endpoint}, d.latency); err != nil {
		return err
	}
	if err := s.activeUsers.Set(nil, d.activeUsers); err != nil {
		return err
	}
	if err := s.queueSize.Set(nil, d.queueSize); err != nil {
		return err
	}
	return s.processing.Observe(nil, d.processing)
}

// Run steps the simulator from workers goroutines, each once per interval,
// until ctx is done. Every worker steps once right away.
func (s *Simulator) Run(ctx context.Context, interval time.Duration, workers int) error {
	if workers < 1 {
		return fmt.Errorf("simulator needs at least one worker, got %d", workers)
	}
	tasks := make([]*periodic.Task, 0, workers)
	for i := range workers {
		logger := s.logger.With(zap.Int("worker", i))
		task, err := periodic.New(interval, func(context.Context) {
			if err := s.Step(); err != nil {
				logger.Warn("simulation step failed", zap.Error(err))
			}
		}, periodic.WithImmediateStart())
		if err != nil {
			return err
		}
		tasks = append(tasks, task)
	}

	s.logger.Info("simulator started", zap.Duration("interval", interval), zap.Int("workers", workers))
	g, ctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error { return task.Run(ctx) })
	}
	err := g.Wait()
	s.logger.Info("simulator stopped")
	return err
}
