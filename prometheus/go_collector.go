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
	"runtime"
	"runtime/debug"
	"time"
)

type goCollector struct {
	goroutinesDesc *Desc
	threadsDesc    *Desc
	gcDesc         *Desc
	gcLastTimeDesc *Desc
	goInfoDesc     *Desc

	allocDesc       *Desc
	sysDesc         *Desc
	heapInuseDesc   *Desc
	heapObjectsDesc *Desc
}

func memstatNamespace(s string) string {
	return "go_memstats_" + s
}

// NewGoCollector returns a collector that exports metrics about the current Go
// process: goroutine and thread counts, GC pause durations, a few memory
// statistics and the Go version.
func NewGoCollector() Collector {
	return &goCollector{
		goroutinesDesc: NewDesc(
			"go_goroutines",
			"Number of goroutines that currently exist.",
			GaugeValue, nil, nil),
		threadsDesc: NewDesc(
			"go_threads",
			"Number of OS threads created.",
			GaugeValue, nil, nil),
		gcDesc: NewDesc(
			"go_gc_duration_seconds",
			"A summary of the wall-time pause (stop-the-world) duration in garbage collection cycles.",
			SummaryValue, nil, nil),
		gcLastTimeDesc: NewDesc(
			memstatNamespace("last_gc_time_seconds"),
			"Number of seconds since 1970 of last garbage collection.",
			GaugeValue, nil, nil),
		goInfoDesc: NewDesc(
			"go_info",
			"Information about the Go environment.",
			GaugeValue, nil, Labels{"version": runtime.Version()}),
		allocDesc: NewDesc(
			memstatNamespace("alloc_bytes"),
			"Number of bytes allocated and still in use.",
			GaugeValue, nil, nil),
		sysDesc: NewDesc(
			memstatNamespace("sys_bytes"),
			"Number of bytes obtained from system.",
			GaugeValue, nil, nil),
		heapInuseDesc: NewDesc(
			memstatNamespace("heap_inuse_bytes"),
			"Number of heap bytes that are in use.",
			GaugeValue, nil, nil),
		heapObjectsDesc: NewDesc(
			memstatNamespace("heap_objects"),
			"Number of allocated objects.",
			GaugeValue, nil, nil),
	}
}

// Describe returns all descriptions of the collector.
func (c *goCollector) Describe() []*Desc {
	return []*Desc{
		c.goroutinesDesc, c.threadsDesc, c.gcDesc, c.gcLastTimeDesc, c.goInfoDesc,
		c.allocDesc, c.sysDesc, c.heapInuseDesc, c.heapObjectsDesc,
	}
}

// Collect returns the current state of all metrics of the collector.
func (c *goCollector) Collect() iter.Seq[Series] {
	return func(yield func(Series) bool) {
		threads, _ := runtime.ThreadCreateProfile(nil)

		var stats debug.GCStats
		stats.PauseQuantiles = make([]time.Duration, 5)
		debug.ReadGCStats(&stats)

		quantiles := make([]Quantile, 0, len(stats.PauseQuantiles))
		for idx, pq := range stats.PauseQuantiles {
			quantiles = append(quantiles, Quantile{
				Quantile: float64(idx) / float64(len(stats.PauseQuantiles)-1),
				Value:    pq.Seconds(),
			})
		}
		gc := Series{
			Desc: c.gcDesc,
			Summary: &SummarySnapshot{
				Quantiles:   quantiles,
				SampleCount: uint64(stats.NumGC),
				SampleSum:   stats.PauseTotal.Seconds(),
			},
		}

		var lastGC float64
		if !stats.LastGC.IsZero() {
			lastGC = float64(stats.LastGC.UnixNano()) / 1e9
		}

		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)

		series := []Series{
			constSeries(c.goroutinesDesc, float64(runtime.NumGoroutine())),
			constSeries(c.threadsDesc, float64(threads)),
			gc,
			constSeries(c.gcLastTimeDesc, lastGC),
			constSeries(c.goInfoDesc, 1),
			constSeries(c.allocDesc, float64(ms.Alloc)),
			constSeries(c.sysDesc, float64(ms.Sys)),
			constSeries(c.heapInuseDesc, float64(ms.HeapInuse)),
			constSeries(c.heapObjectsDesc, float64(ms.HeapObjects)),
		}
		for _, s := range series {
			if !yield(s) {
				return
			}
		}
	}
}
