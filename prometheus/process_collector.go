// Copyright 2015 The Prometheus Authors
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
	"os"

	"github.com/prometheus/procfs"
)

// ProcessCollectorOpts defines the behavior of a process metrics collector
// created with NewProcessCollector.
type ProcessCollectorOpts struct {
	// PidFn returns the PID of the process the collector collects metrics
	// for. It is called upon each collection. By default, the PID of the
	// current process is used, as determined on construction time by
	// calling os.Getpid().
	PidFn func() (int, error)
	// If non-empty, each of the collected metrics is prefixed by the
	// provided string and an underscore ("_").
	Namespace string
}

type processCollector struct {
	pidFn func() (int, error)
	fs    procfs.FS
	// hasProcfs is false where no proc filesystem could be opened, in which
	// case the collector yields nothing.
	hasProcfs bool

	cpuTotal        *Desc
	openFDs, maxFDs *Desc
	vsize, rss      *Desc
	startTime       *Desc
}

// NewProcessCollector returns a collector which exports the current state of
// process metrics including CPU, memory and file descriptor usage as well as
// the process start time. The metrics are read from the proc filesystem and
// are only available on Linux.
func NewProcessCollector(opts ProcessCollectorOpts) Collector {
	ns := ""
	if len(opts.Namespace) > 0 {
		ns = opts.Namespace + "_"
	}

	c := &processCollector{
		pidFn: opts.PidFn,
		cpuTotal: NewDesc(
			ns+"process_cpu_seconds_total",
			"Total user and system CPU time spent in seconds.",
			CounterValue, nil, nil,
		),
		openFDs: NewDesc(
			ns+"process_open_fds",
			"Number of open file descriptors.",
			GaugeValue, nil, nil,
		),
		maxFDs: NewDesc(
			ns+"process_max_fds",
			"Maximum number of open file descriptors.",
			GaugeValue, nil, nil,
		),
		vsize: NewDesc(
			ns+"process_virtual_memory_bytes",
			"Virtual memory size in bytes.",
			GaugeValue, nil, nil,
		),
		rss: NewDesc(
			ns+"process_resident_memory_bytes",
			"Resident memory size in bytes.",
			GaugeValue, nil, nil,
		),
		startTime: NewDesc(
			ns+"process_start_time_seconds",
			"Start time of the process since unix epoch in seconds.",
			GaugeValue, nil, nil,
		),
	}

	if c.pidFn == nil {
		pid := os.Getpid()
		c.pidFn = func() (int, error) { return pid, nil }
	}

	if fs, err := procfs.NewDefaultFS(); err == nil {
		c.fs = fs
		c.hasProcfs = true
	}
	return c
}

// Describe returns all descriptions of the collector.
func (c *processCollector) Describe() []*Desc {
	return []*Desc{c.cpuTotal, c.openFDs, c.maxFDs, c.vsize, c.rss, c.startTime}
}

// Collect returns the current state of all metrics of the collector. Metrics
// that cannot be read are left out.
func (c *processCollector) Collect() iter.Seq[Series] {
	return func(yield func(Series) bool) {
		if !c.hasProcfs {
			return
		}
		pid, err := c.pidFn()
		if err != nil {
			return
		}
		p, err := c.fs.Proc(pid)
		if err != nil {
			return
		}

		if stat, err := p.Stat(); err == nil {
			if !yield(constSeries(c.cpuTotal, stat.CPUTime())) ||
				!yield(constSeries(c.vsize, float64(stat.VirtualMemory()))) ||
				!yield(constSeries(c.rss, float64(stat.ResidentMemory()))) {
				return
			}
			if startTime, err := stat.StartTime(); err == nil {
				if !yield(constSeries(c.startTime, startTime)) {
					return
				}
			}
		}

		if fds, err := p.FileDescriptorsLen(); err == nil {
			if !yield(constSeries(c.openFDs, float64(fds))) {
				return
			}
		}

		if limits, err := p.Limits(); err == nil {
			yield(constSeries(c.maxFDs, float64(limits.OpenFiles)))
		}
	}
}
