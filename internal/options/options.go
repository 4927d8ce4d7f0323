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

// Package options contains the flags and configuration of the demo exporter.
//
// Values are resolved by viper in this order: command line flags, environment
// variables prefixed with DEMOAPP_ (dots and dashes become underscores, as in
// DEMOAPP_SIMULATION_INTERVAL), the optional config file, flag defaults.
package options

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/prometheus/demoapp/internal/logging"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "DEMOAPP"

// Options holds the complete configuration.
type Options struct {
	// Server is squashed so that its keys, like host and port, sit at the
	// top level.
	Server     ServerOptions      `json:"server" mapstructure:",squash"`
	Simulation *SimulationOptions `json:"simulation" mapstructure:"simulation"`
	Log        *LogOptions        `json:"log" mapstructure:"log"`
}

// ServerOptions configures the HTTP surface.
type ServerOptions struct {
	Host            string        `json:"host" mapstructure:"host"`
	Port            int           `json:"port" mapstructure:"port"`
	MetricsPath     string        `json:"metrics-path" mapstructure:"metrics-path"`
	ReadTimeout     time.Duration `json:"read-timeout" mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `json:"write-timeout" mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// SimulationOptions configures the metric simulator.
type SimulationOptions struct {
	Enabled  bool          `json:"enabled" mapstructure:"enabled"`
	Interval time.Duration `json:"interval" mapstructure:"interval"`
	Workers  int           `json:"workers" mapstructure:"workers"`
}

// LogOptions configures the logger.
type LogOptions struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// NewOptions returns Options with default values.
func NewOptions() *Options {
	return &Options{
		Server: ServerOptions{
			Host:            "0.0.0.0",
			Port:            8080,
			MetricsPath:     "/metrics",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Simulation: &SimulationOptions{
			Enabled:  true,
			Interval: 2 * time.Second,
			Workers:  1,
		},
		Log: &LogOptions{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

// AddFlags adds the flags of all options to fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Server.AddFlags(fs)
	o.Simulation.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// AddFlags adds flags for the HTTP surface to fs.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Host, "host", o.Host, "Address to listen on.")
	fs.IntVar(&o.Port, "port", o.Port, "Port to listen on.")
	fs.StringVar(&o.MetricsPath, "metrics-path", o.MetricsPath, "Path under which to expose metrics.")
	fs.DurationVar(&o.ReadTimeout, "read-timeout", o.ReadTimeout, "Timeout for reading an entire request.")
	fs.DurationVar(&o.WriteTimeout, "write-timeout", o.WriteTimeout, "Timeout for writing a response.")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Time allowed for in-flight requests on shutdown.")
}

// AddFlags adds flags for the simulator to fs.
func (o *SimulationOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "simulation.enabled", o.Enabled, "Mutate the business metrics in the background.")
	fs.DurationVar(&o.Interval, "simulation.interval", o.Interval, "Time between two simulation steps of a worker.")
	fs.IntVar(&o.Workers, "simulation.workers", o.Workers, "Number of concurrent simulation workers.")
}

// AddFlags adds flags for the logger to fs.
func (o *LogOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Minimum log level: debug, info, warn or error.")
	fs.StringVar(&o.Format, "log.format", o.Format, "Log format: console or json.")
}

// Load resolves the options from fs, the environment and, if configFile is
// not empty, a config file. The flags in fs must have been added with
// AddFlags and parsed.
func (o *Options) Load(v *viper.Viper, fs *pflag.FlagSet, configFile string) error {
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}
	if err := v.Unmarshal(o); err != nil {
		return fmt.Errorf("decoding configuration: %w", err)
	}
	return nil
}

// Complete fills in derived values.
func (o *Options) Complete() error {
	if o.Server.MetricsPath != "" && !strings.HasPrefix(o.Server.MetricsPath, "/") {
		o.Server.MetricsPath = "/" + o.Server.MetricsPath
	}
	o.Log.Level = strings.ToLower(o.Log.Level)
	o.Log.Format = strings.ToLower(o.Log.Format)
	return nil
}

// Validate checks all options and reports every problem found.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.Server.Validate()...)
	errs = append(errs, o.Simulation.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return multierr.Combine(errs...)
}

// Validate checks the HTTP surface options.
func (o *ServerOptions) Validate() []error {
	var errs []error
	if o.Port < 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", o.Port))
	}
	switch o.MetricsPath {
	case "":
		errs = append(errs, fmt.Errorf("metrics-path cannot be empty"))
	case "/", "/health":
		errs = append(errs, fmt.Errorf("metrics-path %q collides with a built-in route", o.MetricsPath))
	}
	if o.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("read-timeout must be positive"))
	}
	if o.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("write-timeout must be positive"))
	}
	if o.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown-timeout must be positive"))
	}
	return errs
}

// Addr returns the listen address.
func (o *ServerOptions) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Validate checks the simulator options.
func (o *SimulationOptions) Validate() []error {
	var errs []error
	if o.Interval <= 0 {
		errs = append(errs, fmt.Errorf("simulation.interval must be positive"))
	}
	if o.Workers < 1 {
		errs = append(errs, fmt.Errorf("simulation.workers must be at least 1"))
	}
	return errs
}

// Validate checks the logger options.
func (o *LogOptions) Validate() []error {
	var errs []error
	if _, err := zapcore.ParseLevel(o.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := logging.ValidateFormat(o.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}
	return errs
}
