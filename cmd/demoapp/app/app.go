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

// Package app wires the demo exporter together behind a cobra command.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prometheus/demoapp/internal/logging"
	"github.com/prometheus/demoapp/internal/options"
	"github.com/prometheus/demoapp/internal/server"
	"github.com/prometheus/demoapp/internal/simulator"
	"github.com/prometheus/demoapp/prometheus"
)

const configFlag = "config"

// NewCommand returns the root command of the exporter.
func NewCommand() *cobra.Command {
	o := options.NewOptions()
	cmd := &cobra.Command{
		Use:   "demoapp",
		Short: "Expose synthetic business metrics for Prometheus.",
		Long: `demoapp simulates HTTP traffic, online users and an order queue, and
exposes the resulting metrics in the Prometheus exposition formats.

Every flag can also be set in the config file or through an environment
variable prefixed with ` + options.EnvPrefix + `_, e.g. ` + options.EnvPrefix + `_PORT=9100.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configFile, err := cmd.Flags().GetString(configFlag)
			if err != nil {
				return err
			}
			if err := o.Load(viper.New(), cmd.Flags(), configFile); err != nil {
				return err
			}
			if err := o.Complete(); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, o)
		},
	}
	cmd.Flags().StringP(configFlag, "c", "", "Path to a config file (yaml, json or toml).")
	o.AddFlags(cmd.Flags())
	return cmd
}

// Run serves metrics, and simulates them if enabled, until ctx is done.
func Run(ctx context.Context, o *options.Options) error {
	logger, err := logging.New(o.Log.Level, o.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	reg := prometheus.NewRegistry()
	if err := reg.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{})); err != nil {
		return err
	}
	if err := reg.Register(prometheus.NewGoCollector()); err != nil {
		return err
	}

	sim, err := simulator.New(reg, simulator.WithLogger(logger.Named("simulator")))
	if err != nil {
		return fmt.Errorf("registering simulated metrics: %w", err)
	}
	srv, err := server.New(reg, server.Config{
		Addr:            o.Server.Addr(),
		MetricsPath:     o.Server.MetricsPath,
		ReadTimeout:     o.Server.ReadTimeout,
		WriteTimeout:    o.Server.WriteTimeout,
		ShutdownTimeout: o.Server.ShutdownTimeout,
	}, logger.Named("http"))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	if o.Simulation.Enabled {
		g.Go(func() error { return sim.Run(ctx, o.Simulation.Interval, o.Simulation.Workers) })
	}
	err = g.Wait()
	logger.Info("demoapp stopped", zap.Error(err))
	return err
}
