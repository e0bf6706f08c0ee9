package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/meenmo/credlib/batch"
	"github.com/meenmo/credlib/journal"
	"github.com/meenmo/credlib/metrics"
	"github.com/meenmo/credlib/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pricer over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := a.cfg.Server
			if addr != "" {
				sc.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m, err := metrics.New(reg)
			if err != nil {
				return err
			}

			engine, err := a.engine()
			if err != nil {
				return err
			}
			runner := &batch.Runner{Engine: engine, Workers: a.cfg.Batch.Workers, Metrics: m, Log: a.log}

			var j journal.Journal
			if a.cfg.Journal.Enabled {
				sj, err := a.openJournal()
				if err != nil {
					return err
				}
				defer sj.Close()
				j = sj
				runner.Journal = sj
			}

			srv := server.New(server.Config{
				Log:               a.log,
				Addr:              sc.Addr,
				ReadTimeout:       sc.ReadTimeout,
				WriteTimeout:      sc.WriteTimeout,
				RequestsPerSecond: sc.RequestsPerSecond,
				Burst:             sc.Burst,
				AllowedOrigins:    sc.AllowedOrigins,
				MaxBodyBytes:      sc.MaxBodyBytes,
				Runner:            runner,
				Journal:           j,
				Gatherer:          reg,
			})

			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
