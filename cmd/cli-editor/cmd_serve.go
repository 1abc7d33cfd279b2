package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aaveggupta/cli-ai-code-editor/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr   string
	metricsAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prompt API over HTTP",
	Long: `Starts the JSON API. Callers identify themselves with the X-User-ID
header, which the fronting auth layer is expected to set.

Prometheus metrics are served at /metrics on the API address, or on their
own listener when --metrics-addr (server.metrics_addr) is set. Both
listeners stop together.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(cfg, logger, true)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		mAddr := metricsAddr
		if mAddr == "" {
			mAddr = cfg.Server.MetricsAddr
		}

		var servers []*server.Server
		gatherer := prometheus.Gatherer(a.registry)
		if mAddr != "" {
			metrics := server.NewMetrics(a.registry, logger)
			if err := metrics.Listen(mAddr); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "metrics at http://%s/metrics\n", metrics.Addr())
			servers = append(servers, metrics)
			gatherer = nil
		}
		api := server.New(a.executor, a.fs, gatherer, logger)
		servers = append(servers, api)
		if err := api.Listen(addr); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cli-editor API at http://%s\n", api.Addr())

		// A listener that fails cancels gctx, which stops the other.
		g, gctx := errgroup.WithContext(ctx)
		for _, srv := range servers {
			g.Go(func() error {
				return srv.Serve(gctx)
			})
		}
		err = g.Wait()
		logger.Info("shut down", zap.NamedError("cause", context.Cause(gctx)))
		if err != nil {
			logger.Error("server exited", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Separate metrics listen address (default server.metrics_addr)")
}
