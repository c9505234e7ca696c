package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/skilltree/internal/server"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Serves tree roadmaps, graph payloads and progress toggles as JSON, plus /healthz and /metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		srv := server.New(e.store.Trees(), e.store.Users(), e.tracker(),
			server.WithLogger(e.logger),
			server.WithRegistry(reg),
		)
		httpSrv := &http.Server{
			Addr:              e.cfg.Listen,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			e.logger.Info("starting server", "addr", httpSrv.Addr, "cache", e.cfg.Cache.Backend)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			e.logger.Info("shutting down server")

			// Give outstanding requests a deadline for completion.
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpSrv.Shutdown(sctx); err != nil {
				e.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return httpSrv.Close()
			}
			return nil
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "Address to listen on (default :8080)")
	_ = viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}
