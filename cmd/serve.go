package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"releasegate/internal/bootstrap"
	"releasegate/internal/bootstrap/logging"
	"releasegate/internal/errs"
	"releasegate/internal/transport/httpapi"
	"releasegate/internal/usecase/readiness"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the readiness HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *readiness.Service) error {
		addr, _ := cmd.Flags().GetString("addr")
		if strings.TrimSpace(addr) == "" {
			addr = app.Config.HTTP.Addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(ctx, slog.String("component", "cmd.serve"), slog.String("addr", addr))

		var gatherer prometheus.Gatherer
		if app.Config.Metrics.Prometheus.Enabled {
			gatherer = app.Registry
		}

		server := &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewRouter(svc, gatherer),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
		}

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening")
			serveErr <- server.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return errs.Wrap(err, "serve http")
		case <-ctx.Done():
		}

		logging.Info(ctx, "shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default http.addr from config)")
}
