package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"postured/internal/config"
	"postured/internal/httpapi"
)

const shutdownTimeout = 5 * time.Second

// fnServing is called with the bound address once the listener is up.
var fnServing = func(net.Addr) {}

func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr string
	var origins []string
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve posture streams over HTTP and WebSocket",
		Example: "  postured serve --addr :8090\n  postured serve --cors-origin http://localhost:5173",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cmd.Flags().Changed("cors-origin") {
				cfg.Serve.CORSOrigins = origins
			}
			return fnServe(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.Default().Serve.Addr, "HTTP listen address")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "Allowed CORS origin (repeatable or comma-separated)")
	return cmd
}

// serve runs the HTTP API until ctx is cancelled, then lets open streams
// write their final status line and shuts down.
func serve(ctx context.Context, cfg *config.Config, stderr io.Writer) error {
	lg := newLogger(*cfg, stderr)
	mon, err := buildMonitor(*cfg, &lg)
	if err != nil {
		return err
	}
	defer func() { _ = mon.Close() }()

	fan, err := buildSinks(ctx, *cfg, &lg)
	if err != nil {
		return err
	}
	if fan != nil {
		httpapi.SetEventSink(fan)
		defer func() {
			httpapi.SetEventSink(nil)
			_ = fan.Close()
		}()
	}

	httpapi.SetLogger(lg)
	httpapi.SetBaseContext(ctx)
	httpapi.SetCORSOptions(len(cfg.Serve.CORSOrigins) > 0, cfg.Serve.CORSOrigins)
	httpapi.SetAccessLogLevel(accessLogLevel(*cfg))

	ln, err := net.Listen("tcp", cfg.Serve.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Serve.Addr, err)
	}
	srv := &http.Server{
		Handler:           httpapi.NewMux(mon),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	lg.Info().Str("addr", ln.Addr().String()).Msg("postured listening")
	fnServing(ln.Addr())

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		lg.Warn().Err(err).Msg("graceful shutdown error")
	}
	mon.UnsubscribeAll()
	return nil
}

// accessLogLevel maps the process log level onto the per-request level.
func accessLogLevel(cfg config.Config) string {
	if cfg.Verbose {
		return "debug"
	}
	switch cfg.LogLevel {
	case "debug", "info":
		return cfg.LogLevel
	default:
		return "error"
	}
}
