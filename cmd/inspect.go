package cmd

import (
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/internal/inspector"
	"github.com/grovetools/sheetsync/logging"
	"github.com/grovetools/sheetsync/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewInspectCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Browse the mirrored state and drive the editor from the keyboard",
		Long: `Opens a live view of the editor state. Patches pushed by the backend are
applied as they arrive, and key presses go through the editor keymap to the
backend, so undo, save or nudges behave as they do in the editor itself.

Keybinding overrides in sheetsync.yml are reloaded when the file changes.`,
		Example: `  # Live view
  sheetsync inspect

  # Also expose gateway metrics for Prometheus
  sheetsync inspect --metrics-addr 127.0.0.1:9464`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("inspect")

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			sess, err := openSession(cmd, session.Options{Registry: reg, Follow: true, Watch: true})
			if err != nil {
				return err
			}
			defer sess.Close()

			if metricsAddr != "" {
				srv, err := serveMetrics(metricsAddr, reg, logger)
				if err != nil {
					return err
				}
				defer srv.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return inspector.Run(ctx, sess)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

// serveMetrics exposes reg on addr/metrics until the returned server is closed.
func serveMetrics(addr string, reg *prometheus.Registry, logger *logrus.Entry) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to listen for metrics").
			WithDetail("addr", addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Warn("Metrics server stopped")
		}
	}()
	logger.WithField("addr", ln.Addr().String()).Info("Serving metrics")
	return srv, nil
}
