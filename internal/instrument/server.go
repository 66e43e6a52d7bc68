package instrument

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/rileyhilliard/hostwatch/internal/errors"
	"github.com/rileyhilliard/hostwatch/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Serve exposes /metrics and /healthz on addr until ctx is cancelled, then
// shuts the server down gracefully. A listen failure is returned immediately.
func Serve(ctx context.Context, addr string, m *Metrics, log logger.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't listen on metrics address "+addr,
			"Pick a free port for metrics_addr or leave it empty to disable metrics.")
	}
	return serveListener(ctx, ln, m, log)
}

func serveListener(ctx context.Context, ln net.Listener, m *Metrics, log logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info("metrics server listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
