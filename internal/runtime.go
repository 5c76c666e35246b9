package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/pressgate/pkg/logger"
)

// lifecycle owns one listener and the http.Server that hands requests
// over to the routing core.
type lifecycle struct {
	cfg *runConfig
	log *slog.Logger
	srv *http.Server
}

func newLifecycle(handler http.Handler, cfg *runConfig) *lifecycle {
	log := cfg.log
	if log == nil {
		log = logger.NewNope()
	}
	return &lifecycle{
		cfg: cfg,
		log: log.With(slog.String("component", "server")),
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			MaxHeaderBytes:    defaultMaxHeaderBytes,
		},
	}
}

// serve binds the address, runs startup hooks and blocks until the parent
// context ends, a signal arrives, or the listener fails.
func serve(handler http.Handler, cfg *runConfig) error {
	parent := cfg.parent
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l := newLifecycle(handler, cfg)
	ln, err := l.listen(ctx)
	if err != nil {
		return err
	}

	failed := make(chan error, 1)
	go func() {
		l.log.Info("accepting delegated requests", slog.String("address", ln.Addr().String()))
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
		return l.drain()
	}
}

// listen binds first so startup hooks can rely on the port being taken.
func (l *lifecycle) listen(ctx context.Context) (net.Listener, error) {
	ln, err := net.Listen("tcp", l.cfg.address)
	if err != nil {
		return nil, err
	}
	for _, hook := range l.cfg.startup {
		if err := hook(ctx); err != nil {
			_ = ln.Close()
			l.log.Error("startup hook failed", slog.Any("error", err))
			return nil, err
		}
	}
	return ln, nil
}

// drain stops accepting, waits for in-flight requests and then runs the
// shutdown hooks. Hook failures do not stop later hooks.
func (l *lifecycle) drain() error {
	l.log.Info("draining")
	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.grace)
	defer cancel()

	var errs []error
	if err := l.srv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range l.cfg.shutdown {
		if err := hook(ctx); err != nil {
			l.log.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		l.log.Error("stopped with errors", slog.Any("error", err))
		return err
	}
	l.log.Info("stopped")
	return nil
}
