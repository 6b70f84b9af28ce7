package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithListener serves on ln instead of listening on Config.Addr.
func WithListener(ln net.Listener) Option {
	return func(s *Server) { s.ln = ln }
}

// Server wraps http.Server with context-driven graceful shutdown.
type Server struct {
	cfg Config
	log *slog.Logger
	ln  net.Listener

	mu      sync.Mutex
	started bool
	ready   chan struct{}
}

// New returns a server for cfg.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg:   cfg,
		log:   slog.New(slog.DiscardHandler),
		ready: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr blocks until the server is listening and returns its address.
func (s *Server) Addr() net.Addr {
	<-s.ready
	return s.ln.Addr()
}

// Run serves handler until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	if s.ln == nil {
		ln, err := net.Listen("tcp", s.cfg.Addr)
		if err != nil {
			return errors.Join(ErrStart, err)
		}
		s.ln = ln
	}
	close(s.ready)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(s.ln) }()
	s.log.InfoContext(ctx, "http server started", slog.String("addr", s.ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Join(ErrStart, err)
	case <-ctx.Done():
	}

	shutdownCtx := context.WithoutCancel(ctx)
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(ErrShutdown, err)
	}
	s.log.InfoContext(shutdownCtx, "http server stopped")
	return nil
}
