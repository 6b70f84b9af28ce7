// Package httpserver runs an http.Handler with graceful shutdown and exposes
// liveness and readiness handlers.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// Run returns when ctx is cancelled (typically by signal.NotifyContext in
// main) after in-flight requests finish or ShutdownTimeout elapses.
package httpserver
