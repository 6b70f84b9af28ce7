package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/requestid"
)

// NewErrorHandler logs the error (warn for 4xx, error for 5xx) and writes
// the JSON error envelope.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx Context, err error) {
		r := ctx.Request()
		status, _ := errorDetail(err)

		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if renderErr := JSONError(err).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}
