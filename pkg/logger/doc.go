// Package logger builds *slog.Logger instances for the service and the
// attribute helpers used across it.
//
// New applies functional options (format, level, static attributes) and wraps
// the handler so that attributes stored in the request context, such as the
// request ID, are added to every record logged with a context.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "twofactord"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "two-factor enabled",
//	    logger.AccountID(accountID),
//	    logger.EnrollmentID(enrollmentID),
//	)
//
// Helpers return an empty slog.Attr for nil or empty input, which slog drops,
// so callers never need a nil check before logging.
package logger
