// Package logger builds slog loggers with context extraction and optional
// Sentry reporting.
//
// Extractors add request-scoped attributes to every record logged with a
// context:
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithExtractors(middlewares.RequestIDExtractor()),
//	)
//	log.InfoContext(r.Context(), "route matched", slog.String("route", name))
//	// {"level":"INFO","msg":"route matched","route":"posts.show","request_id":"..."}
//
// With WithSentry, warnings and errors are also sent to Sentry; an empty
// DSN keeps logging local. FromConfig builds a logger from the "log"
// section of the configuration file.
package logger
