// Package logger builds configured log/slog loggers for the two-factor
// subsystem and provides attribute helpers for its structured fields.
//
// The factory defaults to JSON at INFO level for log aggregation; switch to
// human-readable text output for development:
//
//	log := logger.New(
//		logger.WithTextFormatter(),
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithAttr(logger.Component("twofa")),
//	)
//
// Attribute helpers keep field names consistent across the module
// (logger.Error, logger.UserID, logger.Event). Secrets, one-time codes, and
// envelopes are never valid attribute values anywhere in this module.
package logger
