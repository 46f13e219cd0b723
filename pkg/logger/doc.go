// Package logger builds the *slog.Logger used across the notifier.
//
// New returns a logger configured by functional options. The handler it
// creates is wrapped by ContextHandler, which pulls request-scoped values
// (for example the chi request id) out of the context on every call.
//
// Attribute helpers in attr.go keep key names identical across packages:
//
//	log.LogAttrs(ctx, slog.LevelWarn, "dispatch failed",
//		logger.NotificationID(n.ID),
//		logger.Channel(string(ch)),
//		logger.Error(err),
//	)
//
// FromConfig maps the LOG_* environment settings onto options, so the binary
// only needs to parse Config and call FromConfig.
package logger
