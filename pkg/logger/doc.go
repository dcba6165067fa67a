// Package logger builds *slog.Logger instances for the storefront
// notification client, the hub and the notifyctl CLI.
//
// New applies functional options and picks a handler by Format: JSON for hub
// deployments, text for development and console (charmbracelet/log) for
// interactive CLI sessions. The handler is wrapped with LogHandlerDecorator so
// ContextExtractor callbacks can inject values such as request or socket ids.
//
// Attribute helpers in attr.go keep key names consistent:
//
//	log.LogAttrs(ctx, slog.LevelWarn, "acknowledgment failed",
//	    logger.NotificationID(n.ID),
//	    logger.Error(err),
//	)
//
// Error returns an empty attribute for nil errors, so callers never need a
// nil check before logging.
package logger
