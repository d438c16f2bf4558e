// Package logger builds *slog.Logger instances for the service.
//
// New accepts functional options that pick the output format, the level and a
// set of static attributes. Environment presets (WithEnvironment) choose text
// output at debug level for development and JSON at info level otherwise.
//
// Values stored in context.Context, such as the request id, are attached to
// every record through ContextExtractor callbacks registered with
// WithContextExtractors. The extraction happens inside LogHandlerDecorator at
// Handle time, so loggers can be created once and shared.
//
// Attribute helpers in attr.go (Error, Component, SubscriptionID, RunID, ...)
// keep key names consistent across packages:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.AppEnv, "subreminder"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "reminder delivered",
//		logger.RunID(run.ID),
//		logger.Label(label),
//	)
//
// Error and UserID style helpers return an empty slog.Attr for nil input, which
// slog drops, so callers do not need a nil check.
package logger
