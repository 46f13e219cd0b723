// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run blocks until its context is cancelled, SIGINT or SIGTERM arrives, or
// Shutdown is called. Shutdown first fires the drain hooks so long-lived
// handlers such as event streams can end, then waits up to the shutdown
// timeout for in-flight requests, then runs the stop hooks.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithDrainHook(func() { _ = hub.Close() }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler serve the health endpoints. Readiness
// runs named dependency checks with the request context.
package httpserver
