// Package httpserver runs an http.Handler with configured timeouts and a
// graceful shutdown bound to a context.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	g.Go(srv.RunFunc(ctx, router))
package httpserver
