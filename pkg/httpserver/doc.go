// Package httpserver runs an http.Handler with graceful shutdown, server
// timeouts and a JSON health-check handler.
//
// Run listens on the configured address; Serve accepts an existing listener
// (tests bind 127.0.0.1:0). Both block until the context is cancelled or the
// listener fails, then shut down with http.Server.Shutdown within the
// configured deadline. Signal handling is left to the caller, usually via
// signal.NotifyContext in main.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// Long-lived connections such as websockets are hijacked from net/http and
// are not waited for by Shutdown; their owners must close them on the same
// context.
//
// # Errors
//
// Listen and serve failures are wrapped with ErrStart, shutdown failures with
// ErrShutdown. Use errors.Is to distinguish them.
package httpserver
