// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package http runs the to-do REST API over a TCP listener.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/z5labs/todo/app"
	"github.com/z5labs/todo/config"

	"github.com/sourcegraph/conc/pool"
)

// DefaultAddr is used when no listen address is configured.
const DefaultAddr = ":8080"

// AddrFromEnv reads the listen address from HTTP_ADDR.
func AddrFromEnv() config.Reader[string] {
	return config.Env("HTTP_ADDR")
}

// ReadTimeoutFromEnv reads HTTP_READ_TIMEOUT as a [time.Duration].
func ReadTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_READ_TIMEOUT"))
}

// WriteTimeoutFromEnv reads HTTP_WRITE_TIMEOUT as a [time.Duration].
func WriteTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_WRITE_TIMEOUT"))
}

// ShutdownTimeoutFromEnv reads HTTP_SHUTDOWN_TIMEOUT as a [time.Duration].
func ShutdownTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_SHUTDOWN_TIMEOUT"))
}

// TCPListener opens a TCP listener when read.
type TCPListener struct {
	addr config.Reader[string]
}

// NewTCPListener returns a [TCPListener] bound to addr, or [DefaultAddr]
// if addr produces no value.
func NewTCPListener(addr config.Reader[string]) TCPListener {
	return TCPListener{addr: addr}
}

// Read implements the [config.Reader] interface.
func (l TCPListener) Read(ctx context.Context) (config.Value[net.Listener], error) {
	addr, err := config.Read(ctx, config.Default(DefaultAddr, l.addr))
	if err != nil {
		return config.Value[net.Listener]{}, err
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return config.Value[net.Listener]{}, err
	}
	return config.ValueOf(ln), nil
}

// Server describes how the HTTP server should be configured.
// Unset timeouts fall back to the defaults documented on each option.
type Server struct {
	listener        config.Reader[net.Listener]
	readTimeout     config.Reader[time.Duration]
	writeTimeout    config.Reader[time.Duration]
	idleTimeout     config.Reader[time.Duration]
	shutdownTimeout config.Reader[time.Duration]
}

// ServerOption configures a [Server].
type ServerOption func(*Server)

// ReadTimeout bounds reading a whole request. Defaults to 5s.
func ReadTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(s *Server) {
		s.readTimeout = d
	}
}

// WriteTimeout bounds writing a response. Defaults to 10s.
func WriteTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(s *Server) {
		s.writeTimeout = d
	}
}

// IdleTimeout bounds how long keep-alive connections wait. Defaults to 120s.
func IdleTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(s *Server) {
		s.idleTimeout = d
	}
}

// ShutdownTimeout bounds the graceful shutdown. Defaults to 15s.
func ShutdownTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// NewServer returns a [Server] which will serve on the listener read from ln.
func NewServer(ln config.Reader[net.Listener], opts ...ServerOption) Server {
	s := Server{
		listener:        ln,
		readTimeout:     config.EmptyReader[time.Duration](),
		writeTimeout:    config.EmptyReader[time.Duration](),
		idleTimeout:     config.EmptyReader[time.Duration](),
		shutdownTimeout: config.EmptyReader[time.Duration](),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// App is a built HTTP server ready to be run.
type App struct {
	ln              net.Listener
	srv             *http.Server
	shutdownTimeout time.Duration
}

// Addr returns the address the server is listening on.
func (a *App) Addr() net.Addr {
	return a.ln.Addr()
}

// Run serves requests until ctx is cancelled, then shuts the server down
// gracefully. A clean shutdown returns nil.
func (a *App) Run(ctx context.Context) error {
	p := pool.New().WithContext(ctx)

	p.Go(func(ctx context.Context) error {
		return a.srv.Serve(a.ln)
	})

	p.Go(func(ctx context.Context) error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.shutdownTimeout)
		defer cancel()

		return a.srv.Shutdown(shutdownCtx)
	})

	err := p.Wait()
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Build creates an [App] serving the handler built by b.
func Build(s Server, b app.Builder[http.Handler]) app.Builder[*App] {
	return app.Bind(b, func(h http.Handler) app.Builder[*App] {
		return app.BuilderFunc[*App](func(ctx context.Context) (*App, error) {
			ln, err := config.Read(ctx, s.listener)
			if err != nil {
				return nil, err
			}

			srv := &http.Server{
				Handler:           h,
				ReadTimeout:       config.MustOr(ctx, 5*time.Second, s.readTimeout),
				ReadHeaderTimeout: 2 * time.Second,
				WriteTimeout:      config.MustOr(ctx, 10*time.Second, s.writeTimeout),
				IdleTimeout:       config.MustOr(ctx, 120*time.Second, s.idleTimeout),
				BaseContext: func(net.Listener) context.Context {
					return context.WithoutCancel(ctx)
				},
			}

			return &App{
				ln:              ln,
				srv:             srv,
				shutdownTimeout: config.MustOr(ctx, 15*time.Second, s.shutdownTimeout),
			}, nil
		})
	})
}
