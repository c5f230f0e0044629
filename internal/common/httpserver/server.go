// Package httpserver: net/http 서버 구성과 종료 처리
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const defaultReadHeaderTimeout = 5 * time.Second

// Options: 0 값 필드는 net/http 기본값을 따른다. ReadHeaderTimeout 만 5초가 기본이다.
type Options struct {
	H2C               bool // TLS 없는 HTTP/2 허용
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

// New: addr 에서 handler 를 서비스하는 *http.Server
func New(addr string, handler http.Handler, opts Options) *http.Server {
	if handler == nil {
		handler = http.NewServeMux()
	}
	if opts.H2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = defaultReadHeaderTimeout
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		IdleTimeout:       max(opts.IdleTimeout, 0),
		MaxHeaderBytes:    max(opts.MaxHeaderBytes, 0),
	}
}

// Serve: ctx 가 끝날 때까지 서비스하고, 끝나면 shutdownTimeout 안에 연결을 정리한다.
func Serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- server.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		return serverClosed(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return serverClosed(<-listenErr)
}

func serverClosed(err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("http server failed: %w", err)
}
