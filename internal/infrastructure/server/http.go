package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultAddr              = ":8080"
	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 120 * time.Second
)

// Options configure the HTTP server. There is deliberately no write or
// whole-request read timeout: event streams stay open for the life of the
// client, and a server-wide deadline would cut every stream off.
type Options struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
}

func (o *Options) applyDefaults() {
	if o.Addr == "" {
		o.Addr = defaultAddr
	}
	if o.ReadHeaderTimeout <= 0 {
		o.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = defaultIdleTimeout
	}
}

type HTTPServer struct {
	srv *http.Server
}

var _ Server = (*HTTPServer)(nil)

func NewHTTPServer(opts Options, handler http.Handler) *HTTPServer {
	opts.applyDefaults()

	return &HTTPServer{
		srv: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			IdleTimeout:       opts.IdleTimeout,
		},
	}
}

func (h *HTTPServer) Start(ctx context.Context) error {
	var eg errgroup.Group
	eg.Go(func() error {
		err := h.srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	return eg.Wait()
}

func (h *HTTPServer) Stop(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
