package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo_contrib "github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/ledgerkit/ledgerdb/api/middlewares"
	"github.com/ledgerkit/ledgerdb/ledger"
)

// ExtraOptions are options which change the behavior or the HTTP server.
type ExtraOptions struct {
	// Tokens are the access tokens which can access the API.
	Tokens []string

	// MetricsEndpoint turns on the /metrics endpoint for prometheus metrics.
	MetricsEndpoint bool

	// MetricsEndpointVerbose generates separate histograms based on query parameters on the /metrics endpoint.
	MetricsEndpointVerbose bool

	// Timeout bounds every backend call of a request. Zero disables it.
	Timeout time.Duration
}

// newServer builds the echo instance with every route and middleware.
func newServer(l *ledger.Ledger, log *log.Logger, options ExtraOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	if options.MetricsEndpoint {
		p := echo_contrib.NewPrometheus("ledgerdb", nil, nil)
		if options.MetricsEndpointVerbose {
			p.RequestCounterURLLabelMappingFunc = middlewares.PrometheusPathMapperVerbose
		} else {
			p.RequestCounterURLLabelMappingFunc = middlewares.PrometheusPathMapper404Sink
		}
		// This call installs the prometheus metrics collection middleware and
		// the "/metrics" handler.
		p.Use(e)
	}

	e.Use(middlewares.MakeLogger(log))
	e.Use(middleware.CORS())

	middleware := make([]echo.MiddlewareFunc, 0)
	if len(options.Tokens) > 0 {
		middleware = append(middleware, middlewares.MakeAuth("X-Ledger-API-Token", options.Tokens))
	}

	api := ServerImplementation{
		ledger:  l,
		db:      l.DB(),
		timeout: options.Timeout,
		log:     log,
	}
	RegisterHandlers(e, &api, middleware...)
	return e
}

// Serve starts an http server for the query API. This call blocks until ctx
// is done.
func Serve(ctx context.Context, serveAddr string, l *ledger.Ledger, log *log.Logger, options ExtraOptions) {
	e := newServer(l, log, options)

	getctx := func(l net.Listener) context.Context {
		return ctx
	}
	s := &http.Server{
		Addr:           serveAddr,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
		BaseContext:    getctx,
	}

	go func() {
		if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	// Allow one second for graceful shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
