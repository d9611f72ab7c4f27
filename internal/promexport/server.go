// Package promexport hosts the Prometheus text-format scrape endpoint
// on Echo, the same HTTP framework the rest of this codebase's ambient
// stack uses.
package promexport

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps an Echo instance exposing /metrics on addr.
type Server struct {
	echo *echo.Echo
	addr string
}

// New builds a metrics server bound to addr (e.g. "0.0.0.0:9100"),
// scraping reg.
func New(addr string, reg prometheus.Gatherer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	return &Server{echo: e, addr: addr}
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("metrics server listening on %s", s.addr)
		if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("shutting down metrics server")
		return s.echo.Shutdown(context.Background())
	}
}
