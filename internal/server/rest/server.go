// Package rest exposes the drop service over HTTP/JSON using echo.
package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type RestServer struct {
	address string
	logger  logging.Logger
	echo    *echo.Echo
}

func NewRestServer(a string, l logging.Logger, es EntryService) *RestServer {
	logger := l.With("module", "rest_server")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h := NewEntryHandler(es, logger)
	registerRoutes(e, h)

	return &RestServer{
		address: a,
		logger:  logger,
		echo:    e,
	}
}

func registerRoutes(e *echo.Echo, h *EntryHandler) {
	api := e.Group("/api")
	api.POST("/entries/upload-slots", h.RequestUploadSlots)
	api.POST("/entries", h.CreateEntry)
	api.GET("/entries", h.ListEntries)
	api.POST("/entries/:id/download-url", h.DownloadURL)
	api.DELETE("/entries/:id", h.DeleteEntry)
}

func (s *RestServer) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.echo.Shutdown(context.Background()); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
