package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"restotrack/internal/httpapi"
	"restotrack/shared/go/config"
	"restotrack/shared/go/middleware"
)

func newHTTPServer(cfg *config.Config, svc httpapi.RestaurantService, logger zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newHTTPHandler(cfg, svc, logger),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func newHTTPHandler(cfg *config.Config, svc httpapi.RestaurantService, logger zerolog.Logger) http.Handler {
	var handler http.Handler = httpapi.New(svc, logger).Routes()
	handler = middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	return handler
}
