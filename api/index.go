// Package handler exposes the storefront as a serverless function.
package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/server"
)

var (
	once    sync.Once
	engine  http.Handler
	initErr error
)

func setup() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Load("")
	if err != nil {
		initErr = err
		return
	}
	log := logger.Init(cfg.Logging.Level)

	srv, err := server.New(cfg, log)
	if err != nil {
		initErr = err
		return
	}
	engine = srv.Engine
}

// Handler serves one request. The engine is built on the first call and
// reused while the instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)
	if initErr != nil {
		slog.Error("storefront init failed", "error", initErr)
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	engine.ServeHTTP(w, r)
}
