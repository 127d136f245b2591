package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	infragin "github.com/jonesrussell/north-cloud/spam-checker/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/spam-checker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/config"
)

// NewServer creates the HTTP server for the serve command.
func NewServer(handler *Handler, cfg *config.Config, metrics http.Handler, log infralogger.Logger) *infragin.Server {
	return infragin.NewServer(&infragin.Config{
		Address:        cfg.Server.Address(),
		Debug:          cfg.Service.Debug,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
	}, log, func(router *gin.Engine) {
		SetupRoutes(router, handler, metrics)
	})
}
