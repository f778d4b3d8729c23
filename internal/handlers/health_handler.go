package handlers

import (
	"context"
	"net/http"
	"time"

	"tutorias_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	*BaseHandler
}

func NewHealthHandler(base *BaseHandler) *HealthHandler {
	return &HealthHandler{BaseHandler: base}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API de tutorías funcionando"})
}

// Health пингует базу с коротким таймаутом.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, database := http.StatusOK, "ok"

	sqlDB, err := h.GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logger.CtxWarn(ctx, "health check failed", "error", err)
		status, database = http.StatusServiceUnavailable, "unavailable"
	}

	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"database": database,
	})
}
