package routes

import (
	"tutorias_backend/internal/handlers"
	"tutorias_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
// authMW - access gate, authLimiter - ограничение частоты для /api/auth.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	authMW gin.HandlerFunc,
	authLimiter gin.HandlerFunc,
) {
	appHandlers.HealthHandler.RegisterRoutes(ginRouter)

	api := ginRouter.Group("/api")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, authMW, authLimiter)
		appHandlers.TutorHandler.RegisterRoutes(api, authMW)
		appHandlers.EstudianteHandler.RegisterRoutes(api, authMW)
		appHandlers.TutoriaHandler.RegisterRoutes(api, authMW)
	}

	logger.Debug("HTTP routes registered", "count", len(ginRouter.Routes()))
}
