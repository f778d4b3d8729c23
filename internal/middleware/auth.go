package middleware

import (
	"strings"

	"tutorias_backend/internal/logger"
	"tutorias_backend/internal/services"
	"tutorias_backend/internal/services/dto"
	"tutorias_backend/pkg/apperrors"
	"tutorias_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware проверяет Bearer токен и кладет Principal в контекст.
// Роли здесь не проверяются: это делает каждая операция.
func AuthMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apperrors.HandleError(c, apperrors.ErrTokenMissing)
			return
		}

		val, _ := c.Get(string(contextkeys.DBContextKey))
		db, ok := val.(*gorm.DB)
		if !ok || db == nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Token no verificable"))
			return
		}

		principal, err := authService.Authenticate(db.WithContext(c.Request.Context()), token)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "authentication failed", "path", c.Request.URL.Path, "error", err)
			apperrors.HandleError(c, err)
			return
		}

		ctx := logger.WithUser(c.Request.Context(), principal.UserID, string(principal.Rol))
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(contextkeys.PrincipalContextKey), principal)
		c.Next()
	}
}

// GetPrincipal возвращает пользователя, установленного AuthMiddleware.
func GetPrincipal(c *gin.Context) (*dto.Principal, bool) {
	val, ok := c.Get(string(contextkeys.PrincipalContextKey))
	if !ok {
		return nil, false
	}
	p, ok := val.(*dto.Principal)
	return p, ok && p != nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
