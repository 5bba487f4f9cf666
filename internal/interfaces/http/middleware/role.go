package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/mateatletas/backend/internal/domain/shared"
	"github.com/mateatletas/backend/internal/infrastructure/logger"
	"github.com/mateatletas/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RequireRoles lets the request through only when the authenticated role is one of roles
func RequireRoles(roles ...shared.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetJWTRole(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", logger.GetRequestID(c.Request.Context())))
			return
		}
		if !slices.Contains(roles, role) {
			logger.GetGinLogger(c, nil).Debug("Role not allowed",
				zap.String("role", role.String()),
				zap.String("path", c.FullPath()),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Insufficient role for this resource", logger.GetRequestID(c.Request.Context())))
			return
		}
		c.Next()
	}
}
