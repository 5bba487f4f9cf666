// Package middleware provides the HTTP middleware of the Mateatletas backend.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appdelinquency "github.com/mateatletas/backend/internal/application/delinquency"
	"github.com/mateatletas/backend/internal/domain/shared"
	"github.com/mateatletas/backend/internal/infrastructure/auth"
	"github.com/mateatletas/backend/internal/infrastructure/logger"
	"github.com/mateatletas/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	JWTRoleKey    = "jwt_role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator validates a bearer token
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// Validator is required
	Validator TokenValidator
	// TokenBlacklist is optional; lookups that fail are logged and let through
	TokenBlacklist auth.TokenBlacklist
	Logger         *zap.Logger
}

// JWTAuth authenticates the request and stores the claims in the gin context
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		claims, err := cfg.Validator.ValidateAccessToken(token)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil && revoked(c, cfg.TokenBlacklist, log, claims) {
			abortUnauthorized(c, log, auth.ErrTokenBlacklisted, "Token has been revoked")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, claims.Role)

		ctx, _ := logger.WithUserID(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func revoked(c *gin.Context, blacklist auth.TokenBlacklist, log *zap.Logger, claims *auth.Claims) bool {
	ctx := c.Request.Context()

	if claims.ID != "" {
		blacklisted, err := blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
		} else if blacklisted {
			return true
		}
	}

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		log.Error("Failed to check user token invalidation", zap.String("user_id", claims.UserID), zap.Error(err))
		return false
	}
	return invalidated
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingUserID),
		errors.Is(err, auth.ErrUnknownRole):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, msg, logger.GetRequestID(c.Request.Context())))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTRole retrieves the role from JWT claims in context
func GetJWTRole(c *gin.Context) shared.Role {
	if v, ok := c.Get(JWTRoleKey); ok {
		if role, ok := v.(shared.Role); ok {
			return role
		}
	}
	return ""
}

// GetPrincipal returns the authenticated caller, or false when JWTAuth has not run
func GetPrincipal(c *gin.Context) (appdelinquency.Principal, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return appdelinquency.Principal{}, false
	}
	return appdelinquency.Principal{UserID: claims.UserID, Role: claims.Role}, true
}
