package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	appdelinquency "github.com/mateatletas/backend/internal/application/delinquency"
	"github.com/mateatletas/backend/internal/infrastructure/logger"
	"github.com/mateatletas/backend/internal/infrastructure/telemetry"
	"github.com/mateatletas/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// AccessDecisionKey holds the gate decision in the gin context
const AccessDecisionKey = "access_decision"

// AccessChecker decides whether a principal may proceed
type AccessChecker interface {
	CheckPrincipal(ctx context.Context, p appdelinquency.Principal) (*appdelinquency.AccessDecision, error)
}

// GateRecorder counts gate outcomes
type GateRecorder interface {
	ObserveGateDecision(decision string)
}

// PaymentGateConfig configures PaymentGate
type PaymentGateConfig struct {
	Access  AccessChecker
	Metrics GateRecorder // optional
	Logger  *zap.Logger
}

// PaymentGate blocks students with overdue payments.
// It must run after JWTAuth. Non-student roles pass without a lookup.
// A failed lookup answers 500: the gate neither allows nor denies on error.
func PaymentGate(cfg PaymentGateConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetGinLogger(c, cfg.Logger)
		requestID := logger.GetRequestID(c.Request.Context())

		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", requestID))
			return
		}

		decision, err := cfg.Access.CheckPrincipal(c.Request.Context(), principal)
		if err != nil {
			observe(cfg.Metrics, telemetry.GateDecisionError)
			log.Error("Payment gate lookup failed",
				zap.String("user_id", principal.UserID),
				zap.Error(err),
			)
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal, "Could not verify payment status", requestID))
			return
		}

		if !decision.Allowed {
			observe(cfg.Metrics, telemetry.GateDecisionDeny)
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewPaymentRequiredResponse(decision))
			return
		}

		observe(cfg.Metrics, telemetry.GateDecisionAllow)
		c.Set(AccessDecisionKey, decision)
		c.Next()
	}
}

func observe(m GateRecorder, decision string) {
	if m != nil {
		m.ObserveGateDecision(decision)
	}
}

// GetAccessDecision returns the decision PaymentGate stored for this request
func GetAccessDecision(c *gin.Context) *appdelinquency.AccessDecision {
	if v, ok := c.Get(AccessDecisionKey); ok {
		if d, ok := v.(*appdelinquency.AccessDecision); ok {
			return d
		}
	}
	return nil
}
