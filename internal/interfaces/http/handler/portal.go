package handler

import (
	"github.com/gin-gonic/gin"
	appdelinquency "github.com/mateatletas/backend/internal/application/delinquency"
	"github.com/mateatletas/backend/internal/interfaces/http/dto"
	"github.com/mateatletas/backend/internal/interfaces/http/middleware"
)

// PortalHandler serves the student portal routes behind the payment gate
type PortalHandler struct {
	BaseHandler
}

// NewPortalHandler creates a new PortalHandler
func NewPortalHandler() *PortalHandler {
	return &PortalHandler{}
}

// GetAccess confirms the caller passed the payment gate
//
// GET /portal/acceso
func (h *PortalHandler) GetAccess(c *gin.Context) {
	decision := middleware.GetAccessDecision(c)
	if decision == nil {
		decision = &appdelinquency.AccessDecision{Allowed: true, Message: appdelinquency.MessageAccessAllowed}
	}
	h.Success(c, dto.NewAccessDecisionResponse(decision))
}
