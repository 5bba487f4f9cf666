package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appdelinquency "github.com/mateatletas/backend/internal/application/delinquency"
	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/mateatletas/backend/internal/domain/shared"
	"github.com/mateatletas/backend/internal/interfaces/http/dto"
	"github.com/mateatletas/backend/internal/interfaces/http/middleware"
)

// AccessVerifier answers access checks for a student id
type AccessVerifier interface {
	VerifyStudentAccess(ctx context.Context, studentID string) (*appdelinquency.AccessDecision, error)
}

// ReportBuilder builds delinquency reports
type ReportBuilder interface {
	TutorReport(ctx context.Context, tutorID string) (*appdelinquency.TutorReport, error)
	DelinquentStudents(ctx context.Context) ([]appdelinquency.StudentDebt, error)
}

// DelinquencyHandler serves the delinquency reports of /pagos/morosidad
type DelinquencyHandler struct {
	BaseHandler
	access  AccessVerifier
	reports ReportBuilder
}

// NewDelinquencyHandler creates a new DelinquencyHandler
func NewDelinquencyHandler(access AccessVerifier, reports ReportBuilder) *DelinquencyHandler {
	return &DelinquencyHandler{access: access, reports: reports}
}

// GetTutorReport returns the delinquency report of one tutor.
// A tutor may only read their own report; any other id answers 404.
//
// GET /pagos/morosidad/tutor/:tutorId
func (h *DelinquencyHandler) GetTutorReport(c *gin.Context) {
	tutorID := c.Param("tutorId")

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if principal.Role == shared.RoleTutor && principal.UserID != tutorID {
		h.HandleError(c, delinquency.TutorNotFound(tutorID))
		return
	}

	report, err := h.reports.TutorReport(c.Request.Context(), tutorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewTutorReportResponse(report))
}

// ListDelinquentStudents returns every student with at least one overdue fee
//
// GET /pagos/morosidad/estudiantes
func (h *DelinquencyHandler) ListDelinquentStudents(c *gin.Context) {
	debts, err := h.reports.DelinquentStudents(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewDelinquentStudentsResponse(debts))
}

// GetStudentAccess returns the access decision for one student.
// Denials are data here, so the status is 200 either way.
//
// GET /pagos/morosidad/estudiante/:estudianteId
func (h *DelinquencyHandler) GetStudentAccess(c *gin.Context) {
	decision, err := h.access.VerifyStudentAccess(c.Request.Context(), c.Param("estudianteId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewAccessDecisionResponse(decision))
}
