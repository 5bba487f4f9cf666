package dto

import (
	"net/http"
	"time"

	appdelinquency "github.com/mateatletas/backend/internal/application/delinquency"
	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/shopspring/decimal"
)

// DateLayout renders calendar dates in responses
const DateLayout = "2006-01-02"

// PaymentRequiredError is the error label of a gate denial
const PaymentRequiredError = "PaymentRequired"

// DenialDetailsResponse describes the debt behind a gate denial
type DenialDetailsResponse struct {
	OverdueCount  int      `json:"cuotasVencidas"`
	TotalOwed     float64  `json:"totalAdeudado"`
	Periods       []string `json:"periodos"`
	FirstDebt     string   `json:"primeraDeuda"`
	OldestDueDate string   `json:"fechaVencimientoMasAntigua"`
}

// PaymentRequiredResponse is the 403 body written by the payment gate
type PaymentRequiredResponse struct {
	StatusCode int                   `json:"statusCode"`
	Message    string                `json:"message"`
	Error      string                `json:"error"`
	Details    DenialDetailsResponse `json:"detalles"`
}

// AccessDecisionResponse is the access verdict for one student
type AccessDecisionResponse struct {
	AllowAccess bool                   `json:"permitirAcceso"`
	Message     string                 `json:"mensaje"`
	Details     *DenialDetailsResponse `json:"detalles,omitempty"`
}

// TutorReportResponse is the per-payer delinquency report
type TutorReportResponse struct {
	TutorID          string                    `json:"tutorId"`
	Delinquent       bool                      `json:"tieneMorosidad"`
	OverdueCount     int                       `json:"cantidadCuotasVencidas"`
	TotalOwed        float64                   `json:"totalAdeudado"`
	AffectedStudents int                       `json:"estudiantesAfectados"`
	Lines            []TutorReportLineResponse `json:"detalleEstudiantes"`
	GeneratedAt      time.Time                 `json:"generadoEn"`
}

// TutorReportLineResponse is one overdue fee in a per-payer report
type TutorReportLineResponse struct {
	StudentID   string  `json:"estudianteId"`
	StudentName string  `json:"estudianteNombre"`
	Period      string  `json:"periodo"`
	Amount      float64 `json:"monto"`
	DueDate     string  `json:"fechaVencimiento"`
	DaysOverdue int     `json:"diasVencido"`
}

// DelinquentStudentResponse is one record of the system-wide report
type DelinquentStudentResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"nombre"`
	Age          int                `json:"edad"`
	Tutor        *TutorResponse     `json:"tutor"`
	OverdueCount int                `json:"cuotasVencidas"`
	TotalOwed    float64            `json:"totalAdeudado"`
	Debts        []DebtLineResponse `json:"detalleDeuda"`
}

// TutorResponse carries tutor contact fields
type TutorResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"nombre"`
	Email *string `json:"email"`
	Phone *string `json:"telefono"`
}

// DebtLineResponse is one overdue fee of a student
type DebtLineResponse struct {
	Period      string  `json:"periodo"`
	Amount      float64 `json:"monto"`
	DueDate     string  `json:"fechaVencimiento"`
	DaysOverdue int     `json:"diasVencido"`
}

// NewPaymentRequiredResponse builds the 403 body for a denied decision
func NewPaymentRequiredResponse(d *appdelinquency.AccessDecision) PaymentRequiredResponse {
	resp := PaymentRequiredResponse{
		StatusCode: http.StatusForbidden,
		Message:    d.Message,
		Error:      PaymentRequiredError,
	}
	if d.Denial != nil {
		resp.Details = newDenialDetails(d.Denial)
	}
	return resp
}

// NewAccessDecisionResponse converts an access decision
func NewAccessDecisionResponse(d *appdelinquency.AccessDecision) AccessDecisionResponse {
	resp := AccessDecisionResponse{
		AllowAccess: d.Allowed,
		Message:     d.Message,
	}
	if d.Denial != nil {
		details := newDenialDetails(d.Denial)
		resp.Details = &details
	}
	return resp
}

func newDenialDetails(d *appdelinquency.DenialDetails) DenialDetailsResponse {
	return DenialDetailsResponse{
		OverdueCount:  d.OverdueCount,
		TotalOwed:     money(d.TotalOwed),
		Periods:       d.Periods,
		FirstDebt:     d.FirstDebt,
		OldestDueDate: d.OldestDueDate.Format(DateLayout),
	}
}

// NewTutorReportResponse converts a per-payer report
func NewTutorReportResponse(r *appdelinquency.TutorReport) TutorReportResponse {
	lines := make([]TutorReportLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = TutorReportLineResponse{
			StudentID:   l.StudentID,
			StudentName: l.StudentName,
			Period:      l.Period,
			Amount:      money(l.Amount),
			DueDate:     l.DueDate.Format(DateLayout),
			DaysOverdue: l.DaysOverdue,
		}
	}
	return TutorReportResponse{
		TutorID:          r.TutorID,
		Delinquent:       r.Delinquent,
		OverdueCount:     r.OverdueCount,
		TotalOwed:        money(r.TotalOwed),
		AffectedStudents: r.AffectedStudents,
		Lines:            lines,
		GeneratedAt:      r.GeneratedAt,
	}
}

// NewDelinquentStudentsResponse converts the system-wide report
func NewDelinquentStudentsResponse(debts []appdelinquency.StudentDebt) []DelinquentStudentResponse {
	out := make([]DelinquentStudentResponse, len(debts))
	for i, d := range debts {
		out[i] = DelinquentStudentResponse{
			ID:           d.Student.ID,
			Name:         d.Student.FullName(),
			Age:          d.Student.Age,
			Tutor:        newTutorResponse(d.Tutor),
			OverdueCount: len(d.Result.Overdue),
			TotalOwed:    money(d.Result.TotalOwed),
			Debts:        newDebtLines(d.Result.Overdue),
		}
	}
	return out
}

func newTutorResponse(t *delinquency.Tutor) *TutorResponse {
	if t == nil {
		return nil
	}
	return &TutorResponse{
		ID:    t.ID,
		Name:  t.FullName(),
		Email: t.Email,
		Phone: t.Phone,
	}
}

func newDebtLines(overdue []delinquency.OverdueObligation) []DebtLineResponse {
	lines := make([]DebtLineResponse, len(overdue))
	for i, o := range overdue {
		lines[i] = DebtLineResponse{
			Period:      o.Period,
			Amount:      money(o.Amount),
			DueDate:     o.DueDate.Format(DateLayout),
			DaysOverdue: o.DaysOverdue,
		}
	}
	return lines
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
