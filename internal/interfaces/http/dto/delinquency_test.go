package dto

import (
	"encoding/json"
	"testing"
	"time"

	appdelinquency "github.com/mateatletas/backend/internal/application/delinquency"
	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deniedDecision() *appdelinquency.AccessDecision {
	return &appdelinquency.AccessDecision{
		Allowed: false,
		Message: appdelinquency.MessageAccessBlocked,
		Denial: &appdelinquency.DenialDetails{
			OverdueCount:  2,
			TotalOwed:     decimal.RequireFromString("2500.50"),
			Periods:       []string{"2024-02", "2024-03"},
			FirstDebt:     "2024-02",
			OldestDueDate: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestNewPaymentRequiredResponse_JSON(t *testing.T) {
	body, err := json.Marshal(NewPaymentRequiredResponse(deniedDecision()))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"statusCode": 403,
		"message": "Acceso bloqueado por pagos pendientes",
		"error": "PaymentRequired",
		"detalles": {
			"cuotasVencidas": 2,
			"totalAdeudado": 2500.5,
			"periodos": ["2024-02", "2024-03"],
			"primeraDeuda": "2024-02",
			"fechaVencimientoMasAntigua": "2024-02-29"
		}
	}`, string(body))
}

func TestNewAccessDecisionResponse(t *testing.T) {
	t.Run("allowed omits details", func(t *testing.T) {
		resp := NewAccessDecisionResponse(&appdelinquency.AccessDecision{
			Allowed: true,
			Message: appdelinquency.MessageAccessAllowed,
		})
		body, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{"permitirAcceso": true, "mensaje": "Estudiante al día con los pagos"}`, string(body))
	})

	t.Run("denied carries details", func(t *testing.T) {
		resp := NewAccessDecisionResponse(deniedDecision())
		assert.False(t, resp.AllowAccess)
		require.NotNil(t, resp.Details)
		assert.Equal(t, 2, resp.Details.OverdueCount)
	})
}

func TestNewDelinquentStudentsResponse(t *testing.T) {
	email := "ana@example.com"
	debts := []appdelinquency.StudentDebt{
		{
			Student: delinquency.Student{ID: "s1", FirstName: "Juan", LastName: "Pérez", Age: 10, TutorID: "t1"},
			Tutor:   &delinquency.Tutor{ID: "t1", FirstName: "Ana", LastName: "Gómez", Email: &email},
			Result: delinquency.Result{
				Delinquent: true,
				TotalOwed:  decimal.NewFromInt(100),
				Overdue: []delinquency.OverdueObligation{{
					Period:      "2024-03",
					Amount:      decimal.NewFromInt(100),
					DueDate:     time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
					DaysOverdue: 14,
				}},
			},
		},
		{
			Student: delinquency.Student{ID: "s2", FirstName: "Lía"},
			Result:  delinquency.Result{Delinquent: true, TotalOwed: decimal.Zero},
		},
	}

	out := NewDelinquentStudentsResponse(debts)

	require.Len(t, out, 2)
	assert.Equal(t, "Juan Pérez", out[0].Name)
	assert.Equal(t, 1, out[0].OverdueCount)
	assert.Equal(t, "2024-03-31", out[0].Debts[0].DueDate)
	require.NotNil(t, out[0].Tutor)
	assert.Equal(t, "Ana Gómez", out[0].Tutor.Name)
	assert.Nil(t, out[1].Tutor)
	assert.NotNil(t, out[1].Debts)
}

func TestNewDelinquentStudentsResponse_TutorJSON(t *testing.T) {
	email := "laura@example.com"
	debts := []appdelinquency.StudentDebt{{
		Student: delinquency.Student{ID: "s", FirstName: "Ana", LastName: "Paz"},
		Tutor:   &delinquency.Tutor{ID: "t", FirstName: "Laura", LastName: "Alvarez", Email: &email},
		Result:  delinquency.Result{Delinquent: true, TotalOwed: decimal.Zero},
	}}

	raw, err := json.Marshal(NewDelinquentStudentsResponse(debts))
	require.NoError(t, err)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Ana Paz", body[0]["nombre"])
	tutor, ok := body[0]["tutor"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Laura Alvarez", tutor["nombre"])
	assert.Equal(t, "laura@example.com", tutor["email"])
	assert.Contains(t, tutor, "telefono")
	assert.NotContains(t, tutor, "apellido")
	assert.Len(t, tutor, 4)
}
