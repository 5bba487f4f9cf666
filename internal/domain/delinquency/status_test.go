package delinquency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPolicy_IsOutstanding(t *testing.T) {
	tests := []struct {
		name   string
		policy StatusPolicy
		status PaymentStatus
		want   bool
	}{
		{"pending only: Pendiente", StatusPolicyPendingOnly, PaymentStatusPending, true},
		{"pending only: Vencido", StatusPolicyPendingOnly, PaymentStatusOverdue, false},
		{"pending only: Pagado", StatusPolicyPendingOnly, PaymentStatusPaid, false},
		{"pending or overdue: Pendiente", StatusPolicyPendingOrOverdue, PaymentStatusPending, true},
		{"pending or overdue: Vencido", StatusPolicyPendingOrOverdue, PaymentStatusOverdue, true},
		{"pending or overdue: Pagado", StatusPolicyPendingOrOverdue, PaymentStatusPaid, false},
		{"unknown status", StatusPolicyPendingOrOverdue, PaymentStatus("Anulado"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.IsOutstanding(tt.status))
		})
	}
}

func TestStatusPolicy_OutstandingStatuses(t *testing.T) {
	assert.Equal(t, []PaymentStatus{PaymentStatusPending}, StatusPolicyPendingOnly.OutstandingStatuses())
	assert.Equal(t, []PaymentStatus{PaymentStatusPending, PaymentStatusOverdue}, StatusPolicyPendingOrOverdue.OutstandingStatuses())
}

func TestParseStatusPolicy(t *testing.T) {
	p, err := ParseStatusPolicy("pending_only")
	require.NoError(t, err)
	assert.Equal(t, StatusPolicyPendingOnly, p)

	_, err = ParseStatusPolicy("everything")
	assert.Error(t, err)
}

func TestPaymentStatus_IsValid(t *testing.T) {
	assert.True(t, PaymentStatusPending.IsValid())
	assert.True(t, PaymentStatusPaid.IsValid())
	assert.True(t, PaymentStatusOverdue.IsValid())
	assert.False(t, PaymentStatus("pendiente").IsValid())
}
