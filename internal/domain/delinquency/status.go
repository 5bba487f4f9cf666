package delinquency

import "fmt"

// PaymentStatus is the payment state of a monthly enrollment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pendiente" // Issued, not paid yet
	PaymentStatusPaid    PaymentStatus = "Pagado"    // Settled
	PaymentStatusOverdue PaymentStatus = "Vencido"   // Flagged overdue by billing
)

var allPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusOverdue,
}

// IsValid checks if the status is a known PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// StatusPolicy selects which payment statuses carry an outstanding balance.
//
// The obligation store has been queried two ways historically: "Pendiente"
// only, and "Pendiente" or "Vencido". Which one is authoritative has to be
// confirmed with the owners of the enrollment data, so both are supported.
type StatusPolicy string

const (
	// StatusPolicyPendingOnly treats only Pendiente as outstanding
	StatusPolicyPendingOnly StatusPolicy = "pending_only"
	// StatusPolicyPendingOrOverdue treats Pendiente and Vencido as outstanding
	StatusPolicyPendingOrOverdue StatusPolicy = "pending_or_overdue"
)

// DefaultStatusPolicy is used when no policy is configured
const DefaultStatusPolicy = StatusPolicyPendingOrOverdue

// ParseStatusPolicy parses a configured policy name
func ParseStatusPolicy(s string) (StatusPolicy, error) {
	p := StatusPolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown status policy %q (want %q or %q)",
			s, StatusPolicyPendingOnly, StatusPolicyPendingOrOverdue)
	}
	return p, nil
}

// IsValid checks if the policy is known
func (p StatusPolicy) IsValid() bool {
	return p == StatusPolicyPendingOnly || p == StatusPolicyPendingOrOverdue
}

// IsOutstanding reports whether an obligation in status s still owes money
func (p StatusPolicy) IsOutstanding(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return true
	case PaymentStatusOverdue:
		return p == StatusPolicyPendingOrOverdue
	case PaymentStatusPaid:
		return false
	}
	return false
}

// OutstandingStatuses lists the statuses the store should be queried for
func (p StatusPolicy) OutstandingStatuses() []PaymentStatus {
	statuses := make([]PaymentStatus, 0, len(allPaymentStatuses))
	for _, s := range allPaymentStatuses {
		if p.IsOutstanding(s) {
			statuses = append(statuses, s)
		}
	}
	return statuses
}
