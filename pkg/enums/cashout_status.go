package enums

import "fmt"

// CashoutStatus maps to the cashout_status enum in Postgres.
type CashoutStatus string

const (
	CashoutStatusPending   CashoutStatus = "pending"
	CashoutStatusInitiated CashoutStatus = "initiated"
	CashoutStatusSucceeded CashoutStatus = "succeeded"
	CashoutStatusFailed    CashoutStatus = "failed"
	CashoutStatusCanceled  CashoutStatus = "canceled"
)

var validCashoutStatuses = []CashoutStatus{
	CashoutStatusPending,
	CashoutStatusInitiated,
	CashoutStatusSucceeded,
	CashoutStatusFailed,
	CashoutStatusCanceled,
}

// String implements fmt.Stringer.
func (s CashoutStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known cashout status.
func (s CashoutStatus) IsValid() bool {
	for _, candidate := range validCashoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the cashout can no longer transition.
// Pending and initiated are the only non-terminal states.
func (s CashoutStatus) IsTerminal() bool {
	switch s {
	case CashoutStatusSucceeded, CashoutStatusFailed, CashoutStatusCanceled:
		return true
	}
	return false
}

// ParseCashoutStatus converts raw input into a CashoutStatus.
func ParseCashoutStatus(value string) (CashoutStatus, error) {
	for _, candidate := range validCashoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cashout status %q", value)
}
