package razorpayx

import "github.com/developerboi1/tourclean/pkg/enums"

// Gateway payout states as RazorpayX reports them.
const (
	PayoutStatusQueued     = "queued"
	PayoutStatusPending    = "pending"
	PayoutStatusScheduled  = "scheduled"
	PayoutStatusProcessing = "processing"
	PayoutStatusProcessed  = "processed"
	PayoutStatusReversed   = "reversed"
	PayoutStatusFailed     = "failed"
	PayoutStatusRejected   = "rejected"
	PayoutStatusCancelled  = "cancelled"
)

// MapPayoutStatus translates a gateway payout state into the cashout status
// it settles to. The second return is false for states that do not change
// the cashout (still in flight) or are unknown.
func MapPayoutStatus(gatewayStatus string) (enums.CashoutStatus, bool) {
	switch gatewayStatus {
	case PayoutStatusProcessed:
		return enums.CashoutStatusSucceeded, true
	case PayoutStatusReversed, PayoutStatusFailed, PayoutStatusRejected:
		return enums.CashoutStatusFailed, true
	case PayoutStatusCancelled:
		return enums.CashoutStatusCanceled, true
	case PayoutStatusQueued, PayoutStatusPending, PayoutStatusScheduled, PayoutStatusProcessing:
		return enums.CashoutStatusInitiated, true
	default:
		return "", false
	}
}

// IsTerminalPayoutStatus reports whether the gateway state ends the payout.
func IsTerminalPayoutStatus(gatewayStatus string) bool {
	mapped, ok := MapPayoutStatus(gatewayStatus)
	return ok && mapped.IsTerminal()
}
