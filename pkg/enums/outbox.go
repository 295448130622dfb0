package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type_enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSubmission OutboxAggregateType = "submission"
	AggregateCashout    OutboxAggregateType = "cashout"
	AggregateWallet     OutboxAggregateType = "wallet"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSubmission,
	AggregateCashout,
	AggregateWallet,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// OutboxEventType maps to the event_type_enum in Postgres.
type OutboxEventType string

const (
	OutboxEventSubmissionApproved OutboxEventType = "submission.approved"
	OutboxEventSubmissionRejected OutboxEventType = "submission.rejected"
	OutboxEventCashoutRequested   OutboxEventType = "cashout.requested"
	OutboxEventCashoutInitiated   OutboxEventType = "cashout.initiated"
	OutboxEventCashoutSettled     OutboxEventType = "cashout.settled"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventSubmissionApproved,
	OutboxEventSubmissionRejected,
	OutboxEventCashoutRequested,
	OutboxEventCashoutInitiated,
	OutboxEventCashoutSettled,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
