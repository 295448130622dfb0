package enums

import "fmt"

// SubmissionEventType classifies entries in the append-only audit trail.
type SubmissionEventType string

const (
	SubmissionEventTypeSubmitted SubmissionEventType = "submitted"
	SubmissionEventTypeApproved  SubmissionEventType = "approved"
	SubmissionEventTypeRejected  SubmissionEventType = "rejected"
	SubmissionEventTypeFlagged   SubmissionEventType = "flagged"
	SubmissionEventTypePayout    SubmissionEventType = "payout"
	SubmissionEventTypeSecurity  SubmissionEventType = "security"
)

var validSubmissionEventTypes = []SubmissionEventType{
	SubmissionEventTypeSubmitted,
	SubmissionEventTypeApproved,
	SubmissionEventTypeRejected,
	SubmissionEventTypeFlagged,
	SubmissionEventTypePayout,
	SubmissionEventTypeSecurity,
}

// String implements fmt.Stringer.
func (t SubmissionEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known event type.
func (t SubmissionEventType) IsValid() bool {
	for _, candidate := range validSubmissionEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseSubmissionEventType converts raw input into a SubmissionEventType.
func ParseSubmissionEventType(value string) (SubmissionEventType, error) {
	for _, candidate := range validSubmissionEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid submission event type %q", value)
}
