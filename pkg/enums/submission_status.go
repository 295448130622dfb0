package enums

import "fmt"

// SubmissionStatus maps to the submission_status enum in Postgres.
type SubmissionStatus string

const (
	SubmissionStatusQueued       SubmissionStatus = "queued"
	SubmissionStatusAutoVerified SubmissionStatus = "auto_verified"
	SubmissionStatusNeedsReview  SubmissionStatus = "needs_review"
	SubmissionStatusApproved     SubmissionStatus = "approved"
	SubmissionStatusRejected     SubmissionStatus = "rejected"
)

var validSubmissionStatuses = []SubmissionStatus{
	SubmissionStatusQueued,
	SubmissionStatusAutoVerified,
	SubmissionStatusNeedsReview,
	SubmissionStatusApproved,
	SubmissionStatusRejected,
}

// reviewableSubmissionStatuses are the statuses a moderator decision may move
// a submission out of. auto_verified behaves like needs_review here; no
// automated approval path exists.
var reviewableSubmissionStatuses = []SubmissionStatus{
	SubmissionStatusQueued,
	SubmissionStatusAutoVerified,
	SubmissionStatusNeedsReview,
}

// String implements fmt.Stringer.
func (s SubmissionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known submission status.
func (s SubmissionStatus) IsValid() bool {
	for _, candidate := range validSubmissionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusApproved || s == SubmissionStatusRejected
}

// ReviewableSubmissionStatuses returns the non-terminal statuses in review scope.
func ReviewableSubmissionStatuses() []SubmissionStatus {
	out := make([]SubmissionStatus, len(reviewableSubmissionStatuses))
	copy(out, reviewableSubmissionStatuses)
	return out
}

// ParseSubmissionStatus converts raw input into a SubmissionStatus.
func ParseSubmissionStatus(value string) (SubmissionStatus, error) {
	for _, candidate := range validSubmissionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid submission status %q", value)
}
