package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/developerboi1/tourclean/pkg/db/models"
	"github.com/developerboi1/tourclean/pkg/enums"
)

// EventDTO is the transport shape of one audit trail entry.
type EventDTO struct {
	ID           uuid.UUID                 `json:"id"`
	SubmissionID *uuid.UUID                `json:"submission_id,omitempty"`
	CashoutID    *uuid.UUID                `json:"cashout_request_id,omitempty"`
	ActorID      *uuid.UUID                `json:"actor_id,omitempty"`
	EventType    enums.SubmissionEventType `json:"event_type"`
	Meta         json.RawMessage           `json:"meta,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// ListResponse is a cursor page of audit events.
type ListResponse struct {
	Events     []EventDTO `json:"events"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

// FromModel converts a persisted event into its transport shape.
func FromModel(event models.SubmissionEvent) EventDTO {
	return EventDTO{
		ID:           event.ID,
		SubmissionID: event.SubmissionID,
		CashoutID:    event.CashoutID,
		ActorID:      event.ActorID,
		EventType:    event.EventType,
		Meta:         event.Meta,
		CreatedAt:    event.CreatedAt,
	}
}
