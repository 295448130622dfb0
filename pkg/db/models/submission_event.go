package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/developerboi1/tourclean/pkg/enums"
)

// SubmissionEvent is one immutable audit record. Rows are append-only and are
// the canonical history used for dispute resolution; nothing updates or
// deletes them. Exactly one subject is set per row: SubmissionID for review
// lifecycle events, CashoutID for payout settlement events.
type SubmissionEvent struct {
	ID           uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubmissionID *uuid.UUID                `gorm:"column:submission_id;type:uuid;index"`
	CashoutID    *uuid.UUID                `gorm:"column:cashout_request_id;type:uuid;index"`
	ActorID      *uuid.UUID                `gorm:"column:actor_id;type:uuid"`
	EventType    enums.SubmissionEventType `gorm:"column:event_type;not null"`
	Meta         json.RawMessage           `gorm:"column:meta;type:jsonb"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
