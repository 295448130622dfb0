package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/pkg/db/models"
	"github.com/developerboi1/tourclean/pkg/enums"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/pagination"
)

// RecordInput is one fact to append to the audit trail. Exactly one of
// SubmissionID and CashoutID identifies the subject. Meta is marshaled as the
// event's jsonb payload; nil Meta stores a null payload.
type RecordInput struct {
	SubmissionID *uuid.UUID
	CashoutID    *uuid.UUID
	ActorID      *uuid.UUID
	EventType    enums.SubmissionEventType
	Meta         any
}

// Service exposes the append-only audit trail.
type Service interface {
	// Record appends an event inside the caller's transaction so it commits
	// with the state change it documents. tx may be nil outside transactions.
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) error
	List(ctx context.Context, filters Filters, params pagination.Params) (*ListResponse, error)
}

type service struct {
	repo Repository
}

// NewService wires the audit service with its repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "audit repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) error {
	if !input.EventType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown audit event type")
	}
	hasSubmission := input.SubmissionID != nil && *input.SubmissionID != uuid.Nil
	hasCashout := input.CashoutID != nil && *input.CashoutID != uuid.Nil
	if hasSubmission == hasCashout {
		return pkgerrors.New(pkgerrors.CodeValidation, "exactly one of submission id and cashout id is required")
	}

	var meta json.RawMessage
	if input.Meta != nil {
		encoded, err := json.Marshal(input.Meta)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal audit meta")
		}
		meta = encoded
	}

	event := models.SubmissionEvent{
		SubmissionID: input.SubmissionID,
		CashoutID:    input.CashoutID,
		ActorID:      input.ActorID,
		EventType:    input.EventType,
		Meta:         meta,
	}
	if err := s.repo.WithTx(tx).Create(ctx, &event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record audit event")
	}
	return nil
}

func (s *service) List(ctx context.Context, filters Filters, params pagination.Params) (*ListResponse, error) {
	events, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list audit events")
	}

	out := make([]EventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, FromModel(event))
	}
	resp := &ListResponse{Events: out}
	if next != nil {
		cursor := pagination.EncodeCursor(*next)
		resp.NextCursor = &cursor
	}
	return resp, nil
}
