package submissions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/internal/audit"
	"github.com/developerboi1/tourclean/internal/bins"
	"github.com/developerboi1/tourclean/pkg/config"
	"github.com/developerboi1/tourclean/pkg/db/models"
	"github.com/developerboi1/tourclean/pkg/enums"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/logger"
	"github.com/developerboi1/tourclean/pkg/outbox"
	"github.com/developerboi1/tourclean/pkg/pagination"
)

// defaultAutoScore is the flat score assigned at intake. Rows arriving with
// auto_verified status come from an external scoring pipeline; intake never
// produces them, and a moderator decision is still required either way.
const defaultAutoScore = 50

// Actor identifies the authenticated caller of a mutating operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type walletLedger interface {
	CreditPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error
}

type auditTrail interface {
	Record(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type binLocator interface {
	NearestWithin(ctx context.Context, lat, lng decimal.Decimal) (*bins.Match, error)
}

// Service implements the video submission lifecycle: intake, the moderator
// review queue, and the single terminal decision that settles each claim.
type Service interface {
	Submit(ctx context.Context, actor Actor, req SubmitRequest) (*SubmissionDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*SubmissionDTO, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResponse, error)
	ReviewQueue(ctx context.Context, limit, offset int) ([]SubmissionDTO, error)
	Approve(ctx context.Context, actor Actor, id uuid.UUID, req ApproveRequest) (*SubmissionDTO, error)
	Reject(ctx context.Context, actor Actor, id uuid.UUID, req RejectRequest) (*SubmissionDTO, error)
}

type service struct {
	db      txRunner
	repo    Repository
	wallets walletLedger
	audits  auditTrail
	outbox  outboxEmitter
	bins    binLocator
	cfg     config.CashoutConfig
	logg    *logger.Logger
	nowFn   func() time.Time
}

// NewService wires the submission service with its collaborators.
func NewService(
	db txRunner,
	repo Repository,
	wallets walletLedger,
	audits auditTrail,
	emitter outboxEmitter,
	locator binLocator,
	cfg config.CashoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if db == nil || repo == nil || wallets == nil || audits == nil || emitter == nil || locator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "submission service missing dependencies")
	}
	if cfg.DefaultAward <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "default points award must be positive")
	}
	return &service{
		db:      db,
		repo:    repo,
		wallets: wallets,
		audits:  audits,
		outbox:  emitter,
		bins:    locator,
		cfg:     cfg,
		logg:    logg,
		nowFn:   time.Now,
	}, nil
}

func (s *service) Submit(ctx context.Context, actor Actor, req SubmitRequest) (*SubmissionDTO, error) {
	if (req.GPSLat == nil) != (req.GPSLng == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gps_lat and gps_lng must be provided together")
	}

	var match *bins.Match
	if req.GPSLat != nil && req.GPSLng != nil {
		found, err := s.bins.NearestWithin(ctx, *req.GPSLat, *req.GPSLng)
		if err != nil {
			// Losing the bin guess never blocks intake.
			if s.logg != nil {
				s.logg.Error(ctx, "geofence lookup failed during submission intake", err)
			}
		} else {
			match = found
		}
	}

	sub := models.VideoSubmission{
		UserID:     actor.UserID,
		S3Key:      req.S3Key,
		ThumbKey:   req.ThumbKey,
		DurationS:  req.DurationS,
		SizeBytes:  req.SizeBytes,
		DeviceHash: req.DeviceHash,
		GPSLat:     req.GPSLat,
		GPSLng:     req.GPSLng,
		RecordedAt: req.RecordedAt,
		AutoScore:  defaultAutoScore,
		Status:     enums.SubmissionStatusNeedsReview,
		WasteType:  req.WasteType,
	}
	if match != nil {
		binID := match.Bin.ID
		sub.BinIDGuess = &binID
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, &sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create submission")
		}
		return s.audits.Record(ctx, tx, audit.RecordInput{
			SubmissionID: &sub.ID,
			ActorID:      &actor.UserID,
			EventType:    enums.SubmissionEventTypeSubmitted,
			Meta: map[string]any{
				"auto_score": sub.AutoScore,
				"status":     sub.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	dto := FromModel(sub)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*SubmissionDTO, error) {
	sub, err := s.loadSubmission(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == enums.UserRoleTourist && sub.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "submission belongs to another user")
	}
	dto := FromModel(*sub)
	return &dto, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResponse, error) {
	subs, next, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list submissions")
	}

	out := make([]SubmissionDTO, 0, len(subs))
	for _, sub := range subs {
		out = append(out, FromModel(sub))
	}
	resp := &ListResponse{Submissions: out}
	if next != nil {
		cursor := pagination.EncodeCursor(*next)
		resp.NextCursor = &cursor
	}
	return resp, nil
}

func (s *service) ReviewQueue(ctx context.Context, limit, offset int) ([]SubmissionDTO, error) {
	subs, err := s.repo.ListReviewQueue(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review queue")
	}
	out := make([]SubmissionDTO, 0, len(subs))
	for _, sub := range subs {
		out = append(out, FromModel(sub))
	}
	return out, nil
}

func (s *service) Approve(ctx context.Context, actor Actor, id uuid.UUID, req ApproveRequest) (*SubmissionDTO, error) {
	points := s.cfg.DefaultAward
	if req.PointsOverride != nil {
		if *req.PointsOverride <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "points override must be positive")
		}
		points = *req.PointsOverride
	}

	var approved models.VideoSubmission
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		sub, err := s.loadSubmission(ctx, txRepo, id)
		if err != nil {
			return err
		}

		now := s.nowFn().UTC()
		ok, err := txRepo.ApplyDecision(ctx, id, decisionUpdate{
			Status:        enums.SubmissionStatusApproved,
			PointsAwarded: points,
			ReviewedBy:    actor.UserID,
			ReviewedAt:    now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply approval")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "submission already reviewed")
		}

		if err := s.wallets.CreditPoints(ctx, tx, sub.UserID, points); err != nil {
			return err
		}
		if err := s.audits.Record(ctx, tx, audit.RecordInput{
			SubmissionID: &id,
			ActorID:      &actor.UserID,
			EventType:    enums.SubmissionEventTypeApproved,
			Meta:         map[string]any{"points_awarded": points},
		}); err != nil {
			return err
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventSubmissionApproved,
			AggregateType: enums.AggregateSubmission,
			AggregateID:   id,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: map[string]any{
				"user_id":        sub.UserID,
				"points_awarded": points,
				"auto_score":     sub.AutoScore,
			},
			Version: 1,
		}); err != nil {
			return err
		}

		approved = *sub
		approved.Status = enums.SubmissionStatusApproved
		approved.PointsAwarded = points
		approved.ReviewedBy = &actor.UserID
		approved.ReviewedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := FromModel(approved)
	return &dto, nil
}

func (s *service) Reject(ctx context.Context, actor Actor, id uuid.UUID, req RejectRequest) (*SubmissionDTO, error) {
	var rejected models.VideoSubmission
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		sub, err := s.loadSubmission(ctx, txRepo, id)
		if err != nil {
			return err
		}

		now := s.nowFn().UTC()
		reason := req.Reason
		ok, err := txRepo.ApplyDecision(ctx, id, decisionUpdate{
			Status:          enums.SubmissionStatusRejected,
			RejectionReason: &reason,
			ReviewedBy:      actor.UserID,
			ReviewedAt:      now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply rejection")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "submission already reviewed")
		}

		if err := s.audits.Record(ctx, tx, audit.RecordInput{
			SubmissionID: &id,
			ActorID:      &actor.UserID,
			EventType:    enums.SubmissionEventTypeRejected,
			Meta:         map[string]any{"reason": reason},
		}); err != nil {
			return err
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventSubmissionRejected,
			AggregateType: enums.AggregateSubmission,
			AggregateID:   id,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: map[string]any{
				"user_id": sub.UserID,
				"reason":  reason,
			},
			Version: 1,
		}); err != nil {
			return err
		}

		rejected = *sub
		rejected.Status = enums.SubmissionStatusRejected
		rejected.RejectionReason = &reason
		rejected.ReviewedBy = &actor.UserID
		rejected.ReviewedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := FromModel(rejected)
	return &dto, nil
}

func (s *service) loadSubmission(ctx context.Context, repo Repository, id uuid.UUID) (*models.VideoSubmission, error) {
	sub, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load submission")
	}
	return sub, nil
}
