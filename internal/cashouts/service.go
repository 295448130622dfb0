package cashouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/internal/audit"
	"github.com/developerboi1/tourclean/pkg/config"
	"github.com/developerboi1/tourclean/pkg/db/models"
	"github.com/developerboi1/tourclean/pkg/enums"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/logger"
	"github.com/developerboi1/tourclean/pkg/metrics"
	"github.com/developerboi1/tourclean/pkg/outbox"
	"github.com/developerboi1/tourclean/pkg/pagination"
	"github.com/developerboi1/tourclean/pkg/razorpayx"
)

// SettleOutcome classifies what a settlement notice did.
type SettleOutcome string

const (
	// OutcomeSettled means the notice moved the cashout into a terminal state.
	OutcomeSettled SettleOutcome = "settled"
	// OutcomeInProgress means the notice was a non-terminal progress update.
	OutcomeInProgress SettleOutcome = "in_progress"
	// OutcomeIgnored means the cashout was already terminal; replays land here.
	OutcomeIgnored SettleOutcome = "ignored"
)

// SettlementNotice is the normalized content of one gateway payout webhook.
type SettlementNotice struct {
	ReferenceID     string
	GatewayPayoutID string
	GatewayStatus   string
	FailureReason   *string
	Raw             json.RawMessage
}

// Actor identifies the authenticated caller of a mutating operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type walletLedger interface {
	LockPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error
	BurnLocked(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error
	ReleaseLocked(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error
}

type auditTrail interface {
	Record(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type payoutGateway interface {
	CreateContact(ctx context.Context, params razorpayx.ContactCreateParams) (*razorpayx.Contact, error)
	CreateFundAccount(ctx context.Context, params razorpayx.FundAccountCreateParams) (*razorpayx.FundAccount, error)
	CreatePayout(ctx context.Context, params razorpayx.PayoutCreateParams) (*razorpayx.Payout, error)
}

type userDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service implements the cashout lifecycle: request with points locking,
// payout initiation through the gateway, and idempotent settlement driven by
// gateway webhooks.
type Service interface {
	Request(ctx context.Context, actor Actor, req RequestCashoutRequest) (*CashoutDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*CashoutDTO, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResponse, error)
	ListPending(ctx context.Context, params pagination.Params) (*ListResponse, error)
	Initiate(ctx context.Context, id uuid.UUID) (*CashoutDTO, error)
	SettleByReference(ctx context.Context, notice SettlementNotice) (SettleOutcome, error)
}

type service struct {
	db      txRunner
	repo    Repository
	wallets walletLedger
	audits  auditTrail
	outbox  outboxEmitter
	gateway payoutGateway
	users   userDirectory
	cfg     config.CashoutConfig
	metrics *metrics.SettlementMetrics
	logg    *logger.Logger
}

// NewService wires the cashout service with its collaborators.
func NewService(
	db txRunner,
	repo Repository,
	wallets walletLedger,
	audits auditTrail,
	emitter outboxEmitter,
	gateway payoutGateway,
	users userDirectory,
	cfg config.CashoutConfig,
	settlementMetrics *metrics.SettlementMetrics,
	logg *logger.Logger,
) (Service, error) {
	if db == nil || repo == nil || wallets == nil || audits == nil || emitter == nil || gateway == nil || users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cashout service missing dependencies")
	}
	if cfg.MinimumPoints <= 0 || cfg.PointsPerUnit <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cashout policy must be positive")
	}
	return &service{
		db:      db,
		repo:    repo,
		wallets: wallets,
		audits:  audits,
		outbox:  emitter,
		gateway: gateway,
		users:   users,
		cfg:     cfg,
		metrics: settlementMetrics,
		logg:    logg,
	}, nil
}

func (s *service) Request(ctx context.Context, actor Actor, req RequestCashoutRequest) (*CashoutDTO, error) {
	if req.Points < s.cfg.MinimumPoints {
		return nil, pkgerrors.New(pkgerrors.CodeBelowMinimum, "points below cashout minimum").
			WithDetails(map[string]any{"minimum_points": s.cfg.MinimumPoints})
	}
	rate := s.cfg.PointsPerUnit
	totalPaise := int64(req.Points) * 100
	if totalPaise%int64(rate) != 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points do not convert to a whole currency amount").
			WithDetails(map[string]any{"points_per_unit": rate})
	}
	amountPaise := totalPaise / int64(rate)

	fundAccountID, beneficiary, err := s.registerDestination(ctx, actor.UserID, req)
	if err != nil {
		return nil, err
	}

	cashout := models.CashoutRequest{
		UserID:            actor.UserID,
		PointsUsed:        req.Points,
		CashAmount:        decimal.New(amountPaise, -2),
		Method:            req.Method,
		DestinationRef:    fundAccountID,
		Status:            enums.CashoutStatusPending,
		LockedPoints:      req.Points,
		RatePointsPerUnit: rate,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.wallets.LockPoints(ctx, tx, actor.UserID, req.Points); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, &cashout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cashout request")
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventCashoutRequested,
			AggregateType: enums.AggregateCashout,
			AggregateID:   cashout.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: map[string]any{
				"points_used": req.Points,
				"cash_amount": cashout.CashAmount,
				"method":      req.Method,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"cashout_id":  cashout.ID.String(),
			"points_used": req.Points,
			"beneficiary": beneficiary,
		})
		s.logg.Info(logCtx, "cashout requested")
	}

	// Initiation is best effort here; a pending cashout can be re-initiated
	// later if the gateway is down right now.
	if initiated, err := s.Initiate(ctx, cashout.ID); err == nil {
		return initiated, nil
	} else if s.logg != nil {
		s.logg.Error(ctx, "cashout initiation deferred", err)
	}

	dto := FromModel(cashout)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*CashoutDTO, error) {
	cashout, err := s.loadCashout(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == enums.UserRoleTourist && cashout.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cashout belongs to another user")
	}
	dto := FromModel(*cashout)
	return &dto, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResponse, error) {
	cashouts, next, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cashouts")
	}

	out := make([]CashoutDTO, 0, len(cashouts))
	for _, cashout := range cashouts {
		out = append(out, FromModel(cashout))
	}
	resp := &ListResponse{Cashouts: out}
	if next != nil {
		cursor := pagination.EncodeCursor(*next)
		resp.NextCursor = &cursor
	}
	return resp, nil
}

// ListPending backs the payout work queue for operators retrying stuck
// cashouts. Oldest request first.
func (s *service) ListPending(ctx context.Context, params pagination.Params) (*ListResponse, error) {
	cashouts, next, err := s.repo.ListPending(ctx, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending cashouts")
	}

	out := make([]CashoutDTO, 0, len(cashouts))
	for _, cashout := range cashouts {
		out = append(out, FromModel(cashout))
	}
	resp := &ListResponse{Cashouts: out}
	if next != nil {
		cursor := pagination.EncodeCursor(*next)
		resp.NextCursor = &cursor
	}
	return resp, nil
}

func (s *service) Initiate(ctx context.Context, id uuid.UUID) (*CashoutDTO, error) {
	cashout, err := s.loadCashout(ctx, id)
	if err != nil {
		return nil, err
	}
	if cashout.Status != enums.CashoutStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cashout is not pending")
	}

	amountPaise := cashout.CashAmount.Mul(decimal.NewFromInt(100)).IntPart()
	// The cashout id doubles as the gateway reference and the idempotency
	// key, so a retried initiation cannot double-pay.
	payout, err := s.gateway.CreatePayout(ctx, razorpayx.PayoutCreateParams{
		FundAccountID:  cashout.DestinationRef,
		AmountPaise:    amountPaise,
		Mode:           payoutMode(cashout.Method),
		ReferenceID:    cashout.ID.String(),
		Narration:      "TourClean rewards cashout",
		IdempotencyKey: cashout.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		ok, err := txRepo.MarkInitiated(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark cashout initiated")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cashout is not pending")
		}

		payoutID := payout.ID
		txn := models.PayoutTransaction{
			CashoutRequestID: cashout.ID,
			Gateway:          "razorpayx",
			GatewayPayoutID:  &payoutID,
			Status:           enums.PayoutStatusInitiated,
			AmountPaise:      amountPaise,
			Beneficiary:      &cashout.DestinationRef,
		}
		if err := txRepo.CreatePayoutTransaction(ctx, &txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payout transaction")
		}

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventCashoutInitiated,
			AggregateType: enums.AggregateCashout,
			AggregateID:   cashout.ID,
			Data: map[string]any{
				"gateway_payout_id": payout.ID,
				"amount_paise":      amountPaise,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPayoutInitiated(cashout.Method.String())

	updated := *cashout
	updated.Status = enums.CashoutStatusInitiated
	dto := FromModel(updated)
	return &dto, nil
}

func (s *service) SettleByReference(ctx context.Context, notice SettlementNotice) (SettleOutcome, error) {
	id, err := uuid.Parse(notice.ReferenceID)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payout reference is not a cashout id")
	}

	mapped, ok := razorpayx.MapPayoutStatus(notice.GatewayStatus)
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown gateway payout status %q", notice.GatewayStatus))
	}

	cashout, err := s.loadCashout(ctx, id)
	if err != nil {
		return "", err
	}

	if !mapped.IsTerminal() {
		// Progress update: keep the payout row current but leave the wallet
		// alone.
		if notice.GatewayPayoutID != "" {
			if _, err := s.repo.RecordWebhook(ctx, notice.GatewayPayoutID, enums.PayoutStatusInitiated, nil, notice.Raw); err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payout progress")
			}
		}
		if cashout.Status == enums.CashoutStatusPending {
			if _, err := s.repo.MarkInitiated(ctx, id); err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark cashout initiated")
			}
		}
		return OutcomeInProgress, nil
	}

	if cashout.Status.IsTerminal() {
		if cashout.Status != mapped {
			// A replay that contradicts the settled state is exactly the kind
			// of anomaly disputes get raised over; flag it on the trail.
			if err := s.audits.Record(ctx, nil, audit.RecordInput{
				CashoutID: &id,
				EventType: enums.SubmissionEventTypeFlagged,
				Meta: map[string]any{
					"settled_status": cashout.Status,
					"gateway_status": notice.GatewayStatus,
				},
			}); err != nil {
				return "", err
			}
			if s.logg != nil {
				logCtx := s.logg.WithFields(ctx, map[string]any{
					"cashout_id":     id.String(),
					"settled_status": cashout.Status,
					"gateway_status": notice.GatewayStatus,
				})
				s.logg.Warn(logCtx, "gateway replay disagrees with settled cashout")
			}
		}
		return OutcomeIgnored, nil
	}

	settled := false
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		ok, err := txRepo.Settle(ctx, id, mapped, notice.FailureReason)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settle cashout")
		}
		if !ok {
			// A concurrent notice won the guarded update; nothing to do.
			return nil
		}
		settled = true

		switch mapped {
		case enums.CashoutStatusSucceeded:
			if err := s.wallets.BurnLocked(ctx, tx, cashout.UserID, cashout.LockedPoints); err != nil {
				return err
			}
		case enums.CashoutStatusFailed, enums.CashoutStatusCanceled:
			if err := s.wallets.ReleaseLocked(ctx, tx, cashout.UserID, cashout.LockedPoints); err != nil {
				return err
			}
		}

		if notice.GatewayPayoutID != "" {
			if _, err := txRepo.RecordWebhook(ctx, notice.GatewayPayoutID, payoutStatusFor(mapped), notice.FailureReason, notice.Raw); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payout webhook")
			}
		}

		payoutMeta := map[string]any{
			"status":      mapped,
			"points_used": cashout.PointsUsed,
			"cash_amount": cashout.CashAmount,
		}
		if notice.GatewayPayoutID != "" {
			payoutMeta["gateway_payout_id"] = notice.GatewayPayoutID
		}
		if notice.FailureReason != nil {
			payoutMeta["failure_reason"] = *notice.FailureReason
		}
		if err := s.audits.Record(ctx, tx, audit.RecordInput{
			CashoutID: &id,
			EventType: enums.SubmissionEventTypePayout,
			Meta:      payoutMeta,
		}); err != nil {
			return err
		}

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventCashoutSettled,
			AggregateType: enums.AggregateCashout,
			AggregateID:   id,
			Data: map[string]any{
				"user_id":     cashout.UserID,
				"status":      mapped,
				"points_used": cashout.PointsUsed,
				"cash_amount": cashout.CashAmount,
			},
			Version: 1,
		})
	})
	if err != nil {
		return "", err
	}
	if !settled {
		return OutcomeIgnored, nil
	}

	s.metrics.IncSettlement(mapped.String())
	return OutcomeSettled, nil
}

// registerDestination creates the gateway contact and fund account for the
// requested destination and returns the fund account id plus a loggable
// beneficiary label.
func (s *service) registerDestination(ctx context.Context, userID uuid.UUID, req RequestCashoutRequest) (string, string, error) {
	switch req.Method {
	case enums.CashoutMethodUPI:
		if req.VPA == nil || strings.TrimSpace(*req.VPA) == "" {
			return "", "", pkgerrors.New(pkgerrors.CodeValidation, "upi cashouts require a vpa")
		}
	case enums.CashoutMethodBank:
		if req.Bank == nil {
			return "", "", pkgerrors.New(pkgerrors.CodeValidation, "bank cashouts require bank details")
		}
	default:
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported cashout method")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	contact, err := s.gateway.CreateContact(ctx, razorpayx.ContactCreateParams{
		Name:        contactName(user),
		Email:       user.Email,
		ReferenceID: user.ID.String(),
	})
	if err != nil {
		return "", "", err
	}

	params := razorpayx.FundAccountCreateParams{ContactID: contact.ID}
	var beneficiary string
	if req.Method == enums.CashoutMethodUPI {
		params.VPA = strings.TrimSpace(*req.VPA)
		beneficiary = params.VPA
	} else {
		params.Bank = &razorpayx.BankAccount{
			Name:          req.Bank.Name,
			IFSC:          req.Bank.IFSC,
			AccountNumber: req.Bank.AccountNumber,
		}
		beneficiary = maskAccountNumber(req.Bank.AccountNumber)
	}

	account, err := s.gateway.CreateFundAccount(ctx, params)
	if err != nil {
		return "", "", err
	}
	return account.ID, beneficiary, nil
}

func (s *service) loadCashout(ctx context.Context, id uuid.UUID) (*models.CashoutRequest, error) {
	cashout, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cashout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cashout")
	}
	return cashout, nil
}

func contactName(user *models.User) string {
	var parts []string
	if user.FirstName != nil && *user.FirstName != "" {
		parts = append(parts, *user.FirstName)
	}
	if user.LastName != nil && *user.LastName != "" {
		parts = append(parts, *user.LastName)
	}
	if len(parts) == 0 {
		return user.Email
	}
	return strings.Join(parts, " ")
}

func payoutMode(method enums.CashoutMethod) string {
	if method == enums.CashoutMethodUPI {
		return "UPI"
	}
	return "IMPS"
}

func payoutStatusFor(status enums.CashoutStatus) enums.PayoutStatus {
	switch status {
	case enums.CashoutStatusSucceeded:
		return enums.PayoutStatusSucceeded
	case enums.CashoutStatusFailed:
		return enums.PayoutStatusFailed
	case enums.CashoutStatusCanceled:
		return enums.PayoutStatusCanceled
	case enums.CashoutStatusInitiated:
		return enums.PayoutStatusInitiated
	}
	return enums.PayoutStatusPending
}
