package cashouts

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

// Repository manages cashout requests and their payout transaction rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, cashout *models.CashoutRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CashoutRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CashoutRequest, *pagination.Cursor, error)
	// ListPending pages the payout work queue, oldest request first.
	ListPending(ctx context.Context, params pagination.Params) ([]models.CashoutRequest, *pagination.Cursor, error)
	// MarkInitiated claims a pending cashout. It reports false when the row is
	// missing or no longer pending, so a racing second initiation loses.
	MarkInitiated(ctx context.Context, id uuid.UUID) (bool, error)
	// Settle moves a cashout from any non-terminal status into the given
	// terminal status as a single guarded update.
	Settle(ctx context.Context, id uuid.UUID, status enums.CashoutStatus, failureReason *string) (bool, error)

	CreatePayoutTransaction(ctx context.Context, txn *models.PayoutTransaction) error
	// RecordWebhook stores the gateway's latest word on a payout attempt,
	// keyed by the gateway payout id.
	RecordWebhook(ctx context.Context, gatewayPayoutID string, status enums.PayoutStatus, failureReason *string, raw json.RawMessage) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cashout repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, cashout *models.CashoutRequest) error {
	return r.db.WithContext(ctx).Create(cashout).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.CashoutRequest, error) {
	var cashout models.CashoutRequest
	if err := r.db.WithContext(ctx).First(&cashout, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cashout, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.CashoutRequest, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.CashoutRequest{}).
		Where("user_id = ?", userID)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var cashouts []models.CashoutRequest
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&cashouts).Error; err != nil {
		return nil, nil, err
	}

	if len(cashouts) > normalized {
		next := cashouts[normalized]
		cashouts = cashouts[:normalized]
		return cashouts, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return cashouts, nil, nil
}

func (r *repository) ListPending(ctx context.Context, params pagination.Params) ([]models.CashoutRequest, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.CashoutRequest{}).
		Where("status = ?", enums.CashoutStatusPending)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var cashouts []models.CashoutRequest
	if err := query.Order("created_at ASC, id ASC").Limit(limit).Find(&cashouts).Error; err != nil {
		return nil, nil, err
	}

	if len(cashouts) > normalized {
		next := cashouts[normalized]
		cashouts = cashouts[:normalized]
		return cashouts, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return cashouts, nil, nil
}

func (r *repository) MarkInitiated(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CashoutRequest{}).
		Where("id = ? AND status = ?", id, enums.CashoutStatusPending).
		UpdateColumn("status", enums.CashoutStatusInitiated)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Settle(ctx context.Context, id uuid.UUID, status enums.CashoutStatus, failureReason *string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CashoutRequest{}).
		Where("id = ? AND status IN ?", id, []enums.CashoutStatus{enums.CashoutStatusPending, enums.CashoutStatusInitiated}).
		UpdateColumns(map[string]any{
			"status":         status,
			"failure_reason": failureReason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreatePayoutTransaction(ctx context.Context, txn *models.PayoutTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) RecordWebhook(ctx context.Context, gatewayPayoutID string, status enums.PayoutStatus, failureReason *string, raw json.RawMessage) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PayoutTransaction{}).
		Where("gateway_payout_id = ?", gatewayPayoutID).
		UpdateColumns(map[string]any{
			"status":           status,
			"failure_reason":   failureReason,
			"raw_webhook_json": raw,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
