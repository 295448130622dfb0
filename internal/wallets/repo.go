package wallets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/pkg/db/models"
)

// Repository manages persistence for user wallets. All balance mutations are
// guarded single-statement updates: the WHERE clause carries the precondition
// and the caller inspects the applied flag, so two racing writers can never
// both win.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, wallet *models.UserWallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error)
	Credit(ctx context.Context, userID uuid.UUID, points int) (bool, error)
	LockPoints(ctx context.Context, userID uuid.UUID, points int) (bool, error)
	BurnLocked(ctx context.Context, userID uuid.UUID, points int) (bool, error)
	ReleaseLocked(ctx context.Context, userID uuid.UUID, points int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, wallet *models.UserWallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error) {
	var wallet models.UserWallet
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Credit adds spendable points. Returns false when no wallet row exists.
func (r *repository) Credit(ctx context.Context, userID uuid.UUID, points int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserWallet{}).
		Where("user_id = ?", userID).
		UpdateColumn("points_balance", gorm.Expr("points_balance + ?", points))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// LockPoints moves points from spendable to locked. Returns false when the
// spendable balance is below the requested amount.
func (r *repository) LockPoints(ctx context.Context, userID uuid.UUID, points int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserWallet{}).
		Where("user_id = ? AND points_balance >= ?", userID, points).
		UpdateColumns(map[string]any{
			"points_balance": gorm.Expr("points_balance - ?", points),
			"locked_points":  gorm.Expr("locked_points + ?", points),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// BurnLocked consumes locked points after a successful payout. Returns false
// when fewer points are locked than requested.
func (r *repository) BurnLocked(ctx context.Context, userID uuid.UUID, points int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserWallet{}).
		Where("user_id = ? AND locked_points >= ?", userID, points).
		UpdateColumn("locked_points", gorm.Expr("locked_points - ?", points))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseLocked returns locked points to the spendable balance after a failed
// or canceled payout. Returns false when fewer points are locked than requested.
func (r *repository) ReleaseLocked(ctx context.Context, userID uuid.UUID, points int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserWallet{}).
		Where("user_id = ? AND locked_points >= ?", userID, points).
		UpdateColumns(map[string]any{
			"locked_points":  gorm.Expr("locked_points - ?", points),
			"points_balance": gorm.Expr("points_balance + ?", points),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
