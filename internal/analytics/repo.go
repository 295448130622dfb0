package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/pkg/db/models"
	"github.com/developerboi1/tourclean/pkg/enums"
)

// SubmissionStatusCount is one row of the submissions-by-status rollup.
type SubmissionStatusCount struct {
	Status enums.SubmissionStatus
	Count  int64
}

// CashoutAggregate is one row of the cashouts-by-status rollup.
type CashoutAggregate struct {
	Status enums.CashoutStatus
	Count  int64
	Points int64
	Cash   decimal.Decimal
}

// WalletTotals is the platform-wide points liability snapshot.
type WalletTotals struct {
	PointsBalance int64
	LockedPoints  int64
}

// Repository computes council reporting aggregates. Queries are read-only and
// always run against the base connection.
type Repository interface {
	CountSubmissionsByStatus(ctx context.Context, since *time.Time) ([]SubmissionStatusCount, error)
	SumPointsAwarded(ctx context.Context, since *time.Time) (int64, error)
	CashoutAggregates(ctx context.Context, since *time.Time) ([]CashoutAggregate, error)
	WalletTotals(ctx context.Context) (*WalletTotals, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an analytics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func sinceClause(query *gorm.DB, since *time.Time) *gorm.DB {
	if since != nil {
		return query.Where("created_at >= ?", *since)
	}
	return query
}

func (r *repository) CountSubmissionsByStatus(ctx context.Context, since *time.Time) ([]SubmissionStatusCount, error) {
	var rows []SubmissionStatusCount
	query := r.db.WithContext(ctx).
		Model(&models.VideoSubmission{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if err := sinceClause(query, since).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SumPointsAwarded(ctx context.Context, since *time.Time) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).
		Model(&models.VideoSubmission{}).
		Select("COALESCE(SUM(points_awarded), 0)").
		Where("status = ?", enums.SubmissionStatusApproved)
	if err := sinceClause(query, since).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) CashoutAggregates(ctx context.Context, since *time.Time) ([]CashoutAggregate, error) {
	var rows []CashoutAggregate
	query := r.db.WithContext(ctx).
		Model(&models.CashoutRequest{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(points_used), 0) AS points, COALESCE(SUM(cash_amount), 0) AS cash").
		Group("status")
	if err := sinceClause(query, since).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) WalletTotals(ctx context.Context) (*WalletTotals, error) {
	var totals WalletTotals
	err := r.db.WithContext(ctx).
		Model(&models.UserWallet{}).
		Select("COALESCE(SUM(points_balance), 0) AS points_balance, COALESCE(SUM(locked_points), 0) AS locked_points").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
