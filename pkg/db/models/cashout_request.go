package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/developerboi1/tourclean/pkg/enums"
)

// CashoutRequest is one user request to convert points to cash. Its ID doubles
// as the reference id propagated through the payout gateway, so webhook
// settlement can correlate the async confirmation with this row.
//
// RatePointsPerUnit snapshots the conversion rate at request time; later rate
// changes never alter a pending request's payout amount.
type CashoutRequest struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	PointsUsed        int                 `gorm:"column:points_used;not null"`
	CashAmount        decimal.Decimal     `gorm:"column:cash_amount;type:numeric(10,2);not null"`
	Method            enums.CashoutMethod `gorm:"column:method;not null"`
	DestinationRef    string              `gorm:"column:destination_ref;not null"`
	Status            enums.CashoutStatus `gorm:"column:status;type:cashout_status;not null;default:'pending'"`
	LockedPoints      int                 `gorm:"column:locked_points;not null;default:0"`
	RatePointsPerUnit int                 `gorm:"column:rate_points_per_unit;not null;default:0"`
	FailureReason     *string             `gorm:"column:failure_reason"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
