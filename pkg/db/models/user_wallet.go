package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserWallet is the ledger of record for one user. PointsBalance holds
// spendable points; LockedPoints holds points reserved against an in-flight
// cashout. Both columns carry CHECK (>= 0) constraints so a racing decrement
// can never drive them negative.
type UserWallet struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	PointsBalance int             `gorm:"column:points_balance;not null;default:0"`
	LockedPoints  int             `gorm:"column:locked_points;not null;default:0"`
	CashBalance   decimal.Decimal `gorm:"column:cash_balance;type:numeric(10,2);not null;default:0"`
	LockedAmount  decimal.Decimal `gorm:"column:locked_amount;type:numeric(10,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
