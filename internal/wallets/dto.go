package wallets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/developerboi1/tourclean/pkg/db/models"
)

// WalletDTO is the transport shape of a user wallet.
type WalletDTO struct {
	UserID        uuid.UUID       `json:"user_id"`
	PointsBalance int             `json:"points_balance"`
	LockedPoints  int             `json:"locked_points"`
	CashBalance   decimal.Decimal `json:"cash_balance"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FromModel converts a persisted wallet into its transport shape.
func FromModel(w *models.UserWallet) *WalletDTO {
	if w == nil {
		return nil
	}
	return &WalletDTO{
		UserID:        w.UserID,
		PointsBalance: w.PointsBalance,
		LockedPoints:  w.LockedPoints,
		CashBalance:   w.CashBalance,
		UpdatedAt:     w.UpdatedAt,
	}
}
