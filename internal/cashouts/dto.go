package cashouts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/developerboi1/tourclean/pkg/db/models"
	"github.com/developerboi1/tourclean/pkg/enums"
)

// BankDestination holds bank transfer details for bank-method cashouts.
type BankDestination struct {
	Name          string `json:"name" validate:"required,min=2,max=120"`
	IFSC          string `json:"ifsc" validate:"required,len=11"`
	AccountNumber string `json:"account_number" validate:"required,min=6,max=24"`
}

// RequestCashoutRequest asks to convert locked points into a gateway payout.
// Exactly one destination matching the method must be provided.
type RequestCashoutRequest struct {
	Points int                 `json:"points" validate:"required,gt=0"`
	Method enums.CashoutMethod `json:"method" validate:"required"`
	VPA    *string             `json:"vpa" validate:"omitempty,min=5,max=100"`
	Bank   *BankDestination    `json:"bank"`
}

// CashoutDTO is the transport shape of a cashout request.
type CashoutDTO struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"user_id"`
	PointsUsed        int                 `json:"points_used"`
	CashAmount        decimal.Decimal     `json:"cash_amount"`
	Method            enums.CashoutMethod `json:"method"`
	Status            enums.CashoutStatus `json:"status"`
	RatePointsPerUnit int                 `json:"rate_points_per_unit"`
	FailureReason     *string             `json:"failure_reason,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// ListResponse is a cursor page of the requesting user's cashouts.
type ListResponse struct {
	Cashouts   []CashoutDTO `json:"cashouts"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// FromModel converts a persisted cashout into its transport shape. The
// destination reference stays internal.
func FromModel(cashout models.CashoutRequest) CashoutDTO {
	return CashoutDTO{
		ID:                cashout.ID,
		UserID:            cashout.UserID,
		PointsUsed:        cashout.PointsUsed,
		CashAmount:        cashout.CashAmount,
		Method:            cashout.Method,
		Status:            cashout.Status,
		RatePointsPerUnit: cashout.RatePointsPerUnit,
		FailureReason:     cashout.FailureReason,
		CreatedAt:         cashout.CreatedAt,
		UpdatedAt:         cashout.UpdatedAt,
	}
}

func maskAccountNumber(account string) string {
	if len(account) <= 4 {
		return account
	}
	return "****" + account[len(account)-4:]
}
