package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/developerboi1/tourclean/pkg/enums"
)

// PayoutTransaction records one external gateway payout attempt tied to a
// CashoutRequest. Retries create new rows; only one attempt should be in the
// initiated state at a time. RawWebhookJSON keeps the gateway payload verbatim
// for replay and audit.
type PayoutTransaction struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CashoutRequestID uuid.UUID          `gorm:"column:cashout_request_id;type:uuid;not null;index"`
	Gateway          string             `gorm:"column:gateway;not null"`
	GatewayTxnID     *string            `gorm:"column:gateway_txn_id"`
	GatewayPayoutID  *string            `gorm:"column:gateway_payout_id;index"`
	Status           enums.PayoutStatus `gorm:"column:status;type:payout_status;not null;default:'pending'"`
	AmountPaise      int64              `gorm:"column:amount_paise;not null;default:0"`
	Beneficiary      *string            `gorm:"column:beneficiary"`
	FailureReason    *string            `gorm:"column:failure_reason"`
	RawWebhookJSON   json.RawMessage    `gorm:"column:raw_webhook_json;type:jsonb"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
