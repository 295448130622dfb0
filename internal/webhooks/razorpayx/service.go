package razorpayxwebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/developerboi1/tourclean/internal/cashouts"
	"github.com/developerboi1/tourclean/pkg/enums"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/logger"
	"github.com/developerboi1/tourclean/pkg/metrics"
	"github.com/developerboi1/tourclean/pkg/razorpayx"
	"github.com/developerboi1/tourclean/pkg/redis"
)

const (
	idempotencyScope = "razorpayx-webhook"
	// dedupeTTL bounds how long a processed event id blocks replays. The
	// settlement itself is idempotent, so expiry only costs a no-op pass.
	dedupeTTL = 72 * time.Hour
)

// Outcome classifies what the handler did with an event.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeSkipped   Outcome = "skipped"
)

type settler interface {
	SettleByReference(ctx context.Context, notice cashouts.SettlementNotice) (cashouts.SettleOutcome, error)
}

// Event is the RazorpayX webhook envelope.
type Event struct {
	Entity  string  `json:"entity"`
	Event   string  `json:"event"`
	Payload Payload `json:"payload"`
}

// Payload wraps the payout entity RazorpayX nests two levels deep.
type Payload struct {
	Payout PayoutWrapper `json:"payout"`
}

type PayoutWrapper struct {
	Entity PayoutEntity `json:"entity"`
}

// PayoutEntity is the payout snapshot inside a webhook event.
type PayoutEntity struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	ReferenceID   string `json:"reference_id"`
	UTR           string `json:"utr,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// ServiceParams wires the webhook service.
type ServiceParams struct {
	SigningSecret string
	Idempotency   redis.IdempotencyStore
	Settler       settler
	Metrics       *metrics.SettlementMetrics
	Logger        *logger.Logger
}

// Service verifies, dedupes, and dispatches RazorpayX payout webhooks.
type Service struct {
	secret  string
	idem    redis.IdempotencyStore
	settler settler
	metrics *metrics.SettlementMetrics
	logg    *logger.Logger
}

// NewService validates dependencies and returns the webhook service.
func NewService(params ServiceParams) (*Service, error) {
	if params.SigningSecret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhook signing secret required")
	}
	if params.Idempotency == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency store required")
	}
	if params.Settler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cashout settler required")
	}
	return &Service{
		secret:  params.SigningSecret,
		idem:    params.Idempotency,
		settler: params.Settler,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// Process handles one raw webhook delivery. body is the unmodified request
// body the signature was computed over; eventID is the gateway's delivery id
// used for replay suppression.
func (s *Service) Process(ctx context.Context, body []byte, signature, eventID string) (Outcome, error) {
	start := time.Now()

	if !razorpayx.VerifyWebhookSignature(s.secret, body, signature) {
		s.metrics.IncWebhookEvent("unknown", "signature_invalid")
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"audit_event": enums.SubmissionEventTypeSecurity,
				"event_id":    eventID,
			})
			s.logg.Warn(logCtx, "webhook signature mismatch rejected")
		}
		return "", pkgerrors.New(pkgerrors.CodeSignatureInvalid, "webhook signature mismatch")
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse webhook payload")
	}
	if !isPayoutEvent(event.Event) {
		s.metrics.IncWebhookEvent(event.Event, "skipped")
		return OutcomeSkipped, nil
	}

	payout := event.Payload.Payout.Entity
	if payout.ID == "" || payout.ReferenceID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payout entity missing id or reference")
	}

	// Dedupe on the gateway delivery id when present, otherwise on the payout
	// state transition itself.
	dedupeID := eventID
	if dedupeID == "" {
		dedupeID = payout.ID + ":" + payout.Status
	}
	key := s.idem.IdempotencyKey(idempotencyScope, dedupeID)
	claimed, err := s.idem.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), dedupeTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim webhook event")
	}
	if !claimed {
		s.metrics.IncWebhookEvent(event.Event, "duplicate")
		return OutcomeDuplicate, nil
	}

	var failureReason *string
	if payout.FailureReason != "" {
		reason := payout.FailureReason
		failureReason = &reason
	}

	outcome, err := s.settler.SettleByReference(ctx, cashouts.SettlementNotice{
		ReferenceID:     payout.ReferenceID,
		GatewayPayoutID: payout.ID,
		GatewayStatus:   payout.Status,
		FailureReason:   failureReason,
		Raw:             json.RawMessage(body),
	})
	if err != nil {
		// Release the claim so the gateway's retry can land.
		if delErr := s.idem.Del(ctx, key); delErr != nil && s.logg != nil {
			s.logg.Error(ctx, "release webhook claim failed", delErr)
		}
		s.metrics.IncWebhookEvent(event.Event, "error")
		return "", err
	}

	s.metrics.IncWebhookEvent(event.Event, string(outcome))
	s.metrics.ObserveSettlementDuration(event.Event, time.Since(start))
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event":        event.Event,
			"payout_id":    payout.ID,
			"reference_id": payout.ReferenceID,
			"outcome":      outcome,
		})
		s.logg.Info(logCtx, "payout webhook handled")
	}
	return OutcomeProcessed, nil
}

func isPayoutEvent(event string) bool {
	switch event {
	case "payout.queued", "payout.pending", "payout.processing", "payout.initiated",
		"payout.processed", "payout.reversed", "payout.failed", "payout.rejected", "payout.updated":
		return true
	}
	return false
}
