package razorpayxwebhook

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/developerboi1/tourclean/internal/cashouts"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/razorpayx"
)

const testSecret = "whsec_test"

type fakeIdempotency struct {
	claims map[string]bool
	setErr error
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{claims: make(map[string]bool)}
}

func (f *fakeIdempotency) Get(_ context.Context, key string) (string, error) {
	if f.claims[key] {
		return "claimed", nil
	}
	return "", nil
}

func (f *fakeIdempotency) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if f.claims[key] {
		return false, nil
	}
	f.claims[key] = true
	return true, nil
}

func (f *fakeIdempotency) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("tc:idem:%s:%s", scope, id)
}

func (f *fakeIdempotency) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.claims, key)
	}
	return nil
}

type fakeSettler struct {
	notices []cashouts.SettlementNotice
	outcome cashouts.SettleOutcome
	err     error
}

func (f *fakeSettler) SettleByReference(_ context.Context, notice cashouts.SettlementNotice) (cashouts.SettleOutcome, error) {
	if f.err != nil {
		return "", f.err
	}
	f.notices = append(f.notices, notice)
	if f.outcome == "" {
		return cashouts.OutcomeSettled, nil
	}
	return f.outcome, nil
}

func signedBody(t *testing.T, body string) ([]byte, string) {
	t.Helper()
	raw := []byte(body)
	return raw, razorpayx.SignWebhookPayload(testSecret, raw)
}

func payoutEventBody(event, payoutID, referenceID, status string) string {
	return fmt.Sprintf(`{"entity":"event","event":%q,"payload":{"payout":{"entity":{"id":%q,"status":%q,"reference_id":%q}}}}`,
		event, payoutID, status, referenceID)
}

func newService(t *testing.T, idem *fakeIdempotency, settler *fakeSettler) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		SigningSecret: testSecret,
		Idempotency:   idem,
		Settler:       settler,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestProcessSettlesPayout(t *testing.T) {
	idem := newFakeIdempotency()
	settler := &fakeSettler{}
	svc := newService(t, idem, settler)

	body, sig := signedBody(t, payoutEventBody("payout.processed", "pout_1", "ref-1", "processed"))
	outcome, err := svc.Process(context.Background(), body, sig, "evt_1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if outcome != OutcomeProcessed {
		t.Fatalf("outcome %s, want processed", outcome)
	}
	if len(settler.notices) != 1 {
		t.Fatalf("expected 1 settlement, got %d", len(settler.notices))
	}
	notice := settler.notices[0]
	if notice.ReferenceID != "ref-1" || notice.GatewayPayoutID != "pout_1" || notice.GatewayStatus != "processed" {
		t.Fatalf("unexpected notice %+v", notice)
	}
	if string(notice.Raw) != string(body) {
		t.Fatal("raw payload must be persisted verbatim")
	}
}

func TestProcessRejectsBadSignature(t *testing.T) {
	idem := newFakeIdempotency()
	settler := &fakeSettler{}
	svc := newService(t, idem, settler)

	body := []byte(payoutEventBody("payout.processed", "pout_1", "ref-1", "processed"))
	_, err := svc.Process(context.Background(), body, "deadbeef", "evt_1")
	if !pkgerrors.IsCode(err, pkgerrors.CodeSignatureInvalid) {
		t.Fatalf("expected signature error, got %v", err)
	}
	if len(settler.notices) != 0 {
		t.Fatal("invalid signature must not reach settlement")
	}
}

func TestProcessDeduplicatesDeliveries(t *testing.T) {
	idem := newFakeIdempotency()
	settler := &fakeSettler{}
	svc := newService(t, idem, settler)

	body, sig := signedBody(t, payoutEventBody("payout.processed", "pout_1", "ref-1", "processed"))
	if _, err := svc.Process(context.Background(), body, sig, "evt_1"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	outcome, err := svc.Process(context.Background(), body, sig, "evt_1")
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if outcome != OutcomeDuplicate {
		t.Fatalf("outcome %s, want duplicate", outcome)
	}
	if len(settler.notices) != 1 {
		t.Fatalf("settlement ran %d times, want once", len(settler.notices))
	}
}

func TestProcessReleasesClaimOnSettlementError(t *testing.T) {
	idem := newFakeIdempotency()
	settler := &fakeSettler{err: errors.New("db down")}
	svc := newService(t, idem, settler)

	body, sig := signedBody(t, payoutEventBody("payout.processed", "pout_1", "ref-1", "processed"))
	if _, err := svc.Process(context.Background(), body, sig, "evt_1"); err == nil {
		t.Fatal("expected settlement error")
	}
	if len(idem.claims) != 0 {
		t.Fatal("claim must be released so the gateway retry can land")
	}

	// Retry succeeds once the settler recovers.
	settler.err = nil
	outcome, err := svc.Process(context.Background(), body, sig, "evt_1")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if outcome != OutcomeProcessed {
		t.Fatalf("retry outcome %s, want processed", outcome)
	}
}

func TestProcessSkipsNonPayoutEvents(t *testing.T) {
	idem := newFakeIdempotency()
	settler := &fakeSettler{}
	svc := newService(t, idem, settler)

	body, sig := signedBody(t, `{"entity":"event","event":"transaction.created","payload":{}}`)
	outcome, err := svc.Process(context.Background(), body, sig, "evt_1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if outcome != OutcomeSkipped {
		t.Fatalf("outcome %s, want skipped", outcome)
	}
	if len(settler.notices) != 0 {
		t.Fatal("non-payout events must not settle")
	}
	if len(idem.claims) != 0 {
		t.Fatal("skipped events must not consume idempotency claims")
	}
}

func TestProcessRequiresPayoutIdentity(t *testing.T) {
	idem := newFakeIdempotency()
	settler := &fakeSettler{}
	svc := newService(t, idem, settler)

	body, sig := signedBody(t, payoutEventBody("payout.processed", "", "", "processed"))
	_, err := svc.Process(context.Background(), body, sig, "evt_1")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
