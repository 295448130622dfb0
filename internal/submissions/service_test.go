package submissions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/internal/audit"
	"github.com/developerboi1/tourclean/internal/bins"
	"github.com/developerboi1/tourclean/pkg/config"
	"github.com/developerboi1/tourclean/pkg/db/models"
	"github.com/developerboi1/tourclean/pkg/enums"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/outbox"
	"github.com/developerboi1/tourclean/pkg/pagination"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeRepository struct {
	byID      map[uuid.UUID]*models.VideoSubmission
	decisions int
}

func newFakeRepository(subs ...*models.VideoSubmission) *fakeRepository {
	byID := make(map[uuid.UUID]*models.VideoSubmission)
	for _, sub := range subs {
		byID[sub.ID] = sub
	}
	return &fakeRepository{byID: byID}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, sub *models.VideoSubmission) error {
	sub.ID = uuid.New()
	sub.CreatedAt = time.Now()
	f.byID[sub.ID] = sub
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.VideoSubmission, error) {
	sub, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *sub
	return &found, nil
}

func (f *fakeRepository) ListByUser(_ context.Context, userID uuid.UUID, params pagination.Params) ([]models.VideoSubmission, *pagination.Cursor, error) {
	var out []models.VideoSubmission
	for _, sub := range f.byID {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	return out, nil, nil
}

func (f *fakeRepository) ListReviewQueue(_ context.Context, limit, offset int) ([]models.VideoSubmission, error) {
	var out []models.VideoSubmission
	for _, sub := range f.byID {
		if !sub.Status.IsTerminal() {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeRepository) ApplyDecision(_ context.Context, id uuid.UUID, update decisionUpdate) (bool, error) {
	sub, ok := f.byID[id]
	if !ok || sub.Status.IsTerminal() {
		return false, nil
	}
	f.decisions++
	sub.Status = update.Status
	sub.PointsAwarded = update.PointsAwarded
	sub.RejectionReason = update.RejectionReason
	reviewer := update.ReviewedBy
	reviewedAt := update.ReviewedAt
	sub.ReviewedBy = &reviewer
	sub.ReviewedAt = &reviewedAt
	return true, nil
}

type fakeWallets struct {
	credits map[uuid.UUID]int
}

func (f *fakeWallets) CreditPoints(_ context.Context, _ *gorm.DB, userID uuid.UUID, points int) error {
	if f.credits == nil {
		f.credits = make(map[uuid.UUID]int)
	}
	f.credits[userID] += points
	return nil
}

type fakeAudit struct {
	records []audit.RecordInput
}

func (f *fakeAudit) Record(_ context.Context, _ *gorm.DB, input audit.RecordInput) error {
	f.records = append(f.records, input)
	return nil
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) EmitIfNotExists(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeLocator struct {
	match *bins.Match
	err   error
}

func (f *fakeLocator) NearestWithin(_ context.Context, _, _ decimal.Decimal) (*bins.Match, error) {
	return f.match, f.err
}

func testConfig() config.CashoutConfig {
	return config.CashoutConfig{MinimumPoints: 100, PointsPerUnit: 20, DefaultAward: 75}
}

type harness struct {
	svc     Service
	repo    *fakeRepository
	wallets *fakeWallets
	audits  *fakeAudit
	outbox  *fakeOutbox
	locator *fakeLocator
}

func newHarness(t *testing.T, repo *fakeRepository, locator *fakeLocator) *harness {
	t.Helper()
	if locator == nil {
		locator = &fakeLocator{}
	}
	wallets := &fakeWallets{}
	audits := &fakeAudit{}
	emitter := &fakeOutbox{}
	svc, err := NewService(fakeTxRunner{}, repo, wallets, audits, emitter, locator, testConfig(), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &harness{svc: svc, repo: repo, wallets: wallets, audits: audits, outbox: emitter, locator: locator}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestSubmitRecordsBinGuessFromGeofence(t *testing.T) {
	match := &bins.Match{Bin: models.BinLocation{ID: uuid.New()}, DistanceM: 12}
	h := newHarness(t, newFakeRepository(), &fakeLocator{match: match})

	recorded := time.Now().Add(-time.Hour)
	dto, err := h.svc.Submit(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleTourist}, SubmitRequest{
		S3Key:      "videos/abc.mp4",
		DurationS:  intPtr(30),
		DeviceHash: strPtr("device-1"),
		GPSLat:     decPtr("15.552"),
		GPSLng:     decPtr("73.755"),
		RecordedAt: &recorded,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if dto.AutoScore != 50 {
		t.Fatalf("expected flat intake score 50, got %d", dto.AutoScore)
	}
	if dto.Status != enums.SubmissionStatusNeedsReview {
		t.Fatalf("expected needs_review, got %s", dto.Status)
	}
	if dto.BinIDGuess == nil || *dto.BinIDGuess != match.Bin.ID {
		t.Fatal("expected bin guess from geofence match")
	}
	if dto.PointsAwarded != 0 {
		t.Fatalf("no points may move before review, got %d", dto.PointsAwarded)
	}
	if len(h.audits.records) != 1 || h.audits.records[0].EventType != enums.SubmissionEventTypeSubmitted {
		t.Fatalf("expected submitted audit event, got %+v", h.audits.records)
	}
}

func TestSubmitWithoutCoordinatesSkipsBinGuess(t *testing.T) {
	h := newHarness(t, newFakeRepository(), nil)

	dto, err := h.svc.Submit(context.Background(), Actor{UserID: uuid.New()}, SubmitRequest{S3Key: "videos/bare.mp4"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if dto.AutoScore != 50 {
		t.Fatalf("expected flat intake score 50, got %d", dto.AutoScore)
	}
	if dto.Status != enums.SubmissionStatusNeedsReview {
		t.Fatalf("expected needs_review, got %s", dto.Status)
	}
	if dto.BinIDGuess != nil {
		t.Fatal("expected no bin guess without coordinates")
	}
}

func TestSubmitRejectsHalfCoordinates(t *testing.T) {
	h := newHarness(t, newFakeRepository(), nil)

	_, err := h.svc.Submit(context.Background(), Actor{UserID: uuid.New()}, SubmitRequest{
		S3Key:  "videos/half.mp4",
		GPSLat: decPtr("15.552"),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApproveCreditsDefaultAward(t *testing.T) {
	owner := uuid.New()
	sub := &models.VideoSubmission{ID: uuid.New(), UserID: owner, Status: enums.SubmissionStatusNeedsReview, AutoScore: 55}
	h := newHarness(t, newFakeRepository(sub), nil)

	moderator := Actor{UserID: uuid.New(), Role: enums.UserRoleModerator}
	dto, err := h.svc.Approve(context.Background(), moderator, sub.ID, ApproveRequest{})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if dto.Status != enums.SubmissionStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}
	if dto.PointsAwarded != 75 {
		t.Fatalf("expected default award 75, got %d", dto.PointsAwarded)
	}
	if h.wallets.credits[owner] != 75 {
		t.Fatalf("wallet credited %d, want 75", h.wallets.credits[owner])
	}
	if dto.ReviewedBy == nil || *dto.ReviewedBy != moderator.UserID {
		t.Fatal("expected reviewer recorded")
	}
	if len(h.outbox.events) != 1 || h.outbox.events[0].EventType != enums.OutboxEventSubmissionApproved {
		t.Fatalf("expected submission.approved event, got %+v", h.outbox.events)
	}
}

func TestApproveHonorsPointsOverride(t *testing.T) {
	owner := uuid.New()
	sub := &models.VideoSubmission{ID: uuid.New(), UserID: owner, Status: enums.SubmissionStatusQueued}
	h := newHarness(t, newFakeRepository(sub), nil)

	dto, err := h.svc.Approve(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleModerator}, sub.ID, ApproveRequest{PointsOverride: intPtr(120)})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if dto.PointsAwarded != 120 {
		t.Fatalf("expected override 120, got %d", dto.PointsAwarded)
	}
	if h.wallets.credits[owner] != 120 {
		t.Fatalf("wallet credited %d, want 120", h.wallets.credits[owner])
	}
}

func TestSecondDecisionIsInvalidTransition(t *testing.T) {
	owner := uuid.New()
	sub := &models.VideoSubmission{ID: uuid.New(), UserID: owner, Status: enums.SubmissionStatusNeedsReview}
	h := newHarness(t, newFakeRepository(sub), nil)

	moderator := Actor{UserID: uuid.New(), Role: enums.UserRoleModerator}
	if _, err := h.svc.Approve(context.Background(), moderator, sub.ID, ApproveRequest{}); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	_, err := h.svc.Approve(context.Background(), moderator, sub.ID, ApproveRequest{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	_, err = h.svc.Reject(context.Background(), moderator, sub.ID, RejectRequest{Reason: "blurry"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict on reject, got %v", err)
	}
	if h.wallets.credits[owner] != 75 {
		t.Fatalf("wallet must be credited exactly once, got %d", h.wallets.credits[owner])
	}
}

func TestRejectRecordsReasonWithoutCredit(t *testing.T) {
	owner := uuid.New()
	sub := &models.VideoSubmission{ID: uuid.New(), UserID: owner, Status: enums.SubmissionStatusAutoVerified}
	h := newHarness(t, newFakeRepository(sub), nil)

	dto, err := h.svc.Reject(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleModerator}, sub.ID, RejectRequest{Reason: "no bin visible"})
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if dto.Status != enums.SubmissionStatusRejected {
		t.Fatalf("expected rejected, got %s", dto.Status)
	}
	if dto.RejectionReason == nil || *dto.RejectionReason != "no bin visible" {
		t.Fatal("expected rejection reason recorded")
	}
	if len(h.wallets.credits) != 0 {
		t.Fatalf("rejection must not credit points: %+v", h.wallets.credits)
	}
	if len(h.outbox.events) != 1 || h.outbox.events[0].EventType != enums.OutboxEventSubmissionRejected {
		t.Fatalf("expected submission.rejected event, got %+v", h.outbox.events)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	owner := uuid.New()
	sub := &models.VideoSubmission{ID: uuid.New(), UserID: owner, Status: enums.SubmissionStatusQueued}
	h := newHarness(t, newFakeRepository(sub), nil)

	if _, err := h.svc.Get(context.Background(), Actor{UserID: owner, Role: enums.UserRoleTourist}, sub.ID); err != nil {
		t.Fatalf("owner Get: %v", err)
	}

	_, err := h.svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleTourist}, sub.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := h.svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleModerator}, sub.ID); err != nil {
		t.Fatalf("moderator Get: %v", err)
	}
}

func TestApproveMissingSubmissionNotFound(t *testing.T) {
	h := newHarness(t, newFakeRepository(), nil)

	_, err := h.svc.Approve(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleModerator}, uuid.New(), ApproveRequest{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
