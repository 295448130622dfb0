package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/developerboi1/tourclean/internal/submissions"
	pkgAuth "github.com/developerboi1/tourclean/pkg/auth"
	"github.com/developerboi1/tourclean/pkg/config"
	"github.com/developerboi1/tourclean/pkg/enums"
	"github.com/developerboi1/tourclean/pkg/pagination"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubSubmissionService struct{}

func (stubSubmissionService) Submit(context.Context, submissions.Actor, submissions.SubmitRequest) (*submissions.SubmissionDTO, error) {
	return &submissions.SubmissionDTO{ID: uuid.New()}, nil
}

func (stubSubmissionService) Get(context.Context, submissions.Actor, uuid.UUID) (*submissions.SubmissionDTO, error) {
	return &submissions.SubmissionDTO{ID: uuid.New()}, nil
}

func (stubSubmissionService) ListByUser(context.Context, uuid.UUID, pagination.Params) (*submissions.ListResponse, error) {
	return &submissions.ListResponse{}, nil
}

func (stubSubmissionService) ReviewQueue(context.Context, int, int) ([]submissions.SubmissionDTO, error) {
	return nil, nil
}

func (stubSubmissionService) Approve(context.Context, submissions.Actor, uuid.UUID, submissions.ApproveRequest) (*submissions.SubmissionDTO, error) {
	return &submissions.SubmissionDTO{ID: uuid.New()}, nil
}

func (stubSubmissionService) Reject(context.Context, submissions.Actor, uuid.UUID, submissions.RejectRequest) (*submissions.SubmissionDTO, error) {
	return &submissions.SubmissionDTO{ID: uuid.New()}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "test-secret-test-secret-test-secret",
			Issuer:            "tourclean-test",
			ExpirationMinutes: 15,
		},
	}
}

func mintToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	kyc := enums.KYCStatusVerified
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:    uuid.New(),
		Role:      role,
		KYCStatus: &kyc,
		JTI:       uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Config:            testConfig(),
		DB:                stubPinger{},
		SubmissionService: stubSubmissionService{},
	})
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestSubmissionsRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestReviewQueueBlocksTourists(t *testing.T) {
	router := newTestRouter(t)
	cfg := testConfig()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/review-queue", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleTourist))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestReviewQueueAllowsModerators(t *testing.T) {
	router := newTestRouter(t)
	cfg := testConfig()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/review-queue", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleModerator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
