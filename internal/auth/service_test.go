package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/developerboi1/tourclean/pkg/auth"
	"github.com/developerboi1/tourclean/pkg/config"
	"github.com/developerboi1/tourclean/pkg/db/models"
	"github.com/developerboi1/tourclean/pkg/enums"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/security"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newStubUserRepo(users ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
	for _, u := range users {
		repo.byEmail[u.Email] = u
		repo.byID[u.ID] = u
	}
	return repo
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type stubSessionManager struct {
	issued  map[uuid.UUID]string
	revoked []uuid.UUID
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{issued: map[uuid.UUID]string{}}
}

func (s *stubSessionManager) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token := uuid.NewString()
	s.issued[userID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, userID uuid.UUID, provided string) (string, error) {
	if current, ok := s.issued[userID]; !ok || current != provided {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	return s.Issue(ctx, userID)
}

func (s *stubSessionManager) Revoke(ctx context.Context, userID uuid.UUID) error {
	s.revoked = append(s.revoked, userID)
	delete(s.issued, userID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "tourclean",
		ExpirationMinutes: 30,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestServiceLoginMintsRoleClaims(t *testing.T) {
	password := "moderator-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "mod@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleModerator,
		KYCStatus:    enums.KYCStatusVerified,
	}
	cfg := testJWTConfig()

	svc, err := NewService(ServiceParams{
		UserRepo:       newStubUserRepo(user),
		SessionManager: newStubSessionManager(),
		JWTConfig:      cfg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Mod@Example.com ",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("unexpected subject %s", claims.UserID)
	}
	if claims.Role != enums.UserRoleModerator {
		t.Fatalf("expected moderator role claim, got %s", claims.Role)
	}
	if claims.KYCStatus == nil || *claims.KYCStatus != enums.KYCStatusVerified {
		t.Fatalf("expected kyc claim, got %v", claims.KYCStatus)
	}
	if resp.RefreshToken == "" {
		t.Fatal("expected refresh token")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("expected sanitized user in response")
	}
}

func TestServiceLoginRejectsBadPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "tourist@example.com",
		PasswordHash: mustHashPassword(t, "correct-password"),
		Role:         enums.UserRoleTourist,
	}

	svc, _ := NewService(ServiceParams{
		UserRepo:       newStubUserRepo(user),
		SessionManager: newStubSessionManager(),
		JWTConfig:      testJWTConfig(),
	})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func TestServiceRefreshRotatesTokens(t *testing.T) {
	password := "tourist-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "tourist@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleTourist,
	}
	cfg := testJWTConfig()
	sessions := newStubSessionManager()

	svc, _ := NewService(ServiceParams{
		UserRepo:       newStubUserRepo(user),
		SessionManager: sessions,
		JWTConfig:      cfg,
	})

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("refresh token should rotate")
	}
	if _, err := pkgAuth.ParseAccessToken(cfg, refreshed.AccessToken); err != nil {
		t.Fatalf("new access token invalid: %v", err)
	}

	// The superseded refresh token must stop working.
	if _, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for stale refresh token, got %v", err)
	}
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	sessions := newStubSessionManager()
	svc, _ := NewService(ServiceParams{
		UserRepo:       newStubUserRepo(),
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})

	userID := uuid.New()
	if err := svc.Logout(context.Background(), userID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != userID {
		t.Fatalf("expected session revoked for %s", userID)
	}

	if err := svc.Logout(context.Background(), uuid.Nil); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for nil user, got %v", err)
	}
}
