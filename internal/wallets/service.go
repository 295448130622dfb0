package wallets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/pkg/db/models"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
)

// Service defines the points ledger operations. Mutating methods accept an
// optional transaction handle so callers can make the wallet change atomic
// with their own state transition; nil falls back to the base connection.
type Service interface {
	EnsureWallet(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.UserWallet, error)
	Get(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error)
	CreditPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error
	LockPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error
	BurnLocked(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error
	ReleaseLocked(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error
}

type service struct {
	repo Repository
}

// NewService wires a wallet service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) EnsureWallet(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.UserWallet, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	repo := s.repo.WithTx(tx)
	wallet, err := repo.GetByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	wallet = &models.UserWallet{UserID: userID}
	if err := repo.Create(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// Get reads a wallet, lazily creating an empty one on first access.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error) {
	return s.EnsureWallet(ctx, nil, userID)
}

func (s *service) CreditPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error {
	if err := validateAmount(userID, points); err != nil {
		return err
	}
	applied, err := s.repo.WithTx(tx).Credit(ctx, userID, points)
	if err != nil {
		return err
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wallet not found")
	}
	return nil
}

func (s *service) LockPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error {
	if err := validateAmount(userID, points); err != nil {
		return err
	}
	applied, err := s.repo.WithTx(tx).LockPoints(ctx, userID, points)
	if err != nil {
		return err
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient points balance")
	}
	return nil
}

func (s *service) BurnLocked(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error {
	if err := validateAmount(userID, points); err != nil {
		return err
	}
	applied, err := s.repo.WithTx(tx).BurnLocked(ctx, userID, points)
	if err != nil {
		return err
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeInvariantViolation, "locked points below settlement amount")
	}
	return nil
}

func (s *service) ReleaseLocked(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int) error {
	if err := validateAmount(userID, points); err != nil {
		return err
	}
	applied, err := s.repo.WithTx(tx).ReleaseLocked(ctx, userID, points)
	if err != nil {
		return err
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeInvariantViolation, "locked points below release amount")
	}
	return nil
}

func validateAmount(userID uuid.UUID, points int) error {
	if userID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	if points <= 0 {
		return fmt.Errorf("points must be positive")
	}
	return nil
}
