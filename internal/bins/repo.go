package bins

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/pkg/db/models"
)

// Repository manages bin location persistence. Bin data is read-mostly seed
// data so there is no update surface beyond activation toggles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bin *models.BinLocation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BinLocation, error)
	ListActive(ctx context.Context) ([]models.BinLocation, error)
	Count(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bin repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, bin *models.BinLocation) error {
	return r.db.WithContext(ctx).Create(bin).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.BinLocation, error) {
	var bin models.BinLocation
	if err := r.db.WithContext(ctx).First(&bin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bin, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.BinLocation, error) {
	var bins []models.BinLocation
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&bins).Error
	if err != nil {
		return nil, err
	}
	return bins, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BinLocation{}).Count(&count).Error
	return count, err
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BinLocation{}).
		Where("id = ?", id).
		UpdateColumn("active", active)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
