package submissions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/pkg/db/models"
	"github.com/developerboi1/tourclean/pkg/enums"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/pagination"
)

// decisionUpdate carries the column set a moderator decision writes.
type decisionUpdate struct {
	Status          enums.SubmissionStatus
	PointsAwarded   int
	RejectionReason *string
	ReviewedBy      uuid.UUID
	ReviewedAt      time.Time
}

// Repository manages video submission persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sub *models.VideoSubmission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.VideoSubmission, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.VideoSubmission, *pagination.Cursor, error)
	ListReviewQueue(ctx context.Context, limit, offset int) ([]models.VideoSubmission, error)
	// ApplyDecision moves a submission from any reviewable status into the
	// given terminal status as a single guarded update. It reports false when
	// the row is missing or already terminal, so a racing second decision
	// loses cleanly.
	ApplyDecision(ctx context.Context, id uuid.UUID, update decisionUpdate) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a submission repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sub *models.VideoSubmission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.VideoSubmission, error) {
	var sub models.VideoSubmission
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.VideoSubmission, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.VideoSubmission{}).
		Where("user_id = ?", userID)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var subs []models.VideoSubmission
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&subs).Error; err != nil {
		return nil, nil, err
	}

	if len(subs) > normalized {
		next := subs[normalized]
		subs = subs[:normalized]
		return subs, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return subs, nil, nil
}

// ListReviewQueue returns pending submissions ordered by descending auto
// score, then submission age, so moderators see the strongest evidence first.
func (r *repository) ListReviewQueue(ctx context.Context, limit, offset int) ([]models.VideoSubmission, error) {
	normalized := pagination.NormalizeLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var subs []models.VideoSubmission
	err := r.db.WithContext(ctx).
		Where("status IN ?", enums.ReviewableSubmissionStatuses()).
		Order("auto_score DESC, created_at ASC").
		Limit(normalized).
		Offset(offset).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) ApplyDecision(ctx context.Context, id uuid.UUID, update decisionUpdate) (bool, error) {
	columns := map[string]any{
		"status":           update.Status,
		"points_awarded":   update.PointsAwarded,
		"rejection_reason": update.RejectionReason,
		"reviewed_by":      update.ReviewedBy,
		"reviewed_at":      update.ReviewedAt,
	}
	result := r.db.WithContext(ctx).
		Model(&models.VideoSubmission{}).
		Where("id = ? AND status IN ?", id, enums.ReviewableSubmissionStatuses()).
		UpdateColumns(columns)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
