package submissions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/pkg/db/models"
	"github.com/developerboi1/tourclean/pkg/enums"
	"github.com/developerboi1/tourclean/pkg/pagination"
)

func setupSubmissionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS video_submissions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  s3_key TEXT NOT NULL,
  thumb_key TEXT,
  duration_s INTEGER,
  size_bytes INTEGER,
  device_hash TEXT,
  gps_lat TEXT,
  gps_lng TEXT,
  recorded_at DATETIME,
  bin_id_guess TEXT,
  auto_score INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'queued',
  rejection_reason TEXT,
  points_awarded INTEGER NOT NULL DEFAULT 0,
  waste_type TEXT,
  reviewed_by TEXT,
  reviewed_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedSubmission(t *testing.T, db *gorm.DB, userID uuid.UUID, status enums.SubmissionStatus, score int, createdAt time.Time) uuid.UUID {
	t.Helper()
	sub := models.VideoSubmission{
		ID:        uuid.New(),
		UserID:    userID,
		S3Key:     "videos/" + uuid.NewString() + ".mp4",
		AutoScore: score,
		Status:    status,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&sub).Error)
	return sub.ID
}

func TestReviewQueueOrdersByScoreThenAge(t *testing.T) {
	db := setupSubmissionsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	lowScore := seedSubmission(t, db, userID, enums.SubmissionStatusNeedsReview, 40, base)
	highOld := seedSubmission(t, db, userID, enums.SubmissionStatusAutoVerified, 80, base.Add(1*time.Minute))
	highNew := seedSubmission(t, db, userID, enums.SubmissionStatusAutoVerified, 80, base.Add(5*time.Minute))
	seedSubmission(t, db, userID, enums.SubmissionStatusApproved, 100, base)

	queue, err := repo.ListReviewQueue(context.Background(), 10, 0)
	require.NoError(t, err)

	require.Len(t, queue, 3, "decided submissions must not appear")
	assert.Equal(t, highOld, queue[0].ID, "higher score, older first")
	assert.Equal(t, highNew, queue[1].ID)
	assert.Equal(t, lowScore, queue[2].ID)
}

func TestApplyDecisionGuardsSecondDecision(t *testing.T) {
	db := setupSubmissionsTestDB(t)
	repo := NewRepository(db)
	moderator := uuid.New()
	id := seedSubmission(t, db, uuid.New(), enums.SubmissionStatusNeedsReview, 55, time.Now().UTC())

	ok, err := repo.ApplyDecision(context.Background(), id, decisionUpdate{
		Status:        enums.SubmissionStatusApproved,
		PointsAwarded: 75,
		ReviewedBy:    moderator,
		ReviewedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	require.True(t, ok)

	reason := "duplicate footage"
	ok, err = repo.ApplyDecision(context.Background(), id, decisionUpdate{
		Status:          enums.SubmissionStatusRejected,
		RejectionReason: &reason,
		ReviewedBy:      moderator,
		ReviewedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.False(t, ok, "a settled submission must reject further decisions")

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, enums.SubmissionStatusApproved, stored.Status)
	assert.Equal(t, 75, stored.PointsAwarded)
}

func TestListByUserPagesWithCursor(t *testing.T) {
	db := setupSubmissionsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		seedSubmission(t, db, userID, enums.SubmissionStatusQueued, 0, base.Add(time.Duration(i)*time.Minute))
	}
	seedSubmission(t, db, uuid.New(), enums.SubmissionStatusQueued, 0, base)

	first, next, err := repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, next)

	second, last, err := repo.ListByUser(context.Background(), userID, pagination.Params{
		Limit:  3,
		Cursor: pagination.EncodeCursor(*next),
	})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Nil(t, last)

	seen := map[uuid.UUID]bool{}
	for _, sub := range append(first, second...) {
		assert.Equal(t, userID, sub.UserID)
		assert.False(t, seen[sub.ID], "pages must not overlap")
		seen[sub.ID] = true
	}
}
