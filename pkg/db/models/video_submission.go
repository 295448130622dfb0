package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/developerboi1/tourclean/pkg/enums"
)

// VideoSubmission is one user-generated claim of waste disposal. A submission
// is mutated exactly once by a moderator decision and never deleted; its
// history lives in submission_events.
type VideoSubmission struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	S3Key           string                 `gorm:"column:s3_key;not null"`
	ThumbKey        *string                `gorm:"column:thumb_key"`
	DurationS       *int                   `gorm:"column:duration_s"`
	SizeBytes       *int64                 `gorm:"column:size_bytes"`
	DeviceHash      *string                `gorm:"column:device_hash"`
	GPSLat          *decimal.Decimal       `gorm:"column:gps_lat;type:numeric(10,8)"`
	GPSLng          *decimal.Decimal       `gorm:"column:gps_lng;type:numeric(11,8)"`
	RecordedAt      *time.Time             `gorm:"column:recorded_at"`
	BinIDGuess      *uuid.UUID             `gorm:"column:bin_id_guess;type:uuid"`
	AutoScore       int                    `gorm:"column:auto_score;not null;default:0"`
	Status          enums.SubmissionStatus `gorm:"column:status;type:submission_status;not null;default:'queued'"`
	RejectionReason *string                `gorm:"column:rejection_reason"`
	PointsAwarded   int                    `gorm:"column:points_awarded;not null;default:0"`
	WasteType       *string                `gorm:"column:waste_type"`
	ReviewedBy      *uuid.UUID             `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt      *time.Time             `gorm:"column:reviewed_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
}
