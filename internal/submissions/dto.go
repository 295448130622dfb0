package submissions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/developerboi1/tourclean/pkg/db/models"
	"github.com/developerboi1/tourclean/pkg/enums"
)

// SubmitRequest is one disposal claim uploaded by a tourist. The video itself
// is already in object storage; we only receive its key plus capture metadata.
type SubmitRequest struct {
	S3Key      string           `json:"s3_key" validate:"required,max=512"`
	ThumbKey   *string          `json:"thumb_key" validate:"omitempty,max=512"`
	DurationS  *int             `json:"duration_s" validate:"omitempty,min=1,max=600"`
	SizeBytes  *int64           `json:"size_bytes" validate:"omitempty,min=1"`
	DeviceHash *string          `json:"device_hash" validate:"omitempty,max=128"`
	GPSLat     *decimal.Decimal `json:"gps_lat"`
	GPSLng     *decimal.Decimal `json:"gps_lng"`
	RecordedAt *time.Time       `json:"recorded_at"`
	WasteType  *string          `json:"waste_type" validate:"omitempty,max=64"`
}

// ApproveRequest is the moderator approval payload. PointsOverride replaces
// the default award for exceptional submissions.
type ApproveRequest struct {
	PointsOverride *int `json:"points_override" validate:"omitempty,min=1,max=1000"`
}

// RejectRequest is the moderator rejection payload; the reason is shown to
// the submitting user.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// SubmissionDTO is the transport shape of a video submission.
type SubmissionDTO struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"user_id"`
	S3Key           string                 `json:"s3_key"`
	ThumbKey        *string                `json:"thumb_key,omitempty"`
	DurationS       *int                   `json:"duration_s,omitempty"`
	SizeBytes       *int64                 `json:"size_bytes,omitempty"`
	GPSLat          *decimal.Decimal       `json:"gps_lat,omitempty"`
	GPSLng          *decimal.Decimal       `json:"gps_lng,omitempty"`
	RecordedAt      *time.Time             `json:"recorded_at,omitempty"`
	BinIDGuess      *uuid.UUID             `json:"bin_id_guess,omitempty"`
	AutoScore       int                    `json:"auto_score"`
	Status          enums.SubmissionStatus `json:"status"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	PointsAwarded   int                    `json:"points_awarded"`
	WasteType       *string                `json:"waste_type,omitempty"`
	ReviewedBy      *uuid.UUID             `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time             `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// ListResponse is a cursor page of the requesting user's submissions.
type ListResponse struct {
	Submissions []SubmissionDTO `json:"submissions"`
	NextCursor  *string         `json:"next_cursor,omitempty"`
}

// FromModel converts a persisted submission into its transport shape.
func FromModel(sub models.VideoSubmission) SubmissionDTO {
	return SubmissionDTO{
		ID:              sub.ID,
		UserID:          sub.UserID,
		S3Key:           sub.S3Key,
		ThumbKey:        sub.ThumbKey,
		DurationS:       sub.DurationS,
		SizeBytes:       sub.SizeBytes,
		GPSLat:          sub.GPSLat,
		GPSLng:          sub.GPSLng,
		RecordedAt:      sub.RecordedAt,
		BinIDGuess:      sub.BinIDGuess,
		AutoScore:       sub.AutoScore,
		Status:          sub.Status,
		RejectionReason: sub.RejectionReason,
		PointsAwarded:   sub.PointsAwarded,
		WasteType:       sub.WasteType,
		ReviewedBy:      sub.ReviewedBy,
		ReviewedAt:      sub.ReviewedAt,
		CreatedAt:       sub.CreatedAt,
	}
}
