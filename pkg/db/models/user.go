package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/developerboi1/tourclean/pkg/enums"
)

// User is an account holder: tourists earn points, moderators review
// submissions, council members read analytics.
type User struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string          `gorm:"column:email;not null;unique"`
	FirstName    *string         `gorm:"column:first_name"`
	LastName     *string         `gorm:"column:last_name"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Role         enums.UserRole  `gorm:"column:role;type:user_role;not null;default:'tourist'"`
	KYCStatus    enums.KYCStatus `gorm:"column:kyc_status;not null;default:'pending'"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
