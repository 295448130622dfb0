package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BinLocation is a reference geofence consulted when verifying a disposal
// claim. Read-mostly seed data.
type BinLocation struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Lat       decimal.Decimal `gorm:"column:lat;type:numeric(10,8);not null"`
	Lng       decimal.Decimal `gorm:"column:lng;type:numeric(11,8);not null"`
	RadiusM   int             `gorm:"column:radius_m;not null;default:500"`
	Active    bool            `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
