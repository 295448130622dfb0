package bins

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/developerboi1/tourclean/pkg/db/models"
)

// BinDTO is the transport shape of a bin location.
type BinDTO struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Lat       decimal.Decimal `json:"lat"`
	Lng       decimal.Decimal `json:"lng"`
	RadiusM   int             `json:"radius_m"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateBinRequest registers a new bin geofence. Council-only.
type CreateBinRequest struct {
	Name    string          `json:"name" validate:"required,min=2,max=120"`
	Lat     decimal.Decimal `json:"lat" validate:"required"`
	Lng     decimal.Decimal `json:"lng" validate:"required"`
	RadiusM int             `json:"radius_m" validate:"omitempty,min=10,max=5000"`
}

// ToModel converts the request into a persistence row, applying the default
// geofence radius when none is given.
func (r CreateBinRequest) ToModel() *models.BinLocation {
	radius := r.RadiusM
	if radius <= 0 {
		radius = 500
	}
	return &models.BinLocation{
		Name:    r.Name,
		Lat:     r.Lat,
		Lng:     r.Lng,
		RadiusM: radius,
		Active:  true,
	}
}

// FromModel converts a persisted bin into its transport shape.
func FromModel(bin models.BinLocation) BinDTO {
	return BinDTO{
		ID:        bin.ID,
		Name:      bin.Name,
		Lat:       bin.Lat,
		Lng:       bin.Lng,
		RadiusM:   bin.RadiusM,
		Active:    bin.Active,
		CreatedAt: bin.CreatedAt,
	}
}
