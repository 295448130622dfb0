package bins

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/developerboi1/tourclean/pkg/db/models"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/logger"
)

const earthRadiusM = 6_371_000.0

// Match is a bin whose geofence contains a submitted GPS coordinate.
type Match struct {
	Bin       models.BinLocation
	DistanceM float64
}

// Service exposes bin location lookups used during submission verification.
type Service interface {
	Create(ctx context.Context, req CreateBinRequest) (*BinDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*BinDTO, error)
	ListActive(ctx context.Context) ([]BinDTO, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	// NearestWithin returns the closest active bin whose radius covers the
	// coordinate, or nil when no geofence matches.
	NearestWithin(ctx context.Context, lat, lng decimal.Decimal) (*Match, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the bin service with its repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "bin repository is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, req CreateBinRequest) (*BinDTO, error) {
	bin := req.ToModel()
	if err := s.repo.Create(ctx, bin); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create bin location")
	}
	dto := FromModel(*bin)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BinDTO, error) {
	bin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bin location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load bin location")
	}
	dto := FromModel(*bin)
	return &dto, nil
}

func (s *service) ListActive(ctx context.Context) ([]BinDTO, error) {
	bins, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bin locations")
	}
	out := make([]BinDTO, 0, len(bins))
	for _, bin := range bins {
		out = append(out, FromModel(bin))
	}
	return out, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	updated, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update bin location")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "bin location not found")
	}
	return nil
}

func (s *service) NearestWithin(ctx context.Context, lat, lng decimal.Decimal) (*Match, error) {
	bins, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load bin geofences")
	}

	latF := lat.InexactFloat64()
	lngF := lng.InexactFloat64()

	var best *Match
	for _, bin := range bins {
		dist := haversineM(latF, lngF, bin.Lat.InexactFloat64(), bin.Lng.InexactFloat64())
		if dist > float64(bin.RadiusM) {
			continue
		}
		if best == nil || dist < best.DistanceM {
			match := Match{Bin: bin, DistanceM: dist}
			best = &match
		}
	}
	return best, nil
}

func haversineM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}
