package bins

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/developerboi1/tourclean/pkg/db/models"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/logger"
)

// defaultSeedBins covers the pilot zone so local environments can verify
// geofence matching without manual setup.
var defaultSeedBins = []models.BinLocation{
	{Name: "Beach Promenade North", Lat: decimal.RequireFromString("15.55203100"), Lng: decimal.RequireFromString("73.75517800"), RadiusM: 500, Active: true},
	{Name: "Beach Promenade South", Lat: decimal.RequireFromString("15.54311900"), Lng: decimal.RequireFromString("73.75944200"), RadiusM: 500, Active: true},
	{Name: "Market Square", Lat: decimal.RequireFromString("15.59633400"), Lng: decimal.RequireFromString("73.80873600"), RadiusM: 350, Active: true},
	{Name: "Fort Viewpoint", Lat: decimal.RequireFromString("15.49254700"), Lng: decimal.RequireFromString("73.82287300"), RadiusM: 400, Active: true},
}

// Seed inserts the default bin set when the table is empty. Safe to call on
// every boot; it never duplicates rows.
func Seed(ctx context.Context, repo Repository, logg *logger.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count bin locations")
	}
	if count > 0 {
		return nil
	}

	for i := range defaultSeedBins {
		bin := defaultSeedBins[i]
		if err := repo.Create(ctx, &bin); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed bin locations")
		}
	}
	if logg != nil {
		logg.Info(ctx, "seeded default bin locations")
	}
	return nil
}
