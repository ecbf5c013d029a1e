// Package grid handles grid-resolution land output. Gridded land cover is a
// dedicated pre-rasterized quantity read directly from the store, not
// derived from the cluster arrays; its first year is the pre-simulation
// reference period and is sliced off. All grid data is emitted as a single
// synthetic "total" subcategory.
package grid

import (
	"context"

	"github.com/openlum/landreport-backend-go/internal/diag"
	"github.com/openlum/landreport-backend-go/internal/models"
	"github.com/openlum/landreport-backend-go/internal/store"
)

const source = "GridLand"

// gridLandVars are the store names of the rasterized land cover snapshot
var gridLandVars = []string{"gridland", "land_grid"}

// initRasterVars are the store names of the pre-simulation natural
// vegetation initialization raster.
var initRasterVars = []string{"land_initial", "init_natveg"}

// ReadLand reads the gridded land cover snapshot for a scenario and drops
// the base period from the time axis.
func ReadLand(ctx context.Context, r *store.Reader, scenario string) (*models.LandArray, diag.Diagnostics, error) {
	arr, diags, err := r.ReadArray(ctx, gridLandVars, store.Selector{
		Scenario:   scenario,
		Resolution: models.ResolutionGrid,
	})
	if err != nil || arr.IsEmpty() {
		return arr, diags, err
	}

	if len(arr.Years) > 1 {
		arr = arr.DropYear(arr.Years[0])
	}
	return arr, diags, nil
}
