package grid

import (
	"context"
	"fmt"
	"math"

	"github.com/openlum/landreport-backend-go/internal/diag"
	"github.com/openlum/landreport-backend-go/internal/models"
	"github.com/openlum/landreport-backend-go/internal/store"
)

// Disaggregator attributes gridded "other natural land" to primary
// (never-disturbed) and secondary (regrown) status, given the current land
// cover snapshot and the pre-simulation initialization raster.
type Disaggregator interface {
	SplitOtherLand(snapshot, initRaster *models.LandArray) (*models.LandArray, error)
}

// SplitOtherLand resolves the initialization raster, invokes the
// disaggregation routine and tags the result's subcategory axis as the
// "total"-sibling "sub" so it can be concatenated onto the main output.
// A missing initialization raster degrades to a warning and a nil result.
func SplitOtherLand(ctx context.Context, r *store.Reader, d Disaggregator, scenario string, snapshot *models.LandArray) (*models.LandArray, diag.Diagnostics, error) {
	initRaster, diags, err := r.ReadArray(ctx, initRasterVars, store.Selector{
		Scenario:   scenario,
		Resolution: models.ResolutionGrid,
	})
	if err != nil {
		return nil, diags, err
	}
	if initRaster.IsEmpty() {
		diags.Warnf(diag.KindNotFound, source,
			"no initialization raster for scenario %q, skipping other land split", scenario)
		return nil, diags, nil
	}

	split, err := d.SplitOtherLand(snapshot, initRaster)
	if err != nil {
		return nil, diags, fmt.Errorf("failed to split other land: %w", err)
	}

	for i := range split.Types {
		split.Types[i].Sub = models.SubSplit
	}
	return split, diags, nil
}

// NaturalVegSplitter is the default disaggregation routine: a grid cell's
// primary other land is capped by the cell's initial primary natural
// vegetation, the remainder is secondary.
type NaturalVegSplitter struct{}

// SplitOtherLand implements Disaggregator
func (NaturalVegSplitter) SplitOtherLand(snapshot, initRaster *models.LandArray) (*models.LandArray, error) {
	other := snapshot.FilterLand([]string{"other"})
	if len(other.Types) == 0 {
		return nil, fmt.Errorf("snapshot carries no %q land type", "other")
	}

	initPrim := initRaster.FilterLand([]string{"primother"})
	if len(initPrim.Types) == 0 {
		return nil, fmt.Errorf("initialization raster carries no %q land type", "primother")
	}

	types := []models.LandType{
		{Land: "primother", Sub: models.SubTotal},
		{Land: "secdother", Sub: models.SubTotal},
	}
	out := models.NewLandArray(models.ResolutionGrid, append([]string(nil), other.Cells...), types, append([]int(nil), other.Years...))

	// The initialization raster describes the pre-simulation state; its
	// first year is the reference for every reporting period.
	for c, cell := range other.Cells {
		ic := initPrim.CellIndex(cell)
		var initial float64
		if ic >= 0 {
			initial = initPrim.At(ic, 0, 0)
		}

		for y := range other.Years {
			total := other.At(c, 0, y)
			prim := math.Min(total, initial)
			out.Set(c, 0, y, prim)
			out.Set(c, 1, y, total-prim)
		}
	}
	return out, nil
}
