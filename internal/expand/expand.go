// Package expand decides, per land type category, whether to pass the
// reported aggregate through unchanged or to replace it with its
// subcategory breakdown fetched from the store. Breakdowns come from an
// independent model path that is occasionally numerically inconsistent, so
// a breakdown that fails to reconcile with its aggregate raises a
// data-consistency warning and is still returned: the breakdown is the
// trusted value. A warning for one category never blocks its siblings.
package expand

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/openlum/landreport-backend-go/internal/diag"
	"github.com/openlum/landreport-backend-go/internal/landtype"
	"github.com/openlum/landreport-backend-go/internal/models"
	"github.com/openlum/landreport-backend-go/internal/store"
)

const source = "TaxonomyExpander"

// Expander expands land type aggregates into subcategory breakdowns
type Expander struct {
	reader *store.Reader
	tax    *landtype.Taxonomy
}

// New creates an expander over the given store and taxonomy
func New(reader *store.Reader, tax *landtype.Taxonomy) *Expander {
	return &Expander{reader: reader, tax: tax}
}

// Expand processes every primary category on the input's type axis. The
// input carries only "total"-tagged categories at the native cluster
// resolution; categories in requested that define a breakdown come back
// expanded, everything else passes through unchanged.
func (e *Expander) Expand(ctx context.Context, totals *models.LandArray, scenario string, requested []string) (*models.LandArray, diag.Diagnostics, error) {
	var diags diag.Diagnostics

	requestedSet := make(map[string]bool, len(requested))
	for _, r := range requested {
		requestedSet[r] = true
	}

	var out *models.LandArray
	for _, t := range totals.Types {
		part, err := e.expandCategory(ctx, totals, scenario, t, requestedSet[t.Land], &diags)
		if err != nil {
			return nil, diags, err
		}

		if out == nil {
			out = part
			continue
		}
		joined, err := out.ConcatTypes(part)
		if err != nil {
			return nil, diags, err
		}
		out = joined
	}

	if out == nil {
		out = totals.Clone()
	}
	return out, diags, nil
}

// expandCategory handles one primary category
func (e *Expander) expandCategory(ctx context.Context, totals *models.LandArray, scenario string, t models.LandType, requested bool, diags *diag.Diagnostics) (*models.LandArray, error) {
	passthrough := totals.FilterLand([]string{t.Land})

	if !requested {
		return passthrough, nil
	}

	cat, ok := e.tax.Category(t.Land)
	if !ok || !cat.HasBreakdown() {
		// Expected no-op for categories reserved for breakdowns not yet
		// modeled (past, primforest, urban).
		diags.Warnf(diag.KindUnsupported, source,
			"subcategories requested for %q but none are defined, returning totals", t.Land)
		return passthrough, nil
	}

	var sub *models.LandArray
	var subDiags diag.Diagnostics
	var err error
	if cat.Derived {
		sub, subDiags, err = e.deriveCropBreakdown(ctx, cat, scenario)
	} else {
		sub, subDiags, err = e.fetchBreakdown(ctx, cat, scenario)
	}
	diags.Extend(subDiags)
	if err != nil {
		return nil, err
	}

	if sub.IsEmpty() {
		// Not-found was already reported by the store reader.
		return passthrough, nil
	}

	aligned, ok := alignTo(sub, passthrough)
	if !ok {
		diags.Warnf(diag.KindConsistency, source,
			"subcategory array for %q does not cover the aggregate's cells and years, returning totals", t.Land)
		return passthrough, nil
	}

	// Realign the fetched array's outer label with the calling category.
	aligned = aligned.WithLand(t.Land)

	if cat.Tolerance > 0 {
		reconcile(aligned, passthrough, cat, diags)
	}
	return aligned, nil
}

// fetchBreakdown reads a category's dedicated subcategory variable
func (e *Expander) fetchBreakdown(ctx context.Context, cat *landtype.Category, scenario string) (*models.LandArray, diag.Diagnostics, error) {
	return e.reader.ReadArray(ctx, cat.Variables, store.Selector{
		Scenario:   scenario,
		Resolution: models.ResolutionCluster,
	})
}

// deriveCropBreakdown splits cropland into bioenergy and non-bioenergy
// area by summing the crop-area-by-product array over the fixed bioenergy
// crop set. Cropland has no dedicated subcategory variable.
func (e *Expander) deriveCropBreakdown(ctx context.Context, cat *landtype.Category, scenario string) (*models.LandArray, diag.Diagnostics, error) {
	croparea, diags, err := e.reader.ReadArray(ctx, cat.Variables, store.Selector{
		Scenario:   scenario,
		Resolution: models.ResolutionCluster,
	})
	if err != nil || croparea.IsEmpty() {
		return croparea, diags, err
	}

	types := []models.LandType{
		{Land: cat.Name, Sub: "nobio"},
		{Land: cat.Name, Sub: "bio"},
	}
	out := models.NewLandArray(croparea.Resolution, append([]string(nil), croparea.Cells...), types, append([]int(nil), croparea.Years...))

	for ti, t := range croparea.Types {
		part := 0 // nobio
		if e.tax.IsBioenergy(t.Land) {
			part = 1
		}
		for c := range croparea.Cells {
			for y := range croparea.Years {
				out.Set(c, part, y, out.At(c, part, y)+croparea.At(c, ti, y))
			}
		}
	}
	return out, diags, nil
}

// reconcile checks that the subcategory sums match the reported aggregate
// within the category tolerance. A violation raises exactly one
// data-consistency warning for the category and the breakdown is kept.
func reconcile(sub, total *models.LandArray, cat *landtype.Category, diags *diag.Diagnostics) {
	maxDiff := 0.0
	for c := range total.Cells {
		for y := range total.Years {
			sum := 0.0
			for t := range sub.Types {
				sum += sub.At(c, t, y)
			}
			want := total.At(c, 0, y)
			if !scalar.EqualWithinAbs(sum, want, cat.Tolerance) {
				if d := math.Abs(sum - want); d > maxDiff {
					maxDiff = d
				}
			}
		}
	}

	if maxDiff > 0 {
		diags.Warnf(diag.KindConsistency, source,
			"%s subcategories diverge from the reported total by up to %g (tolerance %g)",
			cat.Name, maxDiff, cat.Tolerance)
	}
}

// alignTo rebuilds sub on the aggregate's space and time axes. The fetched
// array may carry extra years (e.g. the base period); it must cover every
// cell and year of the aggregate.
func alignTo(sub, total *models.LandArray) (*models.LandArray, bool) {
	cellIdx := make([]int, len(total.Cells))
	for i, c := range total.Cells {
		ci := sub.CellIndex(c)
		if ci < 0 {
			return nil, false
		}
		cellIdx[i] = ci
	}
	yearIdx := make([]int, len(total.Years))
	for i, y := range total.Years {
		yi := sub.YearIndex(y)
		if yi < 0 {
			return nil, false
		}
		yearIdx[i] = yi
	}

	out := models.NewLandArray(total.Resolution, append([]string(nil), total.Cells...), append([]models.LandType(nil), sub.Types...), append([]int(nil), total.Years...))
	for c := range total.Cells {
		for t := range sub.Types {
			for y := range total.Years {
				out.Set(c, t, y, sub.At(cellIdx[c], t, yearIdx[y]))
			}
		}
	}
	return out, true
}
