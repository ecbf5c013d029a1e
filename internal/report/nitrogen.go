package report

import (
	"fmt"
	"math"

	"github.com/openlum/landreport-backend-go/internal/models"
)

// Nutrient surplus units. Totals are Mt Nr/yr; the per-area intensity is
// kg Nr/ha, reached from Mt/Mha by a factor of 1000.
const (
	UnitMtNPerYear = "Mt Nr/yr"
	UnitKgNPerHa   = "kg Nr/ha"

	mtPerMhaToKgPerHa = 1000.0
)

// Nutrient surplus report variable names
const (
	VarNutrientSurplus          = "Resources|Nitrogen|Nutrient surplus incl natural vegetation"
	VarNutrientSurplusIntensity = "Resources|Nitrogen|Nutrient surplus intensity incl natural vegetation"
)

// SumSurplus adds the independently computed surplus components (cropland,
// pasture, manure confinement losses, non-agricultural land). Components
// must share the grid and time axes; empty components are skipped, their
// absence having already been reported by the store reader.
func SumSurplus(parts []*models.LandArray) (*models.LandArray, error) {
	var total *models.LandArray
	for _, p := range parts {
		if p.IsEmpty() {
			continue
		}

		collapsed := p.SumTypes(models.LandType{Land: "surplus", Sub: models.SubTotal})
		if total == nil {
			total = collapsed
			continue
		}

		if len(collapsed.Cells) != len(total.Cells) || len(collapsed.Years) != len(total.Years) {
			return nil, fmt.Errorf("surplus components have mismatched dimensions")
		}
		for c := range total.Cells {
			if collapsed.Cells[c] != total.Cells[c] {
				return nil, fmt.Errorf("surplus components have mismatched grid cells")
			}
			for y := range total.Years {
				total.Set(c, 0, y, total.At(c, 0, y)+collapsed.At(c, 0, y))
			}
		}
	}

	if total == nil {
		return models.NewLandArray(models.ResolutionGrid, nil, nil, nil), nil
	}
	return total, nil
}

// SurplusIntensity divides the total surplus by the total land area per
// grid cell and converts Mt/Mha to kg/ha. Cells with zero land area yield
// a non-finite ratio and are reported as exactly zero.
func SurplusIntensity(total, landArea *models.LandArray) (*models.LandArray, error) {
	if total.IsEmpty() || landArea.IsEmpty() {
		return models.NewLandArray(models.ResolutionGrid, nil, nil, nil), nil
	}

	area := landArea.SumTypes(models.LandType{Land: "land", Sub: models.SubTotal})

	out := models.NewLandArray(total.Resolution, append([]string(nil), total.Cells...), append([]models.LandType(nil), total.Types...), append([]int(nil), total.Years...))
	for c, cell := range total.Cells {
		ac := area.CellIndex(cell)
		if ac < 0 {
			return nil, fmt.Errorf("land area carries no grid cell %q", cell)
		}
		for y, year := range total.Years {
			ay := area.YearIndex(year)
			if ay < 0 {
				return nil, fmt.Errorf("land area carries no year %d", year)
			}

			v := total.At(c, 0, y) / area.At(ac, 0, ay) * mtPerMhaToKgPerHa
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			out.Set(c, 0, y, v)
		}
	}
	return out, nil
}

// NutrientValues assembles the surplus total and intensity report rows
func NutrientValues(total, intensity *models.LandArray) []models.ReportValue {
	values := make([]models.ReportValue, 0, len(total.Data)+len(intensity.Data))
	values = append(values, arrayValues(total, VarNutrientSurplus, UnitMtNPerYear)...)
	values = append(values, arrayValues(intensity, VarNutrientSurplusIntensity, UnitKgNPerHa)...)
	return values
}

func arrayValues(x *models.LandArray, variable, unit string) []models.ReportValue {
	if x.IsEmpty() {
		return nil
	}

	values := make([]models.ReportValue, 0, len(x.Data))
	for c, cell := range x.Cells {
		for t := range x.Types {
			for y, year := range x.Years {
				values = append(values, models.ReportValue{
					Variable: variable,
					Unit:     unit,
					Cell:     cell,
					Year:     year,
					Value:    x.At(c, t, y),
				})
			}
		}
	}
	return values
}
