// Package report turns LandArrays into named, unit-annotated report values
// and writes optional flat-file exports.
package report

import (
	"gonum.org/v1/gonum/floats"

	"github.com/openlum/landreport-backend-go/internal/models"
)

// UnitMillionHa is the unit of all land cover report variables
const UnitMillionHa = "million ha"

// landVariableNames maps primary land types to report variable segments
var landVariableNames = map[string]string{
	"crop":       "Cropland",
	"past":       "Pastures and Rangelands",
	"forestry":   "Managed Forest",
	"primforest": "Primary Forest",
	"secdforest": "Secondary Forest",
	"urban":      "Urban Area",
	"other":      "Other Land",
	"primother":  "Other Land|Primary",
	"secdother":  "Other Land|Secondary",
}

// LandCover assembles land cover report values from a land array. Expanded
// subcategories become one nesting level below their primary category.
func LandCover(x *models.LandArray) []models.ReportValue {
	if x.IsEmpty() {
		return nil
	}

	values := make([]models.ReportValue, 0, len(x.Data))
	for t, lt := range x.Types {
		variable := landVariable(lt)
		for c, cell := range x.Cells {
			for y, year := range x.Years {
				values = append(values, models.ReportValue{
					Variable: variable,
					Unit:     UnitMillionHa,
					Cell:     cell,
					Year:     year,
					Value:    x.At(c, t, y),
				})
			}
		}
	}
	return values
}

// landVariable builds the report variable name for one land type
func landVariable(t models.LandType) string {
	name, ok := landVariableNames[t.Land]
	if !ok {
		// Collapsed totals and unknown categories report under the parent.
		return "Resources|Land Cover"
	}

	variable := "Resources|Land Cover|+|" + name
	if t.Sub != models.SubTotal && t.Sub != models.SubSplit {
		variable += "|" + t.Sub
	}
	return variable
}

// TotalArea returns the sum over the whole array, used for summary logging
func TotalArea(x *models.LandArray) float64 {
	if x.IsEmpty() {
		return 0
	}
	return floats.Sum(x.Data)
}
