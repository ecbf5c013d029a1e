package models

import "fmt"

// Resolution identifies the spatial resolution of a LandArray. The model's
// native resolution is the cluster cell; grid cells, countries, regions and
// the global total are derived from it through the spatial mapping.
type Resolution string

const (
	ResolutionCluster      Resolution = "cell"   // native model clusters
	ResolutionRegion       Resolution = "reg"    // world regions
	ResolutionRegionGlobal Resolution = "regglo" // regions plus a synthetic global unit
	ResolutionGlobal       Resolution = "glo"    // single global unit
	ResolutionCountry      Resolution = "iso"    // countries
	ResolutionGrid         Resolution = "grid"   // half-degree grid cells
)

// GlobalUnit is the identifier of the synthetic global spatial unit
const GlobalUnit = "GLO"

// ParseResolution validates a resolution string
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case ResolutionCluster, ResolutionRegion, ResolutionRegionGlobal,
		ResolutionGlobal, ResolutionCountry, ResolutionGrid:
		return Resolution(s), nil
	}
	return "", fmt.Errorf("unknown resolution %q", s)
}
