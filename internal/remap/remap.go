// Package remap re-expresses a LandArray at a different spatial resolution.
// Values are absolute, extensive quantities (areas, not densities):
// aggregation sums the grouped finer units, disaggregation redistributes by
// the mapping's area weights. The mapping must partition the input's
// resolution completely; a missing or uncovered unit is a hard failure.
package remap

import (
	"fmt"
	"sort"

	"github.com/openlum/landreport-backend-go/internal/mapping"
	"github.com/openlum/landreport-backend-go/internal/models"
)

// Remap converts an array to the target resolution using the given mapping
func Remap(x *models.LandArray, m *mapping.SpatialMapping, target models.Resolution) (*models.LandArray, error) {
	if x.IsEmpty() {
		out := x.Clone()
		out.Resolution = target
		return out, nil
	}
	if x.Resolution == target {
		return x.Clone(), nil
	}

	switch x.Resolution {
	case models.ResolutionCluster:
		return fromCluster(x, m, target)
	case models.ResolutionGrid:
		return fromGrid(x, m, target)
	}
	return nil, fmt.Errorf("remap: unsupported source resolution %q", x.Resolution)
}

func fromCluster(x *models.LandArray, m *mapping.SpatialMapping, target models.Resolution) (*models.LandArray, error) {
	if err := checkClusterCoverage(x, m); err != nil {
		return nil, err
	}

	switch target {
	case models.ResolutionRegion:
		return aggregate(x, models.ResolutionRegion, func(cluster string) (string, error) {
			region, ok := m.ClusterRegion(cluster)
			if !ok {
				return "", fmt.Errorf("%w: cluster %q", mapping.ErrNoEntry, cluster)
			}
			return region, nil
		})

	case models.ResolutionGlobal:
		return x.SumCells(models.GlobalUnit, models.ResolutionGlobal), nil

	case models.ResolutionRegionGlobal:
		regions, err := fromCluster(x, m, models.ResolutionRegion)
		if err != nil {
			return nil, err
		}
		global := x.SumCells(models.GlobalUnit, models.ResolutionRegionGlobal)
		regions.Resolution = models.ResolutionRegionGlobal
		out, err := regions.ConcatCells(global)
		if err != nil {
			return nil, fmt.Errorf("remap regglo: %w", err)
		}
		return out, nil

	case models.ResolutionCountry:
		return disaggregate(x, m, models.ResolutionCountry, func(e *mapping.Entry) string { return e.Country })

	case models.ResolutionGrid:
		return disaggregate(x, m, models.ResolutionGrid, func(e *mapping.Entry) string { return e.Cell })
	}

	return nil, fmt.Errorf("remap: unsupported target %q for cluster input", target)
}

func fromGrid(x *models.LandArray, m *mapping.SpatialMapping, target models.Resolution) (*models.LandArray, error) {
	if err := checkGridCoverage(x, m); err != nil {
		return nil, err
	}

	entryOf := func(cell string) (*mapping.Entry, error) {
		e, ok := m.Entry(cell)
		if !ok {
			return nil, fmt.Errorf("%w: grid cell %q", mapping.ErrNoEntry, cell)
		}
		return e, nil
	}

	switch target {
	case models.ResolutionCountry:
		return aggregate(x, models.ResolutionCountry, func(cell string) (string, error) {
			e, err := entryOf(cell)
			if err != nil {
				return "", err
			}
			return e.Country, nil
		})

	case models.ResolutionCluster:
		return aggregate(x, models.ResolutionCluster, func(cell string) (string, error) {
			e, err := entryOf(cell)
			if err != nil {
				return "", err
			}
			return e.Cluster, nil
		})

	case models.ResolutionRegion:
		return aggregate(x, models.ResolutionRegion, func(cell string) (string, error) {
			e, err := entryOf(cell)
			if err != nil {
				return "", err
			}
			return e.Region, nil
		})

	case models.ResolutionGlobal:
		return x.SumCells(models.GlobalUnit, models.ResolutionGlobal), nil

	case models.ResolutionRegionGlobal:
		regions, err := fromGrid(x, m, models.ResolutionRegion)
		if err != nil {
			return nil, err
		}
		global := x.SumCells(models.GlobalUnit, models.ResolutionRegionGlobal)
		regions.Resolution = models.ResolutionRegionGlobal
		out, err := regions.ConcatCells(global)
		if err != nil {
			return nil, fmt.Errorf("remap regglo: %w", err)
		}
		return out, nil
	}

	return nil, fmt.Errorf("remap: unsupported target %q for grid input", target)
}

// aggregate sums fine units into the coarse unit returned by groupOf
func aggregate(x *models.LandArray, res models.Resolution, groupOf func(string) (string, error)) (*models.LandArray, error) {
	groups := make([]string, len(x.Cells))
	groupSet := make(map[string]bool)
	for i, cell := range x.Cells {
		g, err := groupOf(cell)
		if err != nil {
			return nil, err
		}
		groups[i] = g
		groupSet[g] = true
	}

	coarse := make([]string, 0, len(groupSet))
	for g := range groupSet {
		coarse = append(coarse, g)
	}
	sort.Strings(coarse)

	pos := make(map[string]int, len(coarse))
	for i, g := range coarse {
		pos[g] = i
	}

	out := models.NewLandArray(res, coarse, append([]models.LandType(nil), x.Types...), append([]int(nil), x.Years...))
	for c := range x.Cells {
		gc := pos[groups[c]]
		for t := range x.Types {
			for y := range x.Years {
				out.Set(gc, t, y, out.At(gc, t, y)+x.At(c, t, y))
			}
		}
	}
	return out, nil
}

// disaggregate redistributes a cluster quantity onto the cluster's grid
// cells by area share, then regroups the cells by keyOf. With keyOf
// returning the cell itself this is plain cluster-to-grid disaggregation;
// with the country it becomes the cluster-to-country path.
func disaggregate(x *models.LandArray, m *mapping.SpatialMapping, res models.Resolution, keyOf func(*mapping.Entry) string) (*models.LandArray, error) {
	keySet := make(map[string]bool)
	for _, cluster := range x.Cells {
		entries := m.CellsOf(cluster)
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: cluster %q", mapping.ErrNoEntry, cluster)
		}
		for _, e := range entries {
			keySet[keyOf(e)] = true
		}
	}

	coarse := make([]string, 0, len(keySet))
	for k := range keySet {
		coarse = append(coarse, k)
	}
	sort.Strings(coarse)

	pos := make(map[string]int, len(coarse))
	for i, k := range coarse {
		pos[k] = i
	}

	out := models.NewLandArray(res, coarse, append([]models.LandType(nil), x.Types...), append([]int(nil), x.Years...))
	for c, cluster := range x.Cells {
		total := m.ClusterWeight(cluster)
		if total <= 0 {
			return nil, fmt.Errorf("spatial mapping: cluster %q has zero total weight", cluster)
		}
		for _, e := range m.CellsOf(cluster) {
			share := e.Weight / total
			k := pos[keyOf(e)]
			for t := range x.Types {
				for y := range x.Years {
					out.Set(k, t, y, out.At(k, t, y)+x.At(c, t, y)*share)
				}
			}
		}
	}
	return out, nil
}

// checkClusterCoverage verifies the input and the mapping partition the
// same cluster set: unknown input units are a mapping-error, mapping
// clusters absent from the input would be silently dropped area.
func checkClusterCoverage(x *models.LandArray, m *mapping.SpatialMapping) error {
	seen := make(map[string]bool, len(x.Cells))
	for _, cluster := range x.Cells {
		if _, ok := m.ClusterRegion(cluster); !ok {
			return fmt.Errorf("%w: cluster %q", mapping.ErrNoEntry, cluster)
		}
		seen[cluster] = true
	}
	for _, cluster := range m.Clusters() {
		if !seen[cluster] {
			return fmt.Errorf("%w: cluster %q missing from input", mapping.ErrIncomplete, cluster)
		}
	}
	return nil
}

func checkGridCoverage(x *models.LandArray, m *mapping.SpatialMapping) error {
	seen := make(map[string]bool, len(x.Cells))
	for _, cell := range x.Cells {
		if _, ok := m.Entry(cell); !ok {
			return fmt.Errorf("%w: grid cell %q", mapping.ErrNoEntry, cell)
		}
		seen[cell] = true
	}
	for _, cell := range m.Cells() {
		if !seen[cell] {
			return fmt.Errorf("%w: grid cell %q missing from input", mapping.ErrIncomplete, cell)
		}
	}
	return nil
}
