// Package mapping supplies the region/cell/country correspondence used for
// spatial remapping. A mapping is loaded once per output directory and is
// read-only for the remainder of the reporting run.
package mapping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/openlum/landreport-backend-go/internal/spatial"
)

// ErrNoEntry marks a spatial unit with no mapping row. Spatial remapping
// cannot proceed without a complete partition, so this is a hard failure.
var ErrNoEntry = errors.New("no mapping entry for spatial unit")

// ErrIncomplete marks an input array that covers only part of the mapping
// domain; summing it would silently drop area.
var ErrIncomplete = errors.New("input does not cover the mapping domain")

// Entry is one row of the correspondence: a grid cell, its enclosing
// cluster, region and country, and the cell's area weight within the
// cluster (used for share-based disaggregation).
type Entry struct {
	Cell    string
	Cluster string
	Region  string
	Country string
	Weight  float64
}

// SpatialMapping is the loaded, indexed correspondence for one output
// directory. Every fine unit belongs to exactly one coarse unit.
type SpatialMapping struct {
	Dir string

	byCell        map[string]*Entry
	byCluster     map[string][]*Entry
	clusterRegion map[string]string
	clusterWeight map[string]float64
}

// Entry returns the row for a grid cell
func (m *SpatialMapping) Entry(cell string) (*Entry, bool) {
	e, ok := m.byCell[cell]
	return e, ok
}

// CellsOf returns the grid cells of a cluster
func (m *SpatialMapping) CellsOf(cluster string) []*Entry {
	return m.byCluster[cluster]
}

// ClusterRegion returns the region enclosing a cluster
func (m *SpatialMapping) ClusterRegion(cluster string) (string, bool) {
	r, ok := m.clusterRegion[cluster]
	return r, ok
}

// ClusterWeight returns the total weight of a cluster's cells
func (m *SpatialMapping) ClusterWeight(cluster string) float64 {
	return m.clusterWeight[cluster]
}

// Clusters returns all cluster identifiers in sorted order
func (m *SpatialMapping) Clusters() []string {
	out := make([]string, 0, len(m.byCluster))
	for c := range m.byCluster {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Cells returns all grid cell identifiers in sorted order
func (m *SpatialMapping) Cells() []string {
	out := make([]string, 0, len(m.byCell))
	for c := range m.byCell {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of grid cells in the mapping
func (m *SpatialMapping) Len() int {
	return len(m.byCell)
}

// Provider loads and caches spatial mappings per output directory. The
// cache is filled once per directory and entries are never mutated after
// load, so readers share them freely.
type Provider struct {
	db *sql.DB

	mu    sync.RWMutex
	cache map[string]*SpatialMapping
}

// NewProvider creates a new mapping provider
func NewProvider(db *sql.DB) *Provider {
	return &Provider{
		db:    db,
		cache: make(map[string]*SpatialMapping),
	}
}

// Load returns the mapping for an output directory, loading it on first use
func (p *Provider) Load(ctx context.Context, dir string) (*SpatialMapping, error) {
	p.mu.RLock()
	m, ok := p.cache[dir]
	p.mu.RUnlock()
	if ok {
		return m, nil
	}

	m, err := p.load(ctx, dir)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	// Another loader may have raced us; keep the first result.
	if cached, ok := p.cache[dir]; ok {
		m = cached
	} else {
		p.cache[dir] = m
	}
	p.mu.Unlock()

	return m, nil
}

func (p *Provider) load(ctx context.Context, dir string) (*SpatialMapping, error) {
	query := `
		SELECT cell, cluster, region, country, weight
		FROM spatial_mapping
		WHERE output_dir = ?
		ORDER BY cell
	`

	rows, err := p.db.QueryContext(ctx, query, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to query spatial mapping for %q: %w", dir, err)
	}
	defer rows.Close()

	m := &SpatialMapping{
		Dir:           dir,
		byCell:        make(map[string]*Entry),
		byCluster:     make(map[string][]*Entry),
		clusterRegion: make(map[string]string),
		clusterWeight: make(map[string]float64),
	}

	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Cell, &e.Cluster, &e.Region, &e.Country, &e.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan mapping row: %w", err)
		}

		if _, dup := m.byCell[e.Cell]; dup {
			return nil, fmt.Errorf("spatial mapping for %q is not a partition: cell %q appears twice", dir, e.Cell)
		}
		if region, ok := m.clusterRegion[e.Cluster]; ok && region != e.Region {
			return nil, fmt.Errorf("spatial mapping for %q assigns cluster %q to both %q and %q",
				dir, e.Cluster, region, e.Region)
		}

		if e.Weight <= 0 {
			// Mapping rows without a precomputed weight fall back to the
			// geometric cell area when the cell id carries coordinates.
			if area, aerr := spatial.CellAreaFromID(e.Cell); aerr == nil {
				e.Weight = area
			} else {
				e.Weight = 1
			}
		}

		entry := e
		m.byCell[entry.Cell] = &entry
		m.byCluster[entry.Cluster] = append(m.byCluster[entry.Cluster], &entry)
		m.clusterRegion[entry.Cluster] = entry.Region
		m.clusterWeight[entry.Cluster] += entry.Weight
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mapping rows: %w", err)
	}

	if len(m.byCell) == 0 {
		return nil, fmt.Errorf("no spatial mapping found for output directory %q", dir)
	}

	log.Printf("[SpatialMapping] Loaded mapping for %q: %d cells, %d clusters",
		dir, len(m.byCell), len(m.byCluster))
	return m, nil
}
