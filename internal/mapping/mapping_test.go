package mapping

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlum/landreport-backend-go/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func insertMapping(t *testing.T, db *sql.DB, dir, cell, cluster, region, country string, weight float64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO spatial_mapping (output_dir, cell, cluster, region, country, weight)
		VALUES (?, ?, ?, ?, ?, ?)`,
		dir, cell, cluster, region, country, weight)
	require.NoError(t, err)
}

func TestLoadBuildsIndexes(t *testing.T) {
	db := newTestDB(t)
	insertMapping(t, db, "run1", "c1", "R1", "LAM", "BRA", 2)
	insertMapping(t, db, "run1", "c2", "R1", "LAM", "ARG", 1)
	insertMapping(t, db, "run1", "c3", "R2", "EUR", "DEU", 1)

	p := NewProvider(db)
	m, err := p.Load(context.Background(), "run1")
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"R1", "R2"}, m.Clusters())
	assert.Equal(t, []string{"c1", "c2", "c3"}, m.Cells())

	e, ok := m.Entry("c1")
	require.True(t, ok)
	assert.Equal(t, "BRA", e.Country)

	region, ok := m.ClusterRegion("R1")
	require.True(t, ok)
	assert.Equal(t, "LAM", region)

	assert.InDelta(t, 3.0, m.ClusterWeight("R1"), 1e-12)
	assert.Len(t, m.CellsOf("R1"), 2)
}

func TestLoadCachesPerDirectory(t *testing.T) {
	db := newTestDB(t)
	insertMapping(t, db, "run1", "c1", "R1", "LAM", "BRA", 1)

	p := NewProvider(db)
	first, err := p.Load(context.Background(), "run1")
	require.NoError(t, err)

	// Mutating the table must not affect the cached mapping.
	insertMapping(t, db, "run1", "c2", "R2", "EUR", "DEU", 1)

	second, err := p.Load(context.Background(), "run1")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, second.Len())
}

func TestLoadEmptyDirectoryFails(t *testing.T) {
	db := newTestDB(t)

	p := NewProvider(db)
	_, err := p.Load(context.Background(), "missing")
	assert.Error(t, err)
}

func TestLoadRejectsConflictingClusterRegion(t *testing.T) {
	db := newTestDB(t)
	insertMapping(t, db, "run1", "c1", "R1", "LAM", "BRA", 1)
	insertMapping(t, db, "run1", "c2", "R1", "EUR", "DEU", 1)

	p := NewProvider(db)
	_, err := p.Load(context.Background(), "run1")
	assert.Error(t, err)
}

func TestLoadFillsMissingWeightsFromGeometry(t *testing.T) {
	db := newTestDB(t)
	// Coordinate-bearing cell ids with no precomputed weight: the
	// equatorial cell must end up heavier than the polar one.
	insertMapping(t, db, "run1", "0.25_0.25", "R1", "LAM", "BRA", 0)
	insertMapping(t, db, "run1", "0.25_80.25", "R1", "LAM", "BRA", 0)

	p := NewProvider(db)
	m, err := p.Load(context.Background(), "run1")
	require.NoError(t, err)

	equator, _ := m.Entry("0.25_0.25")
	polar, _ := m.Entry("0.25_80.25")
	assert.Greater(t, equator.Weight, polar.Weight)
	assert.Greater(t, polar.Weight, 0.0)
}

func TestLoadDefaultsOpaqueIDsToUnitWeight(t *testing.T) {
	db := newTestDB(t)
	insertMapping(t, db, "run1", "c1", "R1", "LAM", "BRA", 0)

	p := NewProvider(db)
	m, err := p.Load(context.Background(), "run1")
	require.NoError(t, err)

	e, _ := m.Entry("c1")
	assert.Equal(t, 1.0, e.Weight)
}
