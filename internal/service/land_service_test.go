package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlum/landreport-backend-go/internal/database"
	"github.com/openlum/landreport-backend-go/internal/diag"
	"github.com/openlum/landreport-backend-go/internal/expand"
	"github.com/openlum/landreport-backend-go/internal/grid"
	"github.com/openlum/landreport-backend-go/internal/landtype"
	"github.com/openlum/landreport-backend-go/internal/mapping"
	"github.com/openlum/landreport-backend-go/internal/models"
	"github.com/openlum/landreport-backend-go/internal/repository"
	"github.com/openlum/landreport-backend-go/internal/store"
)

func newLandService(t *testing.T) (*LandService, *sql.DB, string) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	outputDir := filepath.Join(t.TempDir(), "reports")
	reader := store.NewReader(db)
	svc := NewLandService(
		reader,
		mapping.NewProvider(db),
		expand.New(reader, landtype.Default()),
		grid.NaturalVegSplitter{},
		repository.NewReportRepository(db),
		outputDir,
	)
	return svc, db, outputDir
}

func seedOutput(t *testing.T, db *sql.DB, scenario, variable, cell, category, sub string, year int, value float64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO model_output (scenario, variable, cell, category, subcategory, year, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		scenario, variable, cell, category, sub, year, value)
	require.NoError(t, err)
}

func seedMapping(t *testing.T, db *sql.DB, dir, cell, cluster, region, country string, weight float64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO spatial_mapping (output_dir, cell, cluster, region, country, weight)
		VALUES (?, ?, ?, ?, ?, ?)`,
		dir, cell, cluster, region, country, weight)
	require.NoError(t, err)
}

// seedTwoRegions installs the two-region fixture used across the tests:
// crop 10/20, past 5/5, forestry 3/7 on clusters R1 and R2, with R1 in
// countryA and R2 in countryB.
func seedTwoRegions(t *testing.T, db *sql.DB) {
	t.Helper()

	areas := map[string]map[string]float64{
		"R1": {"crop": 10, "past": 5, "forestry": 3},
		"R2": {"crop": 20, "past": 5, "forestry": 7},
	}
	for cluster, byType := range areas {
		for category, v := range byType {
			seedOutput(t, db, "ssp2", "ov_land", cluster, category, "total", 2020, v)
		}
	}
	seedMapping(t, db, DefaultMappingDir, "c1", "R1", "R1", "A", 1)
	seedMapping(t, db, DefaultMappingDir, "c2", "R2", "R2", "B", 1)
}

func valuesByVariable(values []models.ReportValue) map[string][]models.ReportValue {
	byVar := make(map[string][]models.ReportValue)
	for _, v := range values {
		byVar[v.Variable] = append(byVar[v.Variable], v)
	}
	return byVar
}

func TestGenerateGlobalReport(t *testing.T) {
	svc, db, _ := newLandService(t)
	seedTwoRegions(t, db)

	run, diags, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario: "ssp2",
		Level:    "glo",
	})
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, models.RunStatusCompleted, run.Status)

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)
	require.Len(t, values, 3)

	var total float64
	for _, v := range values {
		assert.Equal(t, models.GlobalUnit, v.Cell)
		assert.Equal(t, "million ha", v.Unit)
		total += v.Value
	}
	assert.InDelta(t, 50.0, total, 1e-12)
}

func TestGenerateCountryReport(t *testing.T) {
	svc, db, _ := newLandService(t)
	seedTwoRegions(t, db)

	// Country reports aggregate the gridded snapshot, not the cluster array.
	areas := map[string]map[string]float64{
		"c1": {"crop": 10, "past": 5, "forestry": 3},
		"c2": {"crop": 20, "past": 5, "forestry": 7},
	}
	for cell, byType := range areas {
		for category, v := range byType {
			seedOutput(t, db, "ssp2", "gridland", cell, category, "total", 2020, v)
		}
	}

	run, _, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario: "ssp2",
		Level:    "iso",
		Sum:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)
	require.Len(t, values, 2)

	// Collapsed totals report under the bare land cover variable.
	byCell := make(map[string]float64)
	for _, v := range values {
		assert.Equal(t, "Resources|Land Cover", v.Variable)
		byCell[v.Cell] = v.Value
	}
	assert.InDelta(t, 18.0, byCell["A"], 1e-12)
	assert.InDelta(t, 32.0, byCell["B"], 1e-12)
}

func TestGenerateDefaultsToRegionGlobal(t *testing.T) {
	svc, db, _ := newLandService(t)
	seedTwoRegions(t, db)

	run, _, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario: "ssp2",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.ResolutionRegionGlobal), run.Level)

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)

	cells := make(map[string]bool)
	for _, v := range values {
		cells[v.Cell] = true
	}
	assert.Equal(t, map[string]bool{"R1": true, "R2": true, models.GlobalUnit: true}, cells)
}

func TestGenerateTypeFilter(t *testing.T) {
	svc, db, _ := newLandService(t)
	seedTwoRegions(t, db)

	run, _, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario: "ssp2",
		Level:    "glo",
		Types:    []string{"crop"},
	})
	require.NoError(t, err)

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "Resources|Land Cover|+|Cropland", values[0].Variable)
	assert.InDelta(t, 30.0, values[0].Value, 1e-12)
}

func TestGenerateWithSubcategories(t *testing.T) {
	svc, db, _ := newLandService(t)
	seedTwoRegions(t, db)

	for cluster, parts := range map[string][3]float64{
		"R1": {1, 1, 1},
		"R2": {4, 2, 1},
	} {
		seedOutput(t, db, "ssp2", "p32_land", cluster, "forestry", "aff", 2020, parts[0])
		seedOutput(t, db, "ssp2", "p32_land", cluster, "forestry", "ndc", 2020, parts[1])
		seedOutput(t, db, "ssp2", "p32_land", cluster, "forestry", "plant", 2020, parts[2])
	}

	run, diags, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario:      "ssp2",
		Level:         "glo",
		Types:         []string{"forestry"},
		Subcategories: []string{"forestry"},
	})
	require.NoError(t, err)
	assert.Empty(t, diags)

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)

	byVar := valuesByVariable(values)
	require.Len(t, byVar, 3)
	assert.InDelta(t, 5.0, byVar["Resources|Land Cover|+|Managed Forest|aff"][0].Value, 1e-12)
	assert.InDelta(t, 3.0, byVar["Resources|Land Cover|+|Managed Forest|ndc"][0].Value, 1e-12)
	assert.InDelta(t, 2.0, byVar["Resources|Land Cover|+|Managed Forest|plant"][0].Value, 1e-12)
}

func TestGenerateMissingScenarioCompletesEmpty(t *testing.T) {
	svc, db, _ := newLandService(t)
	seedTwoRegions(t, db)

	run, diags, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario: "nonexistent",
		Level:    "glo",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.True(t, diags.Has(diag.KindNotFound))

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestGenerateFailsOnInvalidLevel(t *testing.T) {
	svc, _, _ := newLandService(t)

	_, _, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario: "ssp2",
		Level:    "continent",
	})
	assert.Error(t, err)
}

func TestGenerateFailsOnIncompleteMapping(t *testing.T) {
	svc, db, _ := newLandService(t)
	seedTwoRegions(t, db)

	// A mapping cluster with no model output means silently dropped area.
	seedMapping(t, db, DefaultMappingDir, "c3", "R3", "R3", "C", 1)

	run, _, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario: "ssp2",
		Level:    "reg",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, mapping.ErrIncomplete)
	assert.Equal(t, models.RunStatusFailed, run.Status)

	stored, err := repository.NewReportRepository(db).GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.RunStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.Message)
}

func TestGenerateGridReport(t *testing.T) {
	svc, db, _ := newLandService(t)

	for _, year := range []int{1995, 2020} {
		seedOutput(t, db, "ssp2", "gridland", "-54.25_-34.75", "crop", "total", year, 0.5)
		seedOutput(t, db, "ssp2", "gridland", "-54.25_-34.75", "other", "total", year, 0.3)
	}

	run, _, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario: "ssp2",
		Level:    "grid",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)
	require.Len(t, values, 2)
	for _, v := range values {
		assert.Equal(t, "-54.25_-34.75", v.Cell)
		assert.Equal(t, 2020, v.Year)
	}
}

func TestGenerateGridReportSplitsOtherLand(t *testing.T) {
	svc, db, _ := newLandService(t)

	seedOutput(t, db, "ssp2", "gridland", "c1", "other", "total", 2020, 0.5)
	seedOutput(t, db, "ssp2", "land_initial", "c1", "primother", "total", 1995, 0.2)

	run, _, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario: "ssp2",
		Level:    "grid",
		Types:    []string{"primother", "secdother"},
	})
	require.NoError(t, err)

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)

	byVar := valuesByVariable(values)
	require.Len(t, byVar, 2)
	assert.InDelta(t, 0.2, byVar["Resources|Land Cover|+|Other Land|Primary"][0].Value, 1e-12)
	assert.InDelta(t, 0.3, byVar["Resources|Land Cover|+|Other Land|Secondary"][0].Value, 1e-12)
}

func TestGenerateGridSubcategoriesWarn(t *testing.T) {
	svc, db, _ := newLandService(t)

	seedOutput(t, db, "ssp2", "gridland", "c1", "crop", "total", 2020, 0.5)

	_, diags, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario:      "ssp2",
		Level:         "grid",
		Subcategories: []string{"forestry"},
	})
	require.NoError(t, err)
	assert.True(t, diags.Has(diag.KindUnsupported))
}

func TestGenerateExportsCSV(t *testing.T) {
	svc, db, outputDir := newLandService(t)
	seedTwoRegions(t, db)

	run, _, err := svc.Generate(context.Background(), models.LandReportRequest{
		Scenario: "ssp2",
		Level:    "glo",
		Export:   true,
	})
	require.NoError(t, err)

	want := filepath.Join(outputDir, "ssp2-land.csv")
	assert.Equal(t, want, run.ExportPath)
	_, err = os.Stat(want)
	assert.NoError(t, err)

	stored, err := repository.NewReportRepository(db).GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, want, stored.ExportPath)
}
