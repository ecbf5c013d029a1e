package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlum/landreport-backend-go/internal/database"
	"github.com/openlum/landreport-backend-go/internal/diag"
	"github.com/openlum/landreport-backend-go/internal/models"
	"github.com/openlum/landreport-backend-go/internal/report"
	"github.com/openlum/landreport-backend-go/internal/repository"
	"github.com/openlum/landreport-backend-go/internal/store"
)

func newNutrientService(t *testing.T) (*NutrientService, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	svc := NewNutrientService(
		store.NewReader(db),
		repository.NewReportRepository(db),
		filepath.Join(t.TempDir(), "reports"),
	)
	return svc, db
}

func TestNutrientGenerate(t *testing.T) {
	svc, db := newNutrientService(t)

	components := map[string]float64{
		"ov50_nr_surplus_cropland":       0.002,
		"ov50_nr_surplus_pasture":        0.001,
		"ov55_manure_confinement_losses": 0.0005,
		"ov50_nr_surplus_natveg":         0.0005,
	}
	for variable, v := range components {
		seedOutput(t, db, "ssp2", variable, "c1", "nr", "total", 2020, v)
	}
	seedOutput(t, db, "ssp2", "gridland", "c1", "crop", "total", 2020, 0.03)
	seedOutput(t, db, "ssp2", "gridland", "c1", "past", "total", 2020, 0.01)

	run, diags, err := svc.Generate(context.Background(), models.NutrientReportRequest{
		Scenario: "ssp2",
	})
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, models.RunStatusCompleted, run.Status)

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)
	require.Len(t, values, 2)

	byVar := valuesByVariable(values)
	// 0.004 Mt over 0.04 Mha is 100 kg/ha.
	assert.InDelta(t, 0.004, byVar[report.VarNutrientSurplus][0].Value, 1e-12)
	assert.InDelta(t, 100.0, byVar[report.VarNutrientSurplusIntensity][0].Value, 1e-9)
	assert.Equal(t, report.UnitMtNPerYear, byVar[report.VarNutrientSurplus][0].Unit)
	assert.Equal(t, report.UnitKgNPerHa, byVar[report.VarNutrientSurplusIntensity][0].Unit)
}

func TestNutrientGenerateZeroAreaIntensity(t *testing.T) {
	svc, db := newNutrientService(t)

	seedOutput(t, db, "ssp2", "ov50_nr_surplus_cropland", "c1", "nr", "total", 2020, 0.5)
	seedOutput(t, db, "ssp2", "gridland", "c1", "crop", "total", 2020, 0)

	run, _, err := svc.Generate(context.Background(), models.NutrientReportRequest{
		Scenario: "ssp2",
	})
	require.NoError(t, err)

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)

	byVar := valuesByVariable(values)
	assert.Equal(t, 0.0, byVar[report.VarNutrientSurplusIntensity][0].Value)
}

func TestNutrientGenerateMissingComponentsWarn(t *testing.T) {
	svc, db := newNutrientService(t)

	// Only cropland surplus exists; the other three degrade to warnings.
	seedOutput(t, db, "ssp2", "ov50_nr_surplus_cropland", "c1", "nr", "total", 2020, 0.002)
	seedOutput(t, db, "ssp2", "gridland", "c1", "crop", "total", 2020, 0.02)

	run, diags, err := svc.Generate(context.Background(), models.NutrientReportRequest{
		Scenario: "ssp2",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 3, diags.Count(diag.KindNotFound))

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)

	byVar := valuesByVariable(values)
	assert.InDelta(t, 0.002, byVar[report.VarNutrientSurplus][0].Value, 1e-12)
	assert.InDelta(t, 100.0, byVar[report.VarNutrientSurplusIntensity][0].Value, 1e-9)
}

func TestNutrientGenerateFallbackNames(t *testing.T) {
	svc, db := newNutrientService(t)

	seedOutput(t, db, "ssp2", "nr_surplus_cropland", "c1", "nr", "total", 2020, 0.001)
	seedOutput(t, db, "ssp2", "gridland", "c1", "crop", "total", 2020, 0.01)

	run, _, err := svc.Generate(context.Background(), models.NutrientReportRequest{
		Scenario: "ssp2",
	})
	require.NoError(t, err)

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)

	byVar := valuesByVariable(values)
	assert.InDelta(t, 0.001, byVar[report.VarNutrientSurplus][0].Value, 1e-12)
}

func TestNutrientGenerateEmptyScenario(t *testing.T) {
	svc, db := newNutrientService(t)

	run, diags, err := svc.Generate(context.Background(), models.NutrientReportRequest{
		Scenario: "nonexistent",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.True(t, diags.Has(diag.KindNotFound))

	values, err := repository.NewReportRepository(db).GetValues(run.ID)
	require.NoError(t, err)
	assert.Empty(t, values)
}
