package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/openlum/landreport-backend-go/internal/diag"
	"github.com/openlum/landreport-backend-go/internal/grid"
	"github.com/openlum/landreport-backend-go/internal/models"
	"github.com/openlum/landreport-backend-go/internal/report"
	"github.com/openlum/landreport-backend-go/internal/repository"
	"github.com/openlum/landreport-backend-go/internal/store"
)

// Store names of the four independently computed surplus components, each
// with fallback names across model versions.
var surplusComponentVars = [][]string{
	{"ov50_nr_surplus_cropland", "nr_surplus_cropland"},
	{"ov50_nr_surplus_pasture", "nr_surplus_pasture"},
	{"ov55_manure_confinement_losses", "nr_loss_confinement"},
	{"ov50_nr_surplus_natveg", "nr_surplus_nonagland"},
}

// NutrientService generates nutrient surplus reports at grid resolution
type NutrientService struct {
	reader    *store.Reader
	repo      *repository.ReportRepository
	outputDir string
}

// NewNutrientService creates a new nutrient report service
func NewNutrientService(reader *store.Reader, repo *repository.ReportRepository, outputDir string) *NutrientService {
	return &NutrientService{reader: reader, repo: repo, outputDir: outputDir}
}

// Generate sums the surplus components per grid cell, derives the per-area
// intensity against total land area, and persists both as unit-annotated
// report variables. Missing components degrade to warnings.
func (s *NutrientService) Generate(ctx context.Context, req models.NutrientReportRequest) (*models.ReportRun, diag.Diagnostics, error) {
	var diags diag.Diagnostics

	run := &models.ReportRun{
		ID:        uuid.NewString(),
		Scenario:  req.Scenario,
		Report:    models.ReportNitrogenSurplus,
		Level:     string(models.ResolutionGrid),
		Status:    models.RunStatusRunning,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateRun(run); err != nil {
		return nil, diags, err
	}

	parts := make([]*models.LandArray, 0, len(surplusComponentVars))
	for _, names := range surplusComponentVars {
		part, d, err := s.reader.ReadArray(ctx, names, store.Selector{
			Scenario:   req.Scenario,
			Resolution: models.ResolutionGrid,
		})
		diags.Extend(d)
		if err != nil {
			s.failRun(run, err)
			return run, diags, err
		}
		parts = append(parts, part)
	}

	total, err := report.SumSurplus(parts)
	if err != nil {
		s.failRun(run, err)
		return run, diags, err
	}

	landArea, d, err := grid.ReadLand(ctx, s.reader, req.Scenario)
	diags.Extend(d)
	if err != nil {
		s.failRun(run, err)
		return run, diags, err
	}

	intensity, err := report.SurplusIntensity(total, landArea)
	if err != nil {
		s.failRun(run, err)
		return run, diags, err
	}

	values := report.NutrientValues(total, intensity)
	if err := s.repo.InsertValues(run.ID, values); err != nil {
		s.failRun(run, err)
		return run, diags, err
	}

	exportPath := ""
	if req.Export {
		exportPath, err = report.WriteCSV(s.outputDir, req.Scenario, models.ReportNitrogenSurplus, values)
		if err != nil {
			s.failRun(run, err)
			return run, diags, err
		}
	}

	s.completeRun(run, exportPath, len(values))
	log.Printf("[NutrientService] Scenario %q: %d surplus values", req.Scenario, len(values))
	return run, diags, nil
}

func (s *NutrientService) failRun(run *models.ReportRun, err error) {
	run.Status = models.RunStatusFailed
	run.Message = err.Error()
	if uerr := s.repo.CompleteRun(run.ID, run.Status, run.Message, ""); uerr != nil {
		log.Printf("[NutrientService] Failed to record run failure: %v", uerr)
	}
}

func (s *NutrientService) completeRun(run *models.ReportRun, exportPath string, count int) {
	run.Status = models.RunStatusCompleted
	run.ExportPath = exportPath
	if err := s.repo.CompleteRun(run.ID, run.Status, run.Message, exportPath); err != nil {
		log.Printf("[NutrientService] Failed to record run completion: %v", err)
	}
}
