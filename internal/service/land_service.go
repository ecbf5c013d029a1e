package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/openlum/landreport-backend-go/internal/diag"
	"github.com/openlum/landreport-backend-go/internal/expand"
	"github.com/openlum/landreport-backend-go/internal/grid"
	"github.com/openlum/landreport-backend-go/internal/mapping"
	"github.com/openlum/landreport-backend-go/internal/models"
	"github.com/openlum/landreport-backend-go/internal/remap"
	"github.com/openlum/landreport-backend-go/internal/report"
	"github.com/openlum/landreport-backend-go/internal/repository"
	"github.com/openlum/landreport-backend-go/internal/store"
)

// landVars are the store names of the cluster-level land area array
var landVars = []string{"ov_land", "land"}

// DefaultMappingDir is the mapping key used when a request names none
const DefaultMappingDir = "default"

// LandService generates land cover reports
type LandService struct {
	reader    *store.Reader
	mappings  *mapping.Provider
	expander  *expand.Expander
	splitter  grid.Disaggregator
	repo      *repository.ReportRepository
	outputDir string
}

// NewLandService creates a new land report service
func NewLandService(reader *store.Reader, mappings *mapping.Provider, expander *expand.Expander, splitter grid.Disaggregator, repo *repository.ReportRepository, outputDir string) *LandService {
	return &LandService{
		reader:    reader,
		mappings:  mappings,
		expander:  expander,
		splitter:  splitter,
		repo:      repo,
		outputDir: outputDir,
	}
}

// Generate runs the land report pipeline for one scenario: read, expand,
// remap, filter, assemble, persist. Warnings accumulate in the returned
// diagnostics; only prerequisite failures (mapping errors, storage errors)
// abort the run.
func (s *LandService) Generate(ctx context.Context, req models.LandReportRequest) (*models.ReportRun, diag.Diagnostics, error) {
	var diags diag.Diagnostics

	level := req.Level
	if level == "" {
		level = string(models.ResolutionRegionGlobal)
	}
	target, err := models.ParseResolution(level)
	if err != nil {
		return nil, diags, err
	}

	run := &models.ReportRun{
		ID:        uuid.NewString(),
		Scenario:  req.Scenario,
		Report:    models.ReportLand,
		Level:     level,
		Status:    models.RunStatusRunning,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateRun(run); err != nil {
		return nil, diags, err
	}

	arr, err := s.assemble(ctx, req, target, &diags)
	if err != nil {
		s.failRun(run, err)
		return run, diags, err
	}

	values := report.LandCover(arr)
	if err := s.repo.InsertValues(run.ID, values); err != nil {
		s.failRun(run, err)
		return run, diags, err
	}

	exportPath := ""
	if req.Export {
		exportPath, err = report.WriteCSV(s.outputDir, req.Scenario, models.ReportLand, values)
		if err != nil {
			s.failRun(run, err)
			return run, diags, err
		}
	}

	s.completeRun(run, exportPath, len(values))
	log.Printf("[LandService] Scenario %q: %d values at level %s, total area %.3f million ha",
		req.Scenario, len(values), level, report.TotalArea(arr))
	return run, diags, nil
}

// assemble produces the land array at the requested resolution
func (s *LandService) assemble(ctx context.Context, req models.LandReportRequest, target models.Resolution, diags *diag.Diagnostics) (*models.LandArray, error) {
	dir := req.Dir
	if dir == "" {
		dir = DefaultMappingDir
	}

	var arr *models.LandArray
	var err error
	switch target {
	case models.ResolutionGrid, models.ResolutionCountry:
		arr, err = s.assembleGrid(ctx, req, target, dir, diags)
	default:
		arr, err = s.assembleCluster(ctx, req, target, dir, diags)
	}
	if err != nil {
		return nil, err
	}

	if len(req.Types) > 0 {
		arr = arr.FilterLand(req.Types)
	}
	if req.Sum {
		arr = arr.SumTypes(models.LandType{Land: "total", Sub: models.SubTotal})
	}
	return arr, nil
}

// assembleCluster follows the native path: cluster totals, subcategory
// expansion, then remapping to the requested resolution.
func (s *LandService) assembleCluster(ctx context.Context, req models.LandReportRequest, target models.Resolution, dir string, diags *diag.Diagnostics) (*models.LandArray, error) {
	totals, d, err := s.reader.ReadArray(ctx, landVars, store.Selector{
		Scenario:   req.Scenario,
		Resolution: models.ResolutionCluster,
	})
	diags.Extend(d)
	if err != nil {
		return nil, err
	}
	if totals.IsEmpty() {
		return totals, nil
	}

	expanded, d, err := s.expander.Expand(ctx, totals, req.Scenario, req.Subcategories)
	diags.Extend(d)
	if err != nil {
		return nil, err
	}

	if target == models.ResolutionCluster {
		return expanded, nil
	}

	m, err := s.mappings.Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	return remap.Remap(expanded, m, target)
}

// assembleGrid follows the grid path: the pre-rasterized snapshot read
// directly, optionally split into primary/secondary other land, optionally
// aggregated to country resolution. Subcategory expansion is not supported
// at grid resolution; all grid data carries the synthetic "total" tag.
func (s *LandService) assembleGrid(ctx context.Context, req models.LandReportRequest, target models.Resolution, dir string, diags *diag.Diagnostics) (*models.LandArray, error) {
	if len(req.Subcategories) > 0 {
		diags.Warnf(diag.KindUnsupported, "LandService",
			"subcategories are not supported at grid resolution, returning totals")
	}

	arr, d, err := grid.ReadLand(ctx, s.reader, req.Scenario)
	diags.Extend(d)
	if err != nil {
		return nil, err
	}
	if arr.IsEmpty() {
		return arr, nil
	}

	if wantsOtherSplit(req.Types) {
		split, d, err := grid.SplitOtherLand(ctx, s.reader, s.splitter, req.Scenario, arr)
		diags.Extend(d)
		if err != nil {
			return nil, err
		}
		if split != nil {
			arr, err = arr.ConcatTypes(split)
			if err != nil {
				return nil, fmt.Errorf("failed to merge other land split: %w", err)
			}
		}
	}

	if target == models.ResolutionGrid {
		return arr, nil
	}

	m, err := s.mappings.Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	return remap.Remap(arr, m, target)
}

// wantsOtherSplit reports whether the request asks for primary/secondary
// other natural land.
func wantsOtherSplit(types []string) bool {
	for _, t := range types {
		if t == "primother" || t == "secdother" {
			return true
		}
	}
	return false
}

func (s *LandService) failRun(run *models.ReportRun, err error) {
	run.Status = models.RunStatusFailed
	run.Message = err.Error()
	if uerr := s.repo.CompleteRun(run.ID, run.Status, run.Message, ""); uerr != nil {
		log.Printf("[LandService] Failed to record run failure: %v", uerr)
	}
}

func (s *LandService) completeRun(run *models.ReportRun, exportPath string, count int) {
	run.Status = models.RunStatusCompleted
	run.ExportPath = exportPath
	run.Message = fmt.Sprintf("%d values", count)
	if err := s.repo.CompleteRun(run.ID, run.Status, run.Message, exportPath); err != nil {
		log.Printf("[LandService] Failed to record run completion: %v", err)
	}
}
