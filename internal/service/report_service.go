package service

import (
	"github.com/openlum/landreport-backend-go/internal/models"
	"github.com/openlum/landreport-backend-go/internal/repository"
)

// ReportService handles read access to generated reports
type ReportService struct {
	repo *repository.ReportRepository
}

// NewReportService creates a new report service
func NewReportService(repo *repository.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

// ListRuns retrieves report runs with filtering
func (s *ReportService) ListRuns(filter models.RunFilter) ([]models.ReportRun, error) {
	return s.repo.ListRuns(filter)
}

// GetRun retrieves a single report run by id
func (s *ReportService) GetRun(id string) (*models.ReportRun, error) {
	return s.repo.GetRun(id)
}

// GetValues retrieves the values of a report run
func (s *ReportService) GetValues(runID string) ([]models.ReportValue, error) {
	return s.repo.GetValues(runID)
}
