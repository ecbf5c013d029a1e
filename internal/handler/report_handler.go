package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlum/landreport-backend-go/internal/models"
	"github.com/openlum/landreport-backend-go/internal/service"
	"github.com/openlum/landreport-backend-go/pkg/response"
)

// ReportHandler handles HTTP requests for report generation and retrieval
type ReportHandler struct {
	land     *service.LandService
	nutrient *service.NutrientService
	reports  *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(land *service.LandService, nutrient *service.NutrientService, reports *service.ReportService) *ReportHandler {
	return &ReportHandler{land: land, nutrient: nutrient, reports: reports}
}

// GenerateLand handles POST /api/v1/reports/land
func (h *ReportHandler) GenerateLand(c *gin.Context) {
	var req models.LandReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	run, diags, err := h.land.Generate(c.Request.Context(), req)
	if err != nil {
		response.InternalError(c, "Failed to generate land report: "+err.Error())
		return
	}

	response.Success(c, gin.H{
		"run":      run,
		"warnings": diags,
	})
}

// GenerateNitrogenSurplus handles POST /api/v1/reports/nitrogen-surplus
func (h *ReportHandler) GenerateNitrogenSurplus(c *gin.Context) {
	var req models.NutrientReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	run, diags, err := h.nutrient.Generate(c.Request.Context(), req)
	if err != nil {
		response.InternalError(c, "Failed to generate nutrient report: "+err.Error())
		return
	}

	response.Success(c, gin.H{
		"run":      run,
		"warnings": diags,
	})
}

// ListReports handles GET /api/v1/reports
func (h *ReportHandler) ListReports(c *gin.Context) {
	var filter models.RunFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	runs, err := h.reports.ListRuns(filter)
	if err != nil {
		response.InternalError(c, "Failed to list reports: "+err.Error())
		return
	}

	response.Success(c, gin.H{
		"data":  runs,
		"count": len(runs),
	})
}

// GetReport handles GET /api/v1/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	run, err := h.reports.GetRun(c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to get report: "+err.Error())
		return
	}
	if run == nil {
		response.NotFound(c, "Report not found")
		return
	}

	response.Success(c, run)
}

// GetReportValues handles GET /api/v1/reports/:id/values
func (h *ReportHandler) GetReportValues(c *gin.Context) {
	run, err := h.reports.GetRun(c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to get report: "+err.Error())
		return
	}
	if run == nil {
		response.NotFound(c, "Report not found")
		return
	}

	values, err := h.reports.GetValues(run.ID)
	if err != nil {
		response.InternalError(c, "Failed to get report values: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run":    run,
		"values": values,
		"count":  len(values),
	})
}
