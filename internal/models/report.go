package models

import "time"

// Report run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Report names
const (
	ReportLand            = "land"
	ReportNitrogenSurplus = "nitrogen_surplus"
)

// ReportRun records one report generation invocation
type ReportRun struct {
	ID          string     `json:"id"`
	Scenario    string     `json:"scenario"`
	Report      string     `json:"report"`
	Level       string     `json:"level"`
	Status      string     `json:"status"`
	Message     string     `json:"message,omitempty"`
	ExportPath  string     `json:"export_path,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ReportValue is one unit-annotated report entry
type ReportValue struct {
	RunID    string  `json:"-"`
	Variable string  `json:"variable"`
	Unit     string  `json:"unit"`
	Cell     string  `json:"cell"`
	Year     int     `json:"year"`
	Value    float64 `json:"value"`
}

// LandReportRequest holds the parameters of a land report invocation
type LandReportRequest struct {
	Scenario      string   `json:"scenario" binding:"required"`
	Level         string   `json:"level"`
	Types         []string `json:"types"`
	Subcategories []string `json:"subcategories"`
	Sum           bool     `json:"sum"`
	Dir           string   `json:"dir"` // output directory key for the spatial mapping
	Export        bool     `json:"export"`
}

// NutrientReportRequest holds the parameters of a nutrient surplus report
type NutrientReportRequest struct {
	Scenario string `json:"scenario" binding:"required"`
	Dir      string `json:"dir"`
	Export   bool   `json:"export"`
}

// RunFilter filters report run listings
type RunFilter struct {
	Scenario string `form:"scenario"`
	Report   string `form:"report"`
	Status   string `form:"status"`
	Limit    int    `form:"limit"`
}
