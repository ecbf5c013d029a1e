package report

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/openlum/landreport-backend-go/internal/models"
)

// WriteCSV exports report values to <dir>/<scenario>-<reportName>.csv and
// returns the written path.
func WriteCSV(dir, scenario, reportName string, values []models.ReportValue) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.csv", scenario, reportName))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"scenario", "cell", "variable", "unit", "year", "value"}); err != nil {
		return "", fmt.Errorf("failed to write export header: %w", err)
	}

	for _, v := range values {
		record := []string{
			scenario,
			v.Cell,
			v.Variable,
			v.Unit,
			strconv.Itoa(v.Year),
			strconv.FormatFloat(v.Value, 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush export file: %w", err)
	}

	log.Printf("[ReportExport] Wrote %d values to %s", len(values), path)
	return path, nil
}
