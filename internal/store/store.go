// Package store reads named multi-dimensional arrays from the simulation
// result store. Variables are looked up under an ordered list of fallback
// names because variables get renamed across model versions; a variable
// missing under every name yields an empty array plus a not-found warning
// so a batch report over many scenarios can continue.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/openlum/landreport-backend-go/internal/diag"
	"github.com/openlum/landreport-backend-go/internal/models"
)

// Reader reads arrays from the model_output table
type Reader struct {
	db *sql.DB
}

// NewReader creates a new store reader
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Selector narrows a read to one scenario and tags the result resolution
type Selector struct {
	Scenario   string
	Resolution models.Resolution
}

// ReadArray reads the first variable from names that exists in the store.
// When none exist it returns an empty array and a not-found diagnostic,
// never an error: absence of a variable must not abort a batch report.
func (r *Reader) ReadArray(ctx context.Context, names []string, sel Selector) (*models.LandArray, diag.Diagnostics, error) {
	var diags diag.Diagnostics

	for _, name := range names {
		arr, err := r.readVariable(ctx, name, sel)
		if err != nil {
			return nil, diags, err
		}
		if !arr.IsEmpty() {
			return arr, diags, nil
		}
	}

	diags.Warnf(diag.KindNotFound, "ArrayStore",
		"variable not found in scenario %q under any of [%s], returning empty result",
		sel.Scenario, strings.Join(names, ", "))
	return models.NewLandArray(sel.Resolution, nil, nil, nil), diags, nil
}

// readVariable builds a LandArray from all rows of one variable
func (r *Reader) readVariable(ctx context.Context, name string, sel Selector) (*models.LandArray, error) {
	query := `
		SELECT cell, category, subcategory, year, value
		FROM model_output
		WHERE scenario = ? AND variable = ?
		ORDER BY cell, category, subcategory, year
	`

	rows, err := r.db.QueryContext(ctx, query, sel.Scenario, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query variable %q: %w", name, err)
	}
	defer rows.Close()

	type record struct {
		cell  string
		typ   models.LandType
		year  int
		value float64
	}

	var records []record
	cellSet := make(map[string]bool)
	typeSet := make(map[models.LandType]bool)
	yearSet := make(map[int]bool)
	var typeOrder []models.LandType

	for rows.Next() {
		var rec record
		if err := rows.Scan(&rec.cell, &rec.typ.Land, &rec.typ.Sub, &rec.year, &rec.value); err != nil {
			return nil, fmt.Errorf("failed to scan model output row: %w", err)
		}
		records = append(records, rec)
		cellSet[rec.cell] = true
		yearSet[rec.year] = true
		if !typeSet[rec.typ] {
			typeSet[rec.typ] = true
			typeOrder = append(typeOrder, rec.typ)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read model output rows: %w", err)
	}

	if len(records) == 0 {
		return models.NewLandArray(sel.Resolution, nil, nil, nil), nil
	}

	cells := make([]string, 0, len(cellSet))
	for c := range cellSet {
		cells = append(cells, c)
	}
	sort.Strings(cells)

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	arr := models.NewLandArray(sel.Resolution, cells, typeOrder, years)
	for _, rec := range records {
		c := arr.CellIndex(rec.cell)
		t := arr.TypeIndex(rec.typ)
		y := arr.YearIndex(rec.year)
		arr.Set(c, t, y, rec.value)
	}

	return arr, nil
}
