package models

import (
	"fmt"
	"sort"
)

// SubTotal is the synthetic subcategory carried by unexpanded categories
const SubTotal = "total"

// SubSplit is the subcategory tag used for grid-level category splits
const SubSplit = "sub"

// LandType is one entry on the two-level category axis: a primary land type
// and a subcategory within it.
type LandType struct {
	Land string `json:"land"`
	Sub  string `json:"sub"`
}

func (t LandType) String() string {
	return t.Land + "." + t.Sub
}

// LandArray is a dense array of non-negative quantities (million hectares,
// or Mt for nutrient arrays) indexed by spatial unit, land type and year.
// Values are stored in a flat slice with the year index innermost.
//
// LandArray values are treated as immutable once built: every transform
// returns a new array and leaves its receiver untouched.
type LandArray struct {
	Resolution Resolution `json:"resolution"`
	Cells      []string   `json:"cells"`
	Types      []LandType `json:"types"`
	Years      []int      `json:"years"`
	Data       []float64  `json:"data"`
}

// NewLandArray allocates a zero-filled array with the given axes
func NewLandArray(res Resolution, cells []string, types []LandType, years []int) *LandArray {
	return &LandArray{
		Resolution: res,
		Cells:      cells,
		Types:      types,
		Years:      years,
		Data:       make([]float64, len(cells)*len(types)*len(years)),
	}
}

// IsEmpty reports whether the array carries no values
func (a *LandArray) IsEmpty() bool {
	return a == nil || len(a.Data) == 0
}

func (a *LandArray) index(c, t, y int) int {
	return (c*len(a.Types)+t)*len(a.Years) + y
}

// At returns the value at the given cell, type and year positions
func (a *LandArray) At(c, t, y int) float64 {
	return a.Data[a.index(c, t, y)]
}

// Set assigns the value at the given cell, type and year positions
func (a *LandArray) Set(c, t, y int, v float64) {
	a.Data[a.index(c, t, y)] = v
}

// CellIndex returns the position of a spatial unit, or -1
func (a *LandArray) CellIndex(id string) int {
	for i, c := range a.Cells {
		if c == id {
			return i
		}
	}
	return -1
}

// TypeIndex returns the position of a land type, or -1
func (a *LandArray) TypeIndex(t LandType) int {
	for i, x := range a.Types {
		if x == t {
			return i
		}
	}
	return -1
}

// YearIndex returns the position of a year, or -1
func (a *LandArray) YearIndex(year int) int {
	for i, y := range a.Years {
		if y == year {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy
func (a *LandArray) Clone() *LandArray {
	out := &LandArray{
		Resolution: a.Resolution,
		Cells:      append([]string(nil), a.Cells...),
		Types:      append([]LandType(nil), a.Types...),
		Years:      append([]int(nil), a.Years...),
		Data:       append([]float64(nil), a.Data...),
	}
	return out
}

// Validate checks the structural invariants: dimension sizes consistent and
// no negative quantities.
func (a *LandArray) Validate() error {
	want := len(a.Cells) * len(a.Types) * len(a.Years)
	if len(a.Data) != want {
		return fmt.Errorf("land array has %d values, dimensions require %d", len(a.Data), want)
	}
	for i, v := range a.Data {
		if v < 0 {
			return fmt.Errorf("land array value at flat index %d is negative (%g)", i, v)
		}
	}
	return nil
}

// FilterLand returns the subset of the type axis whose primary land type is
// in the given list, preserving input order of the array's types.
func (a *LandArray) FilterLand(lands []string) *LandArray {
	keep := make(map[string]bool, len(lands))
	for _, l := range lands {
		keep[l] = true
	}

	var idx []int
	var types []LandType
	for i, t := range a.Types {
		if keep[t.Land] {
			idx = append(idx, i)
			types = append(types, t)
		}
	}

	out := NewLandArray(a.Resolution, append([]string(nil), a.Cells...), types, append([]int(nil), a.Years...))
	for c := range a.Cells {
		for j, ti := range idx {
			for y := range a.Years {
				out.Set(c, j, y, a.At(c, ti, y))
			}
		}
	}
	return out
}

// SumTypes collapses the type axis into a single labelled total
func (a *LandArray) SumTypes(label LandType) *LandArray {
	out := NewLandArray(a.Resolution, append([]string(nil), a.Cells...), []LandType{label}, append([]int(nil), a.Years...))
	for c := range a.Cells {
		for t := range a.Types {
			for y := range a.Years {
				out.Set(c, 0, y, out.At(c, 0, y)+a.At(c, t, y))
			}
		}
	}
	return out
}

// SumCells collapses the space axis into a single unit with the given
// identifier and resolution.
func (a *LandArray) SumCells(id string, res Resolution) *LandArray {
	out := NewLandArray(res, []string{id}, append([]LandType(nil), a.Types...), append([]int(nil), a.Years...))
	for c := range a.Cells {
		for t := range a.Types {
			for y := range a.Years {
				out.Set(0, t, y, out.At(0, t, y)+a.At(c, t, y))
			}
		}
	}
	return out
}

// WithLand relabels the primary land type of every entry on the type axis.
// Used to realign a fetched subcategory array with its calling category.
func (a *LandArray) WithLand(land string) *LandArray {
	out := a.Clone()
	for i := range out.Types {
		out.Types[i].Land = land
	}
	return out
}

// DropYear removes one year from the time axis
func (a *LandArray) DropYear(year int) *LandArray {
	yi := a.YearIndex(year)
	if yi < 0 {
		return a.Clone()
	}

	years := make([]int, 0, len(a.Years)-1)
	for _, y := range a.Years {
		if y != year {
			years = append(years, y)
		}
	}

	out := NewLandArray(a.Resolution, append([]string(nil), a.Cells...), append([]LandType(nil), a.Types...), years)
	for c := range a.Cells {
		for t := range a.Types {
			oy := 0
			for y := range a.Years {
				if y == yi {
					continue
				}
				out.Set(c, t, oy, a.At(c, t, y))
				oy++
			}
		}
	}
	return out
}

// ConcatTypes joins two arrays along the type axis. The space and time axes
// must match exactly and the type sets must be disjoint.
func (a *LandArray) ConcatTypes(b *LandArray) (*LandArray, error) {
	if err := sameSpaceTime(a, b); err != nil {
		return nil, fmt.Errorf("concat types: %w", err)
	}
	for _, t := range b.Types {
		if a.TypeIndex(t) >= 0 {
			return nil, fmt.Errorf("concat types: duplicate land type %s", t)
		}
	}

	types := append(append([]LandType(nil), a.Types...), b.Types...)
	out := NewLandArray(a.Resolution, append([]string(nil), a.Cells...), types, append([]int(nil), a.Years...))
	for c := range a.Cells {
		for t := range a.Types {
			for y := range a.Years {
				out.Set(c, t, y, a.At(c, t, y))
			}
		}
		for t := range b.Types {
			for y := range b.Years {
				out.Set(c, len(a.Types)+t, y, b.At(c, t, y))
			}
		}
	}
	return out, nil
}

// ConcatCells joins two arrays along the space axis. The type and time axes
// must match exactly and the unit sets must be disjoint. The result keeps
// the receiver's resolution tag.
func (a *LandArray) ConcatCells(b *LandArray) (*LandArray, error) {
	if len(a.Types) != len(b.Types) || len(a.Years) != len(b.Years) {
		return nil, fmt.Errorf("concat cells: dimension mismatch")
	}
	for i, t := range a.Types {
		if b.Types[i] != t {
			return nil, fmt.Errorf("concat cells: type axis mismatch at %d", i)
		}
	}
	for i, y := range a.Years {
		if b.Years[i] != y {
			return nil, fmt.Errorf("concat cells: year axis mismatch at %d", i)
		}
	}
	for _, c := range b.Cells {
		if a.CellIndex(c) >= 0 {
			return nil, fmt.Errorf("concat cells: duplicate spatial unit %q", c)
		}
	}

	cells := append(append([]string(nil), a.Cells...), b.Cells...)
	out := NewLandArray(a.Resolution, cells, append([]LandType(nil), a.Types...), append([]int(nil), a.Years...))
	copy(out.Data, a.Data)
	copy(out.Data[len(a.Data):], b.Data)
	return out, nil
}

// SortedCells returns the unit identifiers in sorted order
func (a *LandArray) SortedCells() []string {
	cells := append([]string(nil), a.Cells...)
	sort.Strings(cells)
	return cells
}

func sameSpaceTime(a, b *LandArray) error {
	if len(a.Cells) != len(b.Cells) || len(a.Years) != len(b.Years) {
		return fmt.Errorf("dimension mismatch: %dx%d cells, %dx%d years",
			len(a.Cells), len(b.Cells), len(a.Years), len(b.Years))
	}
	for i, c := range a.Cells {
		if b.Cells[i] != c {
			return fmt.Errorf("space axis mismatch at %d: %q vs %q", i, c, b.Cells[i])
		}
	}
	for i, y := range a.Years {
		if b.Years[i] != y {
			return fmt.Errorf("year axis mismatch at %d: %d vs %d", i, y, b.Years[i])
		}
	}
	return nil
}
