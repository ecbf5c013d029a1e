// Package landtype carries the fixed land type taxonomy: the closed set of
// primary categories, their optional subcategory breakdowns, the per-category
// reconciliation tolerances and the bioenergy crop set.
package landtype

import (
	_ "embed"
	"fmt"
	"log"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// Category describes one primary land type
type Category struct {
	Name          string   `yaml:"name"`
	Subcategories []string `yaml:"subcategories"`
	// Tolerance is the maximum absolute divergence allowed between the
	// reported category total and the sum of its subcategories before a
	// consistency warning fires.
	Tolerance float64 `yaml:"tolerance"`
	// Variables are the store variable names carrying the subcategory
	// breakdown, tried in order.
	Variables []string `yaml:"variables"`
	// Derived marks categories whose breakdown is computed from another
	// quantity instead of read from a dedicated variable (crop).
	Derived bool `yaml:"derived"`
}

// HasBreakdown reports whether a real subcategory breakdown exists
func (c *Category) HasBreakdown() bool {
	return len(c.Subcategories) > 0 && (c.Derived || len(c.Variables) > 0)
}

// Taxonomy is the full land type enumeration. It is not user-extensible;
// the embedded default is used everywhere unless a deployment overrides it.
type Taxonomy struct {
	Categories     []Category `yaml:"categories"`
	BioenergyCrops []string   `yaml:"bioenergy_crops"`

	byName map[string]*Category
}

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
)

// Default returns the embedded taxonomy
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		t, err := Parse(defaultTaxonomy)
		if err != nil {
			// The embedded file ships with the binary; failing to parse
			// it is a build defect, not a runtime condition.
			log.Fatalf("[Taxonomy] invalid embedded taxonomy: %v", err)
		}
		defaultTax = t
	})
	return defaultTax
}

// Parse reads a taxonomy from YAML
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy: %w", err)
	}
	if len(t.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy defines no categories")
	}

	t.byName = make(map[string]*Category, len(t.Categories))
	for i := range t.Categories {
		c := &t.Categories[i]
		if c.Name == "" {
			return nil, fmt.Errorf("taxonomy category %d has no name", i)
		}
		if _, dup := t.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate taxonomy category %q", c.Name)
		}
		t.byName[c.Name] = c
	}
	return &t, nil
}

// Category looks up a primary category by name
func (t *Taxonomy) Category(name string) (*Category, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// Primaries returns the primary category names in declaration order
func (t *Taxonomy) Primaries() []string {
	names := make([]string, len(t.Categories))
	for i, c := range t.Categories {
		names[i] = c.Name
	}
	return names
}

// IsBioenergy reports whether a crop product belongs to the bioenergy set
func (t *Taxonomy) IsBioenergy(product string) bool {
	for _, b := range t.BioenergyCrops {
		if b == product {
			return true
		}
	}
	return false
}
