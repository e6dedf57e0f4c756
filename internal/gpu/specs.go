// Package gpu provides the static GPU catalog and hourly pricing lookups.
package gpu

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SecureMultiplier is the price multiplier for non-interruptible (secure
// cloud) billing relative to the interruptible community rate.
const SecureMultiplier = 2.0

// costEpsilon is the tolerance used when inferring a GPU from a billed
// hourly cost reported by the provider.
const costEpsilon = 0.005

// Spec describes a single GPU type offered by the provider.
type Spec struct {
	ID          string  `yaml:"id"`
	DisplayName string  `yaml:"display_name"`
	VRAMGB      int     `yaml:"vram_gb"`
	Tier        string  `yaml:"tier"`
	CostPerHour float64 `yaml:"cost_per_hour"`
}

// Catalog is a read-only collection of GPU specs keyed by ID.
// It is never mutated after construction and is safe for concurrent use.
type Catalog struct {
	specs map[string]Spec
}

// NewCatalog builds a catalog from the given specs.
func NewCatalog(specs []Spec) *Catalog {
	m := make(map[string]Spec, len(specs))
	for _, s := range specs {
		m[s.ID] = s
	}
	return &Catalog{specs: m}
}

// Default returns the built-in catalog with community-cloud rates.
// These are approximate and drift over time; use LoadFile to override
// them with a maintained catalog file.
func Default() *Catalog {
	return NewCatalog([]Spec{
		{ID: "NVIDIA GeForce RTX 3070", DisplayName: "RTX 3070", VRAMGB: 8, Tier: "consumer", CostPerHour: 0.13},
		{ID: "NVIDIA GeForce RTX 3090", DisplayName: "RTX 3090", VRAMGB: 24, Tier: "consumer", CostPerHour: 0.22},
		{ID: "NVIDIA GeForce RTX 4090", DisplayName: "RTX 4090", VRAMGB: 24, Tier: "consumer", CostPerHour: 0.34},
		{ID: "NVIDIA RTX A5000", DisplayName: "RTX A5000", VRAMGB: 24, Tier: "professional", CostPerHour: 0.26},
		{ID: "NVIDIA A40", DisplayName: "A40", VRAMGB: 48, Tier: "professional", CostPerHour: 0.39},
		{ID: "NVIDIA L40S", DisplayName: "L40S", VRAMGB: 48, Tier: "professional", CostPerHour: 0.79},
		{ID: "NVIDIA A100 80GB PCIe", DisplayName: "A100 80GB", VRAMGB: 80, Tier: "datacenter", CostPerHour: 1.19},
		{ID: "NVIDIA H100 PCIe", DisplayName: "H100 PCIe", VRAMGB: 80, Tier: "datacenter", CostPerHour: 1.99},
		{ID: "NVIDIA H100 SXM", DisplayName: "H100 SXM", VRAMGB: 80, Tier: "datacenter", CostPerHour: 2.69},
	})
}

// LoadFile reads a catalog from a YAML file of the form:
//
//	gpus:
//	  - id: "NVIDIA GeForce RTX 4090"
//	    display_name: "RTX 4090"
//	    vram_gb: 24
//	    tier: consumer
//	    cost_per_hour: 0.34
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read GPU catalog: %w", err)
	}

	var doc struct {
		GPUs []Spec `yaml:"gpus"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse GPU catalog: %w", err)
	}
	if len(doc.GPUs) == 0 {
		return nil, fmt.Errorf("GPU catalog %s contains no entries", path)
	}

	return NewCatalog(doc.GPUs), nil
}

// All returns every spec sorted by ascending hourly cost.
func (c *Catalog) All() []Spec {
	out := make([]Spec, 0, len(c.specs))
	for _, s := range c.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CostPerHour != out[j].CostPerHour {
			return out[i].CostPerHour < out[j].CostPerHour
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ByID returns the spec for the given GPU ID.
func (c *Catalog) ByID(id string) (Spec, bool) {
	s, ok := c.specs[id]
	return s, ok
}

// ByTier returns all specs of the given tier, sorted by ascending cost.
func (c *Catalog) ByTier(tier string) []Spec {
	var out []Spec
	for _, s := range c.All() {
		if s.Tier == tier {
			out = append(out, s)
		}
	}
	return out
}

// ByDisplayName returns the spec matching a short display name, as some
// provider responses carry only the display name of the host's GPU.
func (c *Catalog) ByDisplayName(name string) (Spec, bool) {
	for _, s := range c.specs {
		if strings.EqualFold(s.DisplayName, name) {
			return s, true
		}
	}
	return Spec{}, false
}

// ByHourlyCost returns the spec whose community rate matches the given
// billed cost per hour within a small tolerance. Used to infer the GPU
// type of a pod when the provider omits it from its metadata.
func (c *Catalog) ByHourlyCost(costPerHour float64) (Spec, bool) {
	for _, s := range c.All() {
		if math.Abs(s.CostPerHour-costPerHour) < costEpsilon {
			return s, true
		}
	}
	return Spec{}, false
}

// Cost returns the hourly rate for a GPU under the given billing mode.
// Unknown GPU IDs are unpriced and return 0.
func (c *Catalog) Cost(id string, interruptible bool) float64 {
	s, ok := c.specs[id]
	if !ok {
		return 0
	}
	if interruptible {
		return s.CostPerHour
	}
	return s.CostPerHour * SecureMultiplier
}

// Format returns a one-line human-readable description of a GPU.
func (c *Catalog) Format(id string) string {
	s, ok := c.specs[id]
	if !ok {
		return fmt.Sprintf("Unknown GPU: %s", id)
	}
	return fmt.Sprintf("%s (%dGB VRAM, $%.2f/hr)", s.DisplayName, s.VRAMGB, s.CostPerHour)
}

// Len returns the number of specs in the catalog.
func (c *Catalog) Len() int {
	return len(c.specs)
}
