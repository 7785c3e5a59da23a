// Package catalog holds the bundled default mixtures.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saadjs/nutricu/internal/model"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type entry struct {
	ID            int64   `yaml:"id"`
	Name          string  `yaml:"name"`
	Calories      float64 `yaml:"calories_per_1000ml"`
	Protein       float64 `yaml:"protein_per_1000ml"`
	Diabetic      bool    `yaml:"diabetic"`
	SemiElemental bool    `yaml:"semi_elemental"`
}

// MaxDefaultID is the highest id reserved for bundled mixtures. User mixtures
// are numbered above it.
const MaxDefaultID int64 = 12

// Defaults returns the bundled mixtures in id order.
func Defaults() ([]model.Mixture, error) {
	return Parse(defaultsYAML)
}

// Parse decodes a catalog document.
func Parse(data []byte) ([]model.Mixture, error) {
	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode mixture catalog: %w", err)
	}
	out := make([]model.Mixture, 0, len(entries))
	seen := map[int64]bool{}
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		switch {
		case e.ID <= 0:
			return nil, fmt.Errorf("catalog entry %d: id must be > 0", i)
		case seen[e.ID]:
			return nil, fmt.Errorf("catalog entry %d: duplicate id %d", i, e.ID)
		case name == "":
			return nil, fmt.Errorf("catalog entry %d: name is required", i)
		case e.Calories <= 0 || e.Protein <= 0:
			return nil, fmt.Errorf("catalog entry %d: densities must be > 0", i)
		}
		seen[e.ID] = true
		out = append(out, model.Mixture{
			ID:                e.ID,
			Name:              name,
			CaloriesPer1000ml: e.Calories,
			ProteinPer1000ml:  e.Protein,
			IsDiabetic:        e.Diabetic,
			IsSemiElemental:   e.SemiElemental,
			IsDefault:         true,
		})
	}
	return out, nil
}
