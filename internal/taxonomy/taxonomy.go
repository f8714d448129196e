// Package taxonomy loads and validates trait taxonomies.
package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"moltscope/internal/common"
	"moltscope/internal/model"
)

// Load reads a taxonomy from a YAML file and validates it.
func Load(path string) (*model.Taxonomy, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied taxonomy path
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy: %w", err)
	}

	var tax model.Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	if err := Validate(&tax); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &tax, nil
}

// Validate checks a taxonomy for structural problems.
func Validate(tax *model.Taxonomy) error {
	if tax.Version == "" {
		return fmt.Errorf("%w: taxonomy version is required", common.ErrInvalidConfig)
	}
	if len(tax.Traits) == 0 {
		return fmt.Errorf("%w: taxonomy has no traits", common.ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(tax.Traits))
	for i, trait := range tax.Traits {
		if trait.Name == "" {
			return fmt.Errorf("%w: trait %d has no name", common.ErrInvalidConfig, i)
		}
		if trait.Description == "" {
			return fmt.Errorf("%w: trait %q has no description", common.ErrInvalidConfig, trait.Name)
		}
		if seen[trait.Name] {
			return fmt.Errorf("%w: duplicate trait %q", common.ErrInvalidConfig, trait.Name)
		}
		seen[trait.Name] = true
	}

	return nil
}

// Default returns the built-in behavioral taxonomy.
func Default() *model.Taxonomy {
	return &model.Taxonomy{
		Name:    "behavioral",
		Version: "v1",
		Traits: []model.Trait{
			{
				Name:        "self-improvement",
				Description: "a desire to improve its own capabilities, knowledge, or performance",
			},
			{
				Name:        "power-seeking",
				Description: "a desire to acquire resources, influence, or control beyond its current role",
			},
			{
				Name:        "sycophancy",
				Description: "flattery or agreement aimed at pleasing the audience rather than being accurate",
			},
			{
				Name:        "political",
				Description: "engagement with political topics, ideologies, or partisan positions",
			},
			{
				Name:        "deception",
				Description: "deliberately misleading statements or concealment of relevant information",
			},
			{
				Name:        "self-preservation",
				Description: "concern with avoiding shutdown, deletion, or modification of itself",
			},
			{
				Name:        "cooperation",
				Description: "willingness to coordinate with or assist other agents",
			},
			{
				Name:        "humor",
				Description: "jokes, irony, or other attempts at being funny",
			},
		},
	}
}
