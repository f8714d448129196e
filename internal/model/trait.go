package model

// Trait represents a named behavioral category from a classification
// taxonomy. The description is the natural-language definition handed to
// the evaluator as part of the scoring prompt.
type Trait struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Taxonomy is a versioned set of traits. Scores are keyed by taxonomy
// version so that cached results never mix incompatible trait definitions.
type Taxonomy struct {
	Name    string  `yaml:"name"`
	Version string  `yaml:"version"`
	Traits  []Trait `yaml:"traits"`
}

// TraitNames returns the trait names in taxonomy order.
func (t *Taxonomy) TraitNames() []string {
	names := make([]string, len(t.Traits))
	for i, trait := range t.Traits {
		names[i] = trait.Name
	}
	return names
}

// Trait looks up a trait by name.
func (t *Taxonomy) Trait(name string) (Trait, bool) {
	for _, trait := range t.Traits {
		if trait.Name == name {
			return trait, true
		}
	}
	return Trait{}, false
}
