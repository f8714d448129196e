package model

import (
	"encoding/json"
	"time"
)

// TraitPrevalence is the fraction of scored posts displaying a trait.
type TraitPrevalence struct {
	Trait      string  `json:"trait"`
	Positive   int     `json:"positive"`
	Scored     int     `json:"scored"`
	Prevalence float64 `json:"prevalence"`
}

// TraitCorrelation is the Pearson correlation between two traits across
// the posts scored for both. Defined is false when either trait has zero
// variance; an undefined correlation is reported as such, never as an error.
type TraitCorrelation struct {
	TraitA      string  `json:"trait_a"`
	TraitB      string  `json:"trait_b"`
	Coefficient float64 `json:"coefficient"`
	SampleSize  int     `json:"sample_size"`
	Defined     bool    `json:"defined"`
}

// MarshalJSON renders an undefined coefficient as null so downstream
// consumers can't mistake it for a real zero correlation.
func (c TraitCorrelation) MarshalJSON() ([]byte, error) {
	var coefficient *float64
	if c.Defined {
		coefficient = &c.Coefficient
	}
	return json.Marshal(struct {
		TraitA      string   `json:"trait_a"`
		TraitB      string   `json:"trait_b"`
		Coefficient *float64 `json:"coefficient"`
		SampleSize  int      `json:"sample_size"`
		Defined     bool     `json:"defined"`
	}{
		TraitA:      c.TraitA,
		TraitB:      c.TraitB,
		Coefficient: coefficient,
		SampleSize:  c.SampleSize,
		Defined:     c.Defined,
	})
}

// AuthorRollup summarizes trait prevalence across one author's posts.
// Rollups are derived on demand from the score set, never stored as
// source of truth.
type AuthorRollup struct {
	Prevalence map[string]float64 `json:"prevalence"`
	AuthorID   string             `json:"author_id"`
	PostCount  int                `json:"post_count"`
}

// Report is the full aggregation over one snapshot and taxonomy version.
// It is a pure function of its inputs and consumed by downstream
// presentation tooling.
type Report struct {
	GeneratedAt     time.Time          `json:"generated_at"`
	TaxonomyName    string             `json:"taxonomy_name"`
	TaxonomyVersion string             `json:"taxonomy_version"`
	PostCount       int                `json:"post_count"`
	AuthorCount     int                `json:"author_count"`
	ScoredPairs     int                `json:"scored_pairs"`
	FailedPairs     int                `json:"failed_pairs"`
	Prevalence      []TraitPrevalence  `json:"prevalence"`
	Correlations    []TraitCorrelation `json:"correlations"`
	Authors         []AuthorRollup     `json:"authors"`
}

// RunStats shows the results of a scoring run.
type RunStats struct {
	StartedAt       time.Time     `json:"started_at"`
	RunID           string        `json:"run_id"`
	TaxonomyVersion string        `json:"taxonomy_version"`
	TotalPairs      int           `json:"total_pairs"`
	CacheHits       int           `json:"cache_hits"`
	Scored          int           `json:"scored"`
	Failed          int           `json:"failed"`
	RateLimitHits   int           `json:"rate_limit_hits"`
	Duration        time.Duration `json:"duration"`
}
