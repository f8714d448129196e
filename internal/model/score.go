// Package model defines the core domain models used throughout the application.
package model

import "time"

// ScoreStatus indicates the outcome of scoring a (post, trait) pair.
type ScoreStatus string

// Score status constants.
const (
	StatusScored ScoreStatus = "SCORED"
	StatusFailed ScoreStatus = "FAILED"
)

// TraitScore is the result of evaluating one post against one trait under
// a specific taxonomy version. A score is created once per
// (post, trait, taxonomy version) key and never mutated.
type TraitScore struct {
	ScoredAt        time.Time
	PostID          string
	Trait           string
	TaxonomyVersion string
	Model           string // Evaluator model that produced the score
	Status          ScoreStatus
	Score           int // 1 if the trait is displayed, 0 otherwise
}

// Positive reports whether the pair was scored and the trait was displayed.
func (s *TraitScore) Positive() bool {
	return s.Status == StatusScored && s.Score == 1
}

// Pair identifies one (post, trait) scoring unit within a taxonomy version.
type Pair struct {
	PostID string
	Trait  string
}

