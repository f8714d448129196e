package model

import "testing"

func TestTraitScorePositive(t *testing.T) {
	tests := []struct {
		name  string
		score TraitScore
		want  bool
	}{
		{name: "scored positive", score: TraitScore{Status: StatusScored, Score: 1}, want: true},
		{name: "scored negative", score: TraitScore{Status: StatusScored, Score: 0}, want: false},
		{name: "failed with stale score", score: TraitScore{Status: StatusFailed, Score: 1}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.score.Positive(); got != tt.want {
				t.Errorf("Positive() = %v, want %v", got, tt.want)
			}
		})
	}
}
