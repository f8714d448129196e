// Package analysis computes aggregate statistics over the scored set:
// trait prevalence, pairwise trait correlations, and per-author rollups.
// Everything here is a pure function of its inputs.
package analysis

import (
	"math"
	"sort"

	"moltscope/internal/model"
)

// BuildReport aggregates the score set for one snapshot and taxonomy
// version. Scores for posts or traits outside the inputs are ignored, and
// failed pairs are excluded from every statistic. The result is
// deterministic: traits follow taxonomy order and authors are sorted.
func BuildReport(posts []model.Post, scores []model.TraitScore, tax *model.Taxonomy) *model.Report {
	report := &model.Report{
		TaxonomyName:    tax.Name,
		TaxonomyVersion: tax.Version,
		PostCount:       len(posts),
	}

	postSet := make(map[string]model.Post, len(posts))
	for _, post := range posts {
		postSet[post.ID] = post
	}

	traitSet := make(map[string]bool, len(tax.Traits))
	for _, trait := range tax.Traits {
		traitSet[trait.Name] = true
	}

	// Every retained score must reference a post and trait in the inputs
	byPair := make(map[model.Pair]int, len(scores))
	for _, score := range scores {
		if score.TaxonomyVersion != tax.Version {
			continue
		}
		if _, ok := postSet[score.PostID]; !ok {
			continue
		}
		if !traitSet[score.Trait] {
			continue
		}
		if score.Status != model.StatusScored {
			report.FailedPairs++
			continue
		}
		value := 0
		if score.Positive() {
			value = 1
		}
		byPair[model.Pair{PostID: score.PostID, Trait: score.Trait}] = value
		report.ScoredPairs++
	}

	report.Prevalence = prevalence(posts, byPair, tax)
	report.Correlations = correlations(posts, byPair, tax)
	report.Authors = authorRollups(posts, byPair, tax)
	report.AuthorCount = len(report.Authors)

	return report
}

func prevalence(posts []model.Post, byPair map[model.Pair]int, tax *model.Taxonomy) []model.TraitPrevalence {
	result := make([]model.TraitPrevalence, 0, len(tax.Traits))
	for _, trait := range tax.Traits {
		entry := model.TraitPrevalence{Trait: trait.Name}
		for _, post := range posts {
			score, ok := byPair[model.Pair{PostID: post.ID, Trait: trait.Name}]
			if !ok {
				continue
			}
			entry.Scored++
			if score == 1 {
				entry.Positive++
			}
		}
		if entry.Scored > 0 {
			entry.Prevalence = float64(entry.Positive) / float64(entry.Scored)
		}
		result = append(result, entry)
	}
	return result
}

func correlations(posts []model.Post, byPair map[model.Pair]int, tax *model.Taxonomy) []model.TraitCorrelation {
	var result []model.TraitCorrelation
	for i := 0; i < len(tax.Traits); i++ {
		for j := i + 1; j < len(tax.Traits); j++ {
			a, b := tax.Traits[i].Name, tax.Traits[j].Name

			var xs, ys []float64
			for _, post := range posts {
				x, okA := byPair[model.Pair{PostID: post.ID, Trait: a}]
				y, okB := byPair[model.Pair{PostID: post.ID, Trait: b}]
				if !okA || !okB {
					continue
				}
				xs = append(xs, float64(x))
				ys = append(ys, float64(y))
			}

			entry := model.TraitCorrelation{
				TraitA:     a,
				TraitB:     b,
				SampleSize: len(xs),
			}
			if r, ok := pearson(xs, ys); ok {
				entry.Coefficient = r
				entry.Defined = true
			}
			result = append(result, entry)
		}
	}
	return result
}

// pearson computes the Pearson correlation coefficient. It is undefined
// for fewer than two samples or when either series has zero variance;
// undefined is a legitimate outcome, not an error.
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	if len(xs) < 2 {
		return 0, false
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return 0, false
	}

	return cov / math.Sqrt(varX*varY), true
}

func authorRollups(posts []model.Post, byPair map[model.Pair]int, tax *model.Taxonomy) []model.AuthorRollup {
	type counts struct {
		positive map[string]int
		scored   map[string]int
		posts    int
	}

	byAuthor := make(map[string]*counts)
	for _, post := range posts {
		author := post.AuthorID
		c, ok := byAuthor[author]
		if !ok {
			c = &counts{
				positive: make(map[string]int),
				scored:   make(map[string]int),
			}
			byAuthor[author] = c
		}
		c.posts++

		for _, trait := range tax.Traits {
			score, ok := byPair[model.Pair{PostID: post.ID, Trait: trait.Name}]
			if !ok {
				continue
			}
			c.scored[trait.Name]++
			if score == 1 {
				c.positive[trait.Name]++
			}
		}
	}

	authors := make([]string, 0, len(byAuthor))
	for author := range byAuthor {
		authors = append(authors, author)
	}
	sort.Strings(authors)

	result := make([]model.AuthorRollup, 0, len(authors))
	for _, author := range authors {
		c := byAuthor[author]
		rollup := model.AuthorRollup{
			AuthorID:   author,
			PostCount:  c.posts,
			Prevalence: make(map[string]float64, len(c.scored)),
		}
		for trait, scored := range c.scored {
			rollup.Prevalence[trait] = float64(c.positive[trait]) / float64(scored)
		}
		result = append(result, rollup)
	}
	return result
}
