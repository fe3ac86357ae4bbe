package scoring

// Scores maps alternative ID → final score.
type Scores map[uint]float64

// Contributions maps alternative ID → criterion ID → utility × weight.
type Contributions map[uint]map[uint]float64

// ComputeFinalScores sums utility × normalized weight over every current
// criterion for each alternative that has utilities. A criterion without a
// utility entry contributes 0. Totals are rounded to 4 decimals.
func ComputeFinalScores(utilities Utilities, weights Weights, criteria []Criterion) Scores {
	scores := make(Scores, len(utilities))
	for alternativeID, row := range utilities {
		total := 0.0
		for _, criterion := range criteria {
			total += row[criterion.ID] * weights[criterion.ID]
		}
		scores[alternativeID] = Round(total, scorePrecision)
	}
	return scores
}

// WeightedContributions returns the per-criterion terms of the final score,
// each rounded to 4 decimals.
func WeightedContributions(utilities Utilities, weights Weights, criteria []Criterion) Contributions {
	contributions := make(Contributions, len(utilities))
	for alternativeID, row := range utilities {
		terms := make(map[uint]float64, len(criteria))
		for _, criterion := range criteria {
			terms[criterion.ID] = Round(row[criterion.ID]*weights[criterion.ID], scorePrecision)
		}
		contributions[alternativeID] = terms
	}
	return contributions
}
