package scoring

// Weights maps a criterion ID to its normalized weight.
type Weights map[uint]float64

// WeightRow is the per-criterion view shown next to the weight table.
type WeightRow struct {
	Criterion  Criterion
	Normalized float64
}

// TotalWeight sums the raw weights of all criteria.
func TotalWeight(criteria []Criterion) float64 {
	total := 0.0
	for _, criterion := range criteria {
		total += criterion.Weight
	}
	return total
}

// NormalizeWeights divides each raw weight by the total. A zero total yields a zero
// weight for every criterion.
func NormalizeWeights(criteria []Criterion, opts ...Option) Weights {
	cfg := buildOptions(opts)
	total := TotalWeight(criteria)

	weights := make(Weights, len(criteria))
	for _, criterion := range criteria {
		if total <= 0 {
			weights[criterion.ID] = 0
			continue
		}
		normalized := criterion.Weight / total
		if cfg.rounding == RoundEarly {
			normalized = Round(normalized, weightPrecision)
		}
		weights[criterion.ID] = normalized
	}

	return weights
}

// WeightRows returns criteria in input order paired with their normalized weight
// rounded for display.
func WeightRows(criteria []Criterion, opts ...Option) []WeightRow {
	weights := NormalizeWeights(criteria, opts...)
	rows := make([]WeightRow, 0, len(criteria))
	for _, criterion := range criteria {
		rows = append(rows, WeightRow{
			Criterion:  criterion,
			Normalized: Round(weights[criterion.ID], weightPrecision),
		})
	}
	return rows
}

// NormalizedTotal sums the display-rounded normalized weights. It is 1 for any
// configuration with a positive total, up to rounding.
func NormalizedTotal(criteria []Criterion, opts ...Option) float64 {
	total := 0.0
	for _, row := range WeightRows(criteria, opts...) {
		total += row.Normalized
	}
	return Round(total, weightPrecision)
}
