package scoring

// Snapshot is everything the pipeline needs for one student, loaded by the caller
// from a consistent read of the persistence layer.
type Snapshot struct {
	Criteria     []Criterion
	Alternatives []Alternative
	Answers      []Answer
}

// Result carries every stage of one pipeline run.
type Result struct {
	Weights       Weights
	RawScores     RawScores
	Utilities     Utilities
	Contributions Contributions
	Scores        Scores
	Ranking       Ranking
}

// Compute runs weighting, utility transformation, aggregation and ranking over a
// snapshot. The only error it returns is ErrNonNumericValue from the answers.
func Compute(snapshot Snapshot, opts ...Option) (Result, error) {
	weights := NormalizeWeights(snapshot.Criteria, opts...)

	raw, err := ComputeRawScores(snapshot.Answers, snapshot.Criteria)
	if err != nil {
		return Result{}, err
	}

	utilities := utilitiesFromRaw(raw, snapshot.Criteria)
	scores := ComputeFinalScores(utilities, weights, snapshot.Criteria)

	return Result{
		Weights:       weights,
		RawScores:     raw,
		Utilities:     utilities,
		Contributions: WeightedContributions(utilities, weights, snapshot.Criteria),
		Scores:        scores,
		Ranking:       RankAlternatives(scores, snapshot.Alternatives),
	}, nil
}
