package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeEndToEnd(t *testing.T) {
	snapshot := Snapshot{
		Criteria: []Criterion{benefitK1, costK2},
		Alternatives: []Alternative{
			{ID: 1, Code: "X", Name: "Informatika"},
			{ID: 2, Code: "Y", Name: "Kedokteran"},
		},
		Answers: []Answer{
			{AlternativeID: 1, CriterionID: 1, Value: 8},
			{AlternativeID: 1, CriterionID: 2, Value: 2},
			{AlternativeID: 2, CriterionID: 1, Value: 4},
			{AlternativeID: 2, CriterionID: 2, Value: 6},
		},
	}

	result, err := Compute(snapshot)
	require.NoError(t, err)

	require.Equal(t, 1.0, result.Scores[1])
	require.Equal(t, 0.0, result.Scores[2])
	require.Equal(t, 0.6, result.Contributions[1][1])
	require.Equal(t, 0.4, result.Contributions[1][2])
	require.Equal(t, 8.0, result.RawScores[1][1])

	top, ok := result.Ranking.Top()
	require.True(t, ok)
	require.Equal(t, "X", top.Code)
	require.Equal(t, 2, result.Ranking.Count())
}

func TestComputeSingleAlternativeScoresOne(t *testing.T) {
	snapshot := Snapshot{
		Criteria:     []Criterion{benefitK1, costK2},
		Alternatives: []Alternative{{ID: 5, Code: "A1"}},
		Answers: []Answer{
			{AlternativeID: 5, CriterionID: 1, Value: 2},
			{AlternativeID: 5, CriterionID: 2, Value: 3},
		},
	}

	result, err := Compute(snapshot)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.Utilities[5][1])
	require.Equal(t, 1.0, result.Utilities[5][2])
	require.Equal(t, 1.0, result.Scores[5])
}

func TestComputeWithoutAnswers(t *testing.T) {
	snapshot := Snapshot{
		Criteria:     []Criterion{benefitK1, costK2},
		Alternatives: []Alternative{{ID: 1, Code: "A1"}},
	}

	result, err := Compute(snapshot)
	require.NoError(t, err)
	require.Empty(t, result.Scores)
	require.Zero(t, result.Ranking.Count())

	_, ok := result.Ranking.Top()
	require.False(t, ok)
	require.Len(t, result.Weights, 2)
}

func TestComputeUtilitiesMatchStandaloneStage(t *testing.T) {
	answers := []Answer{
		{AlternativeID: 1, CriterionID: 1, Value: 5},
		{AlternativeID: 1, CriterionID: 1, Value: 2},
		{AlternativeID: 1, CriterionID: 2, Value: 4},
		{AlternativeID: 2, CriterionID: 1, Value: 3},
		{AlternativeID: 2, CriterionID: 2, Value: 1},
		{AlternativeID: 2, CriterionID: 2, Value: 2},
		{AlternativeID: 3, CriterionID: 1, Value: 1},
		{AlternativeID: 3, CriterionID: 2, Value: 5},
	}
	snapshot := Snapshot{
		Criteria:     []Criterion{benefitK1, costK2},
		Alternatives: []Alternative{{ID: 1, Code: "A1"}, {ID: 2, Code: "A2"}, {ID: 3, Code: "A3"}},
		Answers:      answers,
	}

	result, err := Compute(snapshot)
	require.NoError(t, err)

	standalone, err := ComputeUtilities(answers, snapshot.Criteria)
	require.NoError(t, err)
	require.Equal(t, standalone, result.Utilities)
	require.Equal(t, 3.5, result.RawScores[1][1])
	require.Equal(t, 1.5, result.RawScores[2][2])

	_, err = Compute(Snapshot{
		Criteria: []Criterion{benefitK1},
		Answers:  []Answer{{AlternativeID: 1, CriterionID: 1, Value: math.NaN()}},
	})
	require.ErrorIs(t, err, ErrNonNumericValue)
}
