package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/scoring"
)

func TestRankingServiceOrdersBySAWScore(t *testing.T) {
	env := newTestEnv(t)
	c := seedCatalog(t, env)
	answerAll(t, env, c)
	svc := NewRankingService(env.evaluator(), testLogger())
	ctx := context.Background()

	ranking, err := svc.Ranking(ctx, c.student.ID)
	require.NoError(t, err)
	require.Len(t, ranking.Entries, 2)
	require.Equal(t, "A1", ranking.Entries[0].Code)
	require.Equal(t, 1.0, ranking.Entries[0].Score)
	require.Equal(t, "A2", ranking.Entries[1].Code)
	require.Equal(t, 0.0, ranking.Entries[1].Score)
	require.Empty(t, ranking.Entries[0].Note)

	table, err := svc.Table(ctx, c.student.ID)
	require.NoError(t, err)
	require.Equal(t, "Rank 1", table.Entries[0].Note)
	require.Equal(t, "Rank 2", table.Entries[1].Note)

	top, err := svc.Top(ctx, c.student.ID)
	require.NoError(t, err)
	require.Equal(t, "Informatika", top.Name)

	second, err := svc.ByRank(ctx, c.student.ID, 2)
	require.NoError(t, err)
	require.Equal(t, "Kedokteran", second.Name)

	_, err = svc.ByRank(ctx, c.student.ID, 3)
	require.ErrorIs(t, err, ErrRankNotFound)
	_, err = svc.ByRank(ctx, c.student.ID, 0)
	require.ErrorIs(t, err, ErrInvalidRank)

	total, err := svc.Total(ctx, c.student.ID)
	require.NoError(t, err)
	require.Equal(t, 2, total.Total)

	stats, err := svc.Stats(ctx, c.student.ID)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Count)
	require.Equal(t, 1.0, stats.Max)
	require.Equal(t, 0.0, stats.Min)
	require.Equal(t, 0.5, stats.Mean)
}

func TestRankingServiceWithoutAnswers(t *testing.T) {
	env := newTestEnv(t)
	c := seedCatalog(t, env)
	svc := NewRankingService(env.evaluator(), testLogger())
	ctx := context.Background()

	has, err := svc.HasData(ctx, c.newcomer.ID)
	require.NoError(t, err)
	require.False(t, has.HasData)

	_, err = svc.Top(ctx, c.newcomer.ID)
	require.ErrorIs(t, err, ErrRankingEmpty)

	_, err = svc.ByRank(ctx, c.newcomer.ID, 1)
	require.ErrorIs(t, err, ErrRankNotFound)

	stats, err := svc.Stats(ctx, c.newcomer.ID)
	require.NoError(t, err)
	require.Zero(t, stats.Count)
	require.Zero(t, stats.Mean)

	ranking, err := svc.Ranking(ctx, c.newcomer.ID)
	require.NoError(t, err)
	require.Empty(t, ranking.Entries)

	_, err = svc.Ranking(ctx, c.teacher.ID)
	require.ErrorIs(t, err, ErrStudentNotFound)
	_, err = svc.Ranking(ctx, 999)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestCalculationServiceTables(t *testing.T) {
	env := newTestEnv(t)
	c := seedCatalog(t, env)
	answerAll(t, env, c)
	svc := NewCalculationService(env.evaluator(), env.alternatives, testLogger())
	ctx := context.Background()

	combined, err := svc.CombinedCriteria(ctx)
	require.NoError(t, err)
	require.Len(t, combined.Rows, 2)
	require.Equal(t, 0.6, combined.Rows[0].Normalized)
	require.Equal(t, 100.0, combined.TotalWeight)
	require.Equal(t, 1.0, combined.TotalNormalized)

	weight, err := svc.CriterionWeight(ctx, c.cost.ID)
	require.NoError(t, err)
	require.Equal(t, 0.4, weight.Normalized)
	_, err = svc.CriterionWeight(ctx, 999)
	require.ErrorIs(t, err, ErrCriterionNotFound)

	raw, err := svc.RawScores(ctx, c.student.ID)
	require.NoError(t, err)
	require.Len(t, raw.Criteria, 2)
	require.Len(t, raw.Rows, 2)
	require.Equal(t, "A1", raw.Rows[0].Code)
	require.Equal(t, 4.0, *raw.Rows[0].Cells[0].Value)
	require.Equal(t, 1.0, *raw.Rows[0].Cells[1].Value)
	require.Nil(t, raw.Rows[0].Total)

	utilities, err := svc.Utilities(ctx, c.student.ID)
	require.NoError(t, err)
	require.Equal(t, 1.0, *utilities.Rows[0].Cells[0].Value)
	require.Equal(t, 1.0, *utilities.Rows[0].Cells[1].Value)
	require.Equal(t, 0.0, *utilities.Rows[1].Cells[0].Value)
	require.Equal(t, 0.0, *utilities.Rows[1].Cells[1].Value)

	final, err := svc.FinalScores(ctx, c.student.ID)
	require.NoError(t, err)
	require.NotNil(t, final.Rows[0].Total)
	require.Equal(t, 1.0, *final.Rows[0].Total)
	require.Equal(t, 0.6, *final.Rows[0].Cells[0].Value)
	require.Equal(t, 0.4, *final.Rows[0].Cells[1].Value)
	require.Equal(t, 0.0, *final.Rows[1].Total)

	details, err := svc.UtilityDetails(ctx, c.student.ID)
	require.NoError(t, err)
	require.Len(t, details, 4)
	require.Equal(t, "A1", details[0].AlternativeCode)
	require.Equal(t, "K1", details[0].CriterionCode)
	require.Equal(t, 3.0, details[0].Min)
	require.Equal(t, 4.0, details[0].Max)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, summary.TotalCriteria)
	require.Equal(t, 2, summary.TotalAlternatives)
}

func TestCalculationServicePartialAnswersLeaveEmptyCells(t *testing.T) {
	env := newTestEnv(t)
	c := seedCatalog(t, env)
	svc := NewCalculationService(env.evaluator(), env.alternatives, testLogger())
	ctx := context.Background()

	assessment := newAssessmentService(env, nil)
	_, err := assessment.SaveAll(ctx, Actor{ID: c.student.ID, Role: "student"}, c.student.ID, dto.SaveAnswersRequest{Answers: []dto.AnswerItem{
		{QuestionID: c.q1.ID, SubCriterionID: c.veryKeen.ID},
	}})
	require.NoError(t, err)

	raw, err := svc.RawScores(ctx, c.student.ID)
	require.NoError(t, err)
	require.Len(t, raw.Rows, 1)
	require.NotNil(t, raw.Rows[0].Cells[0].Value)
	require.Nil(t, raw.Rows[0].Cells[1].Value)

	final, err := svc.FinalScores(ctx, c.student.ID)
	require.NoError(t, err)
	require.Equal(t, 0.6, *final.Rows[0].Total, "a lone alternative scores utility 1 on what it answered")
}

func TestEvaluatorLateRoundingKeepsPrecision(t *testing.T) {
	env := newTestEnv(t)
	c := seedCatalog(t, env)
	answerAll(t, env, c)
	evaluator := NewEvaluator(env.users, env.criteria, env.alternatives, env.answers, scoring.RoundLate, testLogger())

	evaluation, err := evaluator.Evaluate(context.Background(), c.student.ID, "test")
	require.NoError(t, err)
	require.True(t, evaluation.HasData())
	require.InDelta(t, 0.6, evaluation.Result.Weights[c.interest.ID], 1e-12)
	require.Len(t, evaluation.ScoredAlternatives(), 2)
}
