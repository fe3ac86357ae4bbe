package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/spk-prodi-api/internal/database"
	"github.com/noah-isme/spk-prodi-api/internal/models"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
	"github.com/noah-isme/spk-prodi-api/internal/scoring"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

type testEnv struct {
	db           *gorm.DB
	users        repository.UserRepository
	criteria     repository.CriterionRepository
	subCriteria  repository.SubCriterionRepository
	alternatives repository.AlternativeRepository
	questions    repository.QuestionRepository
	answers      repository.AnswerRepository
	activityLogs repository.ActivityLogRepository
	activity     ActivityService
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.ConnectSQLite(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	activityLogs := repository.NewActivityLogRepository(db)
	return testEnv{
		db:           db,
		users:        repository.NewUserRepository(db),
		criteria:     repository.NewCriterionRepository(db),
		subCriteria:  repository.NewSubCriterionRepository(db),
		alternatives: repository.NewAlternativeRepository(db),
		questions:    repository.NewQuestionRepository(db),
		answers:      repository.NewAnswerRepository(db),
		activityLogs: activityLogs,
		activity:     NewActivityService(activityLogs, testLogger()),
	}
}

func (e testEnv) assessmentRepos() AssessmentRepositories {
	return AssessmentRepositories{
		Users:        e.users,
		Criteria:     e.criteria,
		SubCriteria:  e.subCriteria,
		Alternatives: e.alternatives,
		Questions:    e.questions,
		Answers:      e.answers,
	}
}

func (e testEnv) evaluator() *Evaluator {
	return NewEvaluator(e.users, e.criteria, e.alternatives, e.answers, scoring.RoundEarly, testLogger())
}

// catalog is a small but complete configuration: two criteria with three bands
// each, two study programs and five questions.
type catalog struct {
	teacher     models.User
	student     models.User
	newcomer    models.User
	interest    models.Criterion
	cost        models.Criterion
	veryKeen    models.SubCriterion
	keen        models.SubCriterion
	notKeen     models.SubCriterion
	expensive   models.SubCriterion
	moderate    models.SubCriterion
	cheap       models.SubCriterion
	informatics models.Alternative
	medicine    models.Alternative
	q1          models.Question
	q2          models.Question
	q3          models.Question
	q4          models.Question
	q5          models.Question
}

func seedCatalog(t *testing.T, e testEnv) catalog {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)

	nisSiti := "1001"
	nisBudi := "1002"
	c := catalog{
		teacher:     models.User{Name: "Bu Guru", Username: "guru", PasswordHash: string(hash), Role: models.RoleTeacher},
		student:     models.User{Name: "Siti Aminah", Username: "siti", PasswordHash: string(hash), Role: models.RoleStudent, NIS: &nisSiti, Gender: "P"},
		newcomer:    models.User{Name: "Budi Santoso", Username: "budi", PasswordHash: string(hash), Role: models.RoleStudent, NIS: &nisBudi, Gender: "L"},
		interest:    models.Criterion{Code: "K1", Name: "Minat", Direction: "Benefit", Weight: 60},
		cost:        models.Criterion{Code: "K2", Name: "Biaya", Direction: "Cost", Weight: 40},
		informatics: models.Alternative{Code: "A1", Name: "Informatika"},
		medicine:    models.Alternative{Code: "A2", Name: "Kedokteran"},
	}
	for _, row := range []interface{}{&c.teacher, &c.student, &c.newcomer, &c.interest, &c.cost, &c.informatics, &c.medicine} {
		require.NoError(t, e.db.Create(row).Error)
	}

	c.veryKeen = models.SubCriterion{CriterionID: c.interest.ID, Name: "Sangat Minat", Value: 5}
	c.keen = models.SubCriterion{CriterionID: c.interest.ID, Name: "Cukup Minat", Value: 3}
	c.notKeen = models.SubCriterion{CriterionID: c.interest.ID, Name: "Kurang Minat", Value: 1}
	c.expensive = models.SubCriterion{CriterionID: c.cost.ID, Name: "Mahal", Value: 5}
	c.moderate = models.SubCriterion{CriterionID: c.cost.ID, Name: "Sedang", Value: 3}
	c.cheap = models.SubCriterion{CriterionID: c.cost.ID, Name: "Murah", Value: 1}
	for _, row := range []*models.SubCriterion{&c.veryKeen, &c.keen, &c.notKeen, &c.expensive, &c.moderate, &c.cheap} {
		require.NoError(t, e.db.Create(row).Error)
	}

	c.q1 = models.Question{CriterionID: c.interest.ID, AlternativeID: c.informatics.ID, Text: "Suka memprogram?"}
	c.q2 = models.Question{CriterionID: c.interest.ID, AlternativeID: c.informatics.ID, Text: "Suka matematika?"}
	c.q3 = models.Question{CriterionID: c.cost.ID, AlternativeID: c.informatics.ID, Text: "Biaya kuliah informatika?"}
	c.q4 = models.Question{CriterionID: c.interest.ID, AlternativeID: c.medicine.ID, Text: "Suka biologi?"}
	c.q5 = models.Question{CriterionID: c.cost.ID, AlternativeID: c.medicine.ID, Text: "Biaya kuliah kedokteran?"}
	for _, row := range []*models.Question{&c.q1, &c.q2, &c.q3, &c.q4, &c.q5} {
		require.NoError(t, e.db.Create(row).Error)
	}
	return c
}

// answerAll stores the reference answer set for the catalog's student:
// Informatika averages 4 on interest and 1 on cost, Kedokteran 3 and 5, so
// Informatika dominates both criteria.
func answerAll(t *testing.T, e testEnv, c catalog) {
	t.Helper()
	answers := []models.Answer{
		{AlternativeID: c.informatics.ID, CriterionID: c.interest.ID, QuestionID: c.q1.ID, SubCriterionID: c.veryKeen.ID, Value: 5},
		{AlternativeID: c.informatics.ID, CriterionID: c.interest.ID, QuestionID: c.q2.ID, SubCriterionID: c.keen.ID, Value: 3},
		{AlternativeID: c.informatics.ID, CriterionID: c.cost.ID, QuestionID: c.q3.ID, SubCriterionID: c.cheap.ID, Value: 1},
		{AlternativeID: c.medicine.ID, CriterionID: c.interest.ID, QuestionID: c.q4.ID, SubCriterionID: c.keen.ID, Value: 3},
		{AlternativeID: c.medicine.ID, CriterionID: c.cost.ID, QuestionID: c.q5.ID, SubCriterionID: c.expensive.ID, Value: 5},
	}
	require.NoError(t, e.answers.ReplaceAll(context.Background(), c.student.ID, answers))
}

func teacherActor(c catalog) Actor {
	return Actor{ID: c.teacher.ID, Role: string(models.RoleTeacher)}
}
