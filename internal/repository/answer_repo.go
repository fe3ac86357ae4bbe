package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

// AnswerRepository persists questionnaire answers. Every write runs in a single
// transaction so a failed batch leaves earlier answers untouched.
type AnswerRepository interface {
	ListScoredByStudent(ctx context.Context, studentID uint) ([]models.ScoredAnswer, error)
	ListByStudentAlternative(ctx context.Context, studentID, alternativeID uint) ([]models.Answer, error)
	CountByAlternative(ctx context.Context, studentID uint) (map[uint]int64, error)
	SaveForAlternative(ctx context.Context, studentID, alternativeID uint, answers []models.Answer) error
	ReplaceAll(ctx context.Context, studentID uint, answers []models.Answer) error
	DeleteForAlternative(ctx context.Context, studentID, alternativeID uint) (int64, error)
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository constructs a gorm-backed answer repository.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

var answerNaturalKey = []clause.Column{
	{Name: "student_id"},
	{Name: "alternative_id"},
	{Name: "criterion_id"},
	{Name: "question_id"},
}

func (r *answerRepository) ListScoredByStudent(ctx context.Context, studentID uint) ([]models.ScoredAnswer, error) {
	var rows []models.ScoredAnswer
	err := r.db.WithContext(ctx).
		Table("answers AS ans").
		Select(`ans.id AS answer_id, ans.alternative_id, alt.code AS alternative_code, alt.name AS alternative_name,
			ans.criterion_id, c.code AS criterion_code, ans.question_id, ans.sub_criterion_id, sc.value AS value`).
		Joins("JOIN alternatives alt ON alt.id = ans.alternative_id").
		Joins("JOIN criteria c ON c.id = ans.criterion_id").
		Joins("JOIN sub_criteria sc ON sc.id = ans.sub_criterion_id").
		Where("ans.student_id = ?", studentID).
		Order("alt.code ASC").
		Order("alt.id ASC").
		Order("c.code ASC").
		Order("c.id ASC").
		Order("ans.question_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *answerRepository) ListByStudentAlternative(ctx context.Context, studentID, alternativeID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND alternative_id = ?", studentID, alternativeID).
		Order("criterion_id ASC").
		Order("question_id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) CountByAlternative(ctx context.Context, studentID uint) (map[uint]int64, error) {
	var rows []struct {
		AlternativeID uint
		Total         int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Answer{}).
		Select("alternative_id, COUNT(*) AS total").
		Where("student_id = ?", studentID).
		Group("alternative_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.AlternativeID] = row.Total
	}
	return counts, nil
}

// SaveForAlternative upserts answers on their natural key. Answers for the same
// alternative that are not in the batch are kept.
func (r *answerRepository) SaveForAlternative(ctx context.Context, studentID, alternativeID uint, answers []models.Answer) error {
	if len(answers) == 0 {
		return nil
	}

	for idx := range answers {
		answers[idx].ID = 0
		answers[idx].StudentID = studentID
		answers[idx].AlternativeID = alternativeID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   answerNaturalKey,
			DoUpdates: clause.AssignmentColumns([]string{"sub_criterion_id", "value", "updated_at"}),
		}).Create(&answers).Error
	})
}

// ReplaceAll deletes the student's prior answers for every alternative present in
// the batch and inserts the batch in their place.
func (r *answerRepository) ReplaceAll(ctx context.Context, studentID uint, answers []models.Answer) error {
	if len(answers) == 0 {
		return nil
	}

	seen := make(map[uint]struct{})
	alternativeIDs := make([]uint, 0)
	for idx := range answers {
		answers[idx].ID = 0
		answers[idx].StudentID = studentID
		if _, ok := seen[answers[idx].AlternativeID]; ok {
			continue
		}
		seen[answers[idx].AlternativeID] = struct{}{}
		alternativeIDs = append(alternativeIDs, answers[idx].AlternativeID)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ? AND alternative_id IN ?", studentID, alternativeIDs).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		return tx.Create(&answers).Error
	})
}

func (r *answerRepository) DeleteForAlternative(ctx context.Context, studentID, alternativeID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("student_id = ? AND alternative_id = ?", studentID, alternativeID).
		Delete(&models.Answer{})
	return result.RowsAffected, result.Error
}
