package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

// QuestionFilter narrows questionnaire listings.
type QuestionFilter struct {
	CriterionID   *uint
	AlternativeID *uint
}

// QuestionRepository persists questionnaire items.
type QuestionRepository interface {
	List(ctx context.Context, filter QuestionFilter) ([]models.QuestionDetail, error)
	GetByID(ctx context.Context, id uint) (models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Question, error)
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
	TextExists(ctx context.Context, criterionID, alternativeID uint, text string, excludeID uint) (bool, error)
	IsReferenced(ctx context.Context, id uint) (bool, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository constructs a gorm-backed question repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) List(ctx context.Context, filter QuestionFilter) ([]models.QuestionDetail, error) {
	query := r.db.WithContext(ctx).
		Table("questions AS q").
		Select("q.*, c.code AS criterion_code, c.name AS criterion_name, a.code AS alternative_code, a.name AS alternative_name").
		Joins("JOIN criteria c ON c.id = q.criterion_id").
		Joins("JOIN alternatives a ON a.id = q.alternative_id")

	if filter.CriterionID != nil {
		query = query.Where("q.criterion_id = ?", *filter.CriterionID)
	}
	if filter.AlternativeID != nil {
		query = query.Where("q.alternative_id = ?", *filter.AlternativeID)
	}

	var details []models.QuestionDetail
	err := query.
		Order("a.code ASC").
		Order("c.code ASC").
		Order("q.id ASC").
		Scan(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return models.Question{}, err
	}
	return question, nil
}

func (r *questionRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}

	var questions []models.Question
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Model(question).Select("criterion_id", "alternative_id", "text", "updated_at").Updates(question).Error
}

// Delete removes the question and every answer given to it.
func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Question{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *questionRepository) TextExists(ctx context.Context, criterionID, alternativeID uint, text string, excludeID uint) (bool, error) {
	return exists(ctx, r.db, &models.Question{}, excludeID,
		"criterion_id = ? AND alternative_id = ? AND LOWER(text) = LOWER(?)", criterionID, alternativeID, text)
}

func (r *questionRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &models.Answer{}, 0, "question_id = ?", id)
}
