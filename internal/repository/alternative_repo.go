package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

// AlternativeRepository persists study programs.
type AlternativeRepository interface {
	List(ctx context.Context) ([]models.Alternative, error)
	Latest(ctx context.Context, limit int) ([]models.Alternative, error)
	GetByID(ctx context.Context, id uint) (models.Alternative, error)
	Create(ctx context.Context, alternative *models.Alternative) error
	Update(ctx context.Context, alternative *models.Alternative) error
	Delete(ctx context.Context, id uint) error
	CodeExists(ctx context.Context, code string, excludeID uint) (bool, error)
	NameExists(ctx context.Context, name string, excludeID uint) (bool, error)
	IsReferenced(ctx context.Context, id uint) (bool, error)
}

type alternativeRepository struct {
	db *gorm.DB
}

// NewAlternativeRepository constructs a gorm-backed alternative repository.
func NewAlternativeRepository(db *gorm.DB) AlternativeRepository {
	return &alternativeRepository{db: db}
}

func (r *alternativeRepository) List(ctx context.Context) ([]models.Alternative, error) {
	var alternatives []models.Alternative
	if err := r.db.WithContext(ctx).Order("code ASC").Order("id ASC").Find(&alternatives).Error; err != nil {
		return nil, err
	}
	return alternatives, nil
}

func (r *alternativeRepository) Latest(ctx context.Context, limit int) ([]models.Alternative, error) {
	if limit <= 0 {
		limit = 4
	}

	var alternatives []models.Alternative
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&alternatives).Error
	if err != nil {
		return nil, err
	}
	return alternatives, nil
}

func (r *alternativeRepository) GetByID(ctx context.Context, id uint) (models.Alternative, error) {
	var alternative models.Alternative
	if err := r.db.WithContext(ctx).First(&alternative, id).Error; err != nil {
		return models.Alternative{}, err
	}
	return alternative, nil
}

func (r *alternativeRepository) Create(ctx context.Context, alternative *models.Alternative) error {
	return r.db.WithContext(ctx).Create(alternative).Error
}

func (r *alternativeRepository) Update(ctx context.Context, alternative *models.Alternative) error {
	return r.db.WithContext(ctx).Model(alternative).Select("code", "name", "updated_at").Updates(alternative).Error
}

// Delete removes the alternative together with its questionnaire items.
func (r *alternativeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("alternative_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Alternative{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *alternativeRepository) CodeExists(ctx context.Context, code string, excludeID uint) (bool, error) {
	return exists(ctx, r.db, &models.Alternative{}, excludeID, "LOWER(code) = LOWER(?)", code)
}

func (r *alternativeRepository) NameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	return exists(ctx, r.db, &models.Alternative{}, excludeID, "LOWER(name) = LOWER(?)", name)
}

// IsReferenced reports whether any student has answered for the alternative.
func (r *alternativeRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &models.Answer{}, 0, "alternative_id = ?", id)
}
