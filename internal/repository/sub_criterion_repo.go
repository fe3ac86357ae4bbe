package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

// SubCriterionRepository persists answer bands.
type SubCriterionRepository interface {
	List(ctx context.Context, criterionID *uint) ([]models.SubCriterion, error)
	GetByID(ctx context.Context, id uint) (models.SubCriterion, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.SubCriterion, error)
	Create(ctx context.Context, sub *models.SubCriterion) error
	Update(ctx context.Context, sub *models.SubCriterion) error
	Delete(ctx context.Context, id uint) error
	ValueExists(ctx context.Context, criterionID uint, value float64, excludeID uint) (bool, error)
	IsReferenced(ctx context.Context, id uint) (bool, error)
}

type subCriterionRepository struct {
	db *gorm.DB
}

// NewSubCriterionRepository constructs a gorm-backed sub-criterion repository.
func NewSubCriterionRepository(db *gorm.DB) SubCriterionRepository {
	return &subCriterionRepository{db: db}
}

func (r *subCriterionRepository) List(ctx context.Context, criterionID *uint) ([]models.SubCriterion, error) {
	query := r.db.WithContext(ctx).Model(&models.SubCriterion{})
	if criterionID != nil {
		query = query.Where("criterion_id = ?", *criterionID)
	}

	var subs []models.SubCriterion
	if err := query.Order("criterion_id ASC").Order("value DESC").Order("id ASC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subCriterionRepository) GetByID(ctx context.Context, id uint) (models.SubCriterion, error) {
	var sub models.SubCriterion
	if err := r.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return models.SubCriterion{}, err
	}
	return sub, nil
}

func (r *subCriterionRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.SubCriterion, error) {
	if len(ids) == 0 {
		return []models.SubCriterion{}, nil
	}

	var subs []models.SubCriterion
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subCriterionRepository) Create(ctx context.Context, sub *models.SubCriterion) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subCriterionRepository) Update(ctx context.Context, sub *models.SubCriterion) error {
	return r.db.WithContext(ctx).Model(sub).Select("criterion_id", "name", "value", "updated_at").Updates(sub).Error
}

func (r *subCriterionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.SubCriterion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *subCriterionRepository) ValueExists(ctx context.Context, criterionID uint, value float64, excludeID uint) (bool, error) {
	return exists(ctx, r.db, &models.SubCriterion{}, excludeID, "criterion_id = ? AND value = ?", criterionID, value)
}

func (r *subCriterionRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &models.Answer{}, 0, "sub_criterion_id = ?", id)
}
