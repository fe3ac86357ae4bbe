package repository

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

// ErrWeightCeilingExceeded is returned when a write would push the total
// criteria weight past the requested ceiling.
var ErrWeightCeilingExceeded = errors.New("criteria weight ceiling exceeded")

// CriterionRepository persists criteria and enforces their storage-level rules.
type CriterionRepository interface {
	List(ctx context.Context) ([]models.Criterion, error)
	GetByID(ctx context.Context, id uint) (models.Criterion, error)
	Create(ctx context.Context, criterion *models.Criterion) error
	Update(ctx context.Context, criterion *models.Criterion) error
	CreateWithinCeiling(ctx context.Context, criterion *models.Criterion, ceiling float64) error
	UpdateWithinCeiling(ctx context.Context, criterion *models.Criterion, ceiling float64) error
	Delete(ctx context.Context, id uint) error
	CodeExists(ctx context.Context, code string, excludeID uint) (bool, error)
	NameExists(ctx context.Context, name string, excludeID uint) (bool, error)
	SumWeights(ctx context.Context, excludeID uint) (float64, error)
	IsReferenced(ctx context.Context, id uint) (bool, error)
}

type criterionRepository struct {
	db *gorm.DB
	// weights serializes ceiling-checked writes within this process. Postgres
	// additionally takes a table lock so other instances wait as well.
	weights sync.Mutex
}

// NewCriterionRepository constructs a gorm-backed criterion repository.
func NewCriterionRepository(db *gorm.DB) CriterionRepository {
	return &criterionRepository{db: db}
}

func (r *criterionRepository) List(ctx context.Context) ([]models.Criterion, error) {
	var criteria []models.Criterion
	if err := r.db.WithContext(ctx).Order("code ASC").Order("id ASC").Find(&criteria).Error; err != nil {
		return nil, err
	}
	return criteria, nil
}

func (r *criterionRepository) GetByID(ctx context.Context, id uint) (models.Criterion, error) {
	var criterion models.Criterion
	if err := r.db.WithContext(ctx).First(&criterion, id).Error; err != nil {
		return models.Criterion{}, err
	}
	return criterion, nil
}

func (r *criterionRepository) Create(ctx context.Context, criterion *models.Criterion) error {
	return r.db.WithContext(ctx).Create(criterion).Error
}

func (r *criterionRepository) Update(ctx context.Context, criterion *models.Criterion) error {
	return r.db.WithContext(ctx).Model(criterion).Select("code", "name", "direction", "weight", "updated_at").Updates(criterion).Error
}

// CreateWithinCeiling inserts the criterion only if the stored weights plus
// its own stay within ceiling. The sum and the insert share one transaction.
func (r *criterionRepository) CreateWithinCeiling(ctx context.Context, criterion *models.Criterion, ceiling float64) error {
	return r.withinCeiling(ctx, 0, criterion.Weight, ceiling, func(tx *gorm.DB) error {
		return tx.Create(criterion).Error
	})
}

// UpdateWithinCeiling is CreateWithinCeiling for an existing row; the row's
// current weight is left out of the sum.
func (r *criterionRepository) UpdateWithinCeiling(ctx context.Context, criterion *models.Criterion, ceiling float64) error {
	return r.withinCeiling(ctx, criterion.ID, criterion.Weight, ceiling, func(tx *gorm.DB) error {
		result := tx.Model(criterion).Select("code", "name", "direction", "weight", "updated_at").Updates(criterion)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *criterionRepository) withinCeiling(ctx context.Context, excludeID uint, weight, ceiling float64, write func(tx *gorm.DB) error) error {
	r.weights.Lock()
	defer r.weights.Unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			// Blocks concurrent inserts as well as updates until commit.
			if err := tx.Exec("LOCK TABLE criteria IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
				return err
			}
		}

		others, err := sumWeights(tx, excludeID)
		if err != nil {
			return err
		}
		if others+weight > ceiling+1e-9 {
			return ErrWeightCeilingExceeded
		}
		return write(tx)
	})
}

// Delete removes the criterion together with its sub-criteria.
func (r *criterionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("criterion_id = ?", id).Delete(&models.SubCriterion{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Criterion{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *criterionRepository) CodeExists(ctx context.Context, code string, excludeID uint) (bool, error) {
	return exists(ctx, r.db, &models.Criterion{}, excludeID, "LOWER(code) = LOWER(?)", code)
}

func (r *criterionRepository) NameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	return exists(ctx, r.db, &models.Criterion{}, excludeID, "LOWER(name) = LOWER(?)", name)
}

func (r *criterionRepository) SumWeights(ctx context.Context, excludeID uint) (float64, error) {
	return sumWeights(r.db.WithContext(ctx), excludeID)
}

func sumWeights(db *gorm.DB, excludeID uint) (float64, error) {
	query := db.Model(&models.Criterion{})
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var total float64
	if err := query.Select("COALESCE(SUM(weight), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// IsReferenced reports whether questions or answers still point at the criterion.
func (r *criterionRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	used, err := exists(ctx, r.db, &models.Question{}, 0, "criterion_id = ?", id)
	if err != nil || used {
		return used, err
	}
	return exists(ctx, r.db, &models.Answer{}, 0, "criterion_id = ?", id)
}
