package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

// UserFilter narrows account listings.
type UserFilter struct {
	Pagination
	Role   models.Role
	Search string
}

// UserRepository persists accounts for both roles.
type UserRepository interface {
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	ListAssessedStudents(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error)
	Delete(ctx context.Context, id uint) error
	UsernameExists(ctx context.Context, username string, excludeID uint) (bool, error)
	NISExists(ctx context.Context, nis string, excludeID uint) (bool, error)
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a gorm-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(username) LIKE ? OR nis LIKE ?", like, like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := paginate(query, filter.Pagination).Order("name ASC").Order("id ASC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListAssessedStudents returns students that have at least one stored answer.
func (r *userRepository) ListAssessedStudents(ctx context.Context) ([]models.User, error) {
	answered := r.db.Model(&models.Answer{}).Distinct("student_id")

	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", models.RoleStudent).
		Where("id IN (?)", answered).
		Order("name ASC").
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the account and any answers it owns.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepository) UsernameExists(ctx context.Context, username string, excludeID uint) (bool, error) {
	return exists(ctx, r.db, &models.User{}, excludeID, "LOWER(username) = LOWER(?)", username)
}

func (r *userRepository) NISExists(ctx context.Context, nis string, excludeID uint) (bool, error) {
	return exists(ctx, r.db, &models.User{}, excludeID, "nis = ?", nis)
}

func (r *userRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	var rows []struct {
		Role  models.Role
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}
