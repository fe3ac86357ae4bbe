package repository

import (
	"context"

	"gorm.io/gorm"
)

// Pagination is the page window shared by list filters. A zero PageSize disables paging.
type Pagination struct {
	Page     int
	PageSize int
}

func paginate(query *gorm.DB, page Pagination) *gorm.DB {
	if page.PageSize <= 0 {
		return query
	}
	current := page.Page
	if current <= 0 {
		current = 1
	}
	offset := (current - 1) * page.PageSize
	return query.Offset(offset).Limit(page.PageSize)
}

// exists reports whether a row of model matches the condition, ignoring excludeID
// when it is non-zero so updates can keep their own values.
func exists(ctx context.Context, db *gorm.DB, model interface{}, excludeID uint, condition string, args ...interface{}) (bool, error) {
	query := db.WithContext(ctx).Model(model).Where(condition, args...)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
