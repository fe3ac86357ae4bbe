package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

// DashboardCounts aggregates the headline numbers shown on the teacher dashboard.
type DashboardCounts struct {
	Criteria         int64
	SubCriteria      int64
	Alternatives     int64
	Questions        int64
	Users            int64
	Students         int64
	AssessedStudents int64
	AverageWeight    float64
	BenefitCriteria  int64
	CostCriteria     int64
}

// DashboardRepository supplies aggregate reads for the dashboard.
type DashboardRepository interface {
	Counts(ctx context.Context) (DashboardCounts, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository constructs the dashboard repository.
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) Counts(ctx context.Context) (DashboardCounts, error) {
	var counts DashboardCounts
	db := r.db.WithContext(ctx)

	tallies := []struct {
		model  interface{}
		target *int64
		where  string
		args   []interface{}
	}{
		{model: &models.Criterion{}, target: &counts.Criteria},
		{model: &models.SubCriterion{}, target: &counts.SubCriteria},
		{model: &models.Alternative{}, target: &counts.Alternatives},
		{model: &models.Question{}, target: &counts.Questions},
		{model: &models.User{}, target: &counts.Users},
		{model: &models.User{}, target: &counts.Students, where: "role = ?", args: []interface{}{models.RoleStudent}},
		{model: &models.Criterion{}, target: &counts.BenefitCriteria, where: "LOWER(direction) = ?", args: []interface{}{"benefit"}},
		{model: &models.Criterion{}, target: &counts.CostCriteria, where: "LOWER(direction) = ?", args: []interface{}{"cost"}},
	}

	for _, tally := range tallies {
		query := db.Model(tally.model)
		if tally.where != "" {
			query = query.Where(tally.where, tally.args...)
		}
		if err := query.Count(tally.target).Error; err != nil {
			return DashboardCounts{}, err
		}
	}

	if err := db.Model(&models.Answer{}).Distinct("student_id").Count(&counts.AssessedStudents).Error; err != nil {
		return DashboardCounts{}, err
	}

	if err := db.Model(&models.Criterion{}).Select("COALESCE(AVG(weight), 0)").Scan(&counts.AverageWeight).Error; err != nil {
		return DashboardCounts{}, err
	}

	return counts, nil
}
