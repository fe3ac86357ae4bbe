package dto

import "time"

// DashboardResponse aggregates the teacher dashboard.
type DashboardResponse struct {
	TotalCriteria       int64                 `json:"total_criteria"`
	TotalSubCriteria    int64                 `json:"total_sub_criteria"`
	TotalAlternatives   int64                 `json:"total_alternatives"`
	TotalQuestions      int64                 `json:"total_questions"`
	TotalUsers          int64                 `json:"total_users"`
	TotalStudents       int64                 `json:"total_students"`
	AssessedStudents    int64                 `json:"assessed_students"`
	AverageWeight       float64               `json:"average_weight"`
	CriteriaByDirection map[string]int64      `json:"criteria_by_direction"`
	WeightsChart        []WeightChartPoint    `json:"weights_chart"`
	LatestAlternatives  []AlternativeResponse `json:"latest_alternatives"`
	GeneratedAt         time.Time             `json:"generated_at"`
	CacheHit            bool                  `json:"cache_hit"`
}

// WeightChartPoint is one bar of the criteria weight chart.
type WeightChartPoint struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}
