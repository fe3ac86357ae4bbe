package dto

// CriterionHeader labels one column of a calculation table.
type CriterionHeader struct {
	ID        uint    `json:"id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Direction string  `json:"direction"`
	Weight    float64 `json:"weight"`
}

// WeightRowResponse is a criterion with its raw and normalized weight.
type WeightRowResponse struct {
	CriterionHeader
	Normalized float64 `json:"normalized"`
}

// CombinedCriteriaResponse is the weight table with its totals.
type CombinedCriteriaResponse struct {
	Rows            []WeightRowResponse `json:"rows"`
	TotalWeight     float64             `json:"total_weight"`
	TotalNormalized float64             `json:"total_normalized"`
}

// ScoreCell is one (alternative, criterion) value aligned to a header.
type ScoreCell struct {
	CriterionID   uint     `json:"criterion_id"`
	CriterionCode string   `json:"criterion_code"`
	Value         *float64 `json:"value"`
}

// ScoreRow is one alternative's row in a calculation table.
type ScoreRow struct {
	AlternativeID uint        `json:"alternative_id"`
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	Cells         []ScoreCell `json:"cells"`
	Total         *float64    `json:"total,omitempty"`
}

// ScoreTableResponse is a per-student matrix of alternatives × criteria.
type ScoreTableResponse struct {
	StudentID uint              `json:"student_id"`
	Criteria  []CriterionHeader `json:"criteria"`
	Rows      []ScoreRow        `json:"rows"`
}

// UtilityDetailResponse explains one utility value.
type UtilityDetailResponse struct {
	AlternativeID   uint    `json:"alternative_id"`
	AlternativeCode string  `json:"alternative_code"`
	AlternativeName string  `json:"alternative_name"`
	CriterionID     uint    `json:"criterion_id"`
	CriterionCode   string  `json:"criterion_code"`
	Direction       string  `json:"direction"`
	Raw             float64 `json:"raw"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	Utility         float64 `json:"utility"`
}

// CalculationSummaryResponse carries headline totals for the calculation page.
type CalculationSummaryResponse struct {
	TotalCriteria     int     `json:"total_criteria"`
	TotalAlternatives int     `json:"total_alternatives"`
	TotalWeight       float64 `json:"total_weight"`
	TotalNormalized   float64 `json:"total_normalized"`
}
