package dto

// RankingEntryResponse is one ranked alternative.
type RankingEntryResponse struct {
	Rank          int     `json:"rank"`
	AlternativeID uint    `json:"alternative_id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Score         float64 `json:"score"`
	Note          string  `json:"note,omitempty"`
}

// RankingResponse is a student's full ranking.
type RankingResponse struct {
	StudentID uint                   `json:"student_id"`
	Entries   []RankingEntryResponse `json:"entries"`
}

// RankingStatsResponse summarises the scores of a ranking.
type RankingStatsResponse struct {
	Count int     `json:"count"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
}

// RankingTotalResponse counts ranked alternatives.
type RankingTotalResponse struct {
	Total int `json:"total"`
}

// RankingHasDataResponse reports whether a student has any scored answers.
type RankingHasDataResponse struct {
	HasData bool `json:"has_data"`
}
