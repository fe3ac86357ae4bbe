package dto

import (
	"time"

	"github.com/noah-isme/spk-prodi-api/internal/models"
)

// CriterionRequest captures create and update payloads for criteria.
type CriterionRequest struct {
	Code      string  `json:"code" validate:"required,max=32"`
	Name      string  `json:"name" validate:"required,max=255"`
	Direction string  `json:"direction" validate:"required,oneof=Benefit Cost"`
	Weight    float64 `json:"weight" validate:"gte=0,lte=100"`
}

// CriterionResponse serializes a criterion.
type CriterionResponse struct {
	ID        uint      `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Direction string    `json:"direction"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCriterionResponse converts a criterion model into a DTO.
func NewCriterionResponse(model models.Criterion) CriterionResponse {
	return CriterionResponse{
		ID:        model.ID,
		Code:      model.Code,
		Name:      model.Name,
		Direction: model.Direction,
		Weight:    model.Weight,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// SubCriterionRequest captures create and update payloads for answer bands.
type SubCriterionRequest struct {
	CriterionID uint    `json:"criterion_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=255"`
	Value       float64 `json:"value"`
}

// SubCriterionResponse serializes an answer band.
type SubCriterionResponse struct {
	ID            uint    `json:"id"`
	CriterionID   uint    `json:"criterion_id"`
	CriterionCode string  `json:"criterion_code,omitempty"`
	CriterionName string  `json:"criterion_name,omitempty"`
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
}

// NewSubCriterionResponse converts a sub-criterion model into a DTO. The criterion
// labels are filled when the parent is known.
func NewSubCriterionResponse(model models.SubCriterion, parent *models.Criterion) SubCriterionResponse {
	response := SubCriterionResponse{
		ID:          model.ID,
		CriterionID: model.CriterionID,
		Name:        model.Name,
		Value:       model.Value,
	}
	if parent != nil {
		response.CriterionCode = parent.Code
		response.CriterionName = parent.Name
	}
	return response
}

// AlternativeRequest captures create and update payloads for study programs.
type AlternativeRequest struct {
	Code string `json:"code" validate:"required,max=32"`
	Name string `json:"name" validate:"required,max=255"`
}

// AlternativeResponse serializes a study program.
type AlternativeResponse struct {
	ID        uint      `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAlternativeResponse converts an alternative model into a DTO.
func NewAlternativeResponse(model models.Alternative) AlternativeResponse {
	return AlternativeResponse{
		ID:        model.ID,
		Code:      model.Code,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
	}
}

// QuestionRequest captures create and update payloads for questionnaire items.
type QuestionRequest struct {
	CriterionID   uint   `json:"criterion_id" validate:"required"`
	AlternativeID uint   `json:"alternative_id" validate:"required"`
	Text          string `json:"text" validate:"required,max=2000"`
}

// QuestionListRequest filters questionnaire listings.
type QuestionListRequest struct {
	CriterionID   uint
	AlternativeID uint
}

// QuestionResponse serializes a questionnaire item with its labels.
type QuestionResponse struct {
	ID              uint   `json:"id"`
	CriterionID     uint   `json:"criterion_id"`
	CriterionCode   string `json:"criterion_code,omitempty"`
	CriterionName   string `json:"criterion_name,omitempty"`
	AlternativeID   uint   `json:"alternative_id"`
	AlternativeCode string `json:"alternative_code,omitempty"`
	AlternativeName string `json:"alternative_name,omitempty"`
	Text            string `json:"text"`
}

// NewQuestionResponse converts a joined question row into a DTO.
func NewQuestionResponse(detail models.QuestionDetail) QuestionResponse {
	return QuestionResponse{
		ID:              detail.ID,
		CriterionID:     detail.CriterionID,
		CriterionCode:   detail.CriterionCode,
		CriterionName:   detail.CriterionName,
		AlternativeID:   detail.AlternativeID,
		AlternativeCode: detail.AlternativeCode,
		AlternativeName: detail.AlternativeName,
		Text:            detail.Text,
	}
}
