package dto

// AnswerItem is one chosen sub-criterion for one question. AlternativeID is only
// read by the save-all path; the per-alternative path takes it from the URL and
// rejects items that name a different alternative.
type AnswerItem struct {
	AlternativeID  uint `json:"alternative_id"`
	QuestionID     uint `json:"question_id" validate:"required"`
	SubCriterionID uint `json:"sub_criterion_id" validate:"required"`
}

// SaveAnswersRequest carries a batch of answers.
type SaveAnswersRequest struct {
	Answers []AnswerItem `json:"answers" validate:"required,min=1,dive"`
}

// StudentSummaryResponse lists a student and whether any answers are on record.
type StudentSummaryResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	NIS      string `json:"nis,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Assessed bool   `json:"assessed"`
}

// AlternativeStatusResponse reports how far a student got with one alternative.
type AlternativeStatusResponse struct {
	AlternativeID uint   `json:"alternative_id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	QuestionCount int    `json:"question_count"`
	AnswerCount   int64  `json:"answer_count"`
	Completed     bool   `json:"completed"`
}

// AnswerDetail is a stored answer joined with its question and band.
type AnswerDetail struct {
	AnswerID         uint    `json:"answer_id"`
	QuestionID       uint    `json:"question_id"`
	Question         string  `json:"question"`
	SubCriterionID   uint    `json:"sub_criterion_id"`
	SubCriterionName string  `json:"sub_criterion_name"`
	Value            float64 `json:"value"`
}

// CriterionAssessment groups one student's answers for one criterion of an alternative.
type CriterionAssessment struct {
	CriterionID   uint           `json:"criterion_id"`
	CriterionCode string         `json:"criterion_code"`
	CriterionName string         `json:"criterion_name"`
	Direction     string         `json:"direction"`
	Average       float64        `json:"average"`
	Category      string         `json:"category,omitempty"`
	Answers       []AnswerDetail `json:"answers"`
}

// AssessmentDetailResponse is a student's full answer set for one alternative.
type AssessmentDetailResponse struct {
	StudentID   uint                  `json:"student_id"`
	Alternative AlternativeResponse   `json:"alternative"`
	Criteria    []CriterionAssessment `json:"criteria"`
}

// SubCriterionOption is a selectable band for a questionnaire item.
type SubCriterionOption struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// QuestionnaireItem is a question with its options and the student's current choice.
type QuestionnaireItem struct {
	QuestionID             uint                 `json:"question_id"`
	Text                   string               `json:"text"`
	CriterionID            uint                 `json:"criterion_id"`
	CriterionCode          string               `json:"criterion_code"`
	CriterionName          string               `json:"criterion_name"`
	Options                []SubCriterionOption `json:"options"`
	SelectedSubCriterionID *uint                `json:"selected_sub_criterion_id"`
}

// QuestionnaireResponse lists everything a student must answer for one alternative.
type QuestionnaireResponse struct {
	Alternative AlternativeResponse `json:"alternative"`
	Items       []QuestionnaireItem `json:"items"`
}

// SaveAnswersResponse summarises a completed write.
type SaveAnswersResponse struct {
	StudentID    uint   `json:"student_id"`
	Alternatives []uint `json:"alternatives"`
	Saved        int    `json:"saved"`
	Mode         string `json:"mode"`
}
