package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/service"
	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

// AssessmentHandler exposes questionnaire answers. Teachers address a student by
// path; students always act on themselves.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs an assessment handler.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// RegisterTeacher wires /students and /students/:studentId/... routes.
func (h *AssessmentHandler) RegisterTeacher(router fiber.Router) {
	router.Get("/students", h.listStudents)
	router.Get("/sub-criteria/:criterionId/options", h.options)
	h.registerScoped(router.Group("/students/:studentId"), studentFromParam)
}

// RegisterStudent wires the caller's own assessment routes, including PUT / to
// replace every answer of the submitted alternatives.
func (h *AssessmentHandler) RegisterStudent(router fiber.Router) {
	router.Get("/sub-criteria/:criterionId/options", h.options)
	router.Put("/", withStudent(studentFromToken, h.saveAll))
	h.registerScoped(router, studentFromToken)
}

func (h *AssessmentHandler) registerScoped(router fiber.Router, scope studentScope) {
	router.Get("/alternatives", withStudent(scope, h.status))
	router.Get("/alternatives/:alternativeId", withStudent(scope, h.detail))
	router.Get("/alternatives/:alternativeId/questions", withStudent(scope, h.questionnaire))
	router.Put("/alternatives/:alternativeId", withStudent(scope, h.saveForAlternative))
	router.Delete("/alternatives/:alternativeId", withStudent(scope, h.deleteForAlternative))
}

func (h *AssessmentHandler) listStudents(c *fiber.Ctx) error {
	students, err := h.service.ListStudents(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list students")
	}
	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *AssessmentHandler) options(c *fiber.Ctx) error {
	criterionID, err := parseUintParam(c, "criterionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	options, err := h.service.SubCriteriaOptions(c.UserContext(), criterionID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list answer options")
	}
	return utils.SendSuccess(c, "answer options retrieved", options)
}

func (h *AssessmentHandler) status(c *fiber.Ctx, studentID uint) error {
	statuses, err := h.service.AlternativeStatus(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch assessment status")
	}
	return utils.SendSuccess(c, "assessment status retrieved", statuses)
}

func (h *AssessmentHandler) detail(c *fiber.Ctx, studentID uint) error {
	alternativeID, err := parseUintParam(c, "alternativeId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	detail, err := h.service.Detail(c.UserContext(), studentID, alternativeID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch assessment")
	}
	return utils.SendSuccess(c, "assessment retrieved", detail)
}

func (h *AssessmentHandler) questionnaire(c *fiber.Ctx, studentID uint) error {
	alternativeID, err := parseUintParam(c, "alternativeId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questionnaire, err := h.service.Questionnaire(c.UserContext(), studentID, alternativeID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch questionnaire")
	}
	return utils.SendSuccess(c, "questionnaire retrieved", questionnaire)
}

func (h *AssessmentHandler) saveForAlternative(c *fiber.Ctx, studentID uint) error {
	alternativeID, err := parseUintParam(c, "alternativeId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SaveAnswersRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.SaveForAlternative(c.UserContext(), actorFromContext(c), studentID, alternativeID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to save answers")
	}
	return utils.SendSuccess(c, "answers saved", result)
}

func (h *AssessmentHandler) saveAll(c *fiber.Ctx, studentID uint) error {
	var payload dto.SaveAnswersRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.SaveAll(c.UserContext(), actorFromContext(c), studentID, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to save answers")
	}
	return utils.SendSuccess(c, "answers saved", result)
}

func (h *AssessmentHandler) deleteForAlternative(c *fiber.Ctx, studentID uint) error {
	alternativeID, err := parseUintParam(c, "alternativeId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteForAlternative(c.UserContext(), actorFromContext(c), studentID, alternativeID); err != nil {
		return respondError(c, h.logger, err, "failed to delete answers")
	}
	return utils.SendSuccess(c, "answers deleted", fiber.Map{"student_id": studentID, "alternative_id": alternativeID})
}
