package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/service"
	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

// StudentLister lists the students a teacher can pick a ranking for.
type StudentLister interface {
	ListStudents(ctx context.Context) ([]dto.StudentSummaryResponse, error)
}

// RankingHandler exposes study program recommendations.
type RankingHandler struct {
	service  service.RankingService
	students StudentLister
	logger   zerolog.Logger
}

// NewRankingHandler constructs a ranking handler.
func NewRankingHandler(service service.RankingService, students StudentLister, logger zerolog.Logger) *RankingHandler {
	return &RankingHandler{
		service:  service,
		students: students,
		logger:   logger.With().Str("component", "ranking_handler").Logger(),
	}
}

// RegisterTeacher wires /students and /students/:studentId/... routes.
func (h *RankingHandler) RegisterTeacher(router fiber.Router) {
	router.Get("/students", h.listStudents)
	h.registerScoped(router.Group("/students/:studentId"), studentFromParam)
}

// RegisterStudent wires the caller's own ranking routes.
func (h *RankingHandler) RegisterStudent(router fiber.Router) {
	h.registerScoped(router, studentFromToken)
}

func (h *RankingHandler) registerScoped(router fiber.Router, scope studentScope) {
	router.Get("/table", withStudent(scope, h.table))
	router.Get("/ranking", withStudent(scope, h.ranking))
	router.Get("/top", withStudent(scope, h.top))
	router.Get("/rank/:rank", withStudent(scope, h.byRank))
	router.Get("/total", withStudent(scope, h.total))
	router.Get("/has-data", withStudent(scope, h.hasData))
	router.Get("/stats", withStudent(scope, h.stats))
}

func (h *RankingHandler) listStudents(c *fiber.Ctx) error {
	students, err := h.students.ListStudents(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list students")
	}
	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *RankingHandler) table(c *fiber.Ctx, studentID uint) error {
	table, err := h.service.Table(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to build ranking table")
	}
	return utils.SendSuccess(c, "ranking table retrieved", table)
}

func (h *RankingHandler) ranking(c *fiber.Ctx, studentID uint) error {
	ranking, err := h.service.Ranking(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to rank alternatives")
	}
	return utils.SendSuccess(c, "ranking retrieved", ranking)
}

func (h *RankingHandler) top(c *fiber.Ctx, studentID uint) error {
	entry, err := h.service.Top(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch top recommendation")
	}
	return utils.SendSuccess(c, "top recommendation retrieved", entry)
}

func (h *RankingHandler) byRank(c *fiber.Ctx, studentID uint) error {
	rank, err := strconv.Atoi(c.Params("rank"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrInvalidRank.Error())
	}

	entry, err := h.service.ByRank(c.UserContext(), studentID, rank)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch ranked alternative")
	}
	return utils.SendSuccess(c, "ranked alternative retrieved", entry)
}

func (h *RankingHandler) total(c *fiber.Ctx, studentID uint) error {
	total, err := h.service.Total(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to count ranked alternatives")
	}
	return utils.SendSuccess(c, "ranking total retrieved", total)
}

func (h *RankingHandler) hasData(c *fiber.Ctx, studentID uint) error {
	result, err := h.service.HasData(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to check ranking data")
	}
	return utils.SendSuccess(c, "ranking availability retrieved", result)
}

func (h *RankingHandler) stats(c *fiber.Ctx, studentID uint) error {
	stats, err := h.service.Stats(c.UserContext(), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to compute ranking statistics")
	}
	return utils.SendSuccess(c, "ranking statistics retrieved", stats)
}
