package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/spk-prodi-api/internal/dto"
	"github.com/noah-isme/spk-prodi-api/internal/observability"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
	"github.com/noah-isme/spk-prodi-api/internal/scoring"
)

const (
	dashboardCacheKey           = "dashboard:summary"
	dashboardLatestAlternatives = 4
)

// DashboardService aggregates the teacher dashboard.
type DashboardService interface {
	Summary(ctx context.Context) (dto.DashboardResponse, error)
}

type dashboardService struct {
	repo         repository.DashboardRepository
	criteria     repository.CriterionRepository
	alternatives repository.AlternativeRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewDashboardService constructs the dashboard service. cache may be nil.
func NewDashboardService(repo repository.DashboardRepository, criteria repository.CriterionRepository, alternatives repository.AlternativeRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		repo:         repo,
		criteria:     criteria,
		alternatives: alternatives,
		cache:        cache,
		cacheTTL:     ttl,
		logger:       logger.With().Str("component", "dashboard_service").Logger(),
		now:          time.Now,
	}
}

func (s *dashboardService) Summary(ctx context.Context) (dto.DashboardResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/spk-prodi-api/internal/service/dashboard")
	ctx, span := tracer.Start(ctx, "dashboard.aggregate")
	span.SetAttributes(attribute.String("dashboard.cache_key", dashboardCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
				observability.DashboardCacheLookups().WithLabelValues("hit").Inc()
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
		observability.DashboardCacheLookups().WithLabelValues("miss").Inc()
	}

	counts, err := s.repo.Counts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_failed")
		return dto.DashboardResponse{}, err
	}

	criteria, err := s.criteria.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_criteria_failed")
		return dto.DashboardResponse{}, err
	}

	latest, err := s.alternatives.Latest(ctx, dashboardLatestAlternatives)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "latest_alternatives_failed")
		return dto.DashboardResponse{}, err
	}

	summary := dto.DashboardResponse{
		TotalCriteria:     counts.Criteria,
		TotalSubCriteria:  counts.SubCriteria,
		TotalAlternatives: counts.Alternatives,
		TotalQuestions:    counts.Questions,
		TotalUsers:        counts.Users,
		TotalStudents:     counts.Students,
		AssessedStudents:  counts.AssessedStudents,
		AverageWeight:     scoring.Round(counts.AverageWeight, 2),
		CriteriaByDirection: map[string]int64{
			string(scoring.DirectionBenefit): counts.BenefitCriteria,
			string(scoring.DirectionCost):    counts.CostCriteria,
		},
		WeightsChart:       make([]dto.WeightChartPoint, 0, len(criteria)),
		LatestAlternatives: make([]dto.AlternativeResponse, 0, len(latest)),
		GeneratedAt:        s.now().UTC(),
	}
	for _, criterion := range criteria {
		summary.WeightsChart = append(summary.WeightsChart, dto.WeightChartPoint{
			Code:   criterion.Code,
			Name:   criterion.Name,
			Weight: criterion.Weight,
		})
	}
	for _, alternative := range latest {
		summary.LatestAlternatives = append(summary.LatestAlternatives, dto.NewAlternativeResponse(alternative))
	}

	span.SetAttributes(
		attribute.Int64("dashboard.criteria", counts.Criteria),
		attribute.Int64("dashboard.students", counts.Students),
	)

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}
