package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/spk-prodi-api/internal/config"
	"github.com/noah-isme/spk-prodi-api/internal/handler"
	"github.com/noah-isme/spk-prodi-api/internal/middleware"
	"github.com/noah-isme/spk-prodi-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	CriterionHandler    *handler.CriterionHandler
	SubCriterionHandler *handler.SubCriterionHandler
	AlternativeHandler  *handler.AlternativeHandler
	QuestionHandler     *handler.QuestionHandler
	AssessmentHandler   *handler.AssessmentHandler
	CalculationHandler  *handler.CalculationHandler
	RankingHandler      *handler.RankingHandler
	DashboardHandler    *handler.DashboardHandler
	UserHandler         *handler.UserHandler
	ProfileHandler      *handler.ProfileHandler
	ActivityHandler     *handler.ActivityHandler
	HealthChecks        map[string]handler.HealthCheckFunc
	JWTMiddleware       fiber.Handler
	LoginLimiter        fiber.Handler
	DisableMetrics      bool
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))
	if !deps.DisableMetrics {
		api.Get("/metrics", observability.MetricsHandler())
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Every guarded area gets its own prefix so role checks never leak onto
	// sibling routes.
	mount := func(prefix string, guards ...fiber.Handler) fiber.Router {
		return api.Group(prefix, append([]fiber.Handler{jwtMiddleware}, guards...)...)
	}
	teacherOnly := middleware.RequireTeacher()
	studentOnly := middleware.RequireStudent()

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), deps.LoginLimiter, jwtMiddleware)
	}

	// Catalogue managed by teachers
	if deps.CriterionHandler != nil {
		deps.CriterionHandler.Register(mount("/criteria", teacherOnly))
	}
	if deps.SubCriterionHandler != nil {
		deps.SubCriterionHandler.Register(mount("/sub-criteria", teacherOnly))
	}
	if deps.AlternativeHandler != nil {
		deps.AlternativeHandler.Register(mount("/alternatives", teacherOnly))
	}
	if deps.QuestionHandler != nil {
		deps.QuestionHandler.Register(mount("/questions", teacherOnly))
	}

	// Assessments, calculations and rankings: teachers pick a student, students see themselves
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.RegisterTeacher(mount("/assessments", teacherOnly))
		deps.AssessmentHandler.RegisterStudent(mount("/me/assessments", studentOnly))
	}
	if deps.CalculationHandler != nil {
		deps.CalculationHandler.RegisterTeacher(mount("/calculations", teacherOnly))
		deps.CalculationHandler.RegisterStudent(mount("/me/calculations", studentOnly))
	}
	if deps.RankingHandler != nil {
		deps.RankingHandler.RegisterTeacher(mount("/rankings", teacherOnly))
		deps.RankingHandler.RegisterStudent(mount("/me/rankings", studentOnly))
	}

	// Administration
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(mount("/dashboard", teacherOnly))
	}
	if deps.UserHandler != nil {
		deps.UserHandler.Register(mount("/users", teacherOnly))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(mount("/activities", teacherOnly))
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(mount("/profile"))
	}
}
