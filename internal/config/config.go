package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	EventSubjectBase    string
	CORSAllowOrigins    string
	JWTSecret           string
	JWTTTL              time.Duration
	DashboardCacheTTL   time.Duration
	LoginRateLimit      int
	LoginRateWindow     time.Duration
	ScoringRounding     string
	SeedTeacherUsername string
	SeedTeacherPassword string
	SeedTeacherName     string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// SeedsTeacher reports whether a bootstrap teacher account is configured.
func (c Config) SeedsTeacher() bool {
	return c.SeedTeacherUsername != "" && c.SeedTeacherPassword != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SPK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SPK Prodi API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.subject_base", "spk")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("jwt.ttl", "168h")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("auth.login_rate_limit", 10)
	v.SetDefault("auth.login_rate_window", "1m")
	v.SetDefault("scoring.rounding", "early")
	v.SetDefault("seed.teacher_name", "Guru BK")

	jwtTTL, err := parseDuration(v, "jwt.ttl")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v, "dashboard.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	loginWindow, err := parseDuration(v, "auth.login_rate_window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		EventSubjectBase:    v.GetString("events.subject_base"),
		CORSAllowOrigins:    v.GetString("cors.allow_origins"),
		JWTSecret:           v.GetString("jwt.secret"),
		JWTTTL:              jwtTTL,
		DashboardCacheTTL:   cacheTTL,
		LoginRateLimit:      v.GetInt("auth.login_rate_limit"),
		LoginRateWindow:     loginWindow,
		ScoringRounding:     strings.ToLower(strings.TrimSpace(v.GetString("scoring.rounding"))),
		SeedTeacherUsername: strings.TrimSpace(v.GetString("seed.teacher_username")),
		SeedTeacherPassword: v.GetString("seed.teacher_password"),
		SeedTeacherName:     v.GetString("seed.teacher_name"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.ScoringRounding != "early" && cfg.ScoringRounding != "late" {
		return Config{}, fmt.Errorf("invalid scoring rounding %q: expected early or late", cfg.ScoringRounding)
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return duration, nil
}
