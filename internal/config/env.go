package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"marca-checker/internal/ai"
	"marca-checker/internal/cache"
	"marca-checker/internal/impi"
	"marca-checker/internal/store"
)

// DBDisabled is the MARCA_DB_PATH value that turns the consultation log off.
const DBDisabled = "off"

// Settings is the process configuration read once at startup.
type Settings struct {
	AI             ai.Config
	IMPI           impi.Config
	Fallback       bool
	FallbackDelay  time.Duration
	CacheSize      int
	RedisAddr      string
	CacheTTL       time.Duration
	DBPath         string
	Port           string
	AllowedOrigins []string
	LogLevel       logrus.Level
}

// FromEnv reads Settings from the process environment, keeping defaults for unset
// or unparseable values.
func FromEnv() Settings {
	s := Settings{
		AI: ai.Config{
			APIKey:      strings.TrimSpace(os.Getenv("API_KEY_GEMINI")),
			BaseURL:     strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
			Models:      envList("GEMINI_MODELS"),
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		IMPI: impi.Config{
			BootstrapURL:     strings.TrimSpace(os.Getenv("IMPI_BOOTSTRAP_URL")),
			SearchURL:        strings.TrimSpace(os.Getenv("IMPI_SEARCH_URL")),
			BootstrapTimeout: envDuration("IMPI_BOOTSTRAP_TIMEOUT", 15*time.Second),
			SearchTimeout:    envDuration("IMPI_SEARCH_TIMEOUT", 20*time.Second),
		},
		Fallback:       envBool("IMPI_FALLBACK"),
		FallbackDelay:  envDuration("IMPI_FALLBACK_DELAY", 2*time.Second),
		CacheSize:      envInt("AI_CACHE_SIZE", cache.DefaultCapacity),
		RedisAddr:      strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		CacheTTL:       envDuration("AI_CACHE_TTL", 24*time.Hour),
		DBPath:         filepath.Join("data", "marca-checker.db"),
		Port:           "10000",
		AllowedOrigins: envList("ALLOWED_ORIGINS"),
		LogLevel:       logrus.InfoLevel,
	}
	if temp := os.Getenv("GEMINI_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 32); err == nil && v > 0 {
			s.AI.Temperature = float32(v)
		}
	}
	if raw := strings.TrimSpace(os.Getenv("GEMINI_MAX_TOKENS")); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 {
			s.AI.MaxTokens = int32(v)
		}
	}
	if override := strings.TrimSpace(os.Getenv("MARCA_DB_PATH")); override != "" {
		s.DBPath = override
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		s.Port = port
	}
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		if parsed, err := logrus.ParseLevel(level); err == nil {
			s.LogLevel = parsed
		}
	}
	return s
}

// ConfigureLogging applies the log level and formatter to the package-level logger.
func (s Settings) ConfigureLogging() {
	logrus.SetLevel(s.LogLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// BuildCache returns the advisor memo cache and its backend name. An unreachable Redis
// degrades to the in-process cache. The returned close func is never nil.
func (s Settings) BuildCache(ctx context.Context) (ai.Cache, string, func()) {
	if s.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		shared, err := cache.NewRedis(pingCtx, s.RedisAddr, s.CacheTTL)
		if err == nil {
			logrus.WithField("addr", s.RedisAddr).Info("advisor cache backed by redis")
			return shared, "redis", func() { _ = shared.Close() }
		}
		logrus.WithError(err).Warn("redis unavailable, using in-memory advisor cache")
	}
	return cache.NewMemory(s.CacheSize), "memory", func() {}
}

// BuildAdvisor constructs the AI advisor. Without a credential the advisor runs in fallback mode.
func (s Settings) BuildAdvisor(ctx context.Context, memo ai.Cache) (*ai.Advisor, error) {
	client, err := ai.NewGeminiClient(ctx, s.AI)
	switch {
	case err == nil:
		advisor := ai.NewAdvisor(client, s.AI, memo)
		logrus.WithField("models", advisor.Models()).Info("ai advisor enabled")
		return advisor, nil
	case errors.Is(err, ai.ErrDisabled):
		logrus.Warn("API_KEY_GEMINI not set, ai advisor disabled")
		return ai.NewAdvisor(nil, s.AI, memo), nil
	default:
		return nil, fmt.Errorf("ai client: %w", err)
	}
}

// BuildProbers returns the primary registry prober and, when enabled, the secondary one.
func (s Settings) BuildProbers() (impi.Prober, impi.Prober) {
	primary := impi.NewClient(s.IMPI)
	if !s.Fallback {
		return primary, nil
	}
	return primary, impi.NewSecondaryClient("")
}

// OpenStore opens the consultation log. It returns nil when the log is disabled.
func (s Settings) OpenStore() (*store.Database, error) {
	path := strings.TrimSpace(s.DBPath)
	if path == "" || strings.EqualFold(path, DBDisabled) {
		logrus.Info("consultation log disabled")
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := store.Open(path, true)
	if err != nil {
		return nil, err
	}
	logrus.WithField("path", path).Info("consultation log ready")
	return db, nil
}

func envList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}
