package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first .env file found among envFilePath (searched upward
// from the working directory), then fills App from the environment. Without
// a usable file it falls back to ./.env, and then to the environment alone.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	for _, name := range envFilePath {
		path, err := findUpward(name)
		if err != nil {
			logger.Debug("Environment file not found", "name", name)
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.Error("Failed to load environment file", "path", path, "error", err)
			continue
		}
		logger.Info("Environment loaded", "path", path)
		return loadFromEnv()
	}
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using the process environment")
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Env == "" {
		cfg.Env = "development"
	}

	logger := slog.Default()
	logger.Info("App config loaded",
		"env", cfg.Env,
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
		"db", maskValue(cfg.DB.Url),
		"auth_jwt_expiry", cfg.Auth.Jwt.Expiry,
		"auth_jwt_secret", maskValue(cfg.Auth.Jwt.Secret),
		"event_bus", cfg.EventBus.Driver,
		"cache", cfg.Cache.Driver,
		"cache_ttl", cfg.Cache.TTL,
		"idempotency_ttl", cfg.IdempotencyTTL,
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}

// findUpward returns the first filename found in the working directory or
// one of its parents.
func findUpward(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", err
		}
		return filename, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
