package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"cms-backend/internal/infrastructure/database"
)

// Pool mặc định cho CMS: đọc cây chủ yếu qua cache nên ít connection là đủ
const (
	defaultDBMaxConns       = 10
	defaultDBMinConns       = 2
	defaultDBConnLifetime   = 30 * time.Minute
	defaultDBConnIdleTime   = 5 * time.Minute
	defaultDBHealthCheck    = 30 * time.Second
	defaultDBMaxRetries     = 5
	defaultDBRetryDelay     = time.Second
	defaultDBConnectTimeout = 5 * time.Second
)

// dbEnv giữ lỗi parse đầu tiên, biến sai định dạng không bị âm thầm thay bằng default
type dbEnv struct {
	err error
}

func (e *dbEnv) intVar(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" || e.err != nil {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
		return def
	}
	return v
}

func (e *dbEnv) durationVar(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" || e.err != nil {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
		return def
	}
	return v
}

// LoadDatabaseConfig đọc DB_* từ environment
func LoadDatabaseConfig() (*database.DBConfig, error) {
	env := &dbEnv{}

	cfg := &database.DBConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              env.intVar("DB_PORT", 5432),
		Username:          getEnv("DB_USER", "cms"),
		Password:          getEnv("DB_PASSWORD", "secret"),
		DBName:            getEnv("DB_NAME", "cms_dev"),
		SSLMode:           getEnv("DB_SSLMODE", "disable"),
		MaxConns:          int32(env.intVar("DB_MAX_CONNECTIONS", defaultDBMaxConns)),
		MinConns:          int32(env.intVar("DB_MIN_CONNECTIONS", defaultDBMinConns)),
		MaxConnLifetime:   env.durationVar("DB_MAX_CONN_LIFETIME", defaultDBConnLifetime),
		MaxConnIdleTime:   env.durationVar("DB_MAX_CONN_IDLE_TIME", defaultDBConnIdleTime),
		HealthCheckPeriod: env.durationVar("DB_HEALTH_CHECK_PERIOD", defaultDBHealthCheck),
		MaxRetries:        env.intVar("DB_MAX_RETRIES", defaultDBMaxRetries),
		RetryDelay:        env.durationVar("DB_RETRY_DELAY", defaultDBRetryDelay),
		ConnectTimeout:    env.durationVar("DB_CONNECT_TIMEOUT", defaultDBConnectTimeout),
	}
	if env.err != nil {
		return nil, env.err
	}

	switch {
	case cfg.MaxConns < 1:
		return nil, errors.New("DB_MAX_CONNECTIONS must be at least 1")
	case cfg.MinConns < 0 || cfg.MinConns > cfg.MaxConns:
		return nil, fmt.Errorf("DB_MIN_CONNECTIONS must be between 0 and %d", cfg.MaxConns)
	case cfg.MaxRetries < 0:
		return nil, errors.New("DB_MAX_RETRIES must not be negative")
	}
	return cfg, nil
}
