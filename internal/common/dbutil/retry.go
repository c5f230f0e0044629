// Package dbutil: gorm 연결 도우미
package dbutil

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"gorm.io/gorm"
)

// RetryConfig: 0 값 필드는 기본값(5회, 2초에서 시작, 최대 30초)을 쓴다.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
}

// Conn: 열린 gorm 핸들과 그 밑의 *sql.DB
type Conn struct {
	DB    *gorm.DB
	SQLDB *sql.DB
}

// OpenFunc: 한 번의 연결 시도
type OpenFunc func(ctx context.Context) (*gorm.DB, *sql.DB, error)

// OpenWithRetry: 컨테이너가 함께 뜰 때 DB 가 아직 준비되지 않은 경우를 견디도록 지수 백오프로 재시도한다.
func OpenWithRetry(ctx context.Context, open OpenFunc, cfg RetryConfig, logger *slog.Logger) (*gorm.DB, *sql.DB, error) {
	defaults := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaults.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaults.MaxDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.BaseDelay
	policy.MaxInterval = cfg.MaxDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0

	attempts := 0
	conn, err := backoff.Retry(ctx, func() (Conn, error) {
		attempts++
		db, sqlDB, err := open(ctx)
		if err != nil {
			return Conn{}, err
		}
		return Conn{DB: db, SQLDB: sqlDB}, nil
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(cfg.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, delay time.Duration) {
			logger.Warn("db_connect_retry", "attempt", attempts, "max_attempts", cfg.MaxAttempts, "delay", delay, "err", err)
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect failed after %d attempts: %w", attempts, err)
	}
	if attempts > 1 {
		logger.Info("db_connect_success_after_retry", "attempts", attempts)
	}
	return conn.DB, conn.SQLDB, nil
}
