package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	commonconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/config"
)

// Entrypoint: 봇 main 이 채우는 시작 절차. C 는 봇별 설정 타입이다.
type Entrypoint[C any] struct {
	LogFileName string
	Load        func() (*C, error)
	// Logging: 파일 로그 설정과 trace 상관관계 여부
	Logging    func(*C) (commonconfig.LogConfig, bool)
	Initialize func(context.Context, *C, *slog.Logger) (*ServerApp, func(), error)
}

// Run: .env 로드, 설정 로드, 로거 교체, 초기화, 실행 순으로 진행한다.
// 반환하는 로거는 마지막으로 쓰던 로거라 main 에서 종료 에러를 남길 때 쓴다.
func (e Entrypoint[C]) Run(ctx context.Context, logger *slog.Logger) (*slog.Logger, error) {
	if err := commonconfig.LoadDotenv(); err != nil {
		return logger, fmt.Errorf("load dotenv failed: %w", err)
	}

	cfg, err := e.Load()
	if err != nil {
		return logger, err
	}

	if e.Logging != nil {
		logCfg, traceCorrelation := e.Logging(cfg)
		switch {
		case strings.TrimSpace(logCfg.Dir) != "":
			logger, err = NewFileLogger(logCfg, e.LogFileName, traceCorrelation)
			if err != nil {
				return NewLogger(), fmt.Errorf("enable file logging failed: %w", err)
			}
		case traceCorrelation:
			logger = NewTraceLogger()
		}
		slog.SetDefault(logger)
	}

	app, cleanup, err := e.Initialize(ctx, cfg, logger)
	if err != nil {
		return logger, fmt.Errorf("initialize failed: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	return logger, app.Run(ctx)
}
