package app

import (
	"context"
	"log/slog"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/config"
)

// Initializer: 빌드 버전을 /health 에 싣는 초기화 함수를 만든다.
func Initializer(version string) func(context.Context, *config.Config, *slog.Logger) (*bootstrap.ServerApp, func(), error) {
	return func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*bootstrap.ServerApp, func(), error) {
		return initialize(ctx, version, cfg, logger)
	}
}

// cleanups: 열린 자원을 연 순서의 역순으로 닫는다.
type cleanups []func()

func (c *cleanups) add(fn func()) { *c = append(*c, fn) }

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func initialize(ctx context.Context, version string, cfg *config.Config, logger *slog.Logger) (app *bootstrap.ServerApp, cleanup func(), err error) {
	var opened cleanups
	defer func() {
		if err != nil {
			opened.run()
		}
	}()

	msgProvider, err := newReleaseMessageProvider()
	if err != nil {
		return nil, nil, err
	}

	closeTelemetry, err := newReleaseTelemetry(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	opened.add(closeTelemetry)

	catalogClient, err := newReleaseCatalog(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	dataValkey, closeDataValkey, err := newReleaseDataValkey(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	opened.add(closeDataValkey)

	db, sqlDB, closeDB, err := newReleaseDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	opened.add(closeDB)

	repo, err := newReleaseRepository(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	mqValkey, closeMQValkey, err := newReleaseMQValkey(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	opened.add(closeMQValkey)

	replyPublisher := newReleaseReplyPublisher(cfg, mqValkey, logger)
	services, err := newReleaseServices(cfg, catalogClient, repo, dataValkey, rmqNotifier(replyPublisher), msgProvider, logger)
	if err != nil {
		return nil, nil, err
	}

	pipeline := newReleaseMQPipeline(cfg, mqValkey, dataValkey, replyPublisher, services, repo, msgProvider, logger)
	reporter := newReleaseHealth(version, dataValkey, mqValkey, sqlDB)
	server := newReleaseHTTPServer(cfg, newReleaseHTTPHandler(cfg, repo, services.scheduler, reporter, logger))

	return newReleaseServerApp(cfg, logger, server, pipeline, services.scheduler), opened.run, nil
}
