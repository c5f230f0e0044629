// Package bootstrap: 봇 프로세스의 시작과 종료 처리. 로거 구성, Valkey 연결, HTTP 서버와 백그라운드 작업 실행을 맡는다.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/httpserver"
)

// Task: HTTP 서버와 함께 도는 작업. Run 이 에러를 돌려주면 프로세스 전체가 내려간다.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// ServerApp: HTTP 서버 하나와 백그라운드 작업 묶음
type ServerApp struct {
	Name            string
	Logger          *slog.Logger
	Server          *http.Server
	ShutdownTimeout time.Duration
	Tasks           []Task
}

func NewServerApp(name string, logger *slog.Logger, server *http.Server, shutdownTimeout time.Duration, tasks ...Task) *ServerApp {
	return &ServerApp{
		Name:            name,
		Logger:          logger,
		Server:          server,
		ShutdownTimeout: shutdownTimeout,
		Tasks:           tasks,
	}
}

// Run: SIGINT/SIGTERM 또는 ctx 취소, 혹은 작업 하나의 실패까지 실행한다.
func (a *ServerApp) Run(ctx context.Context) error {
	if a == nil {
		return nil
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range a.Tasks {
		if task.Run == nil {
			continue
		}
		g.Go(func() error {
			if err := task.Run(gctx); err != nil {
				a.Logger.Error("background_task_failed", "task", task.Name, "err", err)
				return fmt.Errorf("%s failed: %w", task.Name, err)
			}
			return nil
		})
	}

	a.Logger.Info("server_start", "app", a.Name, "addr", a.Server.Addr, "tasks", len(a.Tasks))
	g.Go(func() error {
		return httpserver.Serve(gctx, a.Server, a.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s stopped: %w", a.Name, err)
	}
	a.Logger.Info("server_stopped", "app", a.Name)
	return nil
}
