package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/bootstrap"
	commonconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/config"
	rapp "github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/app"
	rconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/config"
)

// Version: -ldflags "-X main.Version=..." 로 주입한다.
var Version = "dev"

func main() {
	logger := bootstrap.NewLogger()
	slog.SetDefault(logger)

	entry := bootstrap.Entrypoint[rconfig.Config]{
		LogFileName: "releasebot.log",
		Load:        rconfig.LoadFromEnv,
		Logging: func(cfg *rconfig.Config) (commonconfig.LogConfig, bool) {
			return cfg.Log, cfg.Telemetry.Enabled
		},
		Initialize: rapp.Initializer(Version),
	}
	if finalLogger, err := entry.Run(context.Background(), logger); err != nil {
		finalLogger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
