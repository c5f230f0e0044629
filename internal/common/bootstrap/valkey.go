package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/valkey-io/valkey-go"

	commonconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/valkeyx"
)

// DataValkeyConfig: 세션/락 저장용. 읽기 위주라 클라이언트 캐시를 켠다.
func DataValkeyConfig(cfg commonconfig.RedisConfig) valkeyx.Config {
	return valkeyx.Config{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		SocketPath:   cfg.SocketPath,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// MQValkeyConfig: Streams 용. 매 호출이 상태를 바꾸므로 캐시를 끈다.
func MQValkeyConfig(cfg commonconfig.ValkeyMQConfig) valkeyx.Config {
	return valkeyx.Config{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.Timeout,
		DisableCache: true,
	}
}

// OpenValkey: 클라이언트를 만들고 PING 으로 연결을 확인한다. 실패하면 클라이언트를 닫는다.
func OpenValkey(ctx context.Context, name string, cfg valkeyx.Config, logger *slog.Logger) (valkey.Client, func(), error) {
	client, err := valkeyx.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s client failed: %w", name, err)
	}
	if err := valkeyx.Ping(ctx, client); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("%s ping failed: %w", name, err)
	}

	logger.Info("valkey_connected", "name", name, "addr", cfg.Addr, "socket", cfg.SocketPath)
	return client, func() {
		client.Close()
		logger.Debug("valkey_client_closed", "name", name)
	}, nil
}
