// Package processinglock: 채팅방 단위 처리 락. 한 방에서 상태를 바꾸는 명령이 동시에 돌지 않게 한다.
package processinglock

import (
	"context"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/valkeyx"
)

// Lock: SET NX EX 로 잡는 락. TTL 이 지나면 처리 중이던 명령이 끝나지 않아도 풀린다.
type Lock struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// New: 키는 "{prefix}:{chatID}" 이다.
func New(client valkey.Client, prefix string, ttl time.Duration, logger *slog.Logger) *Lock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lock{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// StartProcessing: 락이 이미 있으면 cerrors.LockError 를 돌려준다.
func (l *Lock) StartProcessing(ctx context.Context, chatID string) error {
	cmd := l.client.B().Set().Key(l.key(chatID)).Value(time.Now().UTC().Format(time.RFC3339)).Nx().Ex(l.ttl).Build()
	err := l.client.Do(ctx, cmd).Error()
	switch {
	case err == nil:
		l.logger.Debug("processing_started", "chat_id", chatID)
		return nil
	case valkeyx.IsNil(err):
		return cerrors.LockError{SessionID: chatID, Description: "already processing"}
	default:
		return cerrors.RedisError{Operation: "processing_start", Err: err}
	}
}

func (l *Lock) FinishProcessing(ctx context.Context, chatID string) error {
	if err := valkeyx.DeleteKeys(ctx, l.client, l.key(chatID)); err != nil {
		return cerrors.RedisError{Operation: "processing_finish", Err: err}
	}
	l.logger.Debug("processing_finished", "chat_id", chatID)
	return nil
}

func (l *Lock) IsProcessing(ctx context.Context, chatID string) (bool, error) {
	n, err := l.client.Do(ctx, l.client.B().Exists().Key(l.key(chatID)).Build()).AsInt64()
	if err != nil {
		return false, cerrors.RedisError{Operation: "processing_exists", Err: err}
	}
	return n > 0, nil
}

func (l *Lock) key(chatID string) string {
	return valkeyx.Key(l.prefix, chatID)
}
