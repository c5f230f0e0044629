// Package gamesession: 채팅방 단위 대화 상태를 Valkey 에 JSON 으로 보관하는 제네릭 저장소
package gamesession

import (
	"context"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/valkeyx"
)

// Store: T 를 "{prefix}:{sessionID}" 키에 저장한다. ttl 0 은 만료 없음이다.
// 저장할 때마다 TTL 이 다시 잡히므로 마지막 상호작용 기준으로 만료된다.
type Store[T any] struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewStore[T any](client valkey.Client, prefix string, ttl time.Duration, logger *slog.Logger) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[T]{client: client, prefix: prefix, ttl: max(ttl, 0), logger: logger}
}

func (s *Store[T]) Key(sessionID string) string {
	return valkeyx.Key(s.prefix, sessionID)
}

func (s *Store[T]) Save(ctx context.Context, sessionID string, data *T) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return cerrors.RedisError{Operation: "session_marshal", Err: err}
	}
	if err := valkeyx.SetStringEX(ctx, s.client, s.Key(sessionID), string(payload), s.ttl); err != nil {
		return cerrors.RedisError{Operation: "session_save", Err: err}
	}
	s.logger.Debug("session_saved", "session_id", sessionID, "bytes", len(payload))
	return nil
}

// Load: 없거나 만료된 세션은 (nil, nil)
func (s *Store[T]) Load(ctx context.Context, sessionID string) (*T, error) {
	raw, ok, err := valkeyx.GetBytes(ctx, s.client, s.Key(sessionID))
	if err != nil {
		return nil, cerrors.RedisError{Operation: "session_load", Err: err}
	}
	if !ok {
		return nil, nil
	}

	data := new(T)
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, cerrors.RedisError{Operation: "session_unmarshal", Err: err}
	}
	return data, nil
}

func (s *Store[T]) Delete(ctx context.Context, sessionID string) error {
	if err := valkeyx.DeleteKeys(ctx, s.client, s.Key(sessionID)); err != nil {
		return cerrors.RedisError{Operation: "session_delete", Err: err}
	}
	s.logger.Debug("session_deleted", "session_id", sessionID)
	return nil
}
