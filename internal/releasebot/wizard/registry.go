package wizard

import (
	"context"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/gamesession"
)

const sessionKeyPrefix = "release:wizard:session"

// SessionStore: 채팅방 ID 로 마법사 세션을 보관한다.
type SessionStore interface {
	Load(ctx context.Context, chatID string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, chatID string) error
}

// Registry: Valkey 기반 세션 레지스트리. ttl 이 0 이면 만료 없이 보관한다.
type Registry struct {
	store *gamesession.Store[Session]
}

// NewRegistry: 세션 레지스트리를 생성한다.
func NewRegistry(client valkey.Client, logger *slog.Logger, ttl time.Duration) *Registry {
	return &Registry{
		store: gamesession.NewStore[Session](client, sessionKeyPrefix, ttl, logger),
	}
}

// Load: 세션이 없으면 nil 을 반환한다.
func (r *Registry) Load(ctx context.Context, chatID string) (*Session, error) {
	return r.store.Load(ctx, chatID)
}

// Save 는 세션을 저장한다.
func (r *Registry) Save(ctx context.Context, session *Session) error {
	return r.store.Save(ctx, session.ChatID, session)
}

// Delete 는 세션을 제거한다.
func (r *Registry) Delete(ctx context.Context, chatID string) error {
	return r.store.Delete(ctx, chatID)
}
