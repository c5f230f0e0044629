// Package accesscontrol: 설정의 허용/차단 목록으로 메시지 처리 여부를 가린다.
package accesscontrol

import (
	"slices"

	commonconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/config"
)

// Denial: 거부 사유. Allowed 면 처리한다.
type Denial int

const (
	Allowed Denial = iota
	UserBlocked
	ChatBlocked
	ChatNotAllowed // 허용 목록 밖의 방
)

func (d Denial) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case UserBlocked:
		return "user_blocked"
	case ChatBlocked:
		return "chat_blocked"
	case ChatNotAllowed:
		return "chat_not_allowed"
	default:
		return "unknown"
	}
}

// Checker: 순서는 passthrough, 사용자 차단, (Enabled 일 때) 방 차단, 방 허용 목록이다.
// 사용자 차단은 Enabled 와 무관하게 적용된다.
type Checker struct {
	cfg commonconfig.AccessConfig
}

func New(cfg commonconfig.AccessConfig) *Checker {
	return &Checker{cfg: cfg}
}

func (c *Checker) Check(userID, chatID string) Denial {
	switch {
	case c == nil || c.cfg.Passthrough:
		return Allowed
	case slices.Contains(c.cfg.BlockedUserIDs, userID):
		return UserBlocked
	case !c.cfg.Enabled:
		return Allowed
	case slices.Contains(c.cfg.BlockedChatIDs, chatID):
		return ChatBlocked
	case len(c.cfg.AllowedChatIDs) > 0 && !slices.Contains(c.cfg.AllowedChatIDs, chatID):
		return ChatNotAllowed
	default:
		return Allowed
	}
}
