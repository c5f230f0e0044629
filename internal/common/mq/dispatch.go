package mq

import (
	"context"
	"log/slog"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mqmsg"
)

// InboundHandler: 파싱된 채팅 메시지 처리기
type InboundHandler interface {
	HandleMessage(ctx context.Context, message mqmsg.InboundMessage)
}

// Dispatch: 스트림 엔트리를 InboundMessage 로 풀어 handler 에 넘기는 StreamHandler.
// 형식이 잘못된 엔트리는 경고만 남기고 ACK 되도록 nil 을 돌려준다.
func Dispatch(handler InboundHandler, logger *slog.Logger) StreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, entry XMessage) error {
		inbound, err := mqmsg.ParseInboundMessage(entry.Values)
		if err != nil {
			logger.WarnContext(ctx, "inbound_entry_invalid", "id", entry.ID, "err", err)
			return nil
		}
		logger.DebugContext(ctx, "inbound_entry", "id", entry.ID, "chat_id", inbound.ChatID, "user_id", inbound.UserID)
		handler.HandleMessage(ctx, inbound)
		return nil
	}
}
