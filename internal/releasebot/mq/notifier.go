package mq

import (
	"context"

	commonmq "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mq"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mqmsg"
)

// ReplyNotifier: 스케줄러의 출시 알림을 응답 스트림으로 발행한다.
type ReplyNotifier struct {
	publish   commonmq.PublishFunc
	maxLength int
}

// NewReplyNotifier: ReplyNotifier 생성
func NewReplyNotifier(publisher *commonmq.ReplyPublisher, maxLength int) *ReplyNotifier {
	return &ReplyNotifier{publish: publisher.Publish, maxLength: maxLength}
}

// Notify: chatID 로 알림 텍스트를 전송한다.
func (n *ReplyNotifier) Notify(ctx context.Context, chatID string, text string) error {
	return commonmq.PublishChunked(ctx, n.publish, mqmsg.NewFinal(chatID, text, nil), n.maxLength)
}
