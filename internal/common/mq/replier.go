package mq

import (
	"context"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/textutil"
)

// PublishFunc: 아웃바운드 메시지 하나를 내보낸다.
type PublishFunc func(ctx context.Context, msg mqmsg.OutboundMessage) error

// ReplierConfig: MaxLength 를 넘는 응답은 줄 단위로 나눠 보낸다.
type ReplierConfig struct {
	MaxLength int
	// BusyKey: 채팅방이 이미 처리 중일 때 보낼 메시지 키
	BusyKey string
	// ErrorsAsFinal: 안내 문구를 error 대신 final 타입으로 보낸다.
	ErrorsAsFinal bool
}

// Replier: 채팅방 하나로 가는 응답을 메시지 카탈로그와 응답 스트림으로 만든다.
type Replier struct {
	texts   *messageprovider.Provider
	publish PublishFunc
	cfg     ReplierConfig
}

func NewReplier(texts *messageprovider.Provider, publish PublishFunc, cfg ReplierConfig) *Replier {
	return &Replier{texts: texts, publish: publish, cfg: cfg}
}

// Text: 완성된 응답 텍스트
func (r *Replier) Text(ctx context.Context, chatID string, threadID *string, text string) error {
	return PublishChunked(ctx, r.publish, mqmsg.NewFinal(chatID, text, threadID), r.cfg.MaxLength)
}

// Key: 카탈로그 키의 안내 문구
func (r *Replier) Key(ctx context.Context, chatID string, threadID *string, key string, params ...messageprovider.Param) error {
	text := r.texts.Get(key, params...)
	if r.cfg.ErrorsAsFinal {
		return r.publish(ctx, mqmsg.NewFinal(chatID, text, threadID))
	}
	return r.publish(ctx, mqmsg.NewError(chatID, text, threadID))
}

// Busy: 처리 중 안내는 설정과 무관하게 error 타입이다.
func (r *Replier) Busy(ctx context.Context, chatID string, threadID *string) error {
	return r.publish(ctx, mqmsg.NewError(chatID, r.texts.Get(r.cfg.BusyKey), threadID))
}

// PublishChunked: msg.Text 를 maxLength 이하 조각으로 보낸다. 마지막 조각만 msg.Type 을 갖고
// 앞 조각은 waiting 이다. 빈 텍스트는 빈 메시지 하나로 보낸다.
func PublishChunked(ctx context.Context, publish PublishFunc, msg mqmsg.OutboundMessage, maxLength int) error {
	chunks := textutil.ChunkByLines(msg.Text, maxLength)
	if len(chunks) == 0 {
		return publish(ctx, msg)
	}
	for i, chunk := range chunks {
		part := msg
		part.Text = chunk
		if i < len(chunks)-1 {
			part.Type = mqmsg.OutboundWaiting
		}
		if err := publish(ctx, part); err != nil {
			return err
		}
	}
	return nil
}
