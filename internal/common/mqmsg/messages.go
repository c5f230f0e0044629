// Package mqmsg: 카카오 브리지와 주고받는 스트림 메시지 형식
package mqmsg

import (
	"errors"
	"strings"
)

// 브리지 인바운드 필드 이름
const (
	FieldRoom     = "room"
	FieldText     = "text"
	FieldSender   = "sender"
	FieldThreadID = "threadId"
	FieldUserID   = "userId"
)

// 필수 필드가 비어 있을 때의 에러
var (
	ErrMissingChatID  = errors.New("inbound: room is empty")
	ErrMissingContent = errors.New("inbound: text is empty")
	ErrMissingUserID  = errors.New("inbound: userId is empty")
)

// InboundMessage: 채팅방에서 들어온 메시지. ThreadID, Sender 는 없으면 nil.
type InboundMessage struct {
	ChatID   string
	UserID   string
	Content  string
	ThreadID *string
	Sender   *string
}

// ParseInboundMessage: room, text, userId 가 모두 있어야 한다. 값 앞뒤 공백은 버린다.
func ParseInboundMessage(fields map[string]string) (InboundMessage, error) {
	required := []struct {
		field string
		err   error
	}{
		{FieldRoom, ErrMissingChatID},
		{FieldText, ErrMissingContent},
		{FieldUserID, ErrMissingUserID},
	}
	for _, req := range required {
		if strings.TrimSpace(fields[req.field]) == "" {
			return InboundMessage{}, req.err
		}
	}

	return InboundMessage{
		ChatID:   strings.TrimSpace(fields[FieldRoom]),
		UserID:   strings.TrimSpace(fields[FieldUserID]),
		Content:  strings.TrimSpace(fields[FieldText]),
		ThreadID: optional(fields[FieldThreadID]),
		Sender:   optional(fields[FieldSender]),
	}, nil
}

// OutboundType: 응답 종류. waiting 은 같은 응답의 조각이 더 온다는 뜻이다.
type OutboundType string

const (
	OutboundWaiting OutboundType = "waiting"
	OutboundFinal   OutboundType = "final"
	OutboundError   OutboundType = "error"
)

// OutboundMessage: 봇 응답
type OutboundMessage struct {
	ChatID   string
	Text     string
	ThreadID *string
	Type     OutboundType
}

func NewWaiting(chatID, text string, threadID *string) OutboundMessage {
	return outbound(OutboundWaiting, chatID, text, threadID)
}

func NewFinal(chatID, text string, threadID *string) OutboundMessage {
	return outbound(OutboundFinal, chatID, text, threadID)
}

func NewError(chatID, text string, threadID *string) OutboundMessage {
	return outbound(OutboundError, chatID, text, threadID)
}

func outbound(kind OutboundType, chatID, text string, threadID *string) OutboundMessage {
	return OutboundMessage{ChatID: chatID, Text: text, ThreadID: threadID, Type: kind}
}

// ToStreamValues: XADD 필드. threadId 는 값이 있을 때만 싣는다.
func (m OutboundMessage) ToStreamValues() map[string]string {
	values := map[string]string{"chatId": m.ChatID, "text": m.Text, "type": string(m.Type)}
	if m.ThreadID != nil {
		if thread := optional(*m.ThreadID); thread != nil {
			values[FieldThreadID] = *thread
		}
	}
	return values
}

func optional(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
