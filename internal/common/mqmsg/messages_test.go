package mqmsg

import (
	"errors"
	"testing"
)

func TestParseInboundMessage(t *testing.T) {
	msg, err := ParseInboundMessage(map[string]string{
		FieldRoom:     " room1 ",
		FieldText:     "/발매 검색 zelda",
		FieldUserID:   "u1",
		FieldThreadID: "  ",
		FieldSender:   "홍길동",
		"extra":       "ignored",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ChatID != "room1" || msg.UserID != "u1" || msg.Content != "/발매 검색 zelda" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.ThreadID != nil {
		t.Fatalf("blank thread id should be nil, got %q", *msg.ThreadID)
	}
	if msg.Sender == nil || *msg.Sender != "홍길동" {
		t.Fatalf("unexpected sender: %v", msg.Sender)
	}
}

func TestParseInboundMessage_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		want   error
	}{
		{"room", map[string]string{FieldText: "a", FieldUserID: "u"}, ErrMissingChatID},
		{"text", map[string]string{FieldRoom: "r", FieldUserID: "u"}, ErrMissingContent},
		{"user", map[string]string{FieldRoom: "r", FieldText: "a"}, ErrMissingUserID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseInboundMessage(tc.fields); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestToStreamValues(t *testing.T) {
	thread := " t1 "
	values := NewFinal("room1", "hello", &thread).ToStreamValues()
	if values["chatId"] != "room1" || values["text"] != "hello" || values["type"] != "final" || values[FieldThreadID] != "t1" {
		t.Fatalf("unexpected values: %v", values)
	}

	noThread := NewWaiting("room1", "part", nil).ToStreamValues()
	if _, ok := noThread[FieldThreadID]; ok {
		t.Fatalf("thread id should be omitted: %v", noThread)
	}
	if noThread["type"] != "waiting" {
		t.Fatalf("unexpected type: %v", noThread["type"])
	}
}
