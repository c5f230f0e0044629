package mq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	commonconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/testhelper"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type capture struct {
	mu   sync.Mutex
	msgs []mqmsg.OutboundMessage
}

func (c *capture) publish(_ context.Context, msg mqmsg.OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestPublishChunked(t *testing.T) {
	var c capture
	text := strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8) + "\n" + "c"

	if err := PublishChunked(context.Background(), c.publish, mqmsg.NewFinal("room1", text, nil), 10); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(c.msgs) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(c.msgs), c.msgs)
	}
	if first := c.msgs[0]; first.Type != mqmsg.OutboundWaiting || first.Text != "aaaaaaaa" {
		t.Fatalf("unexpected first chunk: %+v", first)
	}
	if last := c.msgs[1]; last.Type != mqmsg.OutboundFinal || last.Text != "bbbbbbbb\nc" {
		t.Fatalf("unexpected last chunk: %+v", last)
	}
}

func TestPublishChunked_EmptyText(t *testing.T) {
	var c capture
	if err := PublishChunked(context.Background(), c.publish, mqmsg.NewFinal("room1", "", nil), 10); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(c.msgs) != 1 || c.msgs[0].Type != mqmsg.OutboundFinal || c.msgs[0].Text != "" {
		t.Fatalf("expected one empty final, got %+v", c.msgs)
	}
}

func TestReplier_Notices(t *testing.T) {
	provider, err := messageprovider.NewFromYAML("error:\n  busy: 처리 중\n  generic: 실패 {reason}\n")
	if err != nil {
		t.Fatalf("provider failed: %v", err)
	}

	var c capture
	replier := NewReplier(provider, c.publish, ReplierConfig{
		MaxLength:     100,
		BusyKey:       "error.busy",
		ErrorsAsFinal: true,
	})

	ctx := context.Background()
	if err := replier.Key(ctx, "room1", nil, "error.generic", messageprovider.P("reason", "timeout")); err != nil {
		t.Fatalf("send error failed: %v", err)
	}
	if err := replier.Busy(ctx, "room1", nil); err != nil {
		t.Fatalf("send lock error failed: %v", err)
	}

	if c.msgs[0].Type != mqmsg.OutboundFinal || c.msgs[0].Text != "실패 timeout" {
		t.Fatalf("unexpected error message: %+v", c.msgs[0])
	}
	if c.msgs[1].Type != mqmsg.OutboundError || c.msgs[1].Text != "처리 중" {
		t.Fatalf("unexpected lock message: %+v", c.msgs[1])
	}
}

func TestReplyPublisher_WritesStreamEntry(t *testing.T) {
	client, mr := testhelper.NewTestValkeyClient(t)
	publisher := NewReplyPublisher(NewStreamPublisher(client, discardLogger(), StreamPublisherConfig{Stream: "test:reply", MaxLen: 100}))

	thread := "t1"
	if err := publisher.Publish(context.Background(), mqmsg.NewFinal("room1", "hello", &thread)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	entries, err := mr.Stream("test:reply")
	if err != nil {
		t.Fatalf("read stream failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := map[string]string{}
	values := entries[0].Values
	for i := 0; i+1 < len(values); i += 2 {
		fields[values[i]] = values[i+1]
	}
	if fields["chatId"] != "room1" || fields["text"] != "hello" || fields["type"] != "final" || fields["threadId"] != "t1" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

type recordingHandler struct {
	received chan mqmsg.InboundMessage
}

func (h *recordingHandler) HandleMessage(_ context.Context, message mqmsg.InboundMessage) {
	h.received <- message
}

func TestStreamConsumer_DeliversInboundMessages(t *testing.T) {
	client, _ := testhelper.NewTestValkeyClient(t)
	logger := discardLogger()

	inbound := NewStreamPublisher(client, logger, StreamPublisherConfig{Stream: "test:inbound"})
	if _, err := inbound.Publish(context.Background(), map[string]string{
		mqmsg.FieldRoom:   "room1",
		mqmsg.FieldText:   "/발매 도움말",
		mqmsg.FieldUserID: "u1",
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	consumer := NewStreamConsumer(client, logger, StreamConsumerConfig{
		Stream:         "test:inbound",
		Group:          "release-test",
		Name:           "consumer-1",
		Block:          50 * time.Millisecond,
		Concurrency:    2,
		AckOnError:     true,
		GroupStartFrom: "0",
	})
	handler := &recordingHandler{received: make(chan mqmsg.InboundMessage, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx, Dispatch(handler, logger)) }()

	select {
	case msg := <-handler.received:
		if msg.ChatID != "room1" || msg.Content != "/발매 도움말" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("message was not delivered")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("consumer returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestStreamConsumer_RequiresNames(t *testing.T) {
	client, _ := testhelper.NewTestValkeyClient(t)
	consumer := NewStreamConsumer(client, discardLogger(), StreamConsumerConfig{Stream: "s"})
	err := consumer.Run(context.Background(), func(context.Context, XMessage) error { return errors.New("unreachable") })
	if err == nil {
		t.Fatal("expected config error")
	}
}

func TestReadBackoff(t *testing.T) {
	b := newReadBackoff(StreamConsumerConfig{
		BackoffInitial: time.Second,
		BackoffMax:     3 * time.Second,
		BackoffFactor:  2,
	})
	got := []time.Duration{b.NextBackOff(), b.NextBackOff(), b.NextBackOff(), b.NextBackOff()}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	b.Reset()
	if b.NextBackOff() != time.Second {
		t.Fatal("reset should restore initial delay")
	}
}

func TestDispatch_SkipsInvalidEntry(t *testing.T) {
	handler := &recordingHandler{received: make(chan mqmsg.InboundMessage, 1)}
	dispatch := Dispatch(handler, discardLogger())

	if err := dispatch(context.Background(), XMessage{ID: "1-0", Values: map[string]string{mqmsg.FieldText: "hi"}}); err != nil {
		t.Fatalf("invalid entry must be acked, got %v", err)
	}
	select {
	case msg := <-handler.received:
		t.Fatalf("handler must not run, got %+v", msg)
	default:
	}
}

func TestInboundConsumerConfig(t *testing.T) {
	cfg := InboundConsumerConfig(commonconfig.ValkeyMQConfig{
		StreamKey:     "in",
		ConsumerGroup: "g",
		ConsumerName:  "c",
		BatchSize:     7,
		BlockTimeout:  time.Second,
		Concurrency:   3,
	})
	if cfg.Stream != "in" || cfg.Group != "g" || cfg.Name != "c" || cfg.BatchSize != 7 || !cfg.AckOnError {
		t.Fatalf("unexpected consumer config: %+v", cfg)
	}
	if pub := ReplyPublisherConfig(commonconfig.ValkeyMQConfig{ReplyStreamKey: "out", StreamMaxLen: 9}); pub.Stream != "out" || pub.MaxLen != 9 {
		t.Fatalf("unexpected publisher config: %+v", pub)
	}
}
