package mq

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/telemetry"
)

// StreamPublisherConfig: 발행 대상 스트림과 근사 MAXLEN
type StreamPublisherConfig struct {
	Stream string
	MaxLen int64
}

// StreamPublisher: 필드 맵을 XADD 로 발행한다.
type StreamPublisher struct {
	client valkey.Client
	logger *slog.Logger
	cfg    StreamPublisherConfig
}

// NewStreamPublisher: StreamPublisher 생성
func NewStreamPublisher(client valkey.Client, logger *slog.Logger, cfg StreamPublisherConfig) *StreamPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamPublisher{client: client, logger: logger, cfg: cfg}
}

// Publish: values 를 필드 이름순으로 XADD 하고 엔트리 ID 를 반환한다.
func (p *StreamPublisher) Publish(ctx context.Context, values map[string]string) (string, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("no values to publish")
	}

	id, err := p.client.Do(ctx, p.buildXAdd(values)).ToString()
	if err != nil {
		return "", fmt.Errorf("xadd failed stream=%s: %w", p.cfg.Stream, err)
	}

	p.logger.Debug("message_published", "stream", p.cfg.Stream, "id", id)
	return id, nil
}

func (p *StreamPublisher) buildXAdd(values map[string]string) valkey.Completed {
	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	key := p.client.B().Xadd().Key(p.cfg.Stream)
	if p.cfg.MaxLen > 0 {
		cmd := key.Maxlen().Almost().Threshold(strconv.FormatInt(p.cfg.MaxLen, 10)).Id("*").FieldValue()
		for _, field := range fields {
			cmd = cmd.FieldValue(field, values[field])
		}
		return cmd.Build()
	}

	cmd := key.Id("*").FieldValue()
	for _, field := range fields {
		cmd = cmd.FieldValue(field, values[field])
	}
	return cmd.Build()
}

// ReplyPublisher: 봇 응답을 응답 스트림에 발행한다. 현재 span 의 trace context 를 필드로 함께 싣는다.
type ReplyPublisher struct {
	publisher *StreamPublisher
}

// NewReplyPublisher: ReplyPublisher 생성
func NewReplyPublisher(publisher *StreamPublisher) *ReplyPublisher {
	return &ReplyPublisher{publisher: publisher}
}

// Publish: 응답 메시지 발행
func (p *ReplyPublisher) Publish(ctx context.Context, message mqmsg.OutboundMessage) error {
	values := message.ToStreamValues()
	telemetry.Inject(ctx, values)
	if _, err := p.publisher.Publish(ctx, values); err != nil {
		return fmt.Errorf("publish reply message failed: %w", err)
	}
	return nil
}
