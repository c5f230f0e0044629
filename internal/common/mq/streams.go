package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/valkey-io/valkey-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/telemetry"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/valkeyx"
)

const consumerTracerName = "release-bot-go/stream-consumer"

// StreamConsumerConfig: 컨슈머 그룹 소비 설정
type StreamConsumerConfig struct {
	Stream string
	Group  string
	Name   string

	BatchSize   int64
	Block       time.Duration
	Concurrency int

	ResetGroupOnStartup bool
	// AckOnError: 핸들러가 실패해도 ACK 한다. false 면 PEL 에 남긴다.
	AckOnError bool

	AckMaxRetries  int
	AckRetryDelay  time.Duration
	GroupStartFrom string

	BackoffInitial time.Duration
	BackoffMax     time.Duration
	BackoffFactor  float64
}

func (c StreamConsumerConfig) normalize() (StreamConsumerConfig, error) {
	c.Stream = strings.TrimSpace(c.Stream)
	c.Group = strings.TrimSpace(c.Group)
	c.Name = strings.TrimSpace(c.Name)
	if c.Stream == "" || c.Group == "" || c.Name == "" {
		return StreamConsumerConfig{}, errors.New("stream/group/name must be set")
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.Block <= 0 {
		c.Block = 5 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 10
	}
	if c.AckMaxRetries <= 0 {
		c.AckMaxRetries = 1
	}
	if c.AckRetryDelay <= 0 {
		c.AckRetryDelay = 100 * time.Millisecond
	}
	if strings.TrimSpace(c.GroupStartFrom) == "" {
		c.GroupStartFrom = "$"
	}
	if c.BackoffInitial <= 0 {
		c.BackoffInitial = time.Second
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = 30 * time.Second
	}
	if c.BackoffFactor <= 1 {
		c.BackoffFactor = 2.0
	}
	return c, nil
}

// XMessage: 스트림 엔트리
type XMessage struct {
	ID     string
	Values map[string]string
}

// StreamHandler: 엔트리 하나를 처리한다. 에러는 로그와 span 에 기록된다.
type StreamHandler func(ctx context.Context, msg XMessage) error

// StreamConsumer: XREADGROUP 으로 인바운드 채팅 스트림을 읽어 핸들러에 분배한다.
type StreamConsumer struct {
	client valkey.Client
	logger *slog.Logger
	cfg    StreamConsumerConfig
}

// NewStreamConsumer: StreamConsumer 생성
func NewStreamConsumer(client valkey.Client, logger *slog.Logger, cfg StreamConsumerConfig) *StreamConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamConsumer{client: client, logger: logger, cfg: cfg}
}

// Run: ctx 가 끝날 때까지 소비한다. 진행 중인 핸들러는 반환 전에 모두 끝난다.
func (c *StreamConsumer) Run(ctx context.Context, handler StreamHandler) error {
	cfg, err := c.cfg.normalize()
	if err != nil {
		return err
	}

	if cfg.ResetGroupOnStartup {
		err = c.resetGroup(ctx, cfg)
	} else {
		err = c.ensureGroup(ctx, cfg)
	}
	if err != nil {
		return err
	}

	var workers errgroup.Group
	workers.SetLimit(cfg.Concurrency)
	defer func() { _ = workers.Wait() }()

	readBackoff := newReadBackoff(cfg)
	for ctx.Err() == nil {
		batch, readErr := c.readBatch(ctx, cfg)
		if readErr != nil {
			if !c.recoverRead(ctx, cfg, readErr, readBackoff) {
				return nil
			}
			continue
		}
		readBackoff.Reset()

		for _, msg := range batch {
			if ctx.Err() != nil {
				return nil
			}
			workers.Go(func() error {
				c.process(ctx, cfg, msg, handler)
				return nil
			})
		}
	}
	return nil
}

// recoverRead: 읽기 실패 처리. 소비를 계속할지 여부를 반환한다.
func (c *StreamConsumer) recoverRead(ctx context.Context, cfg StreamConsumerConfig, err error, readBackoff *backoff.ExponentialBackOff) bool {
	switch {
	case ctx.Err() != nil:
		return false
	case valkeyx.IsNil(err), errors.Is(err, context.DeadlineExceeded):
		// 블록 타임아웃
		readBackoff.Reset()
		return true
	case isNoGroupOrNoStreamErr(err):
		c.logger.Info("consumer_group_missing_recreating", "stream", cfg.Stream, "group", cfg.Group)
		if groupErr := c.ensureGroup(ctx, cfg); groupErr == nil {
			readBackoff.Reset()
			return true
		} else {
			c.logger.Warn("consumer_group_recreate_failed", "stream", cfg.Stream, "group", cfg.Group, "err", groupErr)
		}
	}

	delay := readBackoff.NextBackOff()
	c.logger.Warn("xreadgroup_failed", "stream", cfg.Stream, "group", cfg.Group, "backoff", delay, "err", err)
	return sleepWithContext(ctx, delay)
}

func (c *StreamConsumer) readBatch(ctx context.Context, cfg StreamConsumerConfig) ([]XMessage, error) {
	cmd := c.client.B().Xreadgroup().
		Group(cfg.Group, cfg.Name).
		Count(cfg.BatchSize).
		Block(cfg.Block.Milliseconds()).
		Streams().Key(cfg.Stream).Id(">").
		Build()

	result, err := c.client.Do(ctx, cmd).AsXRead()
	if err != nil {
		return nil, fmt.Errorf("xreadgroup failed: %w", err)
	}

	entries := result[cfg.Stream]
	batch := make([]XMessage, 0, len(entries))
	for _, entry := range entries {
		batch = append(batch, XMessage{ID: entry.ID, Values: entry.FieldValues})
	}
	return batch, nil
}

func (c *StreamConsumer) process(ctx context.Context, cfg StreamConsumerConfig, msg XMessage, handler StreamHandler) {
	parentCtx := telemetry.Extract(ctx, msg.Values)
	spanCtx, span := otel.Tracer(consumerTracerName).Start(parentCtx, "releasebot.stream.process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "valkey"),
			attribute.String("messaging.destination", cfg.Stream),
			attribute.String("messaging.consumer_group", cfg.Group),
			attribute.String("messaging.message_id", msg.ID),
		),
	)
	defer span.End()

	if err := handler(spanCtx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.ErrorContext(spanCtx, "message_handler_failed", "stream", cfg.Stream, "id", msg.ID, "err", err)
		if !cfg.AckOnError {
			return
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if err := c.ack(spanCtx, cfg, msg.ID); err != nil {
		c.logger.WarnContext(spanCtx, "xack_failed", "stream", cfg.Stream, "id", msg.ID, "err", err)
	}
}

func (c *StreamConsumer) ensureGroup(ctx context.Context, cfg StreamConsumerConfig) error {
	create := c.client.B().XgroupCreate().Key(cfg.Stream).Group(cfg.Group).Id(cfg.GroupStartFrom).Mkstream().Build()
	if err := c.client.Do(ctx, create).Error(); err != nil && !valkeyx.IsBusyGroup(err) {
		return fmt.Errorf("xgroup create failed stream=%s group=%s: %w", cfg.Stream, cfg.Group, err)
	}

	consumer := c.client.B().XgroupCreateconsumer().Key(cfg.Stream).Group(cfg.Group).Consumer(cfg.Name).Build()
	_ = c.client.Do(ctx, consumer).Error()
	return nil
}

func (c *StreamConsumer) resetGroup(ctx context.Context, cfg StreamConsumerConfig) error {
	destroy := c.client.B().XgroupDestroy().Key(cfg.Stream).Group(cfg.Group).Build()
	if err := c.client.Do(ctx, destroy).Error(); err != nil && !isNoGroupOrNoStreamErr(err) {
		return fmt.Errorf("xgroup destroy failed stream=%s group=%s: %w", cfg.Stream, cfg.Group, err)
	}
	return c.ensureGroup(ctx, cfg)
}

func (c *StreamConsumer) ack(ctx context.Context, cfg StreamConsumerConfig, id string) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		cmd := c.client.B().Xack().Key(cfg.Stream).Group(cfg.Group).Id(id).Build()
		return struct{}{}, c.client.Do(ctx, cmd).Error()
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(cfg.AckRetryDelay)),
		backoff.WithMaxTries(uint(cfg.AckMaxRetries)),
	)
	if err != nil {
		return fmt.Errorf("xack failed id=%s: %w", id, err)
	}
	return nil
}

// newReadBackoff: XREADGROUP 실패 후 대기 간격. 지터 없이 BackoffFactor 배씩 늘고 BackoffMax 에서 멈춘다.
func newReadBackoff(cfg StreamConsumerConfig) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.BackoffInitial
	b.MaxInterval = cfg.BackoffMax
	b.Multiplier = cfg.BackoffFactor
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

func isNoGroupOrNoStreamErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "NOGROUP") ||
		strings.Contains(strings.ToLower(msg), "no such key") ||
		strings.Contains(msg, "requires the key to exist")
}

// sleepWithContext: 대기를 마치면 true, ctx 가 먼저 끝나면 false
func sleepWithContext(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
