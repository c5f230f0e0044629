package mq

import commonconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/config"

// InboundConsumerConfig: 채팅 인바운드 스트림 소비 설정. 핸들러가 실패한 메시지도 ACK 해서
// 같은 명령이 재전달되지 않게 한다.
func InboundConsumerConfig(cfg commonconfig.ValkeyMQConfig) StreamConsumerConfig {
	return StreamConsumerConfig{
		Stream:              cfg.StreamKey,
		Group:               cfg.ConsumerGroup,
		Name:                cfg.ConsumerName,
		BatchSize:           cfg.BatchSize,
		Block:               cfg.BlockTimeout,
		Concurrency:         cfg.Concurrency,
		ResetGroupOnStartup: cfg.ResetConsumerGroupOnStartup,
		AckOnError:          true,
	}
}

// ReplyPublisherConfig: 응답 스트림 발행 설정
func ReplyPublisherConfig(cfg commonconfig.ValkeyMQConfig) StreamPublisherConfig {
	return StreamPublisherConfig{Stream: cfg.ReplyStreamKey, MaxLen: cfg.StreamMaxLen}
}
