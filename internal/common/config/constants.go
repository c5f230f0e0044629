package config

// KakaoMessageMaxLength: 카카오톡 한 메시지에 싣는 최대 글자 수
const KakaoMessageMaxLength = 500

// ProcessingLockTTLSeconds: 채팅방 처리 락 유지 시간. 카탈로그 호출 여러 번을 감당할 만큼 잡는다.
const ProcessingLockTTLSeconds = 60

// Streams 기본값
const (
	DefaultInboundStreamKey  = "kakao:bot:release"
	DefaultOutboundStreamKey = "kakao:bot:reply"

	MQBatchSize           = 5
	MQReadTimeoutMS       = 5000
	MQConsumerConcurrency = 5
	MQStreamMaxLen        = 1000
)
