package config

import "time"

// ServerConfig: HTTP 리스너
type ServerConfig struct {
	Host string
	Port int
}

// ServerTuningConfig: HTTP 서버 타임아웃과 헤더 제한
type ServerTuningConfig struct {
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

// CommandsConfig: 명령어 접두사
type CommandsConfig struct {
	Prefix string
}

// RedisConfig: 위저드 세션과 처리 락을 담는 데이터용 Valkey
type RedisConfig struct {
	Host       string
	Port       int
	Password   string
	DB         int
	SocketPath string // 비어 있으면 TCP

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	PoolSize     int
	MinIdleConns int
}

// ValkeyMQConfig: 카카오 브리지와 연결된 Streams 용 Valkey
type ValkeyMQConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	Timeout      time.Duration
	DialTimeout  time.Duration
	PoolSize     int
	MinIdleConns int

	ConsumerGroup               string
	ConsumerName                string
	ResetConsumerGroupOnStartup bool
	StreamKey                   string // 인바운드
	ReplyStreamKey              string // 아웃바운드

	BatchSize    int64
	BlockTimeout time.Duration // XREADGROUP BLOCK
	Concurrency  int
	StreamMaxLen int64 // 응답 스트림 근사 MAXLEN
}

// AccessConfig: 채팅방/사용자 허용·차단 목록
type AccessConfig struct {
	Enabled        bool
	AllowedChatIDs []string // 비어 있으면 모든 방 허용
	BlockedChatIDs []string
	BlockedUserIDs []string // Enabled 와 무관하게 적용
	Passthrough    bool     // 모든 검사를 건너뛴다
}

// LogConfig: lumberjack 파일 로그 로테이션
type LogConfig struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// TelemetryConfig: OTLP gRPC 트레이스 내보내기
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string // host:port
	OTLPInsecure   bool
	SampleRate     float64 // 0.0 ~ 1.0
}
