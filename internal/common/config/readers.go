package config

import "time"

// ReadServerConfig: SERVER_HOST, SERVER_PORT
func ReadServerConfig(r *Reader, defaultPort int) ServerConfig {
	return ServerConfig{
		Host: r.String("0.0.0.0", "SERVER_HOST"),
		Port: r.Int(defaultPort, "SERVER_PORT"),
	}
}

// ReadServerTuningConfig: 타임아웃 0 은 비활성화를 뜻한다.
func ReadServerTuningConfig(r *Reader) ServerTuningConfig {
	cfg := ServerTuningConfig{
		ReadHeaderTimeout: r.Seconds(5, "SERVER_READ_HEADER_TIMEOUT_SECONDS"),
		IdleTimeout:       r.Seconds(90, "SERVER_IDLE_TIMEOUT_SECONDS"),
		MaxHeaderBytes:    r.Int(1<<20, "SERVER_MAX_HEADER_BYTES"),
	}
	if cfg.MaxHeaderBytes < 0 {
		r.Failf("invalid SERVER_MAX_HEADER_BYTES: %d", cfg.MaxHeaderBytes)
	}
	return cfg
}

// ReadRedisConfig: 데이터 저장용 Valkey. CACHE_* 가 REDIS_* 보다 우선이고 소켓 경로가 있으면 UDS 로 붙는다.
func ReadRedisConfig(r *Reader) RedisConfig {
	return RedisConfig{
		Host:       r.String("localhost", "CACHE_HOST", "REDIS_HOST"),
		Port:       r.Int(6379, "CACHE_PORT", "REDIS_PORT"),
		Password:   r.String("", "CACHE_PASSWORD", "REDIS_PASSWORD"),
		SocketPath: r.String("", "CACHE_SOCKET_PATH", "REDIS_SOCKET_PATH"),

		DialTimeout:  10 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     64,
		MinIdleConns: 10,
	}
}

// ValkeyMQDefaults: 봇별 MQ 기본값
type ValkeyMQDefaults struct {
	Port          int
	ConsumerGroup string
	ConsumerName  string
}

// ReadValkeyMQConfig: 메시지 큐 Valkey. MQ_* 가 VALKEY_MQ_* 보다 우선이다.
// 튜닝 값이 0 이하이면 기본값으로 되돌린다.
func ReadValkeyMQConfig(r *Reader, defaults ValkeyMQDefaults) ValkeyMQConfig {
	keys := func(name string) []string { return []string{"MQ_" + name, "VALKEY_MQ_" + name} }

	timeout := r.Millis(5000, keys("TIMEOUT")...)
	cfg := ValkeyMQConfig{
		Host:         r.String("localhost", keys("HOST")...),
		Port:         r.Int(defaults.Port, keys("PORT")...),
		Password:     r.String("", keys("PASSWORD")...),
		Timeout:      timeout,
		DialTimeout:  timeout,
		PoolSize:     r.Int(16, keys("CONNECTION_POOL_SIZE")...),
		MinIdleConns: r.Int(2, keys("CONNECTION_MIN_IDLE_SIZE")...),

		ConsumerGroup:               r.String(defaults.ConsumerGroup, keys("CONSUMER_GROUP")...),
		ConsumerName:                r.String(defaults.ConsumerName, keys("CONSUMER_NAME")...),
		ResetConsumerGroupOnStartup: r.Bool(false, keys("RESET_CONSUMER_GROUP_ON_STARTUP")...),
		StreamKey:                   r.String(DefaultInboundStreamKey, keys("STREAM_KEY")...),
		ReplyStreamKey:              r.String(DefaultOutboundStreamKey, keys("REPLY_STREAM_KEY")...),

		BatchSize:    r.Int64(MQBatchSize, keys("BATCH_SIZE")...),
		BlockTimeout: r.Millis(MQReadTimeoutMS, keys("READ_TIMEOUT_MS")...),
		Concurrency:  r.Int(MQConsumerConcurrency, keys("CONCURRENCY")...),
		StreamMaxLen: r.Int64(MQStreamMaxLen, keys("STREAM_MAX_LEN")...),
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = MQBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = MQReadTimeoutMS * time.Millisecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = MQConsumerConcurrency
	}
	if cfg.StreamMaxLen <= 0 {
		cfg.StreamMaxLen = MQStreamMaxLen
	}
	return cfg
}

// ReadAccessConfig: 접근 제어 목록. prefix 가 붙은 키가 공용 키보다 우선이다.
func ReadAccessConfig(r *Reader, prefix string) AccessConfig {
	keys := func(names ...string) []string {
		out := make([]string, 0, len(names)*2)
		for _, name := range names {
			out = append(out, prefix+name)
		}
		return append(out, names...)
	}

	return AccessConfig{
		Enabled:        r.Bool(false, keys("ACCESS_ENABLED")...),
		Passthrough:    r.Bool(false, keys("ACCESS_PASSTHROUGH")...),
		AllowedChatIDs: r.List(nil, keys("ALLOWED_CHAT_IDS", "ACCESS_ALLOWED_CHAT_IDS")...),
		BlockedChatIDs: r.List(nil, keys("BLOCKED_CHAT_IDS", "ACCESS_BLOCKED_CHAT_IDS")...),
		BlockedUserIDs: r.List(nil, keys("BLOCKED_USER_IDS", "ACCESS_BLOCKED_USER_IDS")...),
	}
}

// ReadLogConfig: LOG_DIR 가 비어 있으면 파일 로그를 끈다.
func ReadLogConfig(r *Reader) LogConfig {
	dir := r.String("", "LOG_DIR")
	if dir == "" {
		return LogConfig{}
	}

	cfg := LogConfig{
		Dir:        dir,
		MaxSizeMB:  r.Int(1, "LOG_FILE_MAX_SIZE_MB"),
		MaxBackups: r.Int(30, "LOG_FILE_MAX_BACKUPS"),
		MaxAgeDays: r.Int(7, "LOG_FILE_MAX_AGE_DAYS"),
		Compress:   r.Bool(true, "LOG_FILE_COMPRESS"),
	}
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		r.Failf("invalid log rotation: size=%d backups=%d age_days=%d", cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	return cfg
}

// ReadTelemetryConfig: OTEL_* 설정. 기본은 꺼져 있다.
func ReadTelemetryConfig(r *Reader, defaultServiceName string) TelemetryConfig {
	cfg := TelemetryConfig{
		Enabled:        r.Bool(false, "OTEL_ENABLED"),
		ServiceName:    r.String(defaultServiceName, "OTEL_SERVICE_NAME"),
		ServiceVersion: r.String("dev", "OTEL_SERVICE_VERSION"),
		Environment:    r.String("production", "OTEL_ENVIRONMENT"),
		OTLPEndpoint:   r.String("jaeger:4317", "OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:   r.Bool(true, "OTEL_EXPORTER_OTLP_INSECURE"),
		SampleRate:     r.Float(1.0, "OTEL_SAMPLE_RATE"),
	}
	if cfg.SampleRate < 0 || cfg.SampleRate > 1 {
		r.Failf("invalid OTEL_SAMPLE_RATE: %v", cfg.SampleRate)
	}
	return cfg
}
