package config

import (
	"fmt"
	"time"

	commonconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/wizard"
)

// ServerConfig: HTTP 서버 설정 alias
type ServerConfig = commonconfig.ServerConfig

// ServerTuningConfig: 서버 튜닝 설정 alias
type ServerTuningConfig = commonconfig.ServerTuningConfig

// CommandsConfig: 명령어 접두사 설정 alias
type CommandsConfig = commonconfig.CommandsConfig

// RedisConfig: 데이터 Valkey(세션/락) 연결 설정 alias
type RedisConfig = commonconfig.RedisConfig

// ValkeyMQConfig: Valkey 기반 메시지 큐 설정 alias
type ValkeyMQConfig = commonconfig.ValkeyMQConfig

// AccessConfig: 접근 제어 설정 alias
type AccessConfig = commonconfig.AccessConfig

// LogConfig: 로깅 설정 alias
type LogConfig = commonconfig.LogConfig

// PostgresConfig: PostgreSQL 데이터베이스 설정
type PostgresConfig struct {
	Host       string
	Port       int
	SocketPath string // UDS 경로 (비어있으면 TCP 사용)
	Name       string
	User       string
	Password   string
	SSLMode    string
}

// CatalogConfig: GiantBomb API 설정
type CatalogConfig struct {
	BaseURL           string
	APIKey            string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	ReleaseCacheSize  int
	ReleaseCacheTTL   time.Duration
}

// WizardConfig: 선택 마법사 설정
type WizardConfig struct {
	SessionTTL          time.Duration // 0 이면 만료 없음
	GamesPerPage        int
	PlaceholderImageURL string
}

// SchedulerConfig: 출시일 갱신 스케줄러 설정
type SchedulerConfig struct {
	Enabled         bool
	DailyHour       int
	RefreshInterval time.Duration
	RequestSpacing  time.Duration
	Timezone        string
}

// AdminConfig: 관리 API 설정
type AdminConfig struct {
	APIKey string
}

// Config: 전체 애플리케이션 설정 구조체
type Config struct {
	Server       ServerConfig
	ServerTuning ServerTuningConfig
	Commands     CommandsConfig
	Catalog      CatalogConfig
	Redis        RedisConfig
	Valkey       ValkeyMQConfig
	Postgres     PostgresConfig
	Access       AccessConfig
	Wizard       WizardConfig
	Scheduler    SchedulerConfig
	Admin        AdminConfig
	Log          LogConfig
	Telemetry    commonconfig.TelemetryConfig
}

// LoadFromEnv: 환경 변수에서 전체 설정을 읽는다. 잘못된 값은 모두 모아 하나의 에러로 돌려준다.
func LoadFromEnv() (*Config, error) {
	r := commonconfig.NewReader()

	cfg := &Config{
		Server:       commonconfig.ReadServerConfig(r, DefaultHTTPPort),
		ServerTuning: commonconfig.ReadServerTuningConfig(r),
		Commands:     CommandsConfig{Prefix: r.String(DefaultCommandPrefix, "RELEASE_COMMAND_PREFIX", "COMMAND_PREFIX")},
		Catalog:      readCatalogConfig(r),
		Redis:        commonconfig.ReadRedisConfig(r),
		Valkey: commonconfig.ReadValkeyMQConfig(r, commonconfig.ValkeyMQDefaults{
			Port:          1833,
			ConsumerGroup: "release-bot-group",
			ConsumerName:  "consumer-1",
		}),
		Postgres:  readPostgresConfig(r),
		Access:    commonconfig.ReadAccessConfig(r, "RELEASE_"),
		Wizard:    readWizardConfig(r),
		Scheduler: readSchedulerConfig(r),
		Admin:     AdminConfig{APIKey: r.String("", "ADMIN_API_KEY")},
		Log:       commonconfig.ReadLogConfig(r),
		Telemetry: commonconfig.ReadTelemetryConfig(r, "release-bot"),
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	return cfg, nil
}

func readCatalogConfig(r *commonconfig.Reader) CatalogConfig {
	cfg := CatalogConfig{
		BaseURL:           r.String("", "GIANTBOMB_BASE_URL"),
		APIKey:            r.Require(r.String("", "GIANTBOMB_API_KEY", "CATALOG_API_KEY"), "GIANTBOMB_API_KEY"),
		UserAgent:         r.String(DefaultCatalogUserAgent, "CATALOG_USER_AGENT"),
		Timeout:           r.Seconds(DefaultCatalogTimeoutSeconds, "CATALOG_TIMEOUT_SECONDS"),
		RequestsPerSecond: r.Float(DefaultCatalogRequestsPerSec, "CATALOG_REQUESTS_PER_SECOND"),
		Burst:             r.Int(DefaultCatalogBurst, "CATALOG_BURST"),
		ReleaseCacheSize:  r.Int(DefaultReleaseCacheSize, "CATALOG_RELEASE_CACHE_SIZE"),
		ReleaseCacheTTL:   r.Seconds(DefaultReleaseCacheTTLSeconds, "CATALOG_RELEASE_CACHE_TTL_SECONDS"),
	}
	// 0 은 제한 없음
	if cfg.RequestsPerSecond < 0 {
		r.Failf("invalid CATALOG_REQUESTS_PER_SECOND=%v", cfg.RequestsPerSecond)
	}
	return cfg
}

func readPostgresConfig(r *commonconfig.Reader) PostgresConfig {
	return PostgresConfig{
		Host:       r.String("localhost", "DB_HOST"),
		Port:       r.Int(5432, "DB_PORT"),
		SocketPath: r.String("", "DB_SOCKET_PATH"),
		Name:       r.String("releasebot", "DB_NAME"),
		User:       r.String("releasebot_app", "DB_USER"),
		Password:   r.String("", "DB_PASSWORD"),
		SSLMode:    r.String("disable", "DB_SSLMODE"),
	}
}

func readWizardConfig(r *commonconfig.Reader) WizardConfig {
	cfg := WizardConfig{
		SessionTTL:          r.Seconds(DefaultWizardSessionTTLSeconds, "WIZARD_SESSION_TTL_SECONDS"),
		GamesPerPage:        r.Int(wizard.DefaultGamesPerPage, "WIZARD_GAMES_PAGE_SIZE"),
		PlaceholderImageURL: r.String(DefaultPlaceholderImageURL, "PLACEHOLDER_IMAGE_URL"),
	}
	if cfg.GamesPerPage <= 0 {
		r.Failf("invalid WIZARD_GAMES_PAGE_SIZE=%d", cfg.GamesPerPage)
	}
	return cfg
}

func readSchedulerConfig(r *commonconfig.Reader) SchedulerConfig {
	hour := r.Int(DefaultSchedulerDailyHour, "SCHEDULER_DAILY_HOUR")
	if hour < 0 || hour > 23 {
		r.Failf("invalid SCHEDULER_DAILY_HOUR=%d", hour)
	}
	days := r.Int(DefaultRefreshIntervalDays, "SCHEDULER_REFRESH_INTERVAL_DAYS")
	if days < 0 {
		r.Failf("invalid SCHEDULER_REFRESH_INTERVAL_DAYS=%d", days)
	}

	return SchedulerConfig{
		Enabled:         r.Bool(true, "SCHEDULER_ENABLED"),
		DailyHour:       hour,
		RefreshInterval: time.Duration(days) * 24 * time.Hour,
		RequestSpacing:  r.Millis(DefaultRefreshSpacingMillis, "SCHEDULER_REQUEST_SPACING_MS"),
		Timezone:        r.String("Local", "SCHEDULER_TIMEZONE"),
	}
}
