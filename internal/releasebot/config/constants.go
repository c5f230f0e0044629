package config

const (
	DefaultCommandPrefix = "/발매"
	DefaultHTTPPort      = 40259
)

// Valkey 키 접두사
const (
	RedisKeyPrefix           = "release"
	RedisKeyProcessingPrefix = RedisKeyPrefix + ":processing"
)

// DefaultPlaceholderImageURL: 카탈로그에 이미지가 없는 게임의 대체 이미지
const DefaultPlaceholderImageURL = "https://www.giantbomb.com/a/bundles/giantbombsite/images/logo.png"

const (
	DefaultCatalogUserAgent       = "release-bot-go/1.0"
	DefaultCatalogTimeoutSeconds  = 10
	DefaultCatalogRequestsPerSec  = 1.0
	DefaultCatalogBurst           = 2
	DefaultReleaseCacheSize       = 256
	DefaultReleaseCacheTTLSeconds = 600

	DefaultSchedulerDailyHour   = 12
	DefaultRefreshIntervalDays  = 7
	DefaultRefreshSpacingMillis = 1000

	// DefaultWizardSessionTTLSeconds: 0 이면 세션이 만료되지 않는다.
	DefaultWizardSessionTTLSeconds = 0
)
