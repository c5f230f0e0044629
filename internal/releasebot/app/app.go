package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/accesscontrol"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/bootstrap"
	commonconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/dbutil"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/httpclient"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/httpserver"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/messageprovider"
	commonmq "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mq"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/processinglock"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/telemetry"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/valkeyx"
	rassets "github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/assets"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/catalog"
	rconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/config"
	rhttpapi "github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/httpapi"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/messages"
	rmq "github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/mq"
	rrepo "github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/repository"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/resolver"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/scheduler"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/wizard"
)

type releaseServices struct {
	wizard    *wizard.Wizard
	scheduler *scheduler.Scheduler
}

func newReleaseMessageProvider() (*messageprovider.Provider, error) {
	provider, err := messageprovider.NewFromYAMLAtPath(rassets.ReleaseMessagesYAML, rassets.MessagesRootKey)
	if err != nil {
		return nil, fmt.Errorf("load messages failed: %w", err)
	}
	return provider, nil
}

func newReleaseTelemetry(ctx context.Context, cfg *rconfig.Config, logger *slog.Logger) (func(), error) {
	provider, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry failed: %w", err)
	}
	if provider.Enabled() {
		logger.Info("telemetry_enabled", "endpoint", cfg.Telemetry.OTLPEndpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry_shutdown_failed", "err", err)
		}
	}, nil
}

func newReleaseDataValkey(ctx context.Context, cfg *rconfig.Config, logger *slog.Logger) (valkey.Client, func(), error) {
	return bootstrap.OpenValkey(ctx, "valkey", bootstrap.DataValkeyConfig(cfg.Redis), logger)
}

func newReleaseMQValkey(ctx context.Context, cfg *rconfig.Config, logger *slog.Logger) (valkey.Client, func(), error) {
	return bootstrap.OpenValkey(ctx, "valkey mq", bootstrap.MQValkeyConfig(cfg.Valkey), logger)
}

func newReleaseDB(ctx context.Context, cfg *rconfig.Config, logger *slog.Logger) (*gorm.DB, *sql.DB, func(), error) {
	db, sqlDB, err := dbutil.OpenWithRetry(ctx, func(ctx context.Context) (*gorm.DB, *sql.DB, error) {
		return openPostgres(ctx, cfg.Postgres)
	}, dbutil.DefaultRetryConfig(), logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open postgres failed: %w", err)
	}
	return db, sqlDB, func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("postgres_close_failed", "err", err)
		}
	}, nil
}

func newReleaseRepository(ctx context.Context, db *gorm.DB) (*rrepo.Repository, error) {
	repo := rrepo.New(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}
	return repo, nil
}

func newReleaseCatalog(cfg *rconfig.Config, logger *slog.Logger) (*catalog.Client, error) {
	httpClient := httpclient.New(httpclient.Config{
		Timeout:        cfg.Catalog.Timeout,
		ConnectTimeout: cfg.Catalog.Timeout,
		PingInterval:   30 * time.Second,
		Tracing:        cfg.Telemetry.Enabled,
	})
	client, err := catalog.NewClient(httpClient, catalog.Config{
		BaseURL:           cfg.Catalog.BaseURL,
		APIKey:            cfg.Catalog.APIKey,
		UserAgent:         cfg.Catalog.UserAgent,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
		ReleaseCacheSize:  cfg.Catalog.ReleaseCacheSize,
		ReleaseCacheTTL:   cfg.Catalog.ReleaseCacheTTL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create catalog client failed: %w", err)
	}
	return client, nil
}

func newReleaseServices(
	cfg *rconfig.Config,
	catalogClient *catalog.Client,
	repo *rrepo.Repository,
	dataValkey valkey.Client,
	notifier scheduler.Notifier,
	msgProvider *messageprovider.Provider,
	logger *slog.Logger,
) (*releaseServices, error) {
	location, err := time.LoadLocation(strings.TrimSpace(cfg.Scheduler.Timezone))
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone failed: %w", err)
	}

	res := resolver.New(catalogClient, logger)
	sessions := wizard.NewRegistry(dataValkey, logger, cfg.Wizard.SessionTTL)
	wiz := wizard.New(catalogClient, res, repo, sessions, msgProvider, wizard.Config{
		GamesPerPage:        cfg.Wizard.GamesPerPage,
		PlaceholderImageURL: cfg.Wizard.PlaceholderImageURL,
	}, logger)
	sched := scheduler.New(catalogClient, res, repo, notifier, msgProvider, scheduler.Config{
		DailyHour:           cfg.Scheduler.DailyHour,
		RefreshInterval:     cfg.Scheduler.RefreshInterval,
		RequestSpacing:      cfg.Scheduler.RequestSpacing,
		Location:            location,
		PlaceholderImageURL: cfg.Wizard.PlaceholderImageURL,
	}, logger)

	return &releaseServices{
		wizard:    wiz,
		scheduler: sched,
	}, nil
}

func newReleaseReplyPublisher(cfg *rconfig.Config, mqValkey valkey.Client, logger *slog.Logger) *commonmq.ReplyPublisher {
	return commonmq.NewReplyPublisher(commonmq.NewStreamPublisher(mqValkey, logger, commonmq.ReplyPublisherConfig(cfg.Valkey)))
}

func rmqNotifier(publisher *commonmq.ReplyPublisher) *rmq.ReplyNotifier {
	return rmq.NewReplyNotifier(publisher, commonconfig.KakaoMessageMaxLength)
}

type releaseMQPipeline struct {
	streamConsumer *commonmq.StreamConsumer
	streamHandler  commonmq.StreamHandler
}

func newReleaseMQPipeline(
	cfg *rconfig.Config,
	mqValkey valkey.Client,
	dataValkey valkey.Client,
	replyPublisher *commonmq.ReplyPublisher,
	services *releaseServices,
	repo *rrepo.Repository,
	msgProvider *messageprovider.Provider,
	logger *slog.Logger,
) *releaseMQPipeline {
	prefix := cfg.Commands.Prefix
	accessControl := accesscontrol.New(cfg.Access)
	commandParser := rmq.NewCommandParser(prefix)
	replier := commonmq.NewReplier(msgProvider, replyPublisher.Publish, commonmq.ReplierConfig{
		MaxLength:     commonconfig.KakaoMessageMaxLength,
		BusyKey:       messages.ErrorProcessing,
		ErrorsAsFinal: true,
	})
	processingLock := processinglock.New(
		dataValkey,
		rconfig.RedisKeyProcessingPrefix,
		time.Duration(commonconfig.ProcessingLockTTLSeconds)*time.Second,
		logger,
	)

	commandHandler := rmq.NewCommandHandler(services.wizard, repo, msgProvider, prefix, logger)
	messageService := rmq.NewMessageService(
		commandHandler,
		replier,
		msgProvider,
		accessControl,
		commandParser,
		processingLock,
		prefix,
		logger,
	)

	return &releaseMQPipeline{
		streamConsumer: commonmq.NewStreamConsumer(mqValkey, logger, commonmq.InboundConsumerConfig(cfg.Valkey)),
		streamHandler:  commonmq.Dispatch(messageService, logger),
	}
}

func newReleaseHTTPHandler(
	cfg *rconfig.Config,
	repo *rrepo.Repository,
	sched *scheduler.Scheduler,
	reporter *health.Reporter,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()
	rhttpapi.Register(mux, rhttpapi.Deps{
		Store:       repo,
		Scheduler:   sched,
		AdminAPIKey: cfg.Admin.APIKey,
		Health:      reporter,
		Logger:      logger,
	})
	if !cfg.Telemetry.Enabled {
		return mux
	}
	return otelhttp.NewHandler(mux, "releasebot.http")
}

// newReleaseHealth: 데이터 Valkey, MQ Valkey, Postgres 연결을 점검하는 probe 묶음
func newReleaseHealth(version string, dataValkey, mqValkey valkey.Client, sqlDB *sql.DB) *health.Reporter {
	return health.New(version, 2*time.Second,
		health.Probe{Name: "valkey", Check: func(ctx context.Context) error { return valkeyx.Ping(ctx, dataValkey) }},
		health.Probe{Name: "valkey_mq", Check: func(ctx context.Context) error { return valkeyx.Ping(ctx, mqValkey) }},
		health.Probe{Name: "postgres", Check: sqlDB.PingContext},
	)
}

func newReleaseHTTPServer(cfg *rconfig.Config, handler http.Handler) *http.Server {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return httpserver.New(addr, handler, httpserver.Options{
		H2C:               true,
		ReadHeaderTimeout: cfg.ServerTuning.ReadHeaderTimeout,
		IdleTimeout:       cfg.ServerTuning.IdleTimeout,
		MaxHeaderBytes:    cfg.ServerTuning.MaxHeaderBytes,
	})
}

func newReleaseServerApp(
	cfg *rconfig.Config,
	logger *slog.Logger,
	server *http.Server,
	mqPipeline *releaseMQPipeline,
	sched *scheduler.Scheduler,
) *bootstrap.ServerApp {
	tasks := []bootstrap.Task{
		{
			Name: "mq_consumer",
			Run: func(ctx context.Context) error {
				return mqPipeline.streamConsumer.Run(ctx, mqPipeline.streamHandler)
			},
		},
	}
	if cfg.Scheduler.Enabled {
		tasks = append(tasks, bootstrap.Task{
			Name: "scheduler",
			Run:  sched.Run,
		})
	} else {
		logger.Info("scheduler_disabled")
	}

	return bootstrap.NewServerApp("releasebot", logger, server, 10*time.Second, tasks...)
}

func openPostgres(ctx context.Context, cfg rconfig.PostgresConfig) (*gorm.DB, *sql.DB, error) {
	host := cfg.Host
	if strings.TrimSpace(cfg.SocketPath) != "" {
		host = cfg.SocketPath
	}
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gorm open failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql db failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("db ping failed: %w", err)
	}

	return db, sqlDB, nil
}
