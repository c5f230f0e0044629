// Package scheduler: 저장된 미출시 게임의 출시일을 주기적으로 재계산하고 출시를 알린다.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/catalog"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/messages"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/repository"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/resolver"
)

// ErrAlreadyRunning: 다른 실행이 진행 중이다.
var ErrAlreadyRunning = errors.New("scheduler run already in progress")

// Catalog: 게임 상세 조회 경계
type Catalog interface {
	FetchGame(ctx context.Context, gameID int) (catalog.Game, error)
}

// Resolver: 출시일 추론 경계
type Resolver interface {
	Resolve(ctx context.Context, game catalog.Game, platformID int) resolver.ResolvedRelease
}

// Store: 스케줄러가 사용하는 저장소 연산
type Store interface {
	ListUnreleased(ctx context.Context, apiType string) ([]repository.StoredGame, error)
	UpsertGame(ctx context.Context, game repository.StoredGame) error
	MarkReleased(ctx context.Context, id uint64) error
	GetSettings(ctx context.Context, serverID string) (repository.ServerSettings, error)
	LastChecked(ctx context.Context) (*time.Time, error)
	TouchLastChecked(ctx context.Context, at time.Time) error
}

// Notifier: 채팅방으로 알림을 보낸다.
type Notifier interface {
	Notify(ctx context.Context, chatID string, text string) error
}

// Config: 스케줄러 설정
type Config struct {
	DailyHour           int
	RefreshInterval     time.Duration
	RequestSpacing      time.Duration
	Location            *time.Location
	PlaceholderImageURL string
}

// Report: 한 번의 실행 결과
type Report struct {
	Refreshed bool `json:"refreshed"`
	Checked   int  `json:"checked"`
	Updated   int  `json:"updated"`
	Skipped   int  `json:"skipped"`
	Failed    int  `json:"failed"`
	Released  int  `json:"released"`
}

// Scheduler: 갱신과 출시 확인을 수행한다. 동시에 한 실행만 허용한다.
type Scheduler struct {
	catalog  Catalog
	resolver Resolver
	store    Store
	notifier Notifier
	msg      *messageprovider.Provider
	cfg      Config
	limiter  *rate.Limiter
	logger   *slog.Logger
	now      func() time.Time
	running  sync.Mutex
}

// New: Scheduler 를 생성한다.
func New(
	cat Catalog,
	res Resolver,
	store Store,
	notifier Notifier,
	msg *messageprovider.Provider,
	cfg Config,
	logger *slog.Logger,
) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	limit := rate.Inf
	if cfg.RequestSpacing > 0 {
		limit = rate.Every(cfg.RequestSpacing)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		catalog:  cat,
		resolver: res,
		store:    store,
		notifier: notifier,
		msg:      msg,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
		now:      time.Now,
	}
}

// Run: 시작 시 한 번, 이후 매일 DailyHour 에 실행한다. ctx 가 끝나면 nil 로 반환한다.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runLogged(ctx)

	for {
		next := NextRun(s.now().In(s.cfg.Location), s.cfg.DailyHour)
		s.logger.Info("scheduler_next_run", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			s.runLogged(ctx)
		}
	}
}

func (s *Scheduler) runLogged(ctx context.Context) {
	report, err := s.RunOnce(ctx, false)
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) || ctx.Err() != nil {
			return
		}
		s.logger.Error("scheduler_run_failed", "err", err)
		return
	}
	s.logger.Info("scheduler_run_done",
		"refreshed", report.Refreshed,
		"checked", report.Checked,
		"updated", report.Updated,
		"failed", report.Failed,
		"released", report.Released,
	)
}

// RunOnce: 갱신 후 출시 확인을 실행한다. force 면 주간 갱신 간격을 무시한다.
func (s *Scheduler) RunOnce(ctx context.Context, force bool) (Report, error) {
	if !s.running.TryLock() {
		return Report{}, ErrAlreadyRunning
	}
	defer s.running.Unlock()

	report, err := s.refreshUnreleased(ctx, force)
	if err != nil {
		return report, err
	}

	released, err := s.checkReleases(ctx, s.now())
	report.Released = released
	if err != nil {
		return report, err
	}
	return report, nil
}

// NextRun: now 이후 처음 오는 hour 시 정각. (now 의 location 기준)
func NextRun(now time.Time, hour int) time.Time {
	if hour < 0 || hour > 23 {
		hour = 0
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// refreshUnreleased: 수동 지정되지 않은 미출시 게임을 다시 조회해 출시일을 갱신한다.
// 마지막 갱신 후 RefreshInterval 이 지나지 않았으면 건너뛴다.
func (s *Scheduler) refreshUnreleased(ctx context.Context, force bool) (Report, error) {
	var report Report
	now := s.now()

	if !force && s.cfg.RefreshInterval > 0 {
		last, err := s.store.LastChecked(ctx)
		if err != nil {
			return report, err
		}
		if last != nil && now.Sub(*last) < s.cfg.RefreshInterval {
			s.logger.Debug("release_refresh_not_due", "last_checked_at", last.Format(time.RFC3339))
			return report, nil
		}
	}

	rows, err := s.store.ListUnreleased(ctx, repository.APITypeGiantBomb)
	if err != nil {
		return report, err
	}
	report.Refreshed = true

	for _, row := range rows {
		if row.ManualDate {
			report.Skipped++
			continue
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("refresh spacing wait: %w", err)
		}
		report.Checked++

		game, err := s.catalog.FetchGame(ctx, row.GameID)
		if err != nil {
			s.logger.Warn("release_refresh_fetch_failed", "server_id", row.ServerID, "game_id", row.GameID, "err", err)
			report.Failed++
			continue
		}

		resolved := s.resolver.Resolve(ctx, game, row.PlatformID)
		if resolved.FetchFailed {
			s.logger.Warn("release_refresh_releases_failed", "server_id", row.ServerID, "game_id", row.GameID)
			report.Failed++
			continue
		}
		updated := row
		updated.Name = game.Name
		updated.Description = game.Summary()
		updated.DetailURL = game.SiteDetailURL
		updated.ImageURL = game.ImageURL(s.cfg.PlaceholderImageURL)
		updated.ReleaseDate = resolved.Date
		updated.ReleaseCategory = string(resolved.Category)

		if err := s.store.UpsertGame(ctx, updated); err != nil {
			s.logger.Error("release_refresh_persist_failed", "server_id", row.ServerID, "game_id", row.GameID, "err", err)
			report.Failed++
			continue
		}
		if updated.ReleaseDateOrEmpty() != row.ReleaseDateOrEmpty() || updated.ReleaseCategory != row.ReleaseCategory {
			report.Updated++
		}
	}

	if err := s.store.TouchLastChecked(ctx, now); err != nil {
		return report, err
	}
	s.logger.Info("release_refresh_done", "checked", report.Checked, "updated", report.Updated, "failed", report.Failed)
	return report, nil
}

// checkReleases: 출시일이 지난 게임을 출시 처리하고 설정된 채널(없으면 소유 채팅방)로 알린다.
func (s *Scheduler) checkReleases(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.store.ListUnreleased(ctx, repository.APITypeGiantBomb)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, row := range rows {
		date := row.ReleaseDateOrEmpty()
		if date == "" || !resolver.IsDateReleased(date, now) {
			continue
		}
		if err := s.store.MarkReleased(ctx, row.ID); err != nil {
			s.logger.Error("release_mark_failed", "server_id", row.ServerID, "game_id", row.GameID, "err", err)
			continue
		}
		released++

		target := row.ServerID
		if settings, err := s.store.GetSettings(ctx, row.ServerID); err == nil && settings.ChannelID != "" {
			target = settings.ChannelID
		}
		text := s.msg.Get(messages.NotifyReleased,
			messageprovider.P("name", row.Name),
			messageprovider.P("date", date),
			messageprovider.P("url", row.DetailURL),
		)
		if err := s.notifier.Notify(ctx, target, text); err != nil {
			s.logger.Warn("release_notify_failed", "chat_id", target, "game_id", row.GameID, "err", err)
		}
	}
	return released, nil
}
