// Package wizard: 검색 결과 → 플랫폼 → 지역 순으로 선택을 좁혀 출시일을 저장하는 채팅방별 상태 기계.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	cerrors "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/catalog"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/repository"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/resolver"
)

// DefaultGamesPerPage: 저장 목록 한 페이지 크기
const DefaultGamesPerPage = 20

// ErrNoSession: 채팅방에 진행 중인 세션이 없다.
var ErrNoSession = errors.New("wizard session not found")

// Catalog: 검색과 발매 기록 조회 경계
type Catalog interface {
	Search(ctx context.Context, allowed []int, query string) (catalog.FilteredResults, error)
	FetchReleases(ctx context.Context, gameID int, platformIDs []int) ([]catalog.ReleaseRecord, error)
}

// Resolver: 출시일 추론 경계
type Resolver interface {
	Resolve(ctx context.Context, game catalog.Game, platformID int) resolver.ResolvedRelease
}

// GameStore: 저장소 경계
type GameStore interface {
	UpsertGame(ctx context.Context, game repository.StoredGame) error
	ListGames(ctx context.Context, serverID string) ([]repository.StoredGame, error)
	GetSettings(ctx context.Context, serverID string) (repository.ServerSettings, error)
}

// Config: 마법사 설정
type Config struct {
	GamesPerPage        int
	PlaceholderImageURL string
}

// Wizard: 세션 전이와 화면 생성을 담당한다. 같은 채팅방의 전이는 호출자가 직렬화해야 한다.
type Wizard struct {
	catalog  Catalog
	resolver Resolver
	store    GameStore
	sessions SessionStore
	msg      *messageprovider.Provider
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// New: Wizard 를 생성한다.
func New(
	cat Catalog,
	res Resolver,
	store GameStore,
	sessions SessionStore,
	msg *messageprovider.Provider,
	cfg Config,
	logger *slog.Logger,
) *Wizard {
	if cfg.GamesPerPage <= 0 {
		cfg.GamesPerPage = DefaultGamesPerPage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Wizard{
		catalog:  cat,
		resolver: res,
		store:    store,
		sessions: sessions,
		msg:      msg,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// outcome: 전이 결과. changed 면 세션을 저장하고 finished 면 세션을 제거한다.
type outcome struct {
	render   RenderRequest
	changed  bool
	finished bool
}

// Start: 검색을 실행하고 search 단계 세션을 만든다. 기존 세션은 대체된다.
// 카탈로그 전송 실패는 "결과 없음" 으로 처리한다.
func (w *Wizard) Start(ctx context.Context, chatID string, userID string, query string) (RenderRequest, error) {
	settings, err := w.store.GetSettings(ctx, chatID)
	if err != nil {
		return RenderRequest{}, err
	}
	allowed := catalog.PlatformIDsFromCodes(settings.PlatformCodes())

	results, err := w.catalog.Search(ctx, allowed, query)
	if err != nil {
		if cerrors.IsExpectedUserBehavior(err) {
			return RenderRequest{}, err
		}
		w.logger.Warn("catalog_search_failed", "chat_id", chatID, "query", query, "err", err)
		results = catalog.FilteredResults{}
	}

	session := &Session{
		ChatID:      chatID,
		UserID:      userID,
		Query:       strings.TrimSpace(query),
		Games:       results.Games,
		Platforms:   results.Platforms,
		AllowedIDs:  allowed,
		PlatformIDs: results.PlatformIDs,
	}
	session.enter(StageSearch)

	if results.Len() == 0 {
		if err := w.sessions.Delete(ctx, chatID); err != nil {
			return RenderRequest{}, err
		}
		return w.Render(session), nil
	}
	if err := w.sessions.Save(ctx, session); err != nil {
		return RenderRequest{}, err
	}

	w.logger.Info("wizard_started", "chat_id", chatID, "query", session.Query, "results", results.Len())
	return w.Render(session), nil
}

// Browse: 저장된 게임 목록 탐색 세션을 연다. 기존 세션은 대체된다.
func (w *Wizard) Browse(ctx context.Context, chatID string, userID string) (RenderRequest, error) {
	rows, err := w.store.ListGames(ctx, chatID)
	if err != nil {
		return RenderRequest{}, err
	}

	saved := make([]SavedGame, 0, len(rows))
	for _, row := range rows {
		saved = append(saved, SavedGame{
			GameID:   row.GameID,
			Name:     row.Name,
			Date:     row.ReleaseDate,
			Category: row.ReleaseCategory,
		})
	}

	session := &Session{
		ChatID:       chatID,
		UserID:       userID,
		Saved:        saved,
		GamesPerPage: w.cfg.GamesPerPage,
	}
	session.enter(StageGames)

	if err := w.sessions.Save(ctx, session); err != nil {
		return RenderRequest{}, err
	}
	return w.Render(session), nil
}

// Handle: 이벤트를 현재 세션에 적용한다. 세션이 없으면 ErrNoSession.
func (w *Wizard) Handle(ctx context.Context, chatID string, event Event) (RenderRequest, error) {
	session, err := w.sessions.Load(ctx, chatID)
	if err != nil {
		return RenderRequest{}, err
	}
	if session == nil {
		return RenderRequest{}, ErrNoSession
	}

	out := w.transition(ctx, session, event)

	switch {
	case out.finished:
		if err := w.sessions.Delete(ctx, chatID); err != nil {
			w.logger.Warn("wizard_session_delete_failed", "chat_id", chatID, "err", err)
		}
	case out.changed:
		if err := w.sessions.Save(ctx, session); err != nil {
			return RenderRequest{}, err
		}
	}
	return out.render, nil
}

func (w *Wizard) transition(ctx context.Context, s *Session, event Event) outcome {
	w.logger.Debug("wizard_transition", "chat_id", s.ChatID, "stage", s.Stage, "page", s.Page, "event", event.String())

	switch event {
	case EventNext:
		p := s.Pager()
		if !p.HasNext() {
			return w.unchanged(s)
		}
		s.Page = p.Next().Page
		return w.changed(s)
	case EventPrevious:
		p := s.Pager()
		if !p.HasPrevious() {
			return w.unchanged(s)
		}
		s.Page = p.Previous().Page
		return w.changed(s)
	case EventBack:
		return w.back(s)
	case EventSelect:
		return w.selectCurrent(ctx, s)
	default:
		return w.ignore(s, event, "unknown event")
	}
}

func (w *Wizard) selectCurrent(ctx context.Context, s *Session) outcome {
	switch s.Stage {
	case StageSearch:
		if s.MaxPage() == 0 {
			return w.ignore(s, EventSelect, "no search results")
		}
		s.Selected = s.Pager().Page
		s.SelectedPlatform = catalog.PlatformAll
		s.PlatformSkipped = false
		return w.enterPlatform(ctx, s)
	case StagePlatform:
		_, platforms, ok := s.SelectedGame()
		page := s.Pager().Page
		if !ok || page > len(platforms) || len(platforms) == 0 {
			return w.ignore(s, EventSelect, "no platform to select")
		}
		s.SelectedPlatform = platforms[page-1].ID
		return w.enterRegion(ctx, s)
	case StageRegion:
		if _, _, ok := s.SelectedGame(); !ok {
			return w.ignore(s, EventSelect, "no selected game")
		}
		return w.finish(ctx, s)
	case StageGames:
		return w.ignore(s, EventSelect, "browse mode has no selection")
	default:
		return w.ignore(s, EventSelect, "unknown stage")
	}
}

// enterPlatform: 매칭 플랫폼이 하나 이하이면 platform 단계를 건너뛴다.
func (w *Wizard) enterPlatform(ctx context.Context, s *Session) outcome {
	_, platforms, ok := s.SelectedGame()
	if !ok {
		return w.ignore(s, EventSelect, "no selected game")
	}

	switch len(platforms) {
	case 0:
		s.SelectedPlatform = catalog.PlatformAll
		s.PlatformSkipped = true
		return w.enterRegion(ctx, s)
	case 1:
		s.SelectedPlatform = platforms[0].ID
		s.PlatformSkipped = true
		return w.enterRegion(ctx, s)
	default:
		s.enter(StagePlatform)
		return w.changed(s)
	}
}

// enterRegion: 허용 플랫폼 집합으로 발매 기록을 조회하고, 두 건 이상일 때만 region 단계를 연다.
func (w *Wizard) enterRegion(ctx context.Context, s *Session) outcome {
	game, _, ok := s.SelectedGame()
	if !ok {
		return w.ignore(s, EventSelect, "no selected game")
	}

	ids := s.PlatformIDs
	if len(ids) == 0 {
		ids = []int{s.SelectedPlatform}
	}
	key := releasesKey(game.ID, ids)

	if s.ReleasesKey != key {
		records, err := w.catalog.FetchReleases(ctx, game.ID, ids)
		if err != nil {
			w.logger.Warn("wizard_fetch_releases_failed", "chat_id", s.ChatID, "game_id", game.ID, "err", err)
			s.Releases = nil
			s.ReleasesKey = ""
		} else {
			s.Releases = records
			s.ReleasesKey = key
		}
	}

	if len(s.Releases) <= 1 {
		return w.finish(ctx, s)
	}
	s.enter(StageRegion)
	return w.changed(s)
}

// finish: 추론 결과를 저장하고 최종 화면을 만든다. 저장 실패 시 세션은 마지막 저장 상태로 남는다.
func (w *Wizard) finish(ctx context.Context, s *Session) outcome {
	game, _, _ := s.SelectedGame()

	resolved := w.resolver.Resolve(ctx, game, s.SelectedPlatform)
	released := resolved.IsReleased(w.now())

	row := repository.StoredGame{
		ServerID:        s.ChatID,
		GameID:          game.ID,
		APIType:         repository.APITypeGiantBomb,
		Name:            game.Name,
		Description:     game.Summary(),
		DetailURL:       game.SiteDetailURL,
		ImageURL:        game.ImageURL(w.cfg.PlaceholderImageURL),
		PlatformID:      s.SelectedPlatform,
		ReleaseDate:     resolved.Date,
		ReleaseCategory: string(resolved.Category),
		Released:        released,
		AddedBy:         s.UserID,
	}
	if err := w.store.UpsertGame(ctx, row); err != nil {
		w.logger.Error("wizard_persist_failed", "chat_id", s.ChatID, "game_id", game.ID, "err", err)
		return outcome{render: w.renderFailure()}
	}

	w.logger.Info("wizard_game_saved",
		"chat_id", s.ChatID,
		"game_id", game.ID,
		"platform_id", s.SelectedPlatform,
		"category", resolved.Category,
		"released", released,
	)
	return outcome{render: w.renderConfirmation(game, resolved, released), finished: true}
}

// back: 직전 단계로 돌아간다. 캐시된 검색/발매 데이터는 유지한다.
func (w *Wizard) back(s *Session) outcome {
	switch s.Stage {
	case StageRegion:
		if s.PlatformSkipped {
			s.Stage = StageSearch
			s.Page = s.Selected
			return w.changed(s)
		}
		_, platforms, _ := s.SelectedGame()
		s.Stage = StagePlatform
		s.Page = 1
		if idx := slices.IndexFunc(platforms, func(p catalog.Platform) bool { return p.ID == s.SelectedPlatform }); idx >= 0 {
			s.Page = idx + 1
		}
		return w.changed(s)
	case StagePlatform:
		s.Stage = StageSearch
		s.Page = s.Selected
		return w.changed(s)
	case StageSearch, StageGames:
		return w.ignore(s, EventBack, "no previous stage")
	default:
		return w.ignore(s, EventBack, "unknown stage")
	}
}

func (w *Wizard) changed(s *Session) outcome {
	return outcome{render: w.Render(s), changed: true}
}

func (w *Wizard) unchanged(s *Session) outcome {
	return outcome{render: w.Render(s)}
}

func (w *Wizard) ignore(s *Session, event Event, reason string) outcome {
	w.logger.Info("wizard_transition_ignored",
		"chat_id", s.ChatID,
		"stage", s.Stage,
		"event", event.String(),
		"reason", reason,
	)
	return w.unchanged(s)
}

func releasesKey(gameID int, ids []int) string {
	parts := make([]string, 0, len(ids)+1)
	parts = append(parts, strconv.Itoa(gameID))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ":")
}
