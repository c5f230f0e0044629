// Package httpapi: 저장 게임/설정 조회와 스케줄러 수동 실행 HTTP API
package httpapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/health"
	commonhttputil "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/httputil"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/repository"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/scheduler"
)

// API 에러 코드
const (
	errorInvalidRequest = "INVALID_REQUEST"
	errorUnauthorized   = "UNAUTHORIZED"
	errorConflict       = "SCHEDULER_BUSY"
	errorInternal       = "INTERNAL_ERROR"
)

// Store: 조회 API 가 사용하는 저장소 연산
type Store interface {
	ListGames(ctx context.Context, serverID string) ([]repository.StoredGame, error)
	GetSettings(ctx context.Context, serverID string) (repository.ServerSettings, error)
}

// SchedulerRunner: 수동 실행 대상
type SchedulerRunner interface {
	RunOnce(ctx context.Context, force bool) (scheduler.Report, error)
}

// Deps: 핸들러 의존성
type Deps struct {
	Store     Store
	Scheduler SchedulerRunner
	// AdminAPIKey: 비어 있으면 관리 API 인증을 생략한다.
	AdminAPIKey string
	// Health: nil 이면 probe 없이 ok 만 보고한다.
	Health *health.Reporter
	Logger *slog.Logger
}

// GamesResponse: 저장 게임 목록 응답 DTO
type GamesResponse struct {
	ChatID string                  `json:"chatId"`
	Count  int                     `json:"count"`
	Games  []repository.StoredGame `json:"games"`
}

// SettingsResponse: 설정 응답 DTO. platforms 가 비어 있으면 전체 플랫폼이다.
type SettingsResponse struct {
	ChatID    string   `json:"chatId"`
	ChannelID string   `json:"channelId"`
	Platforms []string `json:"platforms"`
}

// RunRequest: 스케줄러 수동 실행 본문. 본문을 생략하면 force=true 로 갱신 주기를 무시한다.
type RunRequest struct {
	Force *bool `json:"force"`
}

const maxRunRequestBytes = 1 << 10

// Register: 라우트 등록
func Register(mux *http.ServeMux, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		report := deps.Health.Report(r.Context())
		status := http.StatusOK
		if report.Status != health.StatusOK {
			status = http.StatusServiceUnavailable
		}
		_ = commonhttputil.WriteJSON(w, status, report)
	})

	mux.HandleFunc("GET /api/releasebot/rooms/{chatId}/games", func(w http.ResponseWriter, r *http.Request) {
		handleGames(w, r, deps)
	})

	mux.HandleFunc("GET /api/releasebot/rooms/{chatId}/settings", func(w http.ResponseWriter, r *http.Request) {
		handleSettings(w, r, deps)
	})

	mux.Handle("POST /api/releasebot/scheduler/run", requireAPIKey(deps.AdminAPIKey, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleSchedulerRun(w, r, deps)
	})))

	deps.Logger.Info("releasebot_http_api_registered")
}

func handleGames(w http.ResponseWriter, r *http.Request, deps Deps) {
	chatID := strings.TrimSpace(r.PathValue("chatId"))
	if chatID == "" {
		_ = commonhttputil.WriteError(w, http.StatusBadRequest, errorInvalidRequest, "chatId is required")
		return
	}

	games, err := deps.Store.ListGames(r.Context(), chatID)
	if err != nil {
		deps.Logger.Error("http_list_games_failed", "chat_id", chatID, "err", err)
		_ = commonhttputil.WriteError(w, http.StatusInternalServerError, errorInternal, "failed to list games")
		return
	}
	if games == nil {
		games = []repository.StoredGame{}
	}
	_ = commonhttputil.WriteJSON(w, http.StatusOK, GamesResponse{ChatID: chatID, Count: len(games), Games: games})
}

func handleSettings(w http.ResponseWriter, r *http.Request, deps Deps) {
	chatID := strings.TrimSpace(r.PathValue("chatId"))
	if chatID == "" {
		_ = commonhttputil.WriteError(w, http.StatusBadRequest, errorInvalidRequest, "chatId is required")
		return
	}

	settings, err := deps.Store.GetSettings(r.Context(), chatID)
	if err != nil {
		deps.Logger.Error("http_get_settings_failed", "chat_id", chatID, "err", err)
		_ = commonhttputil.WriteError(w, http.StatusInternalServerError, errorInternal, "failed to load settings")
		return
	}
	platforms := settings.PlatformCodes()
	if platforms == nil {
		platforms = []string{}
	}
	_ = commonhttputil.WriteJSON(w, http.StatusOK, SettingsResponse{
		ChatID:    chatID,
		ChannelID: settings.ChannelID,
		Platforms: platforms,
	})
}

func handleSchedulerRun(w http.ResponseWriter, r *http.Request, deps Deps) {
	force := true
	var req RunRequest
	switch err := commonhttputil.ReadJSON(w, r, &req, maxRunRequestBytes); {
	case errors.Is(err, commonhttputil.ErrEmptyBody):
	case err != nil:
		_ = commonhttputil.WriteError(w, http.StatusBadRequest, errorInvalidRequest, err.Error())
		return
	case req.Force != nil:
		force = *req.Force
	}

	report, err := deps.Scheduler.RunOnce(r.Context(), force)
	switch {
	case errors.Is(err, scheduler.ErrAlreadyRunning):
		_ = commonhttputil.WriteError(w, http.StatusConflict, errorConflict, err.Error())
		return
	case err != nil:
		deps.Logger.Error("http_scheduler_run_failed", "err", err)
		_ = commonhttputil.WriteError(w, http.StatusInternalServerError, errorInternal, "scheduler run failed")
		return
	}

	deps.Logger.Info("http_scheduler_run_done", "checked", report.Checked, "updated", report.Updated, "released", report.Released)
	_ = commonhttputil.WriteJSON(w, http.StatusOK, report)
}

func requireAPIKey(apiKey string, next http.Handler) http.Handler {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(commonhttputil.HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
			_ = commonhttputil.WriteError(w, http.StatusUnauthorized, errorUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
