package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/repository"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/scheduler"
)

type fakeScheduler struct {
	calls  int
	forced bool
	err    error
}

func (f *fakeScheduler) RunOnce(_ context.Context, force bool) (scheduler.Report, error) {
	f.calls++
	f.forced = force
	return scheduler.Report{Refreshed: true, Checked: 3, Updated: 2, Released: 1}, f.err
}

func newTestMux(t *testing.T, apiKey string) (*http.ServeMux, *repository.Repository, *fakeScheduler) {
	t.Helper()

	repo := repository.New(testhelper.NewTestDB(t))
	if err := repo.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	sched := &fakeScheduler{}

	mux := http.NewServeMux()
	Register(mux, Deps{
		Store:       repo,
		Scheduler:   sched,
		AdminAPIKey: apiKey,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return mux, repo, sched
}

func TestHealth(t *testing.T) {
	mux, _, _ := newTestMux(t, "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestHealth_DegradedProbe(t *testing.T) {
	mux := http.NewServeMux()
	Register(mux, Deps{
		Health: health.New("test", time.Second, health.Probe{
			Name:  "valkey",
			Check: func(context.Context) error { return errors.New("down") },
		}),
		Logger: slog.New(slog.DiscardHandler),
	})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var body health.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Status != health.StatusDegraded || body.Checks["valkey"] != "down" {
		t.Fatalf("unexpected health body: %+v", body)
	}
}

func TestListGames(t *testing.T) {
	mux, repo, _ := newTestMux(t, "")
	date := "2026-02-01"
	if err := repo.UpsertGame(context.Background(), repository.StoredGame{
		ServerID:        "room1",
		GameID:          42,
		Name:            "Fable",
		PlatformID:      94,
		ReleaseDate:     &date,
		ReleaseCategory: "release",
	}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/releasebot/rooms/room1/games", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp GamesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Count != 1 || resp.Games[0].GameID != 42 || resp.Games[0].ReleaseDateOrEmpty() != date {
		t.Fatalf("unexpected games: %+v", resp)
	}

	empty := httptest.NewRecorder()
	mux.ServeHTTP(empty, httptest.NewRequest(http.MethodGet, "/api/releasebot/rooms/other/games", nil))
	var emptyResp GamesResponse
	if err := json.Unmarshal(empty.Body.Bytes(), &emptyResp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if emptyResp.Count != 0 || emptyResp.Games == nil {
		t.Fatalf("expected empty list, got %+v", emptyResp)
	}
}

func TestSettings(t *testing.T) {
	mux, repo, _ := newTestMux(t, "")
	ctx := context.Background()
	if err := repo.SaveChannel(ctx, "room1", "notify-room"); err != nil {
		t.Fatalf("save channel failed: %v", err)
	}
	if err := repo.SavePlatforms(ctx, "room1", []string{"PC", "SWITCH"}); err != nil {
		t.Fatalf("save platforms failed: %v", err)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/releasebot/rooms/room1/settings", nil))

	var resp SettingsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.ChannelID != "notify-room" || len(resp.Platforms) != 2 || resp.Platforms[1] != "SWITCH" {
		t.Fatalf("unexpected settings: %+v", resp)
	}
}

func TestSchedulerRun_RequiresAPIKey(t *testing.T) {
	mux, _, sched := newTestMux(t, "secret")

	denied := httptest.NewRecorder()
	mux.ServeHTTP(denied, httptest.NewRequest(http.MethodPost, "/api/releasebot/scheduler/run", nil))
	if denied.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", denied.Code)
	}
	if sched.calls != 0 {
		t.Fatal("scheduler should not run without api key")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/releasebot/scheduler/run", nil)
	req.Header.Set("X-API-Key", "secret")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if sched.calls != 1 || !sched.forced {
		t.Fatalf("expected one forced run, got calls=%d forced=%v", sched.calls, sched.forced)
	}
	var report scheduler.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if report.Checked != 3 || report.Released != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestSchedulerRun_Busy(t *testing.T) {
	mux, _, sched := newTestMux(t, "")
	sched.err = scheduler.ErrAlreadyRunning

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/releasebot/scheduler/run", nil))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestSchedulerRun_Body(t *testing.T) {
	mux, _, sched := newTestMux(t, "")

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/releasebot/scheduler/run", strings.NewReader(`{"force":false}`)))
	if rr.Code != http.StatusOK || sched.forced {
		t.Fatalf("expected unforced run, got code=%d forced=%v", rr.Code, sched.forced)
	}

	bad := httptest.NewRecorder()
	mux.ServeHTTP(bad, httptest.NewRequest(http.MethodPost, "/api/releasebot/scheduler/run", strings.NewReader(`{force`)))
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", bad.Code)
	}
	if sched.calls != 1 {
		t.Fatalf("malformed body must not trigger a run, calls=%d", sched.calls)
	}
}
