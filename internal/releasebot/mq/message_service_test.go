package mq

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/accesscontrol"
	commonconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/messageprovider"
	commonmq "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mq"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/processinglock"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/assets"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/config"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/messages"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/repository"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/wizard"
)

type fakeWizard struct {
	started []string
	events  []wizard.Event
	render  wizard.RenderRequest
	err     error
}

func (f *fakeWizard) Start(_ context.Context, _ string, _ string, query string) (wizard.RenderRequest, error) {
	f.started = append(f.started, query)
	return f.render, f.err
}

func (f *fakeWizard) Browse(_ context.Context, _ string, _ string) (wizard.RenderRequest, error) {
	return f.render, f.err
}

func (f *fakeWizard) Handle(_ context.Context, _ string, event wizard.Event) (wizard.RenderRequest, error) {
	f.events = append(f.events, event)
	return f.render, f.err
}

type serviceFixture struct {
	service   *MessageService
	wizard    *fakeWizard
	repo      *repository.Repository
	lock      *processinglock.Lock
	published []mqmsg.OutboundMessage
}

func newServiceFixture(t *testing.T, access commonconfig.AccessConfig) *serviceFixture {
	t.Helper()

	msgProvider, err := messageprovider.NewFromYAMLAtPath(assets.ReleaseMessagesYAML, assets.MessagesRootKey)
	if err != nil {
		t.Fatalf("message provider init failed: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := repository.New(testhelper.NewTestDB(t))
	if err := repo.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	client, _ := testhelper.NewTestValkeyClient(t)
	lock := processinglock.New(client, config.RedisKeyProcessingPrefix, time.Minute, logger)

	f := &serviceFixture{wizard: &fakeWizard{}, repo: repo, lock: lock}
	replier := commonmq.NewReplier(msgProvider, func(_ context.Context, msg mqmsg.OutboundMessage) error {
		f.published = append(f.published, msg)
		return nil
	}, commonmq.ReplierConfig{
		MaxLength:     commonconfig.KakaoMessageMaxLength,
		BusyKey:       messages.ErrorProcessing,
		ErrorsAsFinal: true,
	})

	handler := NewCommandHandler(f.wizard, repo, msgProvider, "/발매", logger)
	handler.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	f.service = NewMessageService(
		handler,
		replier,
		msgProvider,
		accesscontrol.New(access),
		NewCommandParser("/발매"),
		lock,
		"/발매",
		logger,
	)
	return f
}

func (f *serviceFixture) send(t *testing.T, content string) string {
	t.Helper()
	before := len(f.published)
	f.service.HandleMessage(context.Background(), mqmsg.InboundMessage{ChatID: "room1", UserID: "user1", Content: content})
	if len(f.published) == before {
		return ""
	}
	return f.published[len(f.published)-1].Text
}

func TestMessageService_SearchFormatsRender(t *testing.T) {
	f := newServiceFixture(t, commonconfig.AccessConfig{})
	f.wizard.render = wizard.RenderRequest{
		Title:  "Fable",
		Body:   "An RPG",
		URL:    "https://example.com/fable",
		Footer: "검색 결과 1/3",
		Nav:    wizard.Navigation{Next: true, Select: true},
	}

	text := f.send(t, "/발매 검색 fable")

	if len(f.wizard.started) != 1 || f.wizard.started[0] != "fable" {
		t.Fatalf("expected wizard start with query, got %v", f.wizard.started)
	}
	want := "Fable\nAn RPG\nhttps://example.com/fable\n검색 결과 1/3\n▶ /발매 다음 · /발매 선택"
	if text != want {
		t.Fatalf("unexpected reply:\n%s\nwant:\n%s", text, want)
	}
	if f.published[len(f.published)-1].Type != mqmsg.OutboundFinal {
		t.Fatal("expected final reply")
	}
}

func TestMessageService_NoSessionMapsToHint(t *testing.T) {
	f := newServiceFixture(t, commonconfig.AccessConfig{})
	f.wizard.err = wizard.ErrNoSession

	text := f.send(t, "/발매 다음")

	if len(f.wizard.events) != 1 || f.wizard.events[0] != wizard.EventNext {
		t.Fatalf("expected next event, got %v", f.wizard.events)
	}
	if !strings.Contains(text, "/발매 검색") {
		t.Fatalf("expected no session hint, got %q", text)
	}
}

func TestMessageService_RejectsWhileProcessing(t *testing.T) {
	f := newServiceFixture(t, commonconfig.AccessConfig{})
	ctx := context.Background()

	if err := f.lock.StartProcessing(ctx, "room1"); err != nil {
		t.Fatalf("start processing failed: %v", err)
	}

	text := f.send(t, "/발매 검색 fable")
	if len(f.wizard.started) != 0 {
		t.Fatal("wizard should not run while chat is processing")
	}
	if f.published[len(f.published)-1].Type != mqmsg.OutboundError || !strings.Contains(text, "처리 중") {
		t.Fatalf("expected processing error, got %+v", f.published[len(f.published)-1])
	}

	// 조회성 명령은 락 없이 실행된다.
	if help := f.send(t, "/발매"); !strings.Contains(help, "/발매 검색") {
		t.Fatalf("expected help while locked, got %q", help)
	}
}

func TestMessageService_ReleasesLockAfterCommand(t *testing.T) {
	f := newServiceFixture(t, commonconfig.AccessConfig{})

	f.send(t, "/발매 검색 fable")
	f.send(t, "/발매 검색 halo")

	if len(f.wizard.started) != 2 {
		t.Fatalf("expected both searches to run, got %v", f.wizard.started)
	}
}

func TestMessageService_SavedGameManagement(t *testing.T) {
	f := newServiceFixture(t, commonconfig.AccessConfig{})
	ctx := context.Background()

	date := "2025-09-01"
	if err := f.repo.UpsertGame(ctx, repository.StoredGame{
		ServerID:        "room1",
		GameID:          12345,
		Name:            "Hollow Knight: Silksong",
		DetailURL:       "https://example.com/silksong",
		PlatformID:      94,
		ReleaseDate:     &date,
		ReleaseCategory: "expected",
	}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	detail := f.send(t, "/발매 게임 silksong")
	if !strings.Contains(detail, "Hollow Knight: Silksong [ID 12345]") || !strings.Contains(detail, "출시 예정일: 2025-09-01 (예정)") {
		t.Fatalf("unexpected detail: %q", detail)
	}

	updated := f.send(t, "/발매 날짜 12345 3-4-25")
	if !strings.Contains(updated, "2025-03-04") {
		t.Fatalf("unexpected date reply: %q", updated)
	}
	game, err := f.repo.FindGame(ctx, "room1", 12345)
	if err != nil || game == nil {
		t.Fatalf("find game failed: %v", err)
	}
	if !game.ManualDate || !game.Released || game.ReleaseDateOrEmpty() != "2025-03-04" {
		t.Fatalf("manual date not applied: %+v", game)
	}

	if invalid := f.send(t, "/발매 날짜 12345 2025-03-04"); !strings.Contains(invalid, "형식") {
		t.Fatalf("expected invalid date hint, got %q", invalid)
	}
	if missing := f.send(t, "/발매 날짜 999 3-4-25"); !strings.Contains(missing, "999") {
		t.Fatalf("expected not saved reply, got %q", missing)
	}

	if deleted := f.send(t, "/발매 삭제 12345"); !strings.Contains(deleted, "삭제했습니다") {
		t.Fatalf("unexpected delete reply: %q", deleted)
	}
	if again := f.send(t, "/발매 삭제 12345"); !strings.Contains(again, "저장되어 있지 않습니다") {
		t.Fatalf("unexpected second delete reply: %q", again)
	}
	if notFound := f.send(t, "/발매 게임 silksong"); !strings.Contains(notFound, "없습니다") {
		t.Fatalf("unexpected lookup reply: %q", notFound)
	}
}

func TestMessageService_Settings(t *testing.T) {
	f := newServiceFixture(t, commonconfig.AccessConfig{})
	ctx := context.Background()

	if shown := f.send(t, "/발매 설정"); shown != "알림 채널: 이 채팅방\n플랫폼: 전체" {
		t.Fatalf("unexpected default settings: %q", shown)
	}

	f.send(t, "/발매 설정 채널")
	f.send(t, "/발매 설정 플랫폼 pc ps5 PC")
	settings, err := f.repo.GetSettings(ctx, "room1")
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if settings.ChannelID != "room1" {
		t.Fatalf("channel should default to the current chat, got %q", settings.ChannelID)
	}
	if codes := settings.PlatformCodes(); len(codes) != 2 || codes[0] != "PC" || codes[1] != "PS5" {
		t.Fatalf("unexpected platforms: %v", codes)
	}

	invalid := f.send(t, "/발매 설정 플랫폼 PC GAMECUBE")
	if !strings.Contains(invalid, "GAMECUBE") {
		t.Fatalf("expected invalid code reply, got %q", invalid)
	}
	settings, _ = f.repo.GetSettings(ctx, "room1")
	if len(settings.PlatformCodes()) != 2 {
		t.Fatalf("invalid input must not change settings: %v", settings.PlatformCodes())
	}

	f.send(t, "/발매 설정 플랫폼 ALL")
	settings, _ = f.repo.GetSettings(ctx, "room1")
	if len(settings.PlatformCodes()) != 0 {
		t.Fatalf("ALL should clear the filter, got %v", settings.PlatformCodes())
	}
}

func TestMessageService_AccessControl(t *testing.T) {
	t.Run("blocked user gets message", func(t *testing.T) {
		f := newServiceFixture(t, commonconfig.AccessConfig{BlockedUserIDs: []string{"user1"}})
		text := f.send(t, "/발매 검색 fable")
		if text != "차단된 사용자입니다." {
			t.Fatalf("unexpected reply: %q", text)
		}
		if len(f.wizard.started) != 0 {
			t.Fatal("blocked user must not reach the wizard")
		}
	})

	t.Run("chat outside allow list is silent", func(t *testing.T) {
		f := newServiceFixture(t, commonconfig.AccessConfig{Enabled: true, AllowedChatIDs: []string{"other"}})
		if text := f.send(t, "/발매 검색 fable"); text != "" {
			t.Fatalf("expected no reply, got %q", text)
		}
	})
}

func TestMessageService_IgnoresNonCommands(t *testing.T) {
	f := newServiceFixture(t, commonconfig.AccessConfig{})
	if text := f.send(t, "점심 뭐 먹지"); text != "" {
		t.Fatalf("expected no reply, got %q", text)
	}
	if unknown := f.send(t, "/발매 아무말"); !strings.Contains(unknown, "알 수 없는 명령") {
		t.Fatalf("unexpected unknown reply: %q", unknown)
	}
}

func TestRenderFormatter_FinalIncludesImage(t *testing.T) {
	msgProvider, err := messageprovider.NewFromYAMLAtPath(assets.ReleaseMessagesYAML, assets.MessagesRootKey)
	if err != nil {
		t.Fatalf("message provider init failed: %v", err)
	}
	formatter := NewRenderFormatter(msgProvider, "/발매")

	text := formatter.Format(wizard.RenderRequest{
		Title:    "Fable - 추가됨",
		ImageURL: "https://example.com/fable.png",
		Footer:   "출시 예정일: 2026-01-01",
		Final:    true,
	})
	if text != "Fable - 추가됨\nhttps://example.com/fable.png\n출시 예정일: 2026-01-01" {
		t.Fatalf("unexpected text: %q", text)
	}
}
