package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db failed: %v", err)
	}
	// :memory: 는 커넥션마다 별도 DB 이므로 하나로 고정한다.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := New(db)
	if err := repo.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return repo
}

func strPtr(s string) *string { return &s }

func TestRepository_UpsertGameIsKeyedByServerAndGame(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// Given: 같은 (server, game) 을 두 번 저장
	first := StoredGame{ServerID: "room1", GameID: 10, Name: "Fable", PlatformID: 94, ReleaseDate: strPtr("2004-09-14"), ReleaseCategory: "missing"}
	second := first
	second.ReleaseCategory = "release"
	second.Released = true

	if err := repo.UpsertGame(ctx, first); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := repo.UpsertGame(ctx, second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	// 다른 방은 별도 행
	other := first
	other.ServerID = "room2"
	if err := repo.UpsertGame(ctx, other); err != nil {
		t.Fatalf("other room upsert failed: %v", err)
	}

	// Then
	rows, err := repo.ListGames(ctx, "room1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row per (server, game), got %d", len(rows))
	}
	if rows[0].ReleaseCategory != "release" || !rows[0].Released {
		t.Fatalf("row not updated: %+v", rows[0])
	}
	if rows[0].APIType != APITypeGiantBomb {
		t.Fatalf("api type default missing: %q", rows[0].APIType)
	}

	found, err := repo.FindGame(ctx, "room2", 10)
	if err != nil || found == nil {
		t.Fatalf("find failed: %v %v", found, err)
	}
	missing, err := repo.FindGame(ctx, "room3", 10)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing row, got %v %v", missing, err)
	}
}

func TestRepository_DeleteGameIsScopedByServer(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, server := range []string{"room1", "room2"} {
		if err := repo.UpsertGame(ctx, StoredGame{ServerID: server, GameID: 5, Name: "Hades", ReleaseCategory: "TBA"}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	deleted, err := repo.DeleteGame(ctx, "room1", 5)
	if err != nil || !deleted {
		t.Fatalf("expected delete, got %v %v", deleted, err)
	}
	deleted, err = repo.DeleteGame(ctx, "room1", 5)
	if err != nil || deleted {
		t.Fatalf("second delete should be a no-op, got %v %v", deleted, err)
	}
	if found, _ := repo.FindGame(ctx, "room2", 5); found == nil {
		t.Fatalf("other room row must survive")
	}
}

func TestRepository_ListUnreleasedAndMarkReleased(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_ = repo.UpsertGame(ctx, StoredGame{ServerID: "room1", GameID: 1, Name: "A", ReleaseCategory: "expected", ReleaseDate: strPtr("2030-01-01")})
	_ = repo.UpsertGame(ctx, StoredGame{ServerID: "room1", GameID: 2, Name: "B", ReleaseCategory: "release", Released: true})
	_ = repo.UpsertGame(ctx, StoredGame{ServerID: "room1", GameID: 3, Name: "C", ReleaseCategory: "TBA", APIType: "other"})

	rows, err := repo.ListUnreleased(ctx, APITypeGiantBomb)
	if err != nil {
		t.Fatalf("list unreleased failed: %v", err)
	}
	if len(rows) != 1 || rows[0].GameID != 1 {
		t.Fatalf("unexpected unreleased rows: %+v", rows)
	}

	if err := repo.MarkReleased(ctx, rows[0].ID); err != nil {
		t.Fatalf("mark released failed: %v", err)
	}
	rows, _ = repo.ListUnreleased(ctx, APITypeGiantBomb)
	if len(rows) != 0 {
		t.Fatalf("expected no unreleased rows, got %d", len(rows))
	}
}

func TestRepository_SetManualDate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_ = repo.UpsertGame(ctx, StoredGame{ServerID: "room1", GameID: 1, Name: "A", ReleaseCategory: "TBA"})

	ok, err := repo.SetManualDate(ctx, "room1", 1, "2026-11-20", false)
	if err != nil || !ok {
		t.Fatalf("set manual date failed: %v %v", ok, err)
	}
	row, _ := repo.FindGame(ctx, "room1", 1)
	if row == nil || !row.ManualDate || row.ReleaseDateOrEmpty() != "2026-11-20" {
		t.Fatalf("manual date not stored: %+v", row)
	}

	ok, err = repo.SetManualDate(ctx, "room1", 99, "2026-11-20", false)
	if err != nil || ok {
		t.Fatalf("unknown game should report not found, got %v %v", ok, err)
	}
}

func TestRepository_FindGameByNameFoldsCase(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	_ = repo.UpsertGame(ctx, StoredGame{ServerID: "room1", GameID: 1, Name: "The Legend of Zelda", ReleaseCategory: "release"})

	row, err := repo.FindGameByName(ctx, "room1", "LEGEND of")
	if err != nil || row == nil || row.GameID != 1 {
		t.Fatalf("expected case-folded match, got %v %v", row, err)
	}
	row, err = repo.FindGameByName(ctx, "room1", "mario")
	if err != nil || row != nil {
		t.Fatalf("expected no match, got %v %v", row, err)
	}
}

func TestRepository_Settings(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	settings, err := repo.GetSettings(ctx, "room1")
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if settings.ChannelID != "" || len(settings.PlatformCodes()) != 0 {
		t.Fatalf("expected empty defaults, got %+v", settings)
	}

	if err := repo.SavePlatforms(ctx, "room1", []string{"PC", "SWITCH"}); err != nil {
		t.Fatalf("save platforms failed: %v", err)
	}
	if err := repo.SaveChannel(ctx, "room1", "room9"); err != nil {
		t.Fatalf("save channel failed: %v", err)
	}

	settings, err = repo.GetSettings(ctx, "room1")
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if settings.ChannelID != "room9" {
		t.Fatalf("channel not kept: %+v", settings)
	}
	codes := settings.PlatformCodes()
	if len(codes) != 2 || codes[0] != "PC" || codes[1] != "SWITCH" {
		t.Fatalf("platforms not kept after channel update: %v", codes)
	}
}

func TestRepository_LastChecked(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	last, err := repo.LastChecked(ctx)
	if err != nil || last != nil {
		t.Fatalf("expected nil before first touch, got %v %v", last, err)
	}

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := repo.TouchLastChecked(ctx, at); err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	if err := repo.TouchLastChecked(ctx, at.Add(time.Hour)); err != nil {
		t.Fatalf("second touch failed: %v", err)
	}

	last, err = repo.LastChecked(ctx)
	if err != nil || last == nil || !last.Equal(at.Add(time.Hour)) {
		t.Fatalf("unexpected last checked: %v %v", last, err)
	}
}
