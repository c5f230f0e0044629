package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cerrors "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/errors"
)

// Repository: 저장 게임/설정/전역 상태에 대한 GORM 리포지토리
type Repository struct {
	db *gorm.DB
}

// New: 새로운 Repository 인스턴스를 생성한다.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate: 테이블 스키마를 마이그레이션한다.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	if err := r.db.WithContext(ctx).AutoMigrate(
		&StoredGame{},
		&ServerSettings{},
		&Globals{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

func (r *Repository) ready() error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	return nil
}

// FindGame: (server, game) 로 저장된 게임을 조회한다. 없으면 nil.
func (r *Repository) FindGame(ctx context.Context, serverID string, gameID int) (*StoredGame, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	var row StoredGame
	err := r.db.WithContext(ctx).
		Where("server_id = ? AND game_id = ?", strings.TrimSpace(serverID), gameID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, cerrors.DatabaseError{Operation: "find_game", Err: err}
	}
	return &row, nil
}

// UpsertGame: (server_id, game_id) 충돌 시 갱신한다. 단일 문장이므로 부분 쓰기는 없다.
func (r *Repository) UpsertGame(ctx context.Context, game StoredGame) error {
	if err := r.ready(); err != nil {
		return err
	}
	game.ServerID = strings.TrimSpace(game.ServerID)
	if game.ServerID == "" || game.GameID == 0 {
		return cerrors.DatabaseError{Operation: "upsert_game", Err: fmt.Errorf("server id and game id are required")}
	}
	if game.APIType == "" {
		game.APIType = APITypeGiantBomb
	}
	// 충돌 대상은 (server_id, game_id) 하나여야 하므로 기존 행의 PK 는 넘기지 않는다.
	game.ID = 0

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "server_id"}, {Name: "game_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"api_type",
				"name",
				"description",
				"detail_url",
				"image_url",
				"platform_id",
				"release_date",
				"release_category",
				"released_status",
				"manual_date",
				"updated_at",
			}),
		}).
		Create(&game).Error
	if err != nil {
		return cerrors.DatabaseError{Operation: "upsert_game", Err: err}
	}
	return nil
}

// DeleteGame: 채팅방의 저장 게임을 삭제한다. 삭제된 행이 있으면 true.
func (r *Repository) DeleteGame(ctx context.Context, serverID string, gameID int) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).
		Where("server_id = ? AND game_id = ?", strings.TrimSpace(serverID), gameID).
		Delete(&StoredGame{})
	if res.Error != nil {
		return false, cerrors.DatabaseError{Operation: "delete_game", Err: res.Error}
	}
	return res.RowsAffected > 0, nil
}

// ListGames: 채팅방의 저장 게임 목록 (출시일 미정은 뒤로)
func (r *Repository) ListGames(ctx context.Context, serverID string) ([]StoredGame, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var rows []StoredGame
	err := r.db.WithContext(ctx).
		Where("server_id = ?", strings.TrimSpace(serverID)).
		Order("release_date IS NULL, release_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, cerrors.DatabaseError{Operation: "list_games", Err: err}
	}
	return rows, nil
}

// ListUnreleased: 아직 출시되지 않은 게임 전체 (모든 채팅방)
func (r *Repository) ListUnreleased(ctx context.Context, apiType string) ([]StoredGame, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var rows []StoredGame
	err := r.db.WithContext(ctx).
		Where("api_type = ? AND released_status = ?", apiType, false).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, cerrors.DatabaseError{Operation: "list_unreleased", Err: err}
	}
	return rows, nil
}

// MarkReleased: 출시 플래그를 켠다.
func (r *Repository) MarkReleased(ctx context.Context, id uint64) error {
	if err := r.ready(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Model(&StoredGame{}).
		Where("id = ?", id).
		Update("released_status", true).Error
	if err != nil {
		return cerrors.DatabaseError{Operation: "mark_released", Err: err}
	}
	return nil
}

// SetManualDate: 수동 출시일을 기록한다. 이후 자동 갱신 대상에서 제외된다.
func (r *Repository) SetManualDate(ctx context.Context, serverID string, gameID int, date string, released bool) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).
		Model(&StoredGame{}).
		Where("server_id = ? AND game_id = ?", strings.TrimSpace(serverID), gameID).
		Updates(map[string]any{
			"release_date":    date,
			"released_status": released,
			"manual_date":     true,
		})
	if res.Error != nil {
		return false, cerrors.DatabaseError{Operation: "set_manual_date", Err: res.Error}
	}
	return res.RowsAffected > 0, nil
}

// FindGameByName: 대소문자를 무시한 부분 일치로 첫 번째 저장 게임을 찾는다. 없으면 nil.
func (r *Repository) FindGameByName(ctx context.Context, serverID string, name string) (*StoredGame, error) {
	needle := cases.Fold().String(strings.TrimSpace(name))
	if needle == "" {
		return nil, nil
	}
	rows, err := r.ListGames(ctx, serverID)
	if err != nil {
		return nil, err
	}
	fold := cases.Fold()
	for i := range rows {
		if strings.Contains(fold.String(rows[i].Name), needle) {
			return &rows[i], nil
		}
	}
	return nil, nil
}

// GetSettings: 채팅방 설정. 행이 없으면 빈 설정(전체 플랫폼)을 반환한다.
func (r *Repository) GetSettings(ctx context.Context, serverID string) (ServerSettings, error) {
	if err := r.ready(); err != nil {
		return ServerSettings{}, err
	}
	serverID = strings.TrimSpace(serverID)

	var row ServerSettings
	err := r.db.WithContext(ctx).Where("server_id = ?", serverID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ServerSettings{ServerID: serverID}, nil
	}
	if err != nil {
		return ServerSettings{}, cerrors.DatabaseError{Operation: "get_settings", Err: err}
	}
	return row, nil
}

// SaveChannel: 알림 채널을 저장한다.
func (r *Repository) SaveChannel(ctx context.Context, serverID string, channelID string) error {
	return r.upsertSettings(ctx, "save_channel", ServerSettings{
		ServerID:  strings.TrimSpace(serverID),
		ChannelID: strings.TrimSpace(channelID),
	}, "channel_id")
}

// SavePlatforms: 플랫폼 코드 목록을 저장한다.
func (r *Repository) SavePlatforms(ctx context.Context, serverID string, codes []string) error {
	return r.upsertSettings(ctx, "save_platforms", ServerSettings{
		ServerID:  strings.TrimSpace(serverID),
		Platforms: datatypes.JSONSlice[string](codes),
	}, "platforms")
}

func (r *Repository) upsertSettings(ctx context.Context, operation string, row ServerSettings, column string) error {
	if err := r.ready(); err != nil {
		return err
	}
	if row.ServerID == "" {
		return cerrors.DatabaseError{Operation: operation, Err: fmt.Errorf("server id is required")}
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "server_id"}},
			DoUpdates: clause.AssignmentColumns([]string{column, "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return cerrors.DatabaseError{Operation: operation, Err: err}
	}
	return nil
}

// LastChecked: 마지막 일괄 갱신 시각. 기록이 없으면 nil.
func (r *Repository) LastChecked(ctx context.Context) (*time.Time, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var row Globals
	err := r.db.WithContext(ctx).Where("id = ?", globalsRowID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, cerrors.DatabaseError{Operation: "last_checked", Err: err}
	}
	return row.LastCheckedAt, nil
}

// TouchLastChecked: 마지막 일괄 갱신 시각을 기록한다.
func (r *Repository) TouchLastChecked(ctx context.Context, at time.Time) error {
	if err := r.ready(); err != nil {
		return err
	}
	row := Globals{ID: globalsRowID, LastCheckedAt: &at}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_checked_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return cerrors.DatabaseError{Operation: "touch_last_checked", Err: err}
	}
	return nil
}
