package repository

import (
	"time"

	"gorm.io/datatypes"
)

// APITypeGiantBomb: 저장된 게임의 카탈로그 출처 태그
const APITypeGiantBomb = "giantbomb"

// StoredGame: 채팅방에 저장된 게임과 추론된 출시일
// 유니크 인덱스: idx_stored_games_server_game (server_id, game_id)
type StoredGame struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ServerID        string    `gorm:"column:server_id;not null;uniqueIndex:idx_stored_games_server_game,priority:1" json:"serverId"`
	GameID          int       `gorm:"column:game_id;not null;uniqueIndex:idx_stored_games_server_game,priority:2" json:"gameId"`
	APIType         string    `gorm:"column:api_type;not null;default:'giantbomb';index" json:"apiType"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	Description     string    `gorm:"column:description;not null;default:''" json:"description"`
	DetailURL       string    `gorm:"column:detail_url;not null;default:''" json:"detailUrl"`
	ImageURL        string    `gorm:"column:image_url;not null;default:''" json:"imageUrl"`
	PlatformID      int       `gorm:"column:platform_id;not null" json:"platformId"`
	ReleaseDate     *string   `gorm:"column:release_date" json:"releaseDate"`
	ReleaseCategory string    `gorm:"column:release_category;not null" json:"releaseCategory"`
	Released        bool      `gorm:"column:released_status;not null;default:false;index" json:"released"`
	ManualDate      bool      `gorm:"column:manual_date;not null;default:false" json:"manualDate"`
	AddedBy         string    `gorm:"column:added_by;not null;default:''" json:"addedBy"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null;autoUpdateTime" json:"updatedAt"`
}

func (StoredGame) TableName() string { return "stored_games" }

// ReleaseDateOrEmpty: 출시일 문자열. 미정이면 빈 문자열.
func (g StoredGame) ReleaseDateOrEmpty() string {
	if g.ReleaseDate == nil {
		return ""
	}
	return *g.ReleaseDate
}

// ServerSettings: 채팅방별 알림 채널과 플랫폼 필터
type ServerSettings struct {
	ServerID  string                      `gorm:"column:server_id;primaryKey" json:"serverId"`
	ChannelID string                      `gorm:"column:channel_id;not null;default:''" json:"channelId"`
	Platforms datatypes.JSONSlice[string] `gorm:"column:platforms" json:"platforms"`
	UpdatedAt time.Time                   `gorm:"column:updated_at;not null;autoUpdateTime" json:"updatedAt"`
}

func (ServerSettings) TableName() string { return "server_settings" }

// PlatformCodes: 설정된 플랫폼 코드 목록 (nil 가능)
func (s ServerSettings) PlatformCodes() []string {
	return []string(s.Platforms)
}

// globalsRowID: globals 테이블은 단일 행만 사용한다.
const globalsRowID = 1

// Globals: 전역 스케줄러 상태
type Globals struct {
	ID            int        `gorm:"column:id;primaryKey"`
	LastCheckedAt *time.Time `gorm:"column:last_checked_at"`
}

func (Globals) TableName() string { return "globals" }
