package wizard

import (
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/catalog"
)

// SavedGame: games 탐색 모드에서 보여줄 저장 게임 요약
type SavedGame struct {
	GameID   int     `json:"gameId"`
	Name     string  `json:"name"`
	Date     *string `json:"date,omitempty"`
	Category string  `json:"category"`
}

// Session: 채팅방 하나가 소유하는 마법사 상태. Registry 에 JSON 으로 저장된다.
//
// Games[i] 와 Platforms[i] 는 같은 게임을 가리킨다. Selected 는 Games 의 1 기반 위치이며 0 이면 미선택이다.
type Session struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
	Stage  Stage  `json:"stage"`
	Page   int    `json:"page"`
	Query  string `json:"query,omitempty"`

	Games       []catalog.Game       `json:"games,omitempty"`
	Platforms   [][]catalog.Platform `json:"platforms,omitempty"`
	AllowedIDs  []int                `json:"allowedIds,omitempty"`
	PlatformIDs []int                `json:"platformIds,omitempty"`

	Selected         int  `json:"selected"`
	SelectedPlatform int  `json:"selectedPlatform"`
	PlatformSkipped  bool `json:"platformSkipped"`

	// ReleasesKey: Releases 를 조회한 (게임, 플랫폼 집합). 같으면 재조회하지 않는다.
	ReleasesKey string                  `json:"releasesKey,omitempty"`
	Releases    []catalog.ReleaseRecord `json:"releases,omitempty"`

	Saved        []SavedGame `json:"saved,omitempty"`
	GamesPerPage int         `json:"gamesPerPage,omitempty"`
}

// SelectedGame: 선택된 게임과 그 게임의 매칭 플랫폼. 선택이 없거나 범위를 벗어나면 ok=false.
func (s *Session) SelectedGame() (catalog.Game, []catalog.Platform, bool) {
	idx := s.Selected - 1
	if idx < 0 || idx >= len(s.Games) || idx >= len(s.Platforms) {
		return catalog.Game{}, nil, false
	}
	return s.Games[idx], s.Platforms[idx], true
}

// MaxPage: 현재 단계의 마지막 페이지 번호
func (s *Session) MaxPage() int {
	switch s.Stage {
	case StageSearch:
		return len(s.Games)
	case StagePlatform:
		_, platforms, ok := s.SelectedGame()
		if !ok {
			return 0
		}
		return len(platforms)
	case StageRegion:
		return len(s.Releases)
	case StageGames:
		return PageCount(len(s.Saved), s.GamesPerPage)
	default:
		return 0
	}
}

// Pager: 현재 단계의 페이지 커서
func (s *Session) Pager() Pager {
	return Pager{Page: s.Page, Max: s.MaxPage()}.Clamp()
}

func (s *Session) enter(stage Stage) {
	s.Stage = stage
	s.Page = 1
}
