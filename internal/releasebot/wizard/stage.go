package wizard

import "fmt"

// Stage: 마법사 단계
type Stage string

// Stage 값. games 는 저장 목록 탐색 모드로 선택 체인에 속하지 않는다.
const (
	StageSearch   Stage = "search"
	StagePlatform Stage = "platform"
	StageRegion   Stage = "region"
	StageGames    Stage = "games"
)

// Valid: 알려진 단계인지 확인한다.
func (s Stage) Valid() bool {
	switch s {
	case StageSearch, StagePlatform, StageRegion, StageGames:
		return true
	default:
		return false
	}
}

// Event: 사용자 입력 이벤트
type Event int

// Event 값
const (
	EventSelect Event = iota + 1
	EventNext
	EventPrevious
	EventBack
)

func (e Event) String() string {
	switch e {
	case EventSelect:
		return "select"
	case EventNext:
		return "next"
	case EventPrevious:
		return "previous"
	case EventBack:
		return "back"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}
