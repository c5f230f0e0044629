package mq

import "github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/wizard"

// CommandKind: 명령 종류
type CommandKind int

// 명령 종류 상수 목록.
const (
	CommandHelp CommandKind = iota
	CommandSearch
	CommandNext
	CommandPrevious
	CommandSelect
	CommandBack
	CommandList
	CommandGame
	CommandDelete
	CommandDate
	CommandSettings
	CommandSetChannel
	CommandSetPlatforms
	CommandUnknown
)

// Command: 파싱된 사용자 명령
type Command struct {
	Kind CommandKind

	Query  string // 검색어 또는 게임명
	GameID int
	Date   string // 원문 M-D-YYYY

	ChannelID string   // 비어 있으면 현재 채팅방
	Codes     []string // 플랫폼 코드 (대문자)
}

// WizardEvent: 마법사 이벤트로 매핑되는 명령이면 해당 이벤트를 반환한다.
func (c Command) WizardEvent() (wizard.Event, bool) {
	switch c.Kind {
	case CommandNext:
		return wizard.EventNext, true
	case CommandPrevious:
		return wizard.EventPrevious, true
	case CommandSelect:
		return wizard.EventSelect, true
	case CommandBack:
		return wizard.EventBack, true
	default:
		return 0, false
	}
}

// RequiresLock: 처리 락이 필요한 명령인지 여부. 조회성 명령은 락 없이 실행한다.
func (c Command) RequiresLock() bool {
	switch c.Kind {
	case CommandHelp, CommandUnknown, CommandGame, CommandSettings:
		return false
	default:
		return true
	}
}

