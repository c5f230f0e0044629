package mq

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/parser"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/config"
)

// CommandParser: 접두사 기반 정규식으로 발매일 봇 명령을 파싱한다.
type CommandParser struct {
	prefix parser.Prefix

	helpRe      *regexp.Regexp
	searchRe    *regexp.Regexp
	nextRe      *regexp.Regexp
	previousRe  *regexp.Regexp
	selectRe    *regexp.Regexp
	backRe      *regexp.Regexp
	listRe      *regexp.Regexp
	gameRe      *regexp.Regexp
	deleteRe    *regexp.Regexp
	dateRe      *regexp.Regexp
	settingsRe  *regexp.Regexp
	channelRe   *regexp.Regexp
	platformsRe *regexp.Regexp
}

// NewCommandParser: 주어진 접두사로 파서를 만든다. 비어 있으면 기본 접두사를 쓴다.
func NewCommandParser(prefix string) *CommandParser {
	p := &CommandParser{prefix: parser.NewPrefix(prefix, config.DefaultCommandPrefix)}

	p.helpRe = p.prefix.Pattern(`\s*(?:도움말|help)?$`)
	p.searchRe = p.prefix.Pattern(`\s*(?:검색|search)\s+(.+)$`)
	p.nextRe = p.prefix.Pattern(`\s*(?:다음|next)$`)
	p.previousRe = p.prefix.Pattern(`\s*(?:이전|prev|previous)$`)
	p.selectRe = p.prefix.Pattern(`\s*(?:선택|select)$`)
	p.backRe = p.prefix.Pattern(`\s*(?:뒤로|back)$`)
	p.listRe = p.prefix.Pattern(`\s*(?:목록|list|games)$`)
	p.gameRe = p.prefix.Pattern(`\s*(?:게임|game)\s+(.+)$`)
	p.deleteRe = p.prefix.Pattern(`\s*(?:삭제|delete)\s+(\d+)$`)
	p.dateRe = p.prefix.Pattern(`\s*(?:날짜|date)\s+(\d+)\s+(\S+)$`)
	p.settingsRe = p.prefix.Pattern(`\s*(?:설정|settings)$`)
	p.channelRe = p.prefix.Pattern(`\s*(?:설정|settings)\s+(?:채널|channel)(?:\s+(\S+))?$`)
	p.platformsRe = p.prefix.Pattern(`\s*(?:설정|settings)\s+(?:플랫폼|platforms?)\s+(.+)$`)

	return p
}

// Parse: 접두사로 시작하지 않으면 nil, 형식이 맞지 않으면 CommandUnknown 을 반환한다.
func (p *CommandParser) Parse(message string) *Command {
	text, ok := p.prefix.Match(message)
	if !ok {
		return nil
	}

	switch {
	case p.helpRe.MatchString(text):
		return &Command{Kind: CommandHelp}
	case p.nextRe.MatchString(text):
		return &Command{Kind: CommandNext}
	case p.previousRe.MatchString(text):
		return &Command{Kind: CommandPrevious}
	case p.selectRe.MatchString(text):
		return &Command{Kind: CommandSelect}
	case p.backRe.MatchString(text):
		return &Command{Kind: CommandBack}
	case p.listRe.MatchString(text):
		return &Command{Kind: CommandList}
	case p.settingsRe.MatchString(text):
		return &Command{Kind: CommandSettings}
	}

	if query := parser.Group(p.searchRe, text); query != "" {
		return &Command{Kind: CommandSearch, Query: query}
	}
	if name := parser.Group(p.gameRe, text); name != "" {
		return &Command{Kind: CommandGame, Query: name}
	}
	if cmd := p.parseDelete(text); cmd != nil {
		return cmd
	}
	if cmd := p.parseDate(text); cmd != nil {
		return cmd
	}
	if m := p.channelRe.FindStringSubmatch(text); m != nil {
		return &Command{Kind: CommandSetChannel, ChannelID: strings.TrimSpace(m[1])}
	}
	if body := parser.Group(p.platformsRe, text); body != "" {
		return &Command{Kind: CommandSetPlatforms, Codes: splitCodes(body)}
	}

	return &Command{Kind: CommandUnknown}
}

func (p *CommandParser) parseDelete(text string) *Command {
	raw := parser.Group(p.deleteRe, text)
	if raw == "" {
		return nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &Command{Kind: CommandDelete, GameID: id}
}

func (p *CommandParser) parseDate(text string) *Command {
	m := p.dateRe.FindStringSubmatch(text)
	if len(m) < 3 {
		return nil
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &Command{Kind: CommandDate, GameID: id, Date: m[2]}
}

// splitCodes: 쉼표 또는 공백으로 구분된 코드를 대문자로 정규화한다.
func splitCodes(body string) []string {
	codes := parser.Fields(body)
	for i, code := range codes {
		codes[i] = strings.ToUpper(code)
	}
	return codes
}
