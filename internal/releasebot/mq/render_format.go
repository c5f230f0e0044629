package mq

import (
	"strings"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/messages"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/wizard"
)

// RenderFormatter: 마법사 화면을 카카오 텍스트 메시지로 변환한다.
// 버튼이 없으므로 가능한 조작은 명령어 안내 줄로 표시한다.
type RenderFormatter struct {
	msg    *messageprovider.Provider
	prefix string
}

// NewRenderFormatter: RenderFormatter 를 생성한다.
func NewRenderFormatter(msg *messageprovider.Provider, prefix string) *RenderFormatter {
	return &RenderFormatter{msg: msg, prefix: prefix}
}

// Format: 제목, 본문, 링크, 페이지 정보, 조작 안내 순으로 줄을 구성한다.
func (f *RenderFormatter) Format(req wizard.RenderRequest) string {
	lines := make([]string, 0, 6)
	lines = appendNonEmpty(lines, req.Title)
	lines = appendNonEmpty(lines, req.Body)
	lines = appendNonEmpty(lines, req.URL)
	if req.Final {
		lines = appendNonEmpty(lines, req.ImageURL)
	}
	lines = appendNonEmpty(lines, req.Footer)
	lines = appendNonEmpty(lines, f.navLine(req.Nav))
	return strings.Join(lines, "\n")
}

func (f *RenderFormatter) navLine(nav wizard.Navigation) string {
	prefix := messageprovider.P("prefix", f.prefix)
	var actions []string
	if nav.Previous {
		actions = append(actions, f.msg.Get(messages.NavPrevious, prefix))
	}
	if nav.Next {
		actions = append(actions, f.msg.Get(messages.NavNext, prefix))
	}
	if nav.Select {
		actions = append(actions, f.msg.Get(messages.NavSelect, prefix))
	}
	if nav.Back {
		actions = append(actions, f.msg.Get(messages.NavBack, prefix))
	}
	if nav.Search {
		actions = append(actions, f.msg.Get(messages.NavSearch, prefix))
	}
	if len(actions) == 0 {
		return ""
	}
	return f.msg.Get(messages.NavLine, messageprovider.P("actions", strings.Join(actions, " · ")))
}

func appendNonEmpty(lines []string, text string) []string {
	if strings.TrimSpace(text) == "" {
		return lines
	}
	return append(lines, text)
}
