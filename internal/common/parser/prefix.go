// Package parser: 접두사로 시작하는 채팅 명령을 정규식으로 읽는 도우미
package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Prefix: "/발매" 같은 명령 접두사
type Prefix struct {
	text   string
	quoted string
}

// NewPrefix: 공백뿐인 prefix 는 fallback 으로 바꾼다.
func NewPrefix(prefix, fallback string) Prefix {
	text := strings.TrimSpace(prefix)
	if text == "" {
		text = strings.TrimSpace(fallback)
	}
	return Prefix{text: text, quoted: regexp.QuoteMeta(text)}
}

func (p Prefix) String() string { return p.text }

// Match: 앞뒤 공백을 걷어낸 메시지가 접두사 단독이거나 접두사 뒤에 공백이 올 때만 ok.
// "/발매검색" 처럼 접두사에 글자가 붙은 메시지는 다른 명령으로 본다.
func (p Prefix) Match(message string) (string, bool) {
	text := strings.TrimSpace(message)
	rest, found := strings.CutPrefix(text, p.text)
	if !found || p.text == "" {
		return "", false
	}
	if r, _ := utf8.DecodeRuneInString(rest); rest != "" && !unicode.IsSpace(r) {
		return "", false
	}
	return text, true
}

// Pattern: "(?i)^{prefix}{body}" 를 컴파일한다. body 가 잘못되면 panic 이므로 초기화 시점에만 쓴다.
func (p Prefix) Pattern(body string) *regexp.Regexp {
	return regexp.MustCompile("(?i)^" + p.quoted + body)
}

// Group: 첫 캡처 그룹을 trim 해서 돌려준다. 매칭 실패 시 "".
func Group(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Fields: 쉼표와 공백을 모두 구분자로 본다.
func Fields(body string) []string {
	return strings.FieldsFunc(body, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
