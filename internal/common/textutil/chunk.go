// Package textutil: 카카오 메시지 길이 제한에 맞춘 텍스트 분할
package textutil

import (
	"strings"
	"unicode/utf8"
)

// ChunkByLines: input 을 글자(rune) 수 maxLength 이하 조각으로 나눈다.
// 줄 경계를 우선으로 묶고, 한 줄이 maxLength 보다 길면 rune 경계에서 잘라 여러 조각으로 보낸다.
// 조각 맨 앞의 빈 줄은 버린다. maxLength <= 0 이면 input 을 그대로 돌려준다.
func ChunkByLines(input string, maxLength int) []string {
	if maxLength <= 0 {
		return []string{input}
	}

	c := chunker{max: maxLength}
	for _, line := range strings.Split(input, "\n") {
		for _, segment := range splitRunes(line, maxLength) {
			c.add(segment)
		}
	}
	c.flush()
	return c.chunks
}

type chunker struct {
	max     int
	chunks  []string
	current strings.Builder
	length  int
}

func (c *chunker) add(line string) {
	lineLength := utf8.RuneCountInString(line)
	if c.length == 0 {
		c.current.WriteString(line)
		c.length = lineLength
		return
	}
	if c.length+1+lineLength > c.max {
		c.flush()
		c.current.WriteString(line)
		c.length = lineLength
		return
	}
	c.current.WriteByte('\n')
	c.current.WriteString(line)
	c.length += 1 + lineLength
}

func (c *chunker) flush() {
	if c.length == 0 {
		c.current.Reset()
		return
	}
	c.chunks = append(c.chunks, c.current.String())
	c.current.Reset()
	c.length = 0
}

// splitRunes: s 를 limit 글자씩 자른다. 빈 문자열은 빈 조각 하나다.
func splitRunes(s string, limit int) []string {
	if utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}

	var parts []string
	for s != "" {
		end, count := 0, 0
		for end < len(s) && count < limit {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
			count++
		}
		parts = append(parts, s[:end])
		s = s[end:]
	}
	return parts
}
