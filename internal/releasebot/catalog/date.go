package catalog

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout: 저장 및 비교에 사용하는 날짜 형식
const DateLayout = "2006-01-02"

var upstreamDateLayouts = []string{
	"2006-01-02 15:04:05",
	DateLayout,
	time.RFC3339,
}

// NormalizeDate: 카탈로그 날짜 문자열을 YYYY-MM-DD 로 정규화한다.
// "2004-09-14 00:00:00" 과 "2004-09-14" 는 같은 값으로 취급된다.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, layout := range upstreamDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}

// ComposeDate: 연/월/일을 YYYY-MM-DD 로 합성한다. 달력에 없는 날짜(2월 30일 등)는 거부한다.
func ComposeDate(year, month, day int) (string, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return "", fmt.Errorf("invalid date parts %d-%d-%d", year, month, day)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", fmt.Errorf("invalid calendar date %d-%d-%d", year, month, day)
	}
	return t.Format(DateLayout), nil
}

// ParseDate: YYYY-MM-DD 문자열을 loc 기준 자정 시각으로 파싱한다.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}
