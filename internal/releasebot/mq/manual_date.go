package mq

import (
	"regexp"
	"strconv"

	cerrors "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/catalog"
)

var manualDateRe = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{2}|\d{4})$`)

// ParseManualDate: M-D-YYYY 입력을 YYYY-MM-DD 로 변환한다. 두 자리 연도는 20YY 로 읽고 세 자리 연도는 거절한다.
func ParseManualDate(raw string) (string, error) {
	m := manualDateRe.FindStringSubmatch(raw)
	if m == nil {
		return "", cerrors.MalformedInputError{Message: "manual date must be M-D-YYYY: " + raw}
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}

	date, err := catalog.ComposeDate(year, month, day)
	if err != nil {
		return "", cerrors.MalformedInputError{Message: err.Error()}
	}
	return date, nil
}
