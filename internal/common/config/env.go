package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Reader: 환경 변수 읽기 도우미. 파싱/검증 실패를 모아 두었다가 Err 로 한 번에 돌려준다.
// 각 메서드는 keys 중 처음으로 값이 있는 키를 쓰고, 없으면 def 를 반환한다.
type Reader struct {
	errs []error
}

// NewReader: Reader 생성
func NewReader() *Reader {
	return &Reader{}
}

// Err: 모인 에러. 없으면 nil
func (r *Reader) Err() error {
	return errors.Join(r.errs...)
}

// Failf: 검증 실패를 기록한다.
func (r *Reader) Failf(format string, args ...any) {
	r.errs = append(r.errs, fmt.Errorf(format, args...))
}

// Require: 값이 비어 있으면 key 가 필요하다는 에러를 기록한다.
func (r *Reader) Require(value string, key string) string {
	if value == "" {
		r.Failf("%s is required", key)
	}
	return value
}

func (r *Reader) String(def string, keys ...string) string {
	if _, value, ok := lookupFirst(keys); ok {
		return value
	}
	return def
}

func (r *Reader) Int(def int, keys ...string) int {
	return int(r.Int64(int64(def), keys...))
}

func (r *Reader) Int64(def int64, keys ...string) int64 {
	key, raw, ok := lookupFirst(keys)
	if !ok {
		return def
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.Failf("invalid int env %s=%q: %w", key, raw, err)
		return def
	}
	return value
}

func (r *Reader) Float(def float64, keys ...string) float64 {
	key, raw, ok := lookupFirst(keys)
	if !ok {
		return def
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.Failf("invalid float env %s=%q: %w", key, raw, err)
		return def
	}
	return value
}

// Bool: true/1/yes/y, false/0/no/n 를 받는다.
func (r *Reader) Bool(def bool, keys ...string) bool {
	key, raw, ok := lookupFirst(keys)
	if !ok {
		return def
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "y":
		return true
	case "false", "0", "no", "n":
		return false
	default:
		r.Failf("invalid bool env %s=%q", key, raw)
		return def
	}
}

// Seconds: 초 단위 정수를 Duration 으로 읽는다. 음수는 에러다.
func (r *Reader) Seconds(def int64, keys ...string) time.Duration {
	return r.duration(def, time.Second, keys)
}

// Millis: 밀리초 단위 정수를 Duration 으로 읽는다. 음수는 에러다.
func (r *Reader) Millis(def int64, keys ...string) time.Duration {
	return r.duration(def, time.Millisecond, keys)
}

func (r *Reader) duration(def int64, unit time.Duration, keys []string) time.Duration {
	value := r.Int64(def, keys...)
	if value < 0 {
		key, _, _ := lookupFirst(keys)
		r.Failf("invalid duration env %s=%d", key, value)
		return time.Duration(def) * unit
	}
	return time.Duration(value) * unit
}

// List: 쉼표/공백 구분 목록. 구분자만 있는 값은 비어 있는 것으로 보고 다음 키로 넘어간다.
func (r *Reader) List(def []string, keys ...string) []string {
	for _, key := range keys {
		raw, ok := lookup(key)
		if !ok {
			continue
		}
		if items := strings.FieldsFunc(raw, isListSeparator); len(items) > 0 {
			return items
		}
	}
	return def
}

func isListSeparator(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// lookup: 공백을 걷어낸 값. 미설정이거나 공백뿐이면 ok=false
func lookup(key string) (string, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func lookupFirst(keys []string) (string, string, bool) {
	for _, key := range keys {
		if value, ok := lookup(key); ok {
			return key, value, true
		}
	}
	return "", "", false
}
