// Package errors: 저장소와 외부 API 경계에서 쓰는 공용 에러 타입.
// 호출부는 errors.As 로 종류를 가려 사용자 메시지와 로그 레벨을 고른다.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// RedisError: Valkey 명령 실패
type RedisError struct {
	Operation string
	Err       error
}

func (e RedisError) Error() string { return describe("redis", e.Operation, 0, e.Err) }
func (e RedisError) Unwrap() error { return e.Err }

// DatabaseError: gorm 쿼리 실패
type DatabaseError struct {
	Operation string
	Err       error
}

func (e DatabaseError) Error() string { return describe("db", e.Operation, 0, e.Err) }
func (e DatabaseError) Unwrap() error { return e.Err }

// APIError: 카탈로그 호출 실패. StatusCode 0 은 응답을 받지 못했다는 뜻이다.
type APIError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e APIError) Error() string { return describe("api", e.Operation, e.StatusCode, e.Err) }
func (e APIError) Unwrap() error { return e.Err }

// LockError: 다른 명령이 같은 방의 처리 락을 잡고 있다.
type LockError struct {
	SessionID   string
	Description string
}

func (e LockError) Error() string {
	msg := e.Description
	if msg == "" {
		msg = "failed to acquire lock"
	}
	if e.SessionID != "" {
		msg += " session=" + e.SessionID
	}
	return msg
}

// MalformedInputError: 사용자 입력이 명령 형식에 맞지 않는다.
type MalformedInputError struct {
	Message string
}

func (e MalformedInputError) Error() string { return e.Message }

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// IsExpectedUserBehavior: 잘못된 입력이나 없는 대상처럼 사용자 쪽 실수로 생긴 에러인지 본다.
// 이런 에러는 경고 대신 안내 메시지로 처리한다.
func IsExpectedUserBehavior(err error) bool {
	var malformed MalformedInputError
	var notFound NotFoundError
	return errors.As(err, &malformed) || errors.As(err, &notFound)
}

func describe(kind, operation string, status int, cause error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s error operation=%s", kind, operation)
	if status != 0 {
		fmt.Fprintf(&b, " status=%d", status)
	}
	if cause != nil {
		fmt.Fprintf(&b, ": %v", cause)
	}
	return b.String()
}
