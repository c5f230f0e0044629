// Package httputil: JSON 요청/응답 헬퍼. goccy/go-json 으로 인코딩한다.
package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	ContentTypeJSON = "application/json"
	HeaderAPIKey    = "X-API-Key"
)

var (
	ErrEmptyBody    = errors.New("empty request body")
	ErrBodyTooLarge = errors.New("request body too large")
)

// ReadJSON: 본문을 out 에 디코딩한다. maxBytes 를 넘으면 ErrBodyTooLarge.
func ReadJSON(w http.ResponseWriter, r *http.Request, out any, maxBytes int64) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes)).Decode(out)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return ErrEmptyBody
	case errors.As(err, &tooLarge):
		return ErrBodyTooLarge
	default:
		return fmt.Errorf("decode json failed: %w", err)
	}
}

// WriteJSON: HTML 이스케이프 없이 쓴다. 메시지 본문에 '<' 가 그대로 보여야 한다.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json failed: %w", err)
	}
	return nil
}

// ErrorResponse: {"error": 코드, "message": 설명}
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) error {
	return WriteJSON(w, status, ErrorResponse{
		Error:   strings.TrimSpace(code),
		Message: strings.TrimSpace(message),
	})
}
