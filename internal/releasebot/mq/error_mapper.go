package mq

import (
	"errors"

	cerrors "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/messages"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/wizard"
)

// ErrorMapping: 에러에 대응하는 사용자 메시지 키와 파라미터
type ErrorMapping struct {
	Key    string
	Params []messageprovider.Param
}

// GetErrorMapping: 에러를 사용자 메시지로 매핑한다.
func GetErrorMapping(err error, commandPrefix string) ErrorMapping {
	var lockErr cerrors.LockError

	switch {
	case errors.Is(err, wizard.ErrNoSession):
		return ErrorMapping{
			Key:    messages.WizardNoSession,
			Params: []messageprovider.Param{messageprovider.P("prefix", commandPrefix)},
		}
	case errors.As(err, &lockErr):
		return ErrorMapping{Key: messages.ErrorProcessing}
	default:
		return ErrorMapping{Key: messages.ErrorGeneric}
	}
}
