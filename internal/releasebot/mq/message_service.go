package mq

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/accesscontrol"
	cerrors "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/messageprovider"
	commonmq "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mq"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/messages"
)

// ProcessingLock: 채팅방 단위 처리 락
type ProcessingLock interface {
	StartProcessing(ctx context.Context, chatID string) error
	FinishProcessing(ctx context.Context, chatID string) error
}

// MessageService: 인바운드 메시지를 파싱하고 접근 제어, 처리 락, 명령 실행, 응답 전송을 조정한다.
// 처리 중인 채팅방에 새 명령이 오면 대기열에 넣지 않고 안내 후 버린다.
type MessageService struct {
	commandHandler *CommandHandler
	replier        *commonmq.Replier
	msgProvider    *messageprovider.Provider
	accessControl  *accesscontrol.Checker
	commandParser  *CommandParser
	processingLock ProcessingLock
	commandPrefix  string
	logger         *slog.Logger
}

// NewMessageService: MessageService 를 생성한다.
func NewMessageService(
	commandHandler *CommandHandler,
	replier *commonmq.Replier,
	msgProvider *messageprovider.Provider,
	accessControl *accesscontrol.Checker,
	commandParser *CommandParser,
	processingLock ProcessingLock,
	commandPrefix string,
	logger *slog.Logger,
) *MessageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageService{
		commandHandler: commandHandler,
		replier:        replier,
		msgProvider:    msgProvider,
		accessControl:  accessControl,
		commandParser:  commandParser,
		processingLock: processingLock,
		commandPrefix:  strings.TrimSpace(commandPrefix),
		logger:         logger,
	}
}

// HandleMessage: 스트림에서 수신한 메시지를 처리한다.
func (s *MessageService) HandleMessage(ctx context.Context, message mqmsg.InboundMessage) {
	cmd := s.commandParser.Parse(message.Content)
	if cmd == nil {
		s.logger.Debug("message_ignored", "chat_id", message.ChatID)
		return
	}

	if !s.isAccessAllowed(ctx, message) {
		return
	}

	if !cmd.RequiresLock() {
		s.execute(ctx, message, *cmd)
		return
	}

	if err := s.processingLock.StartProcessing(ctx, message.ChatID); err != nil {
		var lockErr cerrors.LockError
		if errors.As(err, &lockErr) {
			s.logger.Warn("message_rejected_processing", "chat_id", message.ChatID, "user_id", message.UserID)
			_ = s.replier.Busy(ctx, message.ChatID, message.ThreadID)
			return
		}
		s.logger.Error("processing_start_failed", "chat_id", message.ChatID, "err", err)
		_ = s.replier.Key(ctx, message.ChatID, message.ThreadID, messages.ErrorGeneric)
		return
	}
	defer func() {
		if err := s.processingLock.FinishProcessing(ctx, message.ChatID); err != nil {
			s.logger.Warn("processing_finish_failed", "chat_id", message.ChatID, "err", err)
		}
	}()

	s.execute(ctx, message, *cmd)
}

func (s *MessageService) execute(ctx context.Context, message mqmsg.InboundMessage, command Command) {
	text, err := s.commandHandler.ProcessCommand(ctx, message, command)
	if err != nil {
		s.handleFailure(ctx, message, command, err)
		return
	}
	if err := s.replier.Text(ctx, message.ChatID, message.ThreadID, text); err != nil {
		s.logger.Error("reply_publish_failed", "chat_id", message.ChatID, "err", err)
	}
}

func (s *MessageService) handleFailure(ctx context.Context, message mqmsg.InboundMessage, command Command, err error) {
	if cerrors.IsExpectedUserBehavior(err) {
		s.logger.Info("command_rejected", "chat_id", message.ChatID, "kind", int(command.Kind), "err", err)
	} else {
		s.logger.Error("command_failed", "chat_id", message.ChatID, "kind", int(command.Kind), "err", err)
	}

	mapping := GetErrorMapping(err, s.commandPrefix)
	_ = s.replier.Key(ctx, message.ChatID, message.ThreadID, mapping.Key, mapping.Params...)
}

// isAccessAllowed: 차단된 사용자/방에는 안내를 보내고, 허용 목록 밖의 방은 조용히 무시한다.
func (s *MessageService) isAccessAllowed(ctx context.Context, message mqmsg.InboundMessage) bool {
	denial := s.accessControl.Check(message.UserID, message.ChatID)
	if denial == accesscontrol.Allowed {
		return true
	}
	s.logger.Warn("access_denied", "user_id", message.UserID, "chat_id", message.ChatID, "reason", denial.String())

	var key string
	switch denial {
	case accesscontrol.UserBlocked:
		key = messages.ErrorUserBlocked
	case accesscontrol.ChatBlocked:
		key = messages.ErrorChatBlocked
	default:
		return false
	}
	_ = s.replier.Text(ctx, message.ChatID, message.ThreadID, s.msgProvider.Get(key))
	return false
}
