package mq

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	cerrors "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/catalog"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/messages"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/repository"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/resolver"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/wizard"
)

// WizardService: 명령 처리기가 사용하는 마법사 연산
type WizardService interface {
	Start(ctx context.Context, chatID string, userID string, query string) (wizard.RenderRequest, error)
	Browse(ctx context.Context, chatID string, userID string) (wizard.RenderRequest, error)
	Handle(ctx context.Context, chatID string, event wizard.Event) (wizard.RenderRequest, error)
}

// GameRepository: 저장 게임/설정 관리 연산
type GameRepository interface {
	FindGameByName(ctx context.Context, serverID string, name string) (*repository.StoredGame, error)
	DeleteGame(ctx context.Context, serverID string, gameID int) (bool, error)
	SetManualDate(ctx context.Context, serverID string, gameID int, date string, released bool) (bool, error)
	GetSettings(ctx context.Context, serverID string) (repository.ServerSettings, error)
	SaveChannel(ctx context.Context, serverID string, channelID string) error
	SavePlatforms(ctx context.Context, serverID string, codes []string) error
}

// CommandHandler: 파싱된 명령을 실행하고 응답 텍스트를 만든다.
type CommandHandler struct {
	wizard    WizardService
	repo      GameRepository
	msg       *messageprovider.Provider
	formatter *RenderFormatter
	prefix    string
	logger    *slog.Logger
	now       func() time.Time
}

// NewCommandHandler: CommandHandler 를 생성한다.
func NewCommandHandler(
	wiz WizardService,
	repo GameRepository,
	msg *messageprovider.Provider,
	prefix string,
	logger *slog.Logger,
) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandler{
		wizard:    wiz,
		repo:      repo,
		msg:       msg,
		formatter: NewRenderFormatter(msg, prefix),
		prefix:    prefix,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessCommand: 명령을 실행한다. 사용자 입력 오류는 안내 문구로 돌려주고 error 는 반환하지 않는다.
func (h *CommandHandler) ProcessCommand(ctx context.Context, message mqmsg.InboundMessage, command Command) (string, error) {
	chatID := message.ChatID

	if event, ok := command.WizardEvent(); ok {
		return h.render(h.wizard.Handle(ctx, chatID, event))
	}

	switch command.Kind {
	case CommandHelp:
		return h.help(), nil
	case CommandSearch:
		return h.render(h.wizard.Start(ctx, chatID, message.UserID, command.Query))
	case CommandList:
		return h.render(h.wizard.Browse(ctx, chatID, message.UserID))
	case CommandGame:
		return h.showGame(ctx, chatID, command.Query)
	case CommandDelete:
		return h.deleteGame(ctx, chatID, command.GameID)
	case CommandDate:
		return h.setManualDate(ctx, chatID, command.GameID, command.Date)
	case CommandSettings:
		return h.showSettings(ctx, chatID)
	case CommandSetChannel:
		return h.setChannel(ctx, chatID, command.ChannelID)
	case CommandSetPlatforms:
		return h.setPlatforms(ctx, chatID, command.Codes)
	default:
		return h.msg.Get(messages.ErrorUnknownCommand, messageprovider.P("prefix", h.prefix)), nil
	}
}

func (h *CommandHandler) render(req wizard.RenderRequest, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return h.formatter.Format(req), nil
}

func (h *CommandHandler) help() string {
	return h.msg.Get(messages.HelpMessage,
		messageprovider.P("prefix", h.prefix),
		messageprovider.P("codes", strings.Join(catalog.KnownPlatformCodes, ", ")),
	)
}

func (h *CommandHandler) showGame(ctx context.Context, chatID string, name string) (string, error) {
	game, err := h.repo.FindGameByName(ctx, chatID, name)
	if err != nil {
		return "", err
	}
	if game == nil {
		return h.msg.Get(messages.GameNotFound, messageprovider.P("name", name)), nil
	}

	label := messages.FinalLabelUpcoming
	switch {
	case game.Released:
		label = messages.FinalLabelReleased
	case game.ReleaseCategory == string(resolver.CategoryMissing):
		label = messages.FinalLabelEstimated
	}
	date := game.ReleaseDateOrEmpty()
	if date == "" {
		date = h.msg.Get(messages.FinalTBADate)
	}

	text := h.msg.Get(messages.GameDetail,
		messageprovider.P("name", game.Name),
		messageprovider.P("id", strconv.Itoa(game.GameID)),
		messageprovider.P("label", h.msg.Get(label)),
		messageprovider.P("date", date),
		messageprovider.P("category", h.msg.Get(messages.CategoryPrefix+game.ReleaseCategory)),
		messageprovider.P("url", game.DetailURL),
	)
	return strings.TrimRight(text, "\n"), nil
}

func (h *CommandHandler) deleteGame(ctx context.Context, chatID string, gameID int) (string, error) {
	id := messageprovider.P("id", strconv.Itoa(gameID))
	deleted, err := h.repo.DeleteGame(ctx, chatID, gameID)
	if err != nil {
		return "", err
	}
	if !deleted {
		return h.msg.Get(messages.GameIDNotFound, id), nil
	}
	h.logger.Info("stored_game_deleted", "chat_id", chatID, "game_id", gameID)
	return h.msg.Get(messages.GameDeleted, id), nil
}

func (h *CommandHandler) setManualDate(ctx context.Context, chatID string, gameID int, raw string) (string, error) {
	date, err := ParseManualDate(raw)
	if err != nil {
		var malformed cerrors.MalformedInputError
		if errors.As(err, &malformed) {
			return h.msg.Get(messages.GameDateInvalid, messageprovider.P("prefix", h.prefix)), nil
		}
		return "", err
	}

	released := resolver.IsDateReleased(date, h.now())
	updated, err := h.repo.SetManualDate(ctx, chatID, gameID, date, released)
	if err != nil {
		return "", err
	}
	id := messageprovider.P("id", strconv.Itoa(gameID))
	if !updated {
		return h.msg.Get(messages.GameIDNotFound, id), nil
	}
	h.logger.Info("stored_game_manual_date", "chat_id", chatID, "game_id", gameID, "date", date, "released", released)
	return h.msg.Get(messages.GameDateUpdated, id, messageprovider.P("date", date)), nil
}

func (h *CommandHandler) showSettings(ctx context.Context, chatID string) (string, error) {
	settings, err := h.repo.GetSettings(ctx, chatID)
	if err != nil {
		return "", err
	}

	channel := settings.ChannelID
	if channel == "" {
		channel = h.msg.Get(messages.SettingsChannelDefault)
	}
	platforms := h.msg.Get(messages.SettingsPlatformsAll)
	if codes := settings.PlatformCodes(); len(codes) > 0 {
		platforms = strings.Join(codes, ", ")
	}
	return h.msg.Get(messages.SettingsShow,
		messageprovider.P("channel", channel),
		messageprovider.P("platforms", platforms),
	), nil
}

func (h *CommandHandler) setChannel(ctx context.Context, chatID string, channelID string) (string, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		channelID = chatID
	}
	if err := h.repo.SaveChannel(ctx, chatID, channelID); err != nil {
		return "", err
	}
	return h.msg.Get(messages.SettingsChannelSaved, messageprovider.P("channel", channelID)), nil
}

// setPlatforms: 알 수 없는 코드가 하나라도 있으면 저장하지 않는다. ALL 은 필터 해제다.
func (h *CommandHandler) setPlatforms(ctx context.Context, chatID string, codes []string) (string, error) {
	var invalid []string
	var kept []string
	wildcard := false
	for _, code := range codes {
		switch {
		case !catalog.IsKnownPlatformCode(code):
			invalid = append(invalid, code)
		case catalog.PlatformIDFromCode(code) == catalog.PlatformAll:
			wildcard = true
		default:
			if !slices.Contains(kept, code) {
				kept = append(kept, code)
			}
		}
	}
	if len(invalid) > 0 || len(codes) == 0 {
		return h.msg.Get(messages.SettingsPlatformsInvalid,
			messageprovider.P("codes", strings.Join(invalid, ", ")),
			messageprovider.P("known", strings.Join(catalog.KnownPlatformCodes, ", ")),
		), nil
	}
	if wildcard {
		kept = nil
	}

	if err := h.repo.SavePlatforms(ctx, chatID, kept); err != nil {
		return "", err
	}
	shown := h.msg.Get(messages.SettingsPlatformsAll)
	if len(kept) > 0 {
		shown = strings.Join(kept, ", ")
	}
	return h.msg.Get(messages.SettingsPlatformsSaved, messageprovider.P("platforms", shown)), nil
}
