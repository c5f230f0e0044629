package messages

// HelpMessage: 도움말
const HelpMessage = "help.message"

// 마법사 화면 구성 키
const (
	WizardNoResults      = "wizard.no_results"
	WizardNoSession      = "wizard.no_session"
	WizardSearchFooter   = "wizard.search_footer"
	WizardPlatformTitle  = "wizard.platform_title"
	WizardPlatformFooter = "wizard.platform_footer"
	WizardRegionTitle    = "wizard.region_title"
	WizardRegionBody     = "wizard.region_body"
	WizardRegionFooter   = "wizard.region_footer"
	WizardPlatformsLine  = "wizard.platforms_line"
	WizardUnknown        = "wizard.unknown"
	WizardGamesTitle     = "wizard.games_title"
	WizardGamesEmpty     = "wizard.games_empty"
	WizardGamesLine      = "wizard.games_line"
	WizardGamesFooter    = "wizard.games_footer"

	NavPrevious = "wizard.nav_previous"
	NavNext     = "wizard.nav_next"
	NavSelect   = "wizard.nav_select"
	NavBack     = "wizard.nav_back"
	NavSearch   = "wizard.nav_search"
	NavLine     = "wizard.nav_line"
)

// 최종 확인 메시지 키
const (
	FinalAdded          = "final.added"
	FinalAddedTBA       = "final.added_tba"
	FinalAddedMissing   = "final.added_missing"
	FinalFailed         = "final.failed"
	FinalLabelReleased  = "final.label_released"
	FinalLabelUpcoming  = "final.label_upcoming"
	FinalLabelEstimated = "final.label_estimated"
	FinalDateLine       = "final.date_line"
	FinalTBADate        = "final.tba_date"
)

// CategoryPrefix: 분류 표시명 키 접두사 (category.release 등)
const CategoryPrefix = "category."

// 저장 게임 관리 키
const (
	GameNotFound       = "game.not_found"
	GameDetail         = "game.detail"
	GameDeleted        = "game.deleted"
	GameIDNotFound     = "game.id_not_found"
	GameDateUpdated    = "game.date_updated"
	GameDateInvalid    = "game.date_invalid"
)

// 설정 키
const (
	SettingsShow             = "settings.show"
	SettingsChannelDefault   = "settings.channel_default"
	SettingsPlatformsAll     = "settings.platforms_all"
	SettingsChannelSaved     = "settings.channel_saved"
	SettingsPlatformsSaved   = "settings.platforms_saved"
	SettingsPlatformsInvalid = "settings.platforms_invalid"
)

// NotifyReleased: 출시 알림
const NotifyReleased = "notify.released"

// 에러 키
const (
	ErrorGeneric        = "error.generic"
	ErrorAccessDenied   = "error.access_denied"
	ErrorUserBlocked    = "error.user_blocked"
	ErrorChatBlocked    = "error.chat_blocked"
	ErrorProcessing     = "error.processing"
	ErrorUnknownCommand = "error.unknown_command"
)
