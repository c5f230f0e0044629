package mq

import (
	"slices"
	"testing"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/wizard"
)

func TestCommandParser_Parse(t *testing.T) {
	parser := NewCommandParser("/발매")

	tests := []struct {
		name  string
		input string
		kind  CommandKind
	}{
		{"bare prefix is help", "/발매", CommandHelp},
		{"help keyword", "/발매 도움말", CommandHelp},
		{"search", "/발매 검색 fable", CommandSearch},
		{"next", "/발매 다음", CommandNext},
		{"previous", "/발매 이전", CommandPrevious},
		{"select", "/발매 선택", CommandSelect},
		{"back", "/발매 뒤로", CommandBack},
		{"list", "/발매 목록", CommandList},
		{"game", "/발매 게임 fable", CommandGame},
		{"delete", "/발매 삭제 12345", CommandDelete},
		{"date", "/발매 날짜 12345 11-20-2026", CommandDate},
		{"settings", "/발매 설정", CommandSettings},
		{"channel", "/발매 설정 채널", CommandSetChannel},
		{"platforms", "/발매 설정 플랫폼 PC PS5", CommandSetPlatforms},
		{"english alias", "/발매 NEXT", CommandNext},
		{"unknown", "/발매 아무말", CommandUnknown},
		{"delete without id", "/발매 삭제 abc", CommandUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := parser.Parse(tt.input)
			if cmd == nil {
				t.Fatalf("expected command for %q, got nil", tt.input)
			}
			if cmd.Kind != tt.kind {
				t.Fatalf("expected kind %d, got %d", tt.kind, cmd.Kind)
			}
		})
	}
}

func TestCommandParser_IgnoresOtherMessages(t *testing.T) {
	parser := NewCommandParser("/발매")

	for _, input := range []string{"", "   ", "안녕하세요", "/스자 시작", "/발매검색 fable"} {
		if cmd := parser.Parse(input); cmd != nil {
			t.Errorf("expected nil for %q, got kind %d", input, cmd.Kind)
		}
	}
}

func TestCommandParser_Arguments(t *testing.T) {
	parser := NewCommandParser("/발매")

	search := parser.Parse("/발매 검색  Elden Ring  ")
	if search.Query != "Elden Ring" {
		t.Errorf("unexpected query: %q", search.Query)
	}

	date := parser.Parse("/발매 날짜 777 3-4-27")
	if date.GameID != 777 || date.Date != "3-4-27" {
		t.Errorf("unexpected date command: %+v", date)
	}

	channel := parser.Parse("/발매 설정 채널 room-42")
	if channel.ChannelID != "room-42" {
		t.Errorf("unexpected channel: %q", channel.ChannelID)
	}

	platforms := parser.Parse("/발매 설정 플랫폼 pc, ps5 switch")
	if !slices.Equal(platforms.Codes, []string{"PC", "PS5", "SWITCH"}) {
		t.Errorf("unexpected codes: %v", platforms.Codes)
	}
}

func TestCommandParser_CustomPrefix(t *testing.T) {
	parser := NewCommandParser("!rel")

	cmd := parser.Parse("!rel next")
	if cmd == nil || cmd.Kind != CommandNext {
		t.Fatalf("expected next command, got %+v", cmd)
	}
	if parser.Parse("/발매 다음") != nil {
		t.Fatal("default prefix should not match a custom parser")
	}
}

func TestCommand_WizardEvent(t *testing.T) {
	tests := map[CommandKind]wizard.Event{
		CommandNext:     wizard.EventNext,
		CommandPrevious: wizard.EventPrevious,
		CommandSelect:   wizard.EventSelect,
		CommandBack:     wizard.EventBack,
	}
	for kind, want := range tests {
		got, ok := Command{Kind: kind}.WizardEvent()
		if !ok || got != want {
			t.Errorf("kind %d: expected %v, got %v (ok=%v)", kind, want, got, ok)
		}
	}
	if _, ok := (Command{Kind: CommandSearch}).WizardEvent(); ok {
		t.Error("search should not map to a wizard event")
	}
}

func TestParseManualDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"11-20-2026", "2026-11-20", false},
		{"3-4-27", "2027-03-04", false},
		{"02-29-2028", "2028-02-29", false},
		{"02-30-2026", "", true},
		{"2026-11-20", "", true},
		{"11/20/2026", "", true},
		{"1-1-202", "", true},
		{"1-1-20266", "", true},
	}
	for _, tt := range tests {
		got, err := ParseManualDate(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error, got %q", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.raw, tt.want, got)
		}
	}
}
