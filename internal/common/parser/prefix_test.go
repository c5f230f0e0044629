package parser

import (
	"slices"
	"testing"
)

func TestPrefix_Match(t *testing.T) {
	p := NewPrefix("  ", "/발매")
	if p.String() != "/발매" {
		t.Fatalf("blank prefix should fall back, got %q", p.String())
	}

	cases := map[string]bool{
		"/발매":           true,
		"  /발매 검색 젤다  ": true,
		"/발매\t목록":       true,
		"/발매검색":         false,
		"발매":            false,
		"":              false,
	}
	for input, want := range cases {
		text, ok := p.Match(input)
		if ok != want {
			t.Errorf("%q: ok=%v want %v", input, ok, want)
		}
		if ok && text[0] != '/' {
			t.Errorf("%q: text should be trimmed, got %q", input, text)
		}
	}
}

func TestPrefix_PatternQuotesMeta(t *testing.T) {
	p := NewPrefix("!rel.", "")
	re := p.Pattern(`\s+(?:game|게임)\s+(.+)$`)

	if got := Group(re, "!REL. GAME  Hades "); got != "Hades" {
		t.Fatalf("unexpected group: %q", got)
	}
	if Group(re, "!relX game Hades") != "" {
		t.Fatal("dot in prefix must be literal")
	}
}

func TestFields(t *testing.T) {
	got := Fields(" pc, ps5  switch,,xbox ")
	if !slices.Equal(got, []string{"pc", "ps5", "switch", "xbox"}) {
		t.Fatalf("unexpected fields: %v", got)
	}
}
