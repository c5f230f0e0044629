package wizard

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/catalog"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/messages"
	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/resolver"
)

// Navigation: 현재 화면에서 유효한 조작
type Navigation struct {
	Back     bool `json:"back"`
	Previous bool `json:"previous"`
	Next     bool `json:"next"`
	Select   bool `json:"select"`
	Search   bool `json:"search"`
}

// RenderRequest: 전송 계층에 넘기는 화면. 새 메시지로 보낼지 수정할지는 전송 계층이 정한다.
type RenderRequest struct {
	Title    string     `json:"title"`
	Body     string     `json:"body,omitempty"`
	ImageURL string     `json:"imageUrl,omitempty"`
	URL      string     `json:"url,omitempty"`
	Footer   string     `json:"footer,omitempty"`
	Nav      Navigation `json:"nav"`
	// Final: 선택이 끝나 세션이 종료된 화면
	Final bool `json:"final,omitempty"`
}

// Render: 세션 상태를 화면으로 변환한다. 세션을 변경하지 않는다.
func (w *Wizard) Render(s *Session) RenderRequest {
	pager := s.Pager()

	switch s.Stage {
	case StageSearch:
		return w.renderSearch(s, pager)
	case StagePlatform:
		return w.renderPlatform(s, pager)
	case StageRegion:
		return w.renderRegion(s, pager)
	case StageGames:
		return w.renderGames(s, pager)
	default:
		return RenderRequest{Title: w.msg.Get(messages.ErrorGeneric), Nav: Navigation{Search: true}}
	}
}

func pagerNav(p Pager) Navigation {
	return Navigation{Previous: p.HasPrevious(), Next: p.HasNext()}
}

func (w *Wizard) renderSearch(s *Session, p Pager) RenderRequest {
	if p.Max == 0 {
		return RenderRequest{
			Title: w.msg.Get(messages.WizardNoResults, messageprovider.P("query", s.Query)),
			Nav:   Navigation{Search: true},
		}
	}

	game := s.Games[p.Page-1]
	var platforms []catalog.Platform
	if p.Page-1 < len(s.Platforms) {
		platforms = s.Platforms[p.Page-1]
	}

	body := game.Summary()
	if len(platforms) > 0 {
		line := w.msg.Get(messages.WizardPlatformsLine,
			messageprovider.P("platforms", strings.Join(catalog.PlatformNames(platforms), ", ")))
		body = joinNonEmpty(body, line)
	}

	nav := pagerNav(p)
	nav.Select = true
	nav.Search = true
	return RenderRequest{
		Title:    game.Name,
		Body:     body,
		ImageURL: game.ImageURL(w.cfg.PlaceholderImageURL),
		URL:      game.SiteDetailURL,
		Footer:   w.msg.Get(messages.WizardSearchFooter, messageprovider.P("page", p.Page), messageprovider.P("total", p.Max)),
		Nav:      nav,
	}
}

func (w *Wizard) renderPlatform(s *Session, p Pager) RenderRequest {
	game, platforms, ok := s.SelectedGame()
	if !ok || p.Max == 0 {
		return RenderRequest{Title: w.msg.Get(messages.ErrorGeneric), Nav: Navigation{Back: true, Search: true}}
	}

	nav := pagerNav(p)
	nav.Back = true
	nav.Select = true
	return RenderRequest{
		Title:    w.msg.Get(messages.WizardPlatformTitle, messageprovider.P("name", game.Name)),
		Body:     platforms[p.Page-1].Name,
		ImageURL: game.ImageURL(w.cfg.PlaceholderImageURL),
		URL:      game.SiteDetailURL,
		Footer:   w.msg.Get(messages.WizardPlatformFooter, messageprovider.P("page", p.Page), messageprovider.P("total", p.Max)),
		Nav:      nav,
	}
}

func (w *Wizard) renderRegion(s *Session, p Pager) RenderRequest {
	game, _, ok := s.SelectedGame()
	if !ok || p.Max == 0 {
		return RenderRequest{Title: w.msg.Get(messages.ErrorGeneric), Nav: Navigation{Back: true, Search: true}}
	}

	record := s.Releases[p.Page-1]
	unknown := w.msg.Get(messages.WizardUnknown)

	platformName := unknown
	if record.Platform != nil && record.Platform.Name != "" {
		platformName = record.Platform.Name
	}
	regionName := record.RegionName()
	if regionName == "" {
		regionName = unknown
	}
	date := unknown
	if record.ReleaseDate != nil {
		if normalized, ok := catalog.NormalizeDate(*record.ReleaseDate); ok {
			date = normalized
		}
	}

	nav := pagerNav(p)
	nav.Back = true
	nav.Select = true
	return RenderRequest{
		Title: w.msg.Get(messages.WizardRegionTitle, messageprovider.P("name", game.Name)),
		Body: w.msg.Get(messages.WizardRegionBody,
			messageprovider.P("release", record.Name),
			messageprovider.P("platform", platformName),
			messageprovider.P("region", regionName),
			messageprovider.P("date", date),
		),
		ImageURL: game.ImageURL(w.cfg.PlaceholderImageURL),
		URL:      game.SiteDetailURL,
		Footer:   w.msg.Get(messages.WizardRegionFooter, messageprovider.P("page", p.Page), messageprovider.P("total", p.Max)),
		Nav:      nav,
	}
}

func (w *Wizard) renderGames(s *Session, p Pager) RenderRequest {
	title := w.msg.Get(messages.WizardGamesTitle)
	if p.Max == 0 {
		return RenderRequest{Title: title, Body: w.msg.Get(messages.WizardGamesEmpty), Nav: Navigation{Search: true}}
	}

	perPage := s.GamesPerPage
	if perPage <= 0 {
		perPage = DefaultGamesPerPage
	}
	start := (p.Page - 1) * perPage
	end := min(start+perPage, len(s.Saved))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		saved := s.Saved[i]
		lines = append(lines, w.msg.Get(messages.WizardGamesLine,
			messageprovider.P("index", i+1),
			messageprovider.P("name", saved.Name),
			messageprovider.P("date", w.dateOrTBA(saved.Date)),
			messageprovider.P("category", w.categoryLabel(saved.Category)),
			messageprovider.P("id", strconv.Itoa(saved.GameID)),
		))
	}

	printer := message.NewPrinter(language.Korean)
	return RenderRequest{
		Title: title,
		Body:  strings.Join(lines, "\n"),
		Footer: w.msg.Get(messages.WizardGamesFooter,
			messageprovider.P("count", printer.Sprintf("%d", len(s.Saved))),
			messageprovider.P("page", p.Page),
			messageprovider.P("total", p.Max),
		),
		Nav: pagerNav(p),
	}
}

// renderConfirmation: 해석 결과 분류별 최종 확인 화면
func (w *Wizard) renderConfirmation(game catalog.Game, resolved resolver.ResolvedRelease, released bool) RenderRequest {
	name := messageprovider.P("name", game.Name)
	req := RenderRequest{
		Body:     game.Summary(),
		ImageURL: game.ImageURL(w.cfg.PlaceholderImageURL),
		URL:      game.SiteDetailURL,
		Final:    true,
	}

	switch {
	case (resolved.Category == resolver.CategoryRelease || resolved.Category == resolver.CategoryExpected) && resolved.HasDate():
		label := messages.FinalLabelUpcoming
		if released {
			label = messages.FinalLabelReleased
		}
		req.Title = w.msg.Get(messages.FinalAdded, name)
		req.Footer = w.dateLine(label, *resolved.Date)
	case resolved.Category == resolver.CategoryTBA:
		req.Title = w.msg.Get(messages.FinalAddedTBA, name)
	case resolved.Category == resolver.CategoryMissing && resolved.HasDate():
		req.Title = w.msg.Get(messages.FinalAddedMissing, name)
		req.Footer = w.dateLine(messages.FinalLabelEstimated, *resolved.Date)
	default:
		return w.renderFailure()
	}
	return req
}

func (w *Wizard) renderFailure() RenderRequest {
	return RenderRequest{Title: w.msg.Get(messages.FinalFailed), Nav: Navigation{Search: true}}
}

func (w *Wizard) dateLine(labelKey string, date string) string {
	return w.msg.Get(messages.FinalDateLine,
		messageprovider.P("label", w.msg.Get(labelKey)),
		messageprovider.P("date", date),
	)
}

func (w *Wizard) dateOrTBA(date *string) string {
	if date == nil || *date == "" {
		return w.msg.Get(messages.FinalTBADate)
	}
	return *date
}

func (w *Wizard) categoryLabel(category string) string {
	return w.msg.Get(messages.CategoryPrefix + category)
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "\n")
}
