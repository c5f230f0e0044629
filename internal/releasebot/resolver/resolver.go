// Package resolver: 카탈로그의 모호한 날짜 정보로부터 (게임, 플랫폼) 의 출시일과 신뢰도 분류를 결정한다.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/releasebot/catalog"
)

// Category: 출시일 신뢰도 분류
type Category string

// Category 값
const (
	CategoryRelease  Category = "release"
	CategoryExpected Category = "expected"
	CategoryMissing  Category = "missing"
	CategoryTBA      Category = "TBA"
	CategoryError    Category = "error"
)

// Valid: 알려진 분류인지 확인한다.
func (c Category) Valid() bool {
	switch c {
	case CategoryRelease, CategoryExpected, CategoryMissing, CategoryTBA, CategoryError:
		return true
	default:
		return false
	}
}

// ResolvedRelease: 해석 결과. Date 가 nil 이면 날짜 미정이다.
// FetchFailed 는 발매 기록 조회 실패로 TBA 가 된 경우에만 true 다.
type ResolvedRelease struct {
	Date        *string  `json:"date"`
	Category    Category `json:"category"`
	FetchFailed bool     `json:"-"`
}

// HasDate: 날짜가 존재하는지
func (r ResolvedRelease) HasDate() bool {
	return r.Date != nil && *r.Date != ""
}

// IsReleased: 날짜가 now 이전이면 true. 날짜가 없거나 파싱할 수 없으면 false.
func (r ResolvedRelease) IsReleased(now time.Time) bool {
	if !r.HasDate() {
		return false
	}
	return IsDateReleased(*r.Date, now)
}

// IsDateReleased: YYYY-MM-DD 날짜가 now 시점 기준 이미 지났는지 확인한다. (now 의 location 기준 자정)
func IsDateReleased(date string, now time.Time) bool {
	t, err := catalog.ParseDate(date, now.Location())
	if err != nil {
		return false
	}
	return t.Before(now)
}

// ReleaseFetcher: 발매 기록 조회 경계
type ReleaseFetcher interface {
	FetchReleases(ctx context.Context, gameID int, platformIDs []int) ([]catalog.ReleaseRecord, error)
}

// Resolver: 출시일 추론기. 어떤 분기에서도 에러를 반환하지 않는다.
type Resolver struct {
	fetcher ReleaseFetcher
	logger  *slog.Logger
}

// New: Resolver 를 생성한다.
func New(fetcher ReleaseFetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{fetcher: fetcher, logger: logger}
}

// Resolve: 게임과 대상 플랫폼으로 출시일을 결정한다.
//
// original_release_date 가 있으면 전체 플랫폼의 발매 기록을 훑는다. 대상 플랫폼 기록이 있으면 release,
// 기록이 하나도 없으면 전역 날짜를 그대로 release 로, 그 외에는 missing 으로 본다.
// original_release_date 가 없으면 expected_release_* 로 날짜를 합성하고, 불완전하면 TBA 다.
// 발매 기록 조회가 실패하면 FetchFailed 가 설정된 날짜 없는 TBA 를 반환한다.
func (r *Resolver) Resolve(ctx context.Context, game catalog.Game, platformID int) ResolvedRelease {
	original, hasOriginal := originalDate(game)
	if !hasOriginal {
		return r.resolveExpected(game)
	}

	records, err := r.fetcher.FetchReleases(ctx, game.ID, []int{catalog.PlatformAll})
	if err != nil {
		r.logger.Warn("resolver_fetch_releases_failed",
			"game_id", game.ID,
			"platform_id", platformID,
			"err", err,
		)
		return ResolvedRelease{Category: CategoryTBA, FetchFailed: true}
	}

	sameDate := 0
	for _, record := range records {
		recordDate := recordDateOrEmpty(record)
		if record.PlatformID() == platformID {
			date := original
			if recordDate != "" && recordDate != original {
				date = recordDate
			}
			return r.done(game, platformID, ResolvedRelease{Date: &date, Category: CategoryRelease}, len(records), sameDate)
		}
		if recordDate == original {
			sameDate++
		}
	}

	if len(records) == 0 {
		return r.done(game, platformID, ResolvedRelease{Date: &original, Category: CategoryRelease}, 0, 0)
	}
	// 모두 같은 날짜(자리표시자로 보이는 경우)이든 날짜가 갈리든 대상 플랫폼 확인이 안 되면 missing.
	return r.done(game, platformID, ResolvedRelease{Date: &original, Category: CategoryMissing}, len(records), sameDate)
}

func (r *Resolver) resolveExpected(game catalog.Game) ResolvedRelease {
	if game.ExpectedReleaseYear == nil || game.ExpectedReleaseMonth == nil || game.ExpectedReleaseDay == nil {
		return ResolvedRelease{Category: CategoryTBA}
	}
	date, err := catalog.ComposeDate(*game.ExpectedReleaseYear, *game.ExpectedReleaseMonth, *game.ExpectedReleaseDay)
	if err != nil {
		r.logger.Info("resolver_expected_date_invalid", "game_id", game.ID, "err", err)
		return ResolvedRelease{Category: CategoryTBA}
	}
	return ResolvedRelease{Date: &date, Category: CategoryExpected}
}

func (r *Resolver) done(game catalog.Game, platformID int, result ResolvedRelease, total int, sameDate int) ResolvedRelease {
	r.logger.Debug("release_resolved",
		"game_id", game.ID,
		"platform_id", platformID,
		"category", result.Category,
		"records", total,
		"same_date", sameDate,
	)
	return result
}

func originalDate(game catalog.Game) (string, bool) {
	if game.OriginalReleaseDate == nil {
		return "", false
	}
	return catalog.NormalizeDate(*game.OriginalReleaseDate)
}

func recordDateOrEmpty(record catalog.ReleaseRecord) string {
	if record.ReleaseDate == nil {
		return ""
	}
	date, _ := catalog.NormalizeDate(*record.ReleaseDate)
	return date
}
