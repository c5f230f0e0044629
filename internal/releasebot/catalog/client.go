package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/park285/llm-kakao-bots/release-bot-go/internal/common/cache"
	cerrors "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/errors"
)

const (
	// DefaultBaseURL: GiantBomb API 기본 주소
	DefaultBaseURL = "https://www.giantbomb.com/api"

	releaseFieldList = "release,release_date,id,guid,name,platform,region"
	upstreamStatusOK = 1
	maxResponseBytes = 8 * 1024 * 1024
)

// Config: 카탈로그 클라이언트 설정
type Config struct {
	BaseURL           string
	APIKey            string
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	ReleaseCacheSize  int
	ReleaseCacheTTL   time.Duration
}

// Client: GiantBomb 검색/상세/발매 기록 엔드포인트 접근자.
// 실패한 요청은 재시도하지 않고 APIError 로 반환한다.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	limiter    *rate.Limiter
	releases   *cache.TTL[[]ReleaseRecord]
	inflight   singleflight.Group
	logger     *slog.Logger
}

// NewClient: 카탈로그 클라이언트를 생성한다.
func NewClient(httpClient *http.Client, cfg Config, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client is nil")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("catalog api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	releases, err := cache.NewTTL[[]ReleaseRecord](cfg.ReleaseCacheSize, cfg.ReleaseCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("create release cache failed: %w", err)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(limit, burst),
		releases:   releases,
		logger:     logger,
	}, nil
}

// Search: 검색 후 허용 플랫폼 집합으로 필터링한 결과를 반환한다.
func (c *Client) Search(ctx context.Context, allowed []int, query string) (FilteredResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return FilteredResults{}, cerrors.MalformedInputError{Message: "empty search query"}
	}

	params := url.Values{}
	params.Set("resources", "game")
	params.Set("query", query)

	var games []Game
	if err := c.getResults(ctx, "search", "/search/", params, &games); err != nil {
		return FilteredResults{}, err
	}

	result := FilterPlatforms(allowed, games)
	c.logger.Debug("catalog_search_done",
		"query", query,
		"raw", len(games),
		"kept", result.Len(),
	)
	return result, nil
}

// FetchGame: 게임 상세를 조회한다.
func (c *Client) FetchGame(ctx context.Context, gameID int) (Game, error) {
	var game Game
	path := "/game/3030-" + strconv.Itoa(gameID) + "/"
	if err := c.getResults(ctx, "fetch_game", path, url.Values{}, &game); err != nil {
		return Game{}, err
	}
	if game.ID == 0 {
		return Game{}, cerrors.NotFoundError{Resource: "game", ID: strconv.Itoa(gameID)}
	}
	return game, nil
}

// FetchReleases: 플랫폼마다 한 번씩 요청해 결과를 요청 순서대로 이어 붙인다.
// 와일드카드(0)가 포함되면 필터 없는 요청 한 번으로 끝낸다.
func (c *Client) FetchReleases(ctx context.Context, gameID int, platformIDs []int) ([]ReleaseRecord, error) {
	key := releaseCacheKey(gameID, platformIDs)
	if cached, ok := c.releases.Get(key); ok {
		return cached, nil
	}

	// 공유 요청은 첫 호출자의 취소와 분리하고, 각 호출자는 자기 ctx 만큼만 기다린다.
	shared := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(key, func() (any, error) {
		records, fetchErr := c.fetchReleasesUncached(shared, gameID, platformIDs)
		if fetchErr != nil {
			return nil, fetchErr
		}
		c.releases.Set(key, records)
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, cerrors.APIError{Operation: "fetch_releases", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		records, _ := res.Val.([]ReleaseRecord)
		return records, nil
	}
}

func (c *Client) fetchReleasesUncached(ctx context.Context, gameID int, platformIDs []int) ([]ReleaseRecord, error) {
	if len(platformIDs) == 0 {
		platformIDs = []int{PlatformAll}
	}

	var all []ReleaseRecord
	for _, platformID := range platformIDs {
		filter := "game:" + strconv.Itoa(gameID)
		if platformID != PlatformAll {
			filter += ",platform:" + strconv.Itoa(platformID)
		}

		params := url.Values{}
		params.Set("filter", filter)
		params.Set("field_list", releaseFieldList)

		var records []ReleaseRecord
		if err := c.getResults(ctx, "fetch_releases", "/releases/", params, &records); err != nil {
			return nil, err
		}
		all = append(all, records...)

		if platformID == PlatformAll {
			break
		}
	}
	return all, nil
}

// getResults: 공통 GET. HTTP 200 과 봉투 status_code=1 을 모두 만족해야 성공이다.
func (c *Client) getResults(ctx context.Context, operation string, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return cerrors.APIError{Operation: operation, Err: fmt.Errorf("rate limiter wait: %w", err)}
	}

	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return cerrors.APIError{Operation: operation, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return cerrors.APIError{Operation: operation, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return cerrors.APIError{Operation: operation, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return cerrors.APIError{Operation: operation, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if !gjson.ValidBytes(body) {
		return cerrors.APIError{Operation: operation, StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid json body")}
	}
	envelope := gjson.GetManyBytes(body, "status_code", "error", "results")
	if code := envelope[0].Int(); code != upstreamStatusOK {
		return cerrors.APIError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("upstream status_code=%d error=%q", code, envelope[1].String()),
		}
	}

	results := envelope[2]
	if !results.Exists() || results.Type == gjson.Null {
		return nil
	}
	// 결과가 없을 때 객체 자리에 빈 배열이 오는 경우가 있다.
	if results.IsArray() && !isSliceTarget(out) {
		return nil
	}
	if err := json.Unmarshal([]byte(results.Raw), out); err != nil {
		return cerrors.APIError{Operation: operation, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode results: %w", err)}
	}
	return nil
}

func isSliceTarget(out any) bool {
	switch out.(type) {
	case *[]Game, *[]ReleaseRecord:
		return true
	default:
		return false
	}
}

func releaseCacheKey(gameID int, platformIDs []int) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(gameID))
	for _, id := range platformIDs {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}
