package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	cerrors "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.Client(), Config{
		BaseURL:          server.URL,
		APIKey:           "test-key",
		UserAgent:        "release-bot-test",
		ReleaseCacheSize: 16,
		ReleaseCacheTTL:  time.Minute,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client, server
}

func TestClient_SearchFiltersByPlatform(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "test-key" || q.Get("format") != "json" || q.Get("resources") != "game" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("query") != "fable" {
			t.Errorf("unexpected search term: %q", q.Get("query"))
		}
		if r.Header.Get("User-Agent") != "release-bot-test" {
			t.Errorf("user agent not sent")
		}
		_, _ = io.WriteString(w, `{"status_code":1,"error":"OK","results":[
			{"id":1,"name":"Fable","platforms":[{"id":94,"name":"PC"},{"id":146,"name":"PlayStation 4"}],"original_release_date":"2004-09-14"},
			{"id":2,"name":"Fable II","platforms":[{"id":20,"name":"Xbox 360"}]},
			{"id":3,"name":"Fable Heroes","platforms":null}
		]}`)
	})

	result, err := client.Search(context.Background(), []int{PlatformPC}, " fable ")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.Len() != 1 || result.Games[0].ID != 1 {
		t.Fatalf("unexpected games: %+v", result.Games)
	}
	if len(result.Platforms[0]) != 1 || result.Platforms[0][0].ID != PlatformPC {
		t.Fatalf("unexpected matched platforms: %+v", result.Platforms[0])
	}
	if result.Games[0].OriginalReleaseDate == nil || *result.Games[0].OriginalReleaseDate != "2004-09-14" {
		t.Fatalf("original release date not decoded")
	}
}

func TestClient_NonOKStatusIsAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), []int{PlatformAll}, "fable")

	var apiErr cerrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Operation != "search" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestClient_EnvelopeErrorIsAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status_code":100,"error":"Invalid API Key","results":[]}`)
	})

	_, err := client.FetchGame(context.Background(), 1)

	var apiErr cerrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !strings.Contains(apiErr.Error(), "Invalid API Key") {
		t.Fatalf("upstream error text missing: %v", apiErr)
	}
}

func TestClient_FetchGameEmptyResultIsNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/game/3030-42/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"status_code":1,"error":"OK","results":[]}`)
	})

	_, err := client.FetchGame(context.Background(), 42)

	var nf cerrors.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestClient_FetchReleasesOneRequestPerPlatform(t *testing.T) {
	var filters []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		filters = append(filters, r.URL.Query().Get("filter"))
		if r.URL.Query().Get("field_list") != releaseFieldList {
			t.Errorf("unexpected field list: %q", r.URL.Query().Get("field_list"))
		}
		switch r.URL.Query().Get("filter") {
		case "game:7,platform:94":
			_, _ = io.WriteString(w, `{"status_code":1,"results":[{"id":100,"name":"Fable PC","platform":{"id":94,"name":"PC"},"release_date":"2005-09-20 00:00:00"}]}`)
		default:
			_, _ = io.WriteString(w, `{"status_code":1,"results":[{"id":200,"name":"Fable PS5","platform":{"id":176,"name":"PS5"},"region":{"id":1,"name":"United States"}}]}`)
		}
	})

	records, err := client.FetchReleases(context.Background(), 7, []int{PlatformPC, PlatformPS5})
	if err != nil {
		t.Fatalf("fetch releases failed: %v", err)
	}

	if len(filters) != 2 || filters[0] != "game:7,platform:94" || filters[1] != "game:7,platform:176" {
		t.Fatalf("unexpected request filters: %v", filters)
	}
	if len(records) != 2 || records[0].ID != 100 || records[1].ID != 200 {
		t.Fatalf("records not concatenated in request order: %+v", records)
	}
	if records[1].RegionName() != "United States" {
		t.Fatalf("region not decoded: %+v", records[1])
	}
}

func TestClient_FetchReleasesWildcardSingleRequestAndCache(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.URL.Query().Get("filter"); got != "game:7" {
			t.Errorf("unexpected filter: %q", got)
		}
		_, _ = io.WriteString(w, `{"status_code":1,"results":[]}`)
	})

	for range 2 {
		if _, err := client.FetchReleases(context.Background(), 7, []int{PlatformAll, PlatformPC}); err != nil {
			t.Fatalf("fetch releases failed: %v", err)
		}
	}

	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call (wildcard + cache), got %d", calls.Load())
	}
}

func TestClient_FetchReleasesCancelledCallerDoesNotFailWaiters(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case started <- struct{}{}:
		default:
		}
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		_, _ = io.WriteString(w, `{"status_code":1,"results":[{"id":1,"platform":{"id":94,"name":"PC"},"release_date":"2030-01-01 00:00:00"}]}`)
	})

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.FetchReleases(firstCtx, 7, []int{PlatformAll})
		firstErr <- err
	}()
	<-started

	type result struct {
		records []ReleaseRecord
		err     error
	}
	second := make(chan result, 1)
	go func() {
		records, err := client.FetchReleases(context.Background(), 7, []int{PlatformAll})
		second <- result{records: records, err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller should see its own cancellation, got %v", err)
	}

	close(release)
	got := <-second
	if got.err != nil {
		t.Fatalf("waiting caller failed: %v", got.err)
	}
	if len(got.records) != 1 || got.records[0].PlatformID() != PlatformPC {
		t.Fatalf("unexpected records: %+v", got.records)
	}
}

func TestClient_SearchRejectsEmptyQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})

	_, err := client.Search(context.Background(), nil, "   ")
	if !cerrors.IsExpectedUserBehavior(err) {
		t.Fatalf("expected malformed input error, got %v", err)
	}
}
