// Package health: /health 응답 구성. 의존 서비스 probe 결과를 모아 상태를 판정한다.
package health

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Probe: 이름 붙은 의존성 점검. Check 가 에러를 돌려주면 degraded 로 본다.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Response: /health 응답 본문
type Response struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	Checks     map[string]string `json:"checks,omitempty"`
}

// Reporter: 버전과 기동 시각을 들고 probe 를 실행한다. nil Reporter 는 probe 없이 ok 를 보고한다.
type Reporter struct {
	version string
	started time.Time
	timeout time.Duration
	probes  []Probe
}

// New: timeout 은 probe 하나당 제한 시간이다. 0 이하이면 2초.
func New(version string, timeout time.Duration, probes ...Probe) *Reporter {
	if version == "" {
		version = "dev"
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Reporter{version: version, started: time.Now(), timeout: timeout, probes: probes}
}

// Report: probe 를 동시에 돌리고 하나라도 실패하면 degraded.
func (r *Reporter) Report(ctx context.Context) Response {
	if r == nil {
		return Response{Status: StatusOK, Version: "dev", Uptime: "0s", Goroutines: runtime.NumGoroutine()}
	}

	resp := Response{
		Status:     StatusOK,
		Version:    r.version,
		Uptime:     time.Since(r.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}
	if len(r.probes) == 0 {
		return resp
	}

	var mu sync.Mutex
	resp.Checks = make(map[string]string, len(r.probes))
	var g errgroup.Group
	for _, probe := range r.probes {
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			result := StatusOK
			if err := probe.Check(probeCtx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			resp.Checks[probe.Name] = result
			if result != StatusOK {
				resp.Status = StatusDegraded
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return resp
}
