// Package httpclient: 외부 API 호출용 *http.Client 구성
package httpclient

import (
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
)

// Config: 0 값은 각각 기본값을 쓴다. Timeout 0 은 요청 전체 제한 없음.
type Config struct {
	Timeout        time.Duration
	ConnectTimeout time.Duration
	MaxIdlePerHost int
	// PingInterval: HTTP/2 연결에서 응답이 없을 때 PING 을 보내는 간격. 0 이면 끈다.
	PingInterval time.Duration
	Tracing      bool
}

// New: 프록시 환경 변수를 따르는 TLS 우선 클라이언트. HTTP/2 는 서버가 협상할 때만 쓴다.
func New(cfg Config) *http.Client {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	perHost := cfg.MaxIdlePerHost
	if perHost <= 0 {
		perHost = 4
	}

	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        perHost * 4,
		MaxIdleConnsPerHost: perHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: connectTimeout,
	}
	if h2, err := http2.ConfigureTransports(base); err == nil && cfg.PingInterval > 0 {
		h2.ReadIdleTimeout = cfg.PingInterval
		h2.PingTimeout = cfg.PingInterval / 2
	}

	var rt http.RoundTripper = base
	if cfg.Tracing {
		rt = otelhttp.NewTransport(rt)
	}
	return &http.Client{Timeout: cfg.Timeout, Transport: rt}
}
