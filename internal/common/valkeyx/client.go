// Package valkeyx: valkey-go 클라이언트 생성과 자주 쓰는 명령 헬퍼.
package valkeyx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Config: 단일 노드 연결 설정
type Config struct {
	Addr       string
	SocketPath string // 있으면 Addr 대신 UDS 로 붙는다
	Password   string
	DB         int

	DialTimeout  time.Duration
	WriteTimeout time.Duration

	// DisableCache: CLIENT TRACKING 기반 캐시를 끈다. miniredis 와 Streams 용 연결은 꺼야 한다.
	DisableCache bool
	UseTLS       bool
}

// New: valkey.Client 를 만든다. 연결 확인은 Ping 으로 따로 한다.
func New(cfg Config) (valkey.Client, error) {
	opts := valkey.ClientOption{
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: cfg.DisableCache,
	}
	opts.Dialer.Timeout = cfg.DialTimeout
	if cfg.WriteTimeout > 0 {
		opts.ConnWriteTimeout = cfg.WriteTimeout
	}

	if socket := strings.TrimSpace(cfg.SocketPath); socket != "" {
		opts.InitAddress = []string{socket}
		opts.DialFn = func(addr string, dialer *net.Dialer, _ *tls.Config) (net.Conn, error) {
			return dialer.Dial("unix", addr)
		}
	} else {
		addr := strings.TrimSpace(cfg.Addr)
		if addr == "" {
			return nil, errors.New("valkey addr is empty")
		}
		opts.InitAddress = []string{addr}
		if cfg.UseTLS {
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				host = addr
			}
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
		}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create valkey client failed: %w", err)
	}
	return client, nil
}

func Ping(ctx context.Context, client valkey.Client) error {
	if client == nil {
		return errors.New("valkey client is nil")
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("valkey ping failed: %w", err)
	}
	return nil
}

// Key: prefix 와 id 들을 ':' 로 잇는다. id 의 앞뒤 공백은 버린다.
func Key(prefix string, ids ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, id := range ids {
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(id))
	}
	return b.String()
}

// IsNil: 래핑된 에러까지 따라가며 valkey nil 응답인지 본다.
func IsNil(err error) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if valkey.IsValkeyNil(err) {
			return true
		}
	}
	return false
}

// IsBusyGroup: XGROUP CREATE 에서 그룹이 이미 있을 때의 에러
func IsBusyGroup(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}
