package testhelper

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"
)

// NewTestValkeyClient: miniredis 에 연결된 단일 클라이언트를 만든다. 테스트 종료 시 정리된다.
func NewTestValkeyClient(t *testing.T) (valkey.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mr.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("failed to create valkey client (addr=%s): %v", mr.Addr(), err)
	}
	t.Cleanup(client.Close)

	return client, mr
}

// UniqueTestPrefix: 테스트별로 고유한 키 prefix를 생성합니다.
func UniqueTestPrefix(t *testing.T) string {
	return "test:" + t.Name() + ":"
}
