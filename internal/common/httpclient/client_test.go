package httpclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func TestNew_Defaults(t *testing.T) {
	client := New(Config{Timeout: 3 * time.Second})
	if client.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout: %v", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}
	if transport.MaxIdleConnsPerHost != 4 || transport.TLSHandshakeTimeout != 10*time.Second {
		t.Fatalf("unexpected transport defaults: perHost=%d tls=%v", transport.MaxIdleConnsPerHost, transport.TLSHandshakeTimeout)
	}
	if _, ok := transport.TLSNextProto["h2"]; !ok {
		t.Fatal("expected h2 to be registered")
	}
}

func TestNew_TracingWrapsTransport(t *testing.T) {
	client := New(Config{Tracing: true})
	if _, ok := client.Transport.(*otelhttp.Transport); !ok {
		t.Fatalf("expected otelhttp transport, got %T", client.Transport)
	}
}

func TestNew_Roundtrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(srv.Close)

	resp, err := New(Config{Timeout: time.Second, PingInterval: time.Second}).Get(srv.URL)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Fatalf("unexpected body: %q", body)
	}
}
