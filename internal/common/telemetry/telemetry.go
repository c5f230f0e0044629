// Package telemetry: OTLP 트레이싱 설정과 스트림 필드 기반 trace context 전파
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	commonconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/config"
)

// Propagator: traceparent/baggage 를 쓰는 전파기. Setup 이 전역으로도 등록한다.
var Propagator propagation.TextMapPropagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Provider: 설정된 TracerProvider. 비활성 상태에서는 tp 가 nil 이다.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup: 활성화된 경우 OTLP gRPC exporter 로 TracerProvider 를 만들어 전역에 등록한다.
func Setup(ctx context.Context, cfg commonconfig.TelemetryConfig) (*Provider, error) {
	otel.SetTextMapPropagator(Propagator)
	if !cfg.Enabled {
		return &Provider{}, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter failed: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(rootSampler(cfg.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp}, nil
}

func rootSampler(rate float64) sdktrace.Sampler {
	if rate >= 1 {
		return sdktrace.AlwaysSample()
	}
	if rate <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(rate)
}

func (p *Provider) Enabled() bool {
	return p != nil && p.tp != nil
}

// Shutdown: 남은 span 을 내보낸다. 비활성이면 아무것도 하지 않는다.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider failed: %w", err)
	}
	return nil
}

// Inject: ctx 의 trace context 를 스트림 필드 맵에 싣는다.
func Inject(ctx context.Context, fields map[string]string) {
	Propagator.Inject(ctx, propagation.MapCarrier(fields))
}

// Extract: 스트림 필드에서 부모 trace context 를 복원한다.
func Extract(ctx context.Context, fields map[string]string) context.Context {
	return Propagator.Extract(ctx, propagation.MapCarrier(fields))
}
