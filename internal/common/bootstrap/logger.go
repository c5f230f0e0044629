package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"

	commonconfig "github.com/park285/llm-kakao-bots/release-bot-go/internal/common/config"
)

// CombinedLogFileName: 같은 LOG_DIR 를 쓰는 모든 봇이 함께 쓰는 파일
const CombinedLogFileName = "combined.log"

// NewLogger: 컬러 tint 핸들러로 stdout 에 쓰는 로거
func NewLogger() *slog.Logger {
	return newTintLogger(os.Stdout, false, false)
}

// NewFileLogger: stdout, 봇별 파일, combined.log 에 함께 쓰는 로거.
// traceCorrelation 이 켜져 있으면 활성 span 의 trace_id/span_id 를 붙인다.
func NewFileLogger(cfg commonconfig.LogConfig, fileName string, traceCorrelation bool) (*slog.Logger, error) {
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		return nil, fmt.Errorf("invalid log rotation: size=%d backups=%d age_days=%d", cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir failed: %w", err)
	}

	rotate := func(name string, sizeMB int) *lumberjack.Logger {
		return &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, name),
			MaxSize:    sizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	}
	own := rotate(fileName, cfg.MaxSizeMB)
	combined := rotate(CombinedLogFileName, cfg.MaxSizeMB*3)

	logger := newTintLogger(io.MultiWriter(os.Stdout, own, combined), true, traceCorrelation)
	logger.Info("file_logging_enabled", "path", own.Filename, "combined", combined.Filename, "trace_correlation", traceCorrelation)
	return logger, nil
}

// NewTraceLogger: NewLogger 에 trace 상관관계를 더한 것
func NewTraceLogger() *slog.Logger {
	return newTintLogger(os.Stdout, false, true)
}

func newTintLogger(w io.Writer, noColor bool, traceCorrelation bool) *slog.Logger {
	var handler slog.Handler = tint.NewHandler(w, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.RFC3339,
		AddSource:  true,
		NoColor:    noColor,
	})
	if traceCorrelation {
		handler = traceHandler{next: handler}
	}
	return slog.New(handler)
}

// traceHandler: 레코드에 ctx 의 span 식별자를 붙인다.
type traceHandler struct {
	next slog.Handler
}

func (h traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h traceHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.next.Handle(ctx, record) //nolint:wrapcheck // slog.Handler 구현
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{next: h.next.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{next: h.next.WithGroup(name)}
}
