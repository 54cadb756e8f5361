// Package observability wires process-wide structured logging.
//
// By default log records go to stderr through a plain slog text or JSON
// handler. Setting OTEL_LOGS_EXPORTER (grpc|http|stdout) routes them through
// the OpenTelemetry log SDK instead, with a minimum-severity processor
// mirroring the configured slog level; exporter endpoints and headers come
// from the standard OTEL_EXPORTER_OTLP_* environment variables.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// envLogsExporter selects the OTLP log exporter; unset or "none" keeps plain slog output.
const envLogsExporter = "OTEL_LOGS_EXPORTER"

const instrumentationName = "github.com/florianilch/switchboard"

// Instrument installs the process-wide default slog logger.
func Instrument(level slog.Level, format string) error {
	exporterKind := os.Getenv(envLogsExporter)
	if exporterKind == "" || exporterKind == "none" {
		handler, err := consoleHandler(level, format)
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(handler))
		return nil
	}

	exporter, err := newLogExporter(context.Background(), exporterKind)
	if err != nil {
		return fmt.Errorf("creating log exporter: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(
			minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(level)),
		),
	)
	slog.SetDefault(otelslog.NewLogger(instrumentationName, otelslog.WithLoggerProvider(provider)))
	return nil
}

func consoleHandler(level slog.Level, format string) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case "json":
		return slog.NewJSONHandler(os.Stderr, opts), nil
	case "", "text":
		return slog.NewTextHandler(os.Stderr, opts), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

func newLogExporter(ctx context.Context, kind string) (sdklog.Exporter, error) {
	switch kind {
	case "grpc":
		return otlploggrpc.New(ctx)
	case "http":
		return otlploghttp.New(ctx)
	case "stdout":
		return stdoutlog.New()
	default:
		return nil, fmt.Errorf("unsupported log exporter: %s", kind)
	}
}

// severity maps a slog level to the minimum OpenTelemetry log severity.
func severity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}
