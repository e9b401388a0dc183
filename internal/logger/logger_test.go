package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"agency-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestLogger(t *testing.T) {
	t.Run("JSON_AddsTraceContext", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.Options{Format: "json", Output: &buf})

		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)

		log.InfoContext(ctx, "student created", "id", 7)

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "student created", record["msg"])
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", record["trace_id"])
		assert.Equal(t, "00f067aa0ba902b7", record["span_id"])
	})

	t.Run("JSON_RespectsLevel", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.Options{Format: "json", Level: "warn", Output: &buf})

		log.Info("dropped")
		assert.Zero(t, buf.Len())

		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("Text_ColorsErrors", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.Options{Format: "text", Output: &buf})

		log.Error("import failed")
		assert.Contains(t, buf.String(), "\x1b[31mimport failed\x1b[0m")
	})
}
