package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	context_ "github.com/mkrupp/homecase-signup/internal/infra/context"
	"github.com/mkrupp/homecase-signup/internal/infra/logging"
)

func newConsoleLogger(buf *bytes.Buffer, name string, pkgLevels map[string]slog.Level) *slog.Logger {
	//nolint:exhaustruct
	handler := &logging.ConsoleHandler{
		Output:    buf,
		Level:     logging.LevelDebug,
		PkgLevels: pkgLevels,
	}

	return slog.New(logging.NewTracingHandler(handler)).With(logging.LoggerKey, name)
}

func TestConsoleHandler_PkgLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		logger    string
		pkgLevels map[string]slog.Level
		level     slog.Level
		want      bool
	}{
		{"no filter", "svc.signupsvc.pipeline", nil, logging.LevelDebug, true},
		{"exact match suppresses", "svc.signupsvc.pipeline", map[string]slog.Level{"svc.signupsvc.pipeline": logging.LevelWarn}, logging.LevelInfo, false},
		{"parent match suppresses", "svc.signupsvc.pipeline", map[string]slog.Level{"svc": logging.LevelError}, logging.LevelWarn, false},
		{"most specific wins", "svc.signupsvc.pipeline", map[string]slog.Level{"svc": logging.LevelError, "svc.signupsvc": logging.LevelDebug}, logging.LevelDebug, true},
		{"root entry applies", "repo.dataset", map[string]slog.Level{"": logging.LevelInfo}, logging.LevelDebug, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			log := newConsoleLogger(&buf, tt.logger, tt.pkgLevels)
			log.Log(context.Background(), tt.level, "dataset loaded")

			assert.Equal(t, tt.want, bytes.Contains(buf.Bytes(), []byte("dataset loaded")))
		})
	}
}

func TestTracingHandler_AddsContextAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := context_.WithTraceID(context.Background(), "trace-123")
	ctx = context_.WithFormField(ctx, "password")

	log := newConsoleLogger(&buf, "svc.signupsvc.pipeline", nil)
	log.InfoContext(ctx, "field validated")

	out := buf.String()
	assert.Contains(t, out, "field validated")
	assert.Contains(t, out, "trace.id=")
	assert.Contains(t, out, "trace-123")
	assert.Contains(t, out, "form.field=")
	assert.Contains(t, out, "password")
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	log := logging.NewNopLogger()
	assert.NotPanics(t, func() { log.Info("discarded") })
}
