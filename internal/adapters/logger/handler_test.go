package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/cicd/internal/adapters/logger"
)

func newHandler(t *testing.T, level slog.Level) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	return slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: level})), buf
}

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  string
	}{
		{name: "debug filtered", level: slog.LevelDebug, want: ""},
		{name: "info", level: slog.LevelInfo, want: "message\n"},
		{name: "warn", level: slog.LevelWarn, want: "! message\n"},
		{name: "error", level: slog.LevelError, want: "✗ message\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newHandler(t, slog.LevelInfo)
			lg.Log(t.Context(), tt.level, "message")
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	lg, buf := newHandler(t, slog.LevelInfo)

	lg.With("stage", "dev").WithGroup("stack").Info("deployed", "operation", "create")
	assert.Equal(t, "deployed stack.stage=dev stack.operation=create\n", buf.String())
}

func TestPrettyHandler_NestedGroups(t *testing.T) {
	lg, buf := newHandler(t, slog.LevelInfo)

	lg.WithGroup("env").WithGroup("repo").Info("resolved", "branch", "main")
	assert.Equal(t, "resolved env.repo.branch=main\n", buf.String())
}

func TestPrettyHandler_DebugLevel(t *testing.T) {
	lg, buf := newHandler(t, slog.LevelDebug)
	lg.Debug("visible")
	assert.Equal(t, "visible\n", buf.String())
}
