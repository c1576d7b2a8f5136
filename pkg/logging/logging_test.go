package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/m-mizutani/gt"
)

func TestJSONLoggerRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.FormatJSON, slog.LevelDebug)

	logger.Info("login", "username", "agent01", "password", "hunter2", "access_token", "abc.def")

	out := buf.String()
	gt.String(t, out).Contains("agent01")
	gt.Bool(t, strings.Contains(out, "hunter2")).False()
	gt.Bool(t, strings.Contains(out, "abc.def")).False()
}

func TestFromFallsBackToDefault(t *testing.T) {
	gt.Value(t, logging.From(context.Background())).Equal(logging.Default())

	var buf bytes.Buffer
	scoped := logging.New(&buf, logging.FormatJSON, slog.LevelInfo)
	ctx := logging.With(context.Background(), scoped)
	gt.Value(t, logging.From(ctx)).Equal(scoped)
}

func TestParseLevel(t *testing.T) {
	level, ok := logging.ParseLevel("WARN")
	gt.Bool(t, ok).True()
	gt.Value(t, level).Equal(slog.LevelWarn)

	_, ok = logging.ParseLevel("loud")
	gt.Bool(t, ok).False()
}
