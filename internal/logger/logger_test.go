package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/pankaj-dahiya-devops/shcx/internal/logger"
)

func TestFromContext_FallsBackToNop(t *testing.T) {
	log := logger.FromContext(context.Background())
	if log == nil {
		t.Fatal("FromContext returned nil")
	}
	log.Infow("discarded")
}

func TestWithLogger_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), log)

	logger.FromContext(ctx).Warnw("control dropped", "control", "IAM.5")

	out := buf.String()
	if !strings.Contains(out, "control dropped") || !strings.Contains(out, "IAM.5") {
		t.Errorf("log output missing message or field:\n%s", out)
	}
	if !strings.Contains(out, "⚠") {
		t.Errorf("warn marker missing:\n%s", out)
	}
}

func TestLevelFlag_Filters(t *testing.T) {
	var buf bytes.Buffer
	flag := &logger.LevelFlag{Level: "warn"}
	log := logger.New(&buf, flag)

	log.Infow("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at warn level, got:\n%s", buf.String())
	}

	flag.Level = "debug"
	log.Debugw("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug must pass after level change, got:\n%s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := logger.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v; want %v", in, got, want)
		}
	}
}
