package logger_test

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/chat-relay/relay-service/pkg/logger"
)

func captureStdOut(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old
	data, _ := io.ReadAll(r)
	return string(data)
}

func TestInitStdBackendTextOutput(t *testing.T) {
	out := captureStdOut(t, func() {
		logger.Init(logger.Config{
			Service: "relay-test",
			Version: "v0.0.1",
			Env:     logger.EnvDev,
			Backend: logger.BackendStd,
			Level:   slog.LevelDebug,
		})
		slog.Info("hello world")
	})

	if strings.Contains(out, "{") {
		t.Fatalf("expected text output for std backend, got: %s", out)
	}
	if !strings.Contains(out, "hello world") {
		t.Fatalf("message missing: %s", out)
	}
	if !strings.Contains(out, "service=relay-test") {
		t.Fatalf("service attr missing: %s", out)
	}
	if !strings.Contains(out, "env=dev") {
		t.Fatalf("env attr missing: %s", out)
	}
}

func TestInitZapBackendJSONOutput(t *testing.T) {
	out := captureStdOut(t, func() {
		logger.Init(logger.Config{
			Service: "relay-test",
			Env:     logger.EnvProd,
			Backend: logger.BackendZap,
		})
		slog.Info("hello json")
	})

	if !strings.Contains(out, `"msg"`) && !strings.Contains(out, `"message"`) {
		t.Fatalf("expected JSON output for zap backend, got: %s", out)
	}
	if !strings.Contains(out, "hello json") {
		t.Fatalf("message missing: %s", out)
	}
}
