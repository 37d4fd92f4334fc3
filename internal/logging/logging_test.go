package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelInfo, Format: "JSON", Output: &buf})
	logger.With("component", "checkout").Info("order created", "order_id", "o-1")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("expected JSON output, got %q", lines[0])
	}
	if record["component"] != "checkout" || record["order_id"] != "o-1" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestNewTextLoggerDefault(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(Options{Level: slog.LevelWarn, Output: &buf}).Warn("payment failed", "provider", "stripe")
	if !strings.Contains(buf.String(), "payment failed") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
}

func TestTeeFansOut(t *testing.T) {
	t.Parallel()

	var infoBuf, errorBuf bytes.Buffer
	logger := slog.New(Tee(
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		nil,
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)).With("component", "test")

	logger.Info("info message")
	logger.Error("error message")

	if !strings.Contains(infoBuf.String(), "info message") || !strings.Contains(infoBuf.String(), "error message") {
		t.Fatalf("expected both messages in info handler, got %q", infoBuf.String())
	}
	if strings.Contains(errorBuf.String(), "info message") || !strings.Contains(errorBuf.String(), "component=test") {
		t.Fatalf("unexpected error handler output %q", errorBuf.String())
	}
}

func TestRedactMasksCustomerAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(Redact(slog.NewTextHandler(&buf, nil))).With("email", "ada@example.com")
	logger.Warn("order confirmation failed",
		"order_id", "o-1",
		slog.Group("customer", "phone", "+44 20 7946 0000", "country", "GB"),
	)

	out := buf.String()
	for _, leaked := range []string{"ada@example.com", "7946"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("expected %q to be redacted, got %q", leaked, out)
		}
	}
	for _, kept := range []string{"order_id=o-1", "customer.country=GB", "email=[redacted]", "customer.phone=[redacted]"} {
		if !strings.Contains(out, kept) {
			t.Fatalf("expected %q in output, got %q", kept, out)
		}
	}
}

func TestFromContextFallbacks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	fallback := slog.New(slog.NewTextHandler(&buf, nil))
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatalf("expected fallback logger")
	}

	scoped := fallback.With("request_id", "r-1")
	ctx := WithLogger(context.Background(), scoped)
	if got := FromContext(ctx, fallback); got != scoped {
		t.Fatalf("expected context logger")
	}

	if FromContext(context.Background(), nil) == nil {
		t.Fatalf("expected discard logger, got nil")
	}
}

func TestWithCarriesAttributesDownstream(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, logger := With(context.Background(), base, "order_id", "o-1")
	logger.Info("marked processing")
	FromContext(ctx, base).Info("email queued")

	if got := strings.Count(buf.String(), "order_id=o-1"); got != 2 {
		t.Fatalf("expected order id on both lines, got %d in %q", got, buf.String())
	}
}
