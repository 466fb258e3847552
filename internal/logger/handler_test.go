package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestHandler(buf *bytes.Buffer, format logFormat) (*structuredHandler, *asyncWriter) {
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	return h, aw
}

func TestHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	h, aw := newTestHandler(buf, formatKV)

	ctx := WithRID(nil, "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(h).With("component", "tg")
	log.LogAttrs(ctx, slog.LevelInfo, "",
		slog.String("event", "update.received"),
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line")
	}
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=tg", "event=update.received", "status=ok", "rid=rid-123"}
	for i, prefix := range expected {
		if i >= len(tokens) || !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d missing prefix %s in %s", i, prefix, line)
		}
	}
	if !strings.Contains(line, "user_id=7") || !strings.Contains(line, "chat_id=9") {
		t.Fatalf("context meta missing: %s", line)
	}
}

func TestHandlerJSONOrderAndRID(t *testing.T) {
	buf := &bytes.Buffer{}
	h, aw := newTestHandler(buf, formatJSON)

	rawRID := "123:456:789"
	ctx := WithRID(nil, rawRID)
	log := slog.New(h).With("component", "tmdb")
	log.LogAttrs(ctx, slog.LevelError, "",
		slog.String("event", "search.fail"),
		slog.String("status", "fail"),
		slog.String("err", "boom"),
	)
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, `{"ts":`) {
		t.Fatalf("expected JSON line, got %s", line)
	}
	prefixes := []string{`"level":"ERROR"`, `"component":"tmdb"`, `"event":"search.fail"`, `"status":"fail"`}
	pos := -1
	for _, p := range prefixes {
		idx := strings.Index(line, p)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s missing or out of order in %s", p, line)
		}
		pos = idx
	}
	if !strings.Contains(line, `"rid":"`+CompactRID(rawRID)+`"`) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
}

func TestHandlerDurationNormalization(t *testing.T) {
	buf := &bytes.Buffer{}
	h, aw := newTestHandler(buf, formatKV)

	log := slog.New(h)
	log.LogAttrs(context.Background(), slog.LevelInfo, "",
		slog.String("event", "handled"),
		slog.Duration("duration", 1_500_000), // 1.5ms
	)
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "duration_ms=2") {
		t.Fatalf("expected rounded duration_ms, got %s", line)
	}
}

func TestCompactRID(t *testing.T) {
	if got := CompactRID("10:20:30"); got != "a.k.u" {
		t.Errorf("CompactRID = %q", got)
	}
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Errorf("malformed input altered: %q", got)
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "line\x00one\ttwo\x7f"
	if got := Sanitize(in); got != "lineone\ttwo" {
		t.Errorf("Sanitize = %q", got)
	}
	if got := SanitizeLimit("abcdef", 3); got != "abc" {
		t.Errorf("SanitizeLimit = %q", got)
	}
}
