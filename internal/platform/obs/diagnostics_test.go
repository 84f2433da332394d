package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestLogSinkSortsFields(t *testing.T) {
	buf := captureLog(t)

	LogSink{Prefix: "branch=esenyurt"}.Record("solve.done", map[string]any{
		"status": "OK",
		"routes": 3,
	})

	got := strings.TrimSpace(buf.String())
	want := "event=solve.done branch=esenyurt routes=3 status=OK"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestZapSinkForwardsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewZapSink(zap.New(core)).With(map[string]any{"branch": "haramidere"})

	sink.Record("solve.model", map[string]any{"locations": 12})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Message != "solve.model" {
		t.Fatalf("message: got %q", e.Message)
	}
	ctx := e.ContextMap()
	if ctx["branch"] != "haramidere" {
		t.Fatalf("branch field: got %v", ctx["branch"])
	}
	if ctx["locations"] != int64(12) {
		t.Fatalf("locations field: got %v (%T)", ctx["locations"], ctx["locations"])
	}
}

func TestRecorderSnapshot(t *testing.T) {
	var r Recorder
	r.Record("a", nil)
	snap := r.Events()
	r.Record("b", nil)

	if len(snap) != 1 || snap[0].Name != "a" {
		t.Fatalf("snapshot changed: %+v", snap)
	}
	if len(r.Events()) != 2 {
		t.Fatalf("expected 2 events")
	}
}

func TestTimeLogsRequestIDAndError(t *testing.T) {
	buf := captureLog(t)

	ctx := WithRequestID(context.Background(), "abc")
	err := errors.New("boom")
	Time(ctx, "GetMatrix")(&err)

	out := buf.String()
	if !strings.Contains(out, "req_id=abc op=GetMatrix") || !strings.Contains(out, "err=boom") {
		t.Fatalf("unexpected log line: %q", out)
	}
}

func TestTimeFallsBackToRunID(t *testing.T) {
	buf := captureLog(t)

	ctx := WithRunID(context.Background(), "run-1")
	Time(ctx, "PlanBranch")(nil)

	if !strings.Contains(buf.String(), "req_id=run-1 op=PlanBranch") {
		t.Fatalf("unexpected log line: %q", buf.String())
	}
}
