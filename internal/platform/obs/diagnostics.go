package obs

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// LogSink writes solver and planner events as key=value lines through the
// standard logger. Fields are sorted so lines are stable between runs.
type LogSink struct {
	// Prefix is prepended to every field list, e.g. "branch=esenyurt".
	Prefix string
}

func (s LogSink) Record(event string, fields map[string]any) {
	var b strings.Builder
	b.WriteString("event=")
	b.WriteString(event)
	if s.Prefix != "" {
		b.WriteByte(' ')
		b.WriteString(s.Prefix)
	}
	b.WriteString(formatFields(fields))
	log.Print(b.String())
}

func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}

// ZapSink forwards events to a structured zap logger.
type ZapSink struct {
	Logger *zap.Logger
}

func NewZapSink(l *zap.Logger) *ZapSink {
	return &ZapSink{Logger: l}
}

func (s *ZapSink) Record(event string, fields map[string]any) {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	s.Logger.Info(event, zf...)
}

// With returns a sink that adds the given fields to every event.
func (s *ZapSink) With(fields map[string]any) *ZapSink {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	return &ZapSink{Logger: s.Logger.With(zf...)}
}

type NopSink struct{}

func (NopSink) Record(string, map[string]any) {}

// Event is one captured diagnostics record.
type Event struct {
	Name   string
	Fields map[string]any
}

// Recorder keeps every event in memory. It backs the API's debug output
// and tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Record(event string, fields map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Name: event, Fields: fields})
}

// Events returns a snapshot of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
