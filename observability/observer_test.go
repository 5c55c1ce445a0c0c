package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tailored-agentic-units/draftstate/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  slog.Level
	}{
		{name: "verbose maps to Debug", level: observability.LevelVerbose, want: slog.LevelDebug},
		{name: "info maps to Info", level: observability.LevelInfo, want: slog.LevelInfo},
		{name: "warning maps to Warn", level: observability.LevelWarning, want: slog.LevelWarn},
		{name: "error maps to Error", level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestMultiObserver_FansOutAndSkipsNil(t *testing.T) {
	r1 := &observability.Recorder{}
	r2 := &observability.Recorder{}
	multi := observability.NewMultiObserver(nil, r1, nil, r2)

	multi.OnEvent(context.Background(), observability.Event{
		Type:      "test.event",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "test",
	})

	if got := len(r1.Events()); got != 1 {
		t.Errorf("recorder 1 received %d events, want 1", got)
	}
	if got := len(r2.Events()); got != 1 {
		t.Errorf("recorder 2 received %d events, want 1", got)
	}
}

func TestLevelFilter(t *testing.T) {
	rec := &observability.Recorder{}
	filter := observability.LevelFilter{Min: observability.LevelWarning, Next: rec}

	filter.OnEvent(context.Background(), observability.Event{Type: "low", Level: observability.LevelInfo})
	filter.OnEvent(context.Background(), observability.Event{Type: "high", Level: observability.LevelError})

	events := rec.Events()
	if len(events) != 1 || events[0].Type != "high" {
		t.Errorf("filtered events = %v, want only \"high\"", events)
	}

	// nil Next must not panic
	observability.LevelFilter{}.OnEvent(context.Background(), observability.Event{Level: observability.LevelError})
}

func TestRecorder(t *testing.T) {
	rec := &observability.Recorder{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.OnEvent(context.Background(), observability.Event{Type: "a"})
		}()
	}
	wg.Wait()
	rec.OnEvent(context.Background(), observability.Event{Type: "b"})

	if got := len(rec.Events()); got != 51 {
		t.Errorf("Events() len = %d, want 51", got)
	}
	if got := len(rec.OfType("b")); got != 1 {
		t.Errorf("OfType(b) len = %d, want 1", got)
	}

	rec.Reset()
	if got := len(rec.Events()); got != 0 {
		t.Errorf("after Reset Events() len = %d, want 0", got)
	}
}

func TestSlogObserver_LevelMapping(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.Level
		minLevel  slog.Level
		expectLog bool
	}{
		{name: "verbose at debug handler", level: observability.LevelVerbose, minLevel: slog.LevelDebug, expectLog: true},
		{name: "verbose at info handler", level: observability.LevelVerbose, minLevel: slog.LevelInfo, expectLog: false},
		{name: "info at warn handler", level: observability.LevelInfo, minLevel: slog.LevelWarn, expectLog: false},
		{name: "error at error handler", level: observability.LevelError, minLevel: slog.LevelError, expectLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
				Level: tt.minLevel,
			}))

			obs := observability.NewSlogObserver(logger)
			obs.OnEvent(context.Background(), observability.Event{
				Type:      "test.event",
				Level:     tt.level,
				Timestamp: time.Now(),
				Source:    "test",
			})

			hasOutput := buf.Len() > 0
			if hasOutput != tt.expectLog {
				t.Errorf("log output = %v, want %v (buf: %q)", hasOutput, tt.expectLog, buf.String())
			}
		})
	}
}

func TestSlogObserver_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	obs := observability.NewSlogObserver(logger)
	obs.OnEvent(context.Background(), observability.Event{
		Type:      "store.operation.error",
		Level:     observability.LevelError,
		Timestamp: time.Now(),
		Source:    "store.counter",
		Data: map[string]any{
			"operation": "fail",
			"error":     "boom",
		},
	})

	output := buf.String()
	for _, want := range []string{"store.operation.error", "source=store.counter", "operation=fail", "error=boom", "level=ERROR"} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q: %s", want, output)
		}
	}
	if strings.Index(output, "error=boom") > strings.Index(output, "operation=fail") {
		t.Errorf("expected data attributes in sorted order: %s", output)
	}
}

func TestRegistry_GetObserver(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "noop exists", key: "noop", wantErr: false},
		{name: "slog exists", key: "slog", wantErr: false},
		{name: "unknown fails", key: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := observability.GetObserver(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetObserver(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, observability.ErrUnknownObserver) {
				t.Errorf("GetObserver(%q) error = %v, want ErrUnknownObserver", tt.key, err)
			}
			if !tt.wantErr && obs == nil {
				t.Errorf("GetObserver(%q) returned nil observer", tt.key)
			}
		})
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	rec := &observability.Recorder{}
	observability.RegisterObserver("test-recorder", rec)

	obs, err := observability.GetObserver("test-recorder")
	if err != nil {
		t.Fatalf("GetObserver failed: %v", err)
	}
	obs.OnEvent(context.Background(), observability.Event{Type: "test.event"})

	if got := len(rec.Events()); got != 1 {
		t.Errorf("received %d events, want 1", got)
	}
	if !slices.Contains(observability.Names(), "test-recorder") {
		t.Errorf("Names() = %v, want it to contain test-recorder", observability.Names())
	}
}
