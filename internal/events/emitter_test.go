package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// errorWriter is a writer that always returns an error.
type errorWriter struct{}

func (e *errorWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}

// errorMarshaler is a type that always fails to marshal to JSON.
type errorMarshaler struct{}

func (e errorMarshaler) MarshalJSON() ([]byte, error) {
	return nil, errors.New("marshal error")
}

func decodeLines(t *testing.T, out string) []Event {
	t.Helper()
	var evts []Event
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var evt Event
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", line, err)
		}
		evts = append(evts, evt)
	}
	return evts
}

func TestEmitAssignsTimestamp(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event Event
		want  time.Time
	}{
		{
			name:  "zero timestamp gets clock value",
			event: Event{Type: TypeState},
			want:  fixed,
		},
		{
			name:  "explicit timestamp is preserved",
			event: Event{Type: TypeState, Timestamp: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)},
			want:  time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			emitter := NewEmitter(buf)
			emitter.now = func() time.Time { return fixed }

			if err := emitter.Emit(tt.event); err != nil {
				t.Fatalf("Emit() error = %v", err)
			}

			evts := decodeLines(t, buf.String())
			if len(evts) != 1 {
				t.Fatalf("expected 1 event, got %d", len(evts))
			}
			if !evts[0].Timestamp.Equal(tt.want) {
				t.Errorf("timestamp = %v, want %v", evts[0].Timestamp, tt.want)
			}
		})
	}
}

func TestEmitOutputFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewEmitter(buf)

	err := emitter.Emit(Event{
		Type:    TypeNotification,
		Widget:  "image",
		Message: "Image appears authentic",
		Fields:  map[string]interface{}{"severity": "default", "count": 2},
	})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("output should end with newline")
	}

	evts := decodeLines(t, buf.String())
	if len(evts) != 1 {
		t.Fatalf("expected 1 line, got %d", len(evts))
	}
	evt := evts[0]
	if evt.Type != TypeNotification || evt.Widget != "image" || evt.Message != "Image appears authentic" {
		t.Errorf("unexpected event: %+v", evt)
	}
	if evt.Fields["count"] != float64(2) {
		t.Errorf("expected count=2, got %v", evt.Fields["count"])
	}
}

func TestEmitConcurrentWidgets(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewEmitter(buf)

	const widgets = 4
	const eventsPerWidget = 50

	var wg sync.WaitGroup
	wg.Add(widgets)
	for i := 0; i < widgets; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < eventsPerWidget; j++ {
				if err := emitter.Emit(Event{Type: TypeState, Fields: map[string]interface{}{"widget": id, "seq": j}}); err != nil {
					t.Errorf("Emit() error in goroutine %d: %v", id, err)
				}
			}
		}(i)
	}
	wg.Wait()

	evts := decodeLines(t, buf.String())
	if len(evts) != widgets*eventsPerWidget {
		t.Fatalf("expected %d events, got %d", widgets*eventsPerWidget, len(evts))
	}
}

func TestEmitErrorHandling(t *testing.T) {
	tests := []struct {
		name   string
		writer io.Writer
		event  Event
	}{
		{
			name:   "write error propagates",
			writer: &errorWriter{},
			event:  Event{Type: TypeState},
		},
		{
			name:   "marshal error propagates",
			writer: &bytes.Buffer{},
			event:  Event{Type: TypeState, Fields: map[string]interface{}{"bad": errorMarshaler{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewEmitter(tt.writer).Emit(tt.event); err == nil {
				t.Error("Emit() expected an error")
			}
		})
	}
}
