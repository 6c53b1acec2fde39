package events

import (
	"go.uber.org/zap"

	"github.com/example/authguard/internal/detector"
	"github.com/example/authguard/internal/media"
	"github.com/example/authguard/internal/report"
	"github.com/example/authguard/internal/widget"
)

// Sink streams a widget's renders and notifications as NDJSON events.
// It implements widget.Renderer and widget.Notifier.
type Sink struct {
	emitter *Emitter
	widget  string
	logger  *zap.Logger
	// Progress controls whether intermediate analysis progress is emitted.
	Progress bool
}

// NewSink returns a sink tagging every event with name.
func NewSink(e *Emitter, name string, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{emitter: e, widget: name, logger: logger, Progress: true}
}

// Render implements widget.Renderer.
func (s *Sink) Render(snap widget.Snapshot) {
	if snap.State == widget.Analyzing && snap.Progress.TotalFrames > 0 && !s.Progress {
		return
	}

	fields := map[string]interface{}{"state": snap.State.String()}
	if a := snap.Artifact; a != nil {
		fields["artifact"] = artifactFields(*a)
	}
	if snap.State == widget.Analyzing && snap.Progress.TotalFrames > 0 {
		fields["frames"] = snap.Progress.Frames
		fields["totalFrames"] = snap.Progress.TotalFrames
		fields["percent"] = snap.Progress.Percent
	}

	s.emit(Event{Type: TypeState, Widget: s.widget, Fields: fields})

	if snap.State == widget.Reported && snap.Report != nil {
		s.emitReport(snap.Report)
	}
}

// Notify implements widget.Notifier.
func (s *Sink) Notify(n report.Notification) {
	s.emit(Event{
		Type:    TypeNotification,
		Widget:  s.widget,
		Message: n.Title,
		Fields: map[string]interface{}{
			"description": n.Description,
			"severity":    string(n.Severity),
		},
	})
}

func (s *Sink) emitReport(r detector.Report) {
	evt, err := ReportEvent(s.widget, r)
	if err != nil {
		s.logger.Warn("report view unavailable", zap.Error(err))
		return
	}
	s.emit(evt)
}

// ReportEvent builds the event carrying a finished report and its view.
func ReportEvent(name string, r detector.Report) (Event, error) {
	view, err := report.Build(r)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Type:    TypeReport,
		Widget:  name,
		Message: view.Headline,
		Fields: map[string]interface{}{
			"report": r,
			"view":   view,
		},
	}, nil
}

func (s *Sink) emit(evt Event) {
	if err := s.emitter.Emit(evt); err != nil {
		s.logger.Warn("event emission failed", zap.String("type", evt.Type), zap.Error(err))
	}
}

func artifactFields(a media.Artifact) map[string]interface{} {
	fields := map[string]interface{}{
		"name": a.Name,
		"size": media.FormatSize(a.SizeBytes),
	}
	if !a.Handle.IsZero() {
		fields["handle"] = a.Handle.URL
	}
	if a.Duration > 0 {
		fields["duration"] = a.Duration.Seconds()
	}
	return fields
}
