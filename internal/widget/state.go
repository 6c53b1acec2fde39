package widget

import (
	"errors"

	"github.com/example/authguard/internal/detector"
	"github.com/example/authguard/internal/media"
	"github.com/example/authguard/internal/report"
)

// ErrNotSelected is returned by Analyze when the widget does not hold a
// freshly selected artifact. The widget state is left untouched.
var ErrNotSelected = errors.New("analyze requires a selected artifact")

// State is a widget lifecycle state.
type State int

const (
	Empty State = iota
	Selected
	Analyzing
	Reported
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Selected:
		return "selected"
	case Analyzing:
		return "analyzing"
	case Reported:
		return "reported"
	default:
		return "unknown"
	}
}

// MarshalText lets states appear by name in JSON events.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a consistent copy of a widget's observable state.
type Snapshot struct {
	Media    media.Category    `json:"media"`
	State    State             `json:"state"`
	Artifact *media.Artifact   `json:"artifact,omitempty"`
	Progress detector.Progress `json:"progress"`
	Report   detector.Report   `json:"-"`
}

// Renderer receives a snapshot after every state change.
// Implementations must not call back into the widget.
type Renderer interface {
	Render(Snapshot)
}

// Notifier receives transient user-facing messages.
// Implementations must not call back into the widget.
type Notifier interface {
	Notify(report.Notification)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(Snapshot)

func (f RenderFunc) Render(s Snapshot) { f(s) }

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(report.Notification)

func (f NotifyFunc) Notify(n report.Notification) { f(n) }

type nopRenderer struct{}

func (nopRenderer) Render(Snapshot) {}

type nopNotifier struct{}

func (nopNotifier) Notify(report.Notification) {}
