package report

import (
	"github.com/example/authguard/internal/detector"
	"github.com/example/authguard/internal/media"
)

// Severity mirrors the toast variants of the front-end.
type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Notification is a transient user-facing message.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

var completionTitles = map[media.Category][2]string{
	media.Image: {"Image appears authentic", "Potential manipulation detected"},
	media.Video: {"Video appears authentic", "Deepfake detected"},
	media.Audio: {"Audio appears authentic", "Synthetic audio detected"},
	media.Text:  {"Content appears credible", "Potential misinformation detected"},
}

// NotificationFor builds the one-shot message announcing a finished analysis.
func NotificationFor(r detector.Report) Notification {
	titles := completionTitles[r.Media()]
	n := Notification{
		Title:       titles[0],
		Description: "Analysis complete with " + confidenceText(r.Score()) + " confidence",
		Severity:    SeverityDefault,
	}
	if !r.Trustworthy() {
		n.Title = titles[1]
		n.Severity = SeverityDestructive
	}
	return n
}

// EmptyInput is shown when text analysis is requested without content.
func EmptyInput() Notification {
	return Notification{
		Title:       "Error",
		Description: "Please enter some text to analyze",
		Severity:    SeverityDestructive,
	}
}

// Rejected is shown when a selected artifact cannot be accepted.
func Rejected(err error) Notification {
	return Notification{
		Title:       "File rejected",
		Description: err.Error(),
		Severity:    SeverityDestructive,
	}
}
