// Package widget implements the select → analyze → report lifecycle shared by
// every detector screen.
//
// A Widget owns at most one artifact and at most one in-flight analysis.
// Every Select, Clear and Analyze bumps a generation counter; results and
// progress updates that arrive for an older generation are dropped, so a
// cleared or replaced artifact can never be overwritten by a stale report.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/example/authguard/internal/detector"
	"github.com/example/authguard/internal/media"
	"github.com/example/authguard/internal/report"
)

// ErrClosed is returned by operations on a closed widget.
var ErrClosed = errors.New("widget closed")

// Option configures a Widget.
type Option func(*Widget)

// WithRenderer sets the render callback.
func WithRenderer(r Renderer) Option {
	return func(w *Widget) { w.renderer = r }
}

// WithNotifier sets the notification callback.
func WithNotifier(n Notifier) Option {
	return func(w *Widget) { w.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Widget) { w.logger = l }
}

// WithHandles shares a display handle registry.
func WithHandles(h *media.Handles) Option {
	return func(w *Widget) { w.handles = h }
}

// WithSizeLimits toggles enforcement of the per-category upload limits.
func WithSizeLimits(enforce bool) Option {
	return func(w *Widget) { w.enforceLimits = enforce }
}

// Widget is one upload + analyze + report flow for a single media category.
type Widget struct {
	category      media.Category
	gen           detector.Generator
	handles       *media.Handles
	renderer      Renderer
	notifier      Notifier
	logger        *zap.Logger
	enforceLimits bool

	// deliverMu orders callbacks the same way as the state changes they describe.
	deliverMu sync.Mutex

	mu         sync.Mutex
	state      State
	artifact   *media.Artifact
	report     detector.Report
	progress   detector.Progress
	generation uint64
	cancel     context.CancelFunc
	closed     bool

	inflight sync.WaitGroup
}

// New builds a widget driven by gen. The widget accepts gen's media category.
func New(gen detector.Generator, opts ...Option) *Widget {
	w := &Widget{
		category:      gen.Media(),
		gen:           gen,
		renderer:      nopRenderer{},
		notifier:      nopNotifier{},
		enforceLimits: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.handles == nil {
		w.handles = media.NewHandles()
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	w.logger = w.logger.With(zap.String("media", string(w.category)), zap.String("generator", gen.Name()))
	return w
}

// Media returns the category this widget accepts.
func (w *Widget) Media() media.Category {
	return w.category
}

// Handles returns the registry issuing this widget's display handles.
func (w *Widget) Handles() *media.Handles {
	return w.handles
}

// Snapshot returns a copy of the current state.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Select places artifact in the upload slot, releasing any previous artifact
// and discarding its report or pending analysis. Rejected artifacts leave the
// widget unchanged and raise a notification.
func (w *Widget) Select(artifact media.Artifact) error {
	if err := artifact.Validate(w.category, w.enforceLimits); err != nil {
		w.logger.Info("artifact rejected", zap.String("name", artifact.Name), zap.Error(err))
		if errors.Is(err, media.ErrEmptyInput) {
			w.notify(report.EmptyInput())
		} else {
			w.notify(report.Rejected(err))
		}
		return err
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.invalidateLocked()
	w.releaseLocked()

	if w.category != media.Text {
		artifact.Handle = w.handles.Open()
	}
	w.artifact = &artifact
	w.state = Selected

	w.logger.Debug("artifact selected",
		zap.String("name", artifact.Name),
		zap.String("size", media.FormatSize(artifact.SizeBytes)),
		zap.Uint64("generation", w.generation))
	w.commitLocked(nil)
	return nil
}

// Clear empties the upload slot from any state. It always succeeds.
func (w *Widget) Clear() {
	w.mu.Lock()
	w.invalidateLocked()
	w.releaseLocked()
	w.state = Empty
	w.logger.Debug("widget cleared", zap.Uint64("generation", w.generation))
	w.commitLocked(nil)
}

// Analyze starts an asynchronous analysis of the selected artifact. It only
// acts in the Selected state; otherwise it returns ErrNotSelected and changes
// nothing. A text widget with no content raises the empty-input notification
// and returns media.ErrEmptyInput. ctx bounds the analysis.
func (w *Widget) Analyze(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.state != Selected {
		state := w.state
		w.mu.Unlock()
		if w.category == media.Text && state == Empty {
			w.notify(report.EmptyInput())
			return media.ErrEmptyInput
		}
		w.logger.Debug("analyze ignored", zap.Stringer("state", state))
		return fmt.Errorf("%w (state %s)", ErrNotSelected, state)
	}

	w.generation++
	generation := w.generation
	actx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.state = Analyzing
	w.progress = detector.Progress{}
	artifact := *w.artifact

	w.inflight.Add(1)
	go w.run(actx, generation, artifact)

	w.logger.Info("analysis started", zap.String("name", artifact.Name), zap.Uint64("generation", generation))
	w.commitLocked(nil)
	return nil
}

// SubmitText selects content as a text artifact and starts analysing it.
func (w *Widget) SubmitText(ctx context.Context, content, sourceURL string) error {
	if w.category != media.Text {
		return fmt.Errorf("%w: %s widget does not accept text", media.ErrInvalidMediaType, w.category)
	}
	artifact, err := media.FromText(content, sourceURL)
	if err != nil {
		w.notify(report.EmptyInput())
		return err
	}
	if err := w.Select(artifact); err != nil {
		return err
	}
	return w.Analyze(ctx)
}

// Wait blocks until no analysis goroutine is running or ctx is done.
func (w *Widget) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close clears the widget, cancels pending work and waits for it to exit.
func (w *Widget) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.invalidateLocked()
	w.releaseLocked()
	w.state = Empty
	w.commitLocked(nil)

	w.inflight.Wait()
}

func (w *Widget) run(ctx context.Context, generation uint64, artifact media.Artifact) {
	defer w.inflight.Done()

	r, err := w.gen.Generate(ctx, artifact, func(p detector.Progress) {
		w.applyProgress(generation, p)
	})
	w.finish(generation, r, err)
}

func (w *Widget) applyProgress(generation uint64, p detector.Progress) {
	w.mu.Lock()
	if w.generation != generation || w.state != Analyzing {
		w.mu.Unlock()
		return
	}
	w.progress = p
	w.commitLocked(nil)
}

func (w *Widget) finish(generation uint64, r detector.Report, err error) {
	w.mu.Lock()
	if w.generation != generation {
		w.mu.Unlock()
		w.logger.Debug("discarded stale analysis result", zap.Uint64("generation", generation))
		return
	}

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	if err == nil && r == nil {
		err = errors.New("generator returned no report")
	}
	if err == nil && r.Media() != w.category {
		err = fmt.Errorf("generator returned a %s report", r.Media())
	}
	if err != nil {
		w.logger.Warn("analysis did not complete", zap.Error(err))
		w.state = Selected
		w.progress = detector.Progress{}
		w.commitLocked(nil)
		return
	}

	w.report = detector.Clone(r)
	w.state = Reported
	n := report.NotificationFor(r)
	w.logger.Info("analysis complete",
		zap.Bool("trustworthy", r.Trustworthy()),
		zap.Float64("confidence", r.Score()))
	w.commitLocked(&n)
}

// invalidateLocked makes any in-flight analysis stale and cancels it.
func (w *Widget) invalidateLocked() {
	w.generation++
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

// releaseLocked drops the artifact, its display handle and any report.
func (w *Widget) releaseLocked() {
	if w.artifact != nil {
		w.handles.Revoke(w.artifact.Handle)
		w.artifact = nil
	}
	w.report = nil
	w.progress = detector.Progress{}
}

func (w *Widget) snapshotLocked() Snapshot {
	s := Snapshot{Media: w.category, State: w.state, Progress: w.progress}
	if w.artifact != nil {
		a := *w.artifact
		s.Artifact = &a
	}
	if w.report != nil {
		s.Report = detector.Clone(w.report)
	}
	return s
}

// commitLocked publishes the current state. It must be called with w.mu held
// and returns with it released.
func (w *Widget) commitLocked(n *report.Notification) {
	snap := w.snapshotLocked()
	w.deliverMu.Lock()
	w.mu.Unlock()
	defer w.deliverMu.Unlock()

	w.renderer.Render(snap)
	if n != nil {
		w.notifier.Notify(*n)
	}
}

func (w *Widget) notify(n report.Notification) {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()
	w.notifier.Notify(n)
}
