package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/example/authguard/internal/detector"
	"github.com/example/authguard/internal/media"
	"github.com/example/authguard/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder captures every callback the widget makes.
type recorder struct {
	mu            sync.Mutex
	snapshots     []Snapshot
	notifications []report.Notification
}

func (r *recorder) Render(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *recorder) Notify(n report.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		out = append(out, s.State)
	}
	return out
}

func (r *recorder) notes() []report.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]report.Notification(nil), r.notifications...)
}

func (r *recorder) mark() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

// gateGenerator blocks until released. When stubborn it ignores cancellation,
// which is the worst case for stale results.
type gateGenerator struct {
	category media.Category
	stubborn bool
	started  chan struct{}
	release  chan struct{}
	report   detector.Report
}

func newGate(category media.Category, stubborn bool, r detector.Report) *gateGenerator {
	return &gateGenerator{
		category: category,
		stubborn: stubborn,
		started:  make(chan struct{}, 8),
		release:  make(chan struct{}),
		report:   r,
	}
}

func (g *gateGenerator) Name() string          { return "gate" }
func (g *gateGenerator) Media() media.Category { return g.category }

func (g *gateGenerator) Generate(ctx context.Context, _ media.Artifact, _ detector.ProgressFunc) (detector.Report, error) {
	g.started <- struct{}{}
	if g.stubborn {
		<-g.release
		return g.report, nil
	}
	select {
	case <-g.release:
		return g.report, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newTestWidget(t *testing.T, gen detector.Generator) (*Widget, *recorder) {
	t.Helper()
	rec := &recorder{}
	w := New(gen, WithRenderer(rec), WithNotifier(rec), WithLogger(zaptest.NewLogger(t)))
	t.Cleanup(w.Close)
	return w, rec
}

func waitIdle(t *testing.T, w *Widget) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Wait(ctx))
}

func fastOptions(seed uint64) detector.Options {
	return detector.Options{
		Timing: detector.Timing{
			Image:       time.Millisecond,
			Audio:       time.Millisecond,
			Text:        time.Millisecond,
			VideoTick:   time.Millisecond,
			VideoSettle: time.Millisecond,
			VideoFrames: 300,
		},
		Source: detector.NewSource(seed),
	}
}

var imageReport = detector.ImageReport{Authentic: true, Confidence: 88, Details: detector.ImageDetails{Manipulations: []string{}}}

func TestSelectThenClearReleasesHandle(t *testing.T) {
	for _, c := range []media.Category{media.Image, media.Video, media.Audio} {
		t.Run(string(c), func(t *testing.T) {
			gen, err := detector.DefaultRegistry.Generator(c, fastOptions(1))
			require.NoError(t, err)
			w, _ := newTestWidget(t, gen)

			name := map[media.Category]string{media.Image: "a.png", media.Video: "a.mp4", media.Audio: "a.mp3"}[c]
			require.NoError(t, w.Select(media.FromUpload(name, 1024, c)))

			snap := w.Snapshot()
			require.Equal(t, Selected, snap.State)
			require.NotNil(t, snap.Artifact)
			assert.False(t, snap.Artifact.Handle.IsZero())
			assert.Equal(t, 1, w.Handles().Live())

			w.Clear()
			snap = w.Snapshot()
			assert.Equal(t, Empty, snap.State)
			assert.Nil(t, snap.Artifact)
			assert.Nil(t, snap.Report)
			assert.Zero(t, w.Handles().Live())
		})
	}
}

func TestSelectReplacesPreviousArtifact(t *testing.T) {
	w, rec := newTestWidget(t, newGate(media.Image, false, imageReport))

	require.NoError(t, w.Select(media.FromUpload("first.png", 10, media.Image)))
	first := w.Snapshot().Artifact.Handle
	require.NoError(t, w.Select(media.FromUpload("second.png", 10, media.Image)))

	snap := w.Snapshot()
	assert.Equal(t, "second.png", snap.Artifact.Name)
	assert.NotEqual(t, first.ID, snap.Artifact.Handle.ID)
	assert.Equal(t, 1, w.Handles().Live())
	assert.Empty(t, rec.notes())
}

func TestAnalyzeIsNoOpUnlessSelected(t *testing.T) {
	gate := newGate(media.Image, false, imageReport)
	w, _ := newTestWidget(t, gate)

	err := w.Analyze(context.Background())
	require.ErrorIs(t, err, ErrNotSelected)
	assert.Equal(t, Empty, w.Snapshot().State)

	require.NoError(t, w.Select(media.FromUpload("a.png", 10, media.Image)))
	require.NoError(t, w.Analyze(context.Background()))
	<-gate.started

	require.ErrorIs(t, w.Analyze(context.Background()), ErrNotSelected)
	assert.Equal(t, Analyzing, w.Snapshot().State)

	close(gate.release)
	waitIdle(t, w)
	require.Equal(t, Reported, w.Snapshot().State)

	require.ErrorIs(t, w.Analyze(context.Background()), ErrNotSelected)
	assert.Equal(t, Reported, w.Snapshot().State)
	assert.Len(t, gate.started, 0, "no second analysis may start")
}

func TestClearDuringAnalysisDiscardsResult(t *testing.T) {
	gate := newGate(media.Image, true, imageReport)
	w, rec := newTestWidget(t, gate)

	require.NoError(t, w.Select(media.FromUpload("a.png", 10, media.Image)))
	require.NoError(t, w.Analyze(context.Background()))
	<-gate.started

	w.Clear()
	afterClear := rec.mark()
	close(gate.release)
	waitIdle(t, w)

	snap := w.Snapshot()
	assert.Equal(t, Empty, snap.State)
	assert.Nil(t, snap.Report)
	assert.Zero(t, w.Handles().Live())
	assert.Empty(t, rec.notes(), "a discarded analysis must not notify")
	assert.NotContains(t, rec.states()[afterClear:], Reported)
	assert.NotContains(t, rec.states(), Reported)
}

func TestSelectDuringAnalysisDiscardsResult(t *testing.T) {
	gate := newGate(media.Image, true, imageReport)
	w, rec := newTestWidget(t, gate)

	require.NoError(t, w.Select(media.FromUpload("old.png", 10, media.Image)))
	require.NoError(t, w.Analyze(context.Background()))
	<-gate.started

	require.NoError(t, w.Select(media.FromUpload("new.png", 10, media.Image)))
	close(gate.release)
	waitIdle(t, w)

	snap := w.Snapshot()
	assert.Equal(t, Selected, snap.State)
	assert.Equal(t, "new.png", snap.Artifact.Name)
	assert.Nil(t, snap.Report)
	assert.Equal(t, 1, w.Handles().Live())
	assert.Empty(t, rec.notes())
}

func TestCallerCancellationReturnsToSelected(t *testing.T) {
	gate := newGate(media.Image, false, imageReport)
	w, rec := newTestWidget(t, gate)

	require.NoError(t, w.Select(media.FromUpload("a.png", 10, media.Image)))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Analyze(ctx))
	<-gate.started
	cancel()
	waitIdle(t, w)

	snap := w.Snapshot()
	assert.Equal(t, Selected, snap.State)
	assert.NotNil(t, snap.Artifact)
	assert.Empty(t, rec.notes())

	close(gate.release)
	require.NoError(t, w.Analyze(context.Background()))
	waitIdle(t, w)
	assert.Equal(t, Reported, w.Snapshot().State)
}

func TestReportNotifiesOnceAndReselectDiscards(t *testing.T) {
	gen := detector.NewImageGenerator(fastOptions(3))
	w, rec := newTestWidget(t, gen)

	require.NoError(t, w.Select(media.FromUpload("a.png", 10, media.Image)))
	require.NoError(t, w.Analyze(context.Background()))
	waitIdle(t, w)

	snap := w.Snapshot()
	require.Equal(t, Reported, snap.State)
	require.NotNil(t, snap.Report)
	_ = w.Snapshot()

	notes := rec.notes()
	require.Len(t, notes, 1)
	assert.Equal(t, report.NotificationFor(snap.Report), notes[0])
	assert.Equal(t, []State{Selected, Analyzing, Reported}, rec.states())

	require.NoError(t, w.Select(media.FromUpload("b.png", 10, media.Image)))
	snap = w.Snapshot()
	assert.Equal(t, Selected, snap.State)
	assert.Nil(t, snap.Report)
	assert.Len(t, rec.notes(), 1)
}

func TestSnapshotReportIsACopy(t *testing.T) {
	gate := newGate(media.Image, false, detector.ImageReport{Details: detector.ImageDetails{Manipulations: []string{"Face swap detected"}}})
	close(gate.release)
	w, _ := newTestWidget(t, gate)

	require.NoError(t, w.Select(media.FromUpload("a.png", 10, media.Image)))
	require.NoError(t, w.Analyze(context.Background()))
	waitIdle(t, w)

	img := w.Snapshot().Report.(detector.ImageReport)
	img.Details.Manipulations[0] = "tampered"
	assert.Equal(t, "Face swap detected", w.Snapshot().Report.(detector.ImageReport).Details.Manipulations[0])
}

func TestVideoScenario(t *testing.T) {
	w, rec := newTestWidget(t, detector.NewVideoGenerator(fastOptions(7)))

	require.NoError(t, w.Select(media.FromUpload("video.mp4", 40<<20, media.Video)))
	require.Equal(t, Selected, w.Snapshot().State)

	require.NoError(t, w.Analyze(context.Background()))
	assert.Contains(t, []State{Analyzing, Reported}, w.Snapshot().State)
	waitIdle(t, w)

	snap := w.Snapshot()
	require.Equal(t, Reported, snap.State)
	video, ok := snap.Report.(detector.VideoReport)
	require.True(t, ok)
	assert.Equal(t, 300, video.Details.FramesAnalyzed)
	assert.GreaterOrEqual(t, video.Confidence, 72.0)
	assert.LessOrEqual(t, video.Confidence, 97.0)
	assert.Equal(t, 100.0, snap.Progress.Percent)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	last := 0
	for _, s := range rec.snapshots {
		if s.State != Analyzing {
			continue
		}
		assert.GreaterOrEqual(t, s.Progress.Frames, last)
		last = s.Progress.Frames
	}
	assert.Equal(t, 300, last)
	require.Len(t, rec.notifications, 1)
}

func TestTextEmptyInput(t *testing.T) {
	w, rec := newTestWidget(t, detector.NewTextGenerator(fastOptions(5)))

	err := w.SubmitText(context.Background(), "   ", "")
	require.ErrorIs(t, err, media.ErrEmptyInput)
	assert.Equal(t, Empty, w.Snapshot().State)

	err = w.Analyze(context.Background())
	require.ErrorIs(t, err, media.ErrEmptyInput)

	assert.Empty(t, rec.states(), "no transition may occur")
	notes := rec.notes()
	require.Len(t, notes, 2)
	for _, n := range notes {
		assert.Equal(t, report.EmptyInput(), n)
	}
}

func TestTextSubmitProducesReport(t *testing.T) {
	w, rec := newTestWidget(t, detector.NewTextGenerator(fastOptions(5)))

	require.NoError(t, w.SubmitText(context.Background(), "Officials confirm budget passed", "https://example.test/budget"))
	waitIdle(t, w)

	snap := w.Snapshot()
	require.Equal(t, Reported, snap.State)
	text := snap.Report.(detector.TextReport)
	assert.Equal(t, "https://example.test/budget", text.Details.SourceURL)
	assert.True(t, snap.Artifact.Handle.IsZero())
	assert.Len(t, rec.notes(), 1)
}

func TestSubmitTextOnMediaWidget(t *testing.T) {
	w, _ := newTestWidget(t, detector.NewImageGenerator(fastOptions(5)))
	err := w.SubmitText(context.Background(), "hello", "")
	require.ErrorIs(t, err, media.ErrInvalidMediaType)
}

func TestInvalidMediaTypeIsSurfaced(t *testing.T) {
	w, rec := newTestWidget(t, detector.NewImageGenerator(fastOptions(5)))

	err := w.Select(media.FromUpload("clip.mp4", 10, media.Video))
	require.ErrorIs(t, err, media.ErrInvalidMediaType)

	err = w.Select(media.FromUpload("clip.tiff", 10, media.Image))
	require.ErrorIs(t, err, media.ErrInvalidMediaType)

	assert.Equal(t, Empty, w.Snapshot().State)
	assert.Zero(t, w.Handles().Live())
	notes := rec.notes()
	require.Len(t, notes, 2)
	assert.Equal(t, report.SeverityDestructive, notes[0].Severity)
}

func TestSizeLimitEnforcement(t *testing.T) {
	big := media.FromUpload("huge.png", 20<<20, media.Image)

	enforced := New(detector.NewImageGenerator(fastOptions(1)))
	defer enforced.Close()
	require.True(t, errors.Is(enforced.Select(big), media.ErrTooLarge))

	advisory := New(detector.NewImageGenerator(fastOptions(1)), WithSizeLimits(false))
	defer advisory.Close()
	require.NoError(t, advisory.Select(big))
}

func TestSharedHandlesAcrossWidgets(t *testing.T) {
	handles := media.NewHandles()
	a := New(detector.NewImageGenerator(fastOptions(1)), WithHandles(handles))
	b := New(detector.NewAudioGenerator(fastOptions(1)), WithHandles(handles))

	require.NoError(t, a.Select(media.FromUpload("a.gif", 1, media.Image)))
	require.NoError(t, b.Select(media.FromUpload("b.ogg", 1, media.Audio)))
	assert.Equal(t, 2, handles.Live())

	a.Close()
	b.Close()
	assert.Zero(t, handles.Live())
}

func TestCloseCancelsPendingAnalysis(t *testing.T) {
	gate := newGate(media.Audio, false, nil)
	w := New(gate)

	require.NoError(t, w.Select(media.FromUpload("a.wav", 10, media.Audio)))
	require.NoError(t, w.Analyze(context.Background()))
	<-gate.started

	done := make(chan struct{})
	go func() {
		w.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	assert.Equal(t, Empty, w.Snapshot().State)
	require.ErrorIs(t, w.Select(media.FromUpload("b.wav", 10, media.Audio)), ErrClosed)
	require.ErrorIs(t, w.Analyze(context.Background()), ErrClosed)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "analyzing", Analyzing.String())
	text, err := Reported.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "reported", string(text))
	assert.Equal(t, "unknown", State(42).String())
}
