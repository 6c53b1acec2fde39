package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/example/authguard/internal/config"
	"github.com/example/authguard/internal/detector"
	"github.com/example/authguard/internal/events"
	"github.com/example/authguard/internal/media"
	"github.com/example/authguard/internal/report"
	"github.com/example/authguard/internal/widget"
)

var (
	noticeStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00897B"))
	destructiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D32F2F"))
)

// startFunc hands the widget its input and kicks off the analysis.
type startFunc func(ctx context.Context, w *widget.Widget) error

// sessionOutput decides where a widget's renders and notifications go.
type sessionOutput struct {
	stdout  io.Writer
	stderr  io.Writer
	format  string
	emitter *events.Emitter
}

func (a *app) newSessionOutput(format string) sessionOutput {
	out := sessionOutput{stdout: a.stdout, stderr: a.stderr, format: format}
	if format == "json" {
		out.emitter = events.NewEmitter(out.stdout)
	}
	return out
}

func (o sessionOutput) widgetOptions(category media.Category, logger *zap.Logger) []widget.Option {
	if o.emitter != nil {
		sink := events.NewSink(o.emitter, string(category), logger)
		return []widget.Option{widget.WithRenderer(sink), widget.WithNotifier(sink)}
	}
	return []widget.Option{
		widget.WithRenderer(&progressPrinter{w: o.stderr}),
		widget.WithNotifier(widget.NotifyFunc(func(n report.Notification) {
			printNotification(o.stdout, n)
		})),
	}
}

// runSession drives one widget from start to a finished report.
func (a *app) runSession(ctx context.Context, cfg config.RuntimeConfig, out sessionOutput, category media.Category, handles *media.Handles, start startFunc) (detector.Report, error) {
	gen, err := detector.DefaultRegistry.Generator(category, a.generatorOptions(cfg))
	if err != nil {
		return nil, err
	}

	opts := append(out.widgetOptions(category, a.logger),
		widget.WithLogger(a.logger.With(zap.String("widget", string(category)))),
		widget.WithSizeLimits(cfg.EnforceSizeLimits),
	)
	if handles != nil {
		opts = append(opts, widget.WithHandles(handles))
	}

	w := widget.New(gen, opts...)
	defer w.Close()

	if err := start(ctx, w); err != nil {
		return nil, err
	}
	if err := w.Wait(ctx); err != nil {
		return nil, err
	}

	snap := w.Snapshot()
	if snap.State != widget.Reported || snap.Report == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s analysis did not complete (state %s)", category, snap.State)
	}
	return snap.Report, nil
}

// publish renders r in text mode and stores it when an output directory is configured.
func (a *app) publish(cfg config.RuntimeConfig, out sessionOutput, r detector.Report) error {
	if out.emitter == nil {
		view, err := report.Build(r)
		if err != nil {
			return err
		}
		if err := report.Render(out.stdout, view); err != nil {
			return err
		}
	}

	if cfg.OutputDir == "" {
		return nil
	}

	path, err := writeReportArtifact(cfg.OutputDir, r, time.Now())
	if err != nil {
		return err
	}
	a.logger.Info("report saved", zap.String("path", path), zap.String("media", string(r.Media())))
	if out.emitter != nil {
		return out.emitter.Emit(events.Event{
			Type:   events.TypeArtifact,
			Widget: string(r.Media()),
			Fields: map[string]interface{}{"path": path},
		})
	}
	_, err = fmt.Fprintf(out.stdout, "Report written to %s\n", path)
	return err
}

func printNotification(w io.Writer, n report.Notification) {
	style := noticeStyle
	if n.Severity == report.SeverityDestructive {
		style = destructiveStyle
	}
	fmt.Fprintf(w, "%s %s\n", style.Render("● "+n.Title), n.Description)
}

// progressPrinter reports analysis progress on stderr in text mode.
// Callbacks are serialized by the widget.
type progressPrinter struct {
	w       io.Writer
	quarter int
}

func (p *progressPrinter) Render(snap widget.Snapshot) {
	if snap.State != widget.Analyzing {
		return
	}
	if snap.Progress.TotalFrames == 0 {
		p.quarter = 0
		name := ""
		if snap.Artifact != nil {
			name = snap.Artifact.Name
		}
		if snap.Media == media.Text {
			name = "text"
		}
		fmt.Fprintf(p.w, "Analyzing %s...\n", name)
		return
	}
	q := int(snap.Progress.Percent) / 25
	if q <= p.quarter {
		return
	}
	p.quarter = q
	fmt.Fprintf(p.w, "  frames %d/%d (%.0f%%)\n", snap.Progress.Frames, snap.Progress.TotalFrames, snap.Progress.Percent)
}
