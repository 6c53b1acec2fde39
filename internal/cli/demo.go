package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/authguard/internal/detector"
	"github.com/example/authguard/internal/events"
	"github.com/example/authguard/internal/media"
	"github.com/example/authguard/internal/widget"
)

const (
	demoText      = "Scientists confirmed today that the new bridge will open next month, according to a statement from the city transport office."
	demoSourceURL = "https://news.example.com/bridge-opening"
)

// demoUploads are the synthetic files offered to each file widget.
var demoUploads = map[media.Category]media.Artifact{
	media.Image: media.FromUpload("sample.jpg", 2*humanize.MiByte+400*humanize.KiByte, media.Image),
	media.Video: media.FromUpload("sample.mp4", 40*humanize.MiByte, media.Video),
	media.Audio: media.FromUpload("sample.mp3", 6*humanize.MiByte, media.Audio),
}

func newDemoCmd(a *app) *cobra.Command {
	flags := &runtimeFlagSet{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run every configured widget concurrently on sample input",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.setup(cmd, flags)
			if err != nil {
				return err
			}

			out := a.newSessionOutput(cfg.Format)
			handles := media.NewHandles()
			reports := make([]detector.Report, len(cfg.Media))

			g, ctx := errgroup.WithContext(cmd.Context())
			for i, category := range cfg.Media {
				g.Go(func() error {
					r, err := a.runSession(ctx, cfg, out, category, handles, demoStart(category))
					if err != nil {
						return fmt.Errorf("%s: %w", category, err)
					}
					reports[i] = r
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			a.logger.Debug("demo finished", zap.Int("liveHandles", handles.Live()))

			trustworthy := 0
			for _, r := range reports {
				if r.Trustworthy() {
					trustworthy++
				}
				if err := a.publish(cfg, out, r); err != nil {
					return err
				}
			}

			flagged := len(reports) - trustworthy
			if out.emitter != nil {
				return out.emitter.Emit(events.Event{
					Type:    events.TypeSummary,
					Message: "Demo complete",
					Fields: map[string]interface{}{
						"analyses":    len(reports),
						"trustworthy": trustworthy,
						"flagged":     flagged,
					},
				})
			}
			_, err = fmt.Fprintf(out.stdout, "%d analyses complete: %d trustworthy, %d flagged\n", len(reports), trustworthy, flagged)
			return err
		},
	}

	bindRuntimeFlags(cmd, flags)

	return cmd
}

func demoStart(category media.Category) startFunc {
	if category == media.Text {
		return func(ctx context.Context, w *widget.Widget) error {
			return w.SubmitText(ctx, demoText, demoSourceURL)
		}
	}
	return func(ctx context.Context, w *widget.Widget) error {
		if err := w.Select(demoUploads[category]); err != nil {
			return err
		}
		return w.Analyze(ctx)
	}
}
