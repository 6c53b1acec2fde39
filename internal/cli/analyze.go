package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/authguard/internal/config"
	"github.com/example/authguard/internal/media"
	"github.com/example/authguard/internal/probe"
	"github.com/example/authguard/internal/widget"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	flags := &runtimeFlagSet{}
	var as string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Check an image, video, or audio file for signs of manipulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.setup(cmd, flags)
			if err != nil {
				return err
			}

			artifact, err := media.FromFile(args[0])
			if err != nil {
				return err
			}

			category := artifact.Category
			if as != "" {
				if category, err = media.ParseCategory(as); err != nil {
					return err
				}
			}
			if category == media.Text {
				return fmt.Errorf("%w: use the text command for written content", media.ErrInvalidMediaType)
			}

			ctx := cmd.Context()
			artifact = a.annotate(ctx, cfg, artifact)

			out := a.newSessionOutput(cfg.Format)
			r, err := a.runSession(ctx, cfg, out, category, nil, func(ctx context.Context, w *widget.Widget) error {
				if err := w.Select(artifact); err != nil {
					return err
				}
				return w.Analyze(ctx)
			})
			if err != nil {
				return err
			}
			return a.publish(cfg, out, r)
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().StringVar(&as, "as", "", "Analyze with a specific widget (image, video, audio) instead of guessing from the extension")

	return cmd
}

// annotate measures timed media with ffprobe. Probe failures are logged and
// the artifact is returned unchanged, which leaves the duration simulated.
func (a *app) annotate(ctx context.Context, cfg config.RuntimeConfig, artifact media.Artifact) media.Artifact {
	if !cfg.ProbeDurations || (artifact.Category != media.Audio && artifact.Category != media.Video) {
		return artifact
	}

	prober := a.newProber(cfg.FFProbe)
	if err := prober.EnsureBinary(); err != nil {
		a.logger.Info("duration probe skipped", zap.Error(err))
		return artifact
	}

	annotated, err := probe.Annotate(ctx, prober, artifact)
	if err != nil {
		a.logger.Warn("duration probe failed", zap.String("path", artifact.Path), zap.Error(err))
		return artifact
	}
	a.logger.Debug("duration probed", zap.String("path", artifact.Path), zap.Duration("duration", annotated.Duration))
	return annotated
}
