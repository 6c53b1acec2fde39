package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/authguard/internal/config"
)

// runtimeFlagSet tracks shared flags before they are converted into config overrides.
type runtimeFlagSet struct {
	imageDelay        time.Duration
	audioDelay        time.Duration
	textDelay         time.Duration
	videoTick         time.Duration
	videoSettle       time.Duration
	videoFrames       int
	seed              uint64
	enforceSizeLimits bool
	probeDurations    bool
	ffprobe           string
	outputDir         string
	format            string
	media             string
}

// bindOutputFlags registers the flags controlling where and how results are written.
func bindOutputFlags(cmd *cobra.Command, flags *runtimeFlagSet) {
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for saved report artifacts")
	cmd.Flags().StringVar(&flags.format, "format", "", "Output format: text or json")
}

// bindRuntimeFlags registers every analysis flag.
func bindRuntimeFlags(cmd *cobra.Command, flags *runtimeFlagSet) {
	bindOutputFlags(cmd, flags)
	cmd.Flags().DurationVar(&flags.imageDelay, "image-delay", 0, "Simulated image analysis delay")
	cmd.Flags().DurationVar(&flags.audioDelay, "audio-delay", 0, "Simulated audio analysis delay")
	cmd.Flags().DurationVar(&flags.textDelay, "text-delay", 0, "Simulated text analysis delay")
	cmd.Flags().DurationVar(&flags.videoTick, "video-tick", 0, "Interval between video progress updates")
	cmd.Flags().DurationVar(&flags.videoSettle, "video-settle", 0, "Pause after the last video frame")
	cmd.Flags().IntVar(&flags.videoFrames, "video-frames", 0, fmt.Sprintf("Simulated video frame count (1-%d)", config.MaxVideoFrames))
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "Random seed for reproducible reports (0 picks one)")
	cmd.Flags().BoolVar(&flags.enforceSizeLimits, "enforce-size-limits", true, "Reject files above the per-category size limit")
	cmd.Flags().BoolVar(&flags.probeDurations, "probe", true, "Measure audio and video durations with ffprobe when available")
	cmd.Flags().StringVar(&flags.ffprobe, "ffprobe", "", "Path to the ffprobe binary")
	cmd.Flags().StringVar(&flags.media, "media", "", "Comma-separated media categories (image,video,audio,text)")
}

func (f runtimeFlagSet) toOverrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{}
	changed := cmd.Flags().Changed

	if changed("image-delay") {
		ov.ImageDelay = durationPtr(f.imageDelay)
	}

	if changed("audio-delay") {
		ov.AudioDelay = durationPtr(f.audioDelay)
	}

	if changed("text-delay") {
		ov.TextDelay = durationPtr(f.textDelay)
	}

	if changed("video-tick") {
		ov.VideoTick = durationPtr(f.videoTick)
	}

	if changed("video-settle") {
		ov.VideoSettle = durationPtr(f.videoSettle)
	}

	if changed("video-frames") {
		ov.VideoFrames = f.videoFrames
		ov.VideoFramesSet = true
	}

	if changed("seed") {
		ov.Seed = f.seed
		ov.SeedSet = true
	}

	if changed("enforce-size-limits") {
		ov.EnforceSizeLimits = boolPtr(f.enforceSizeLimits)
	}

	if changed("probe") {
		ov.ProbeDurations = boolPtr(f.probeDurations)
	}

	if changed("ffprobe") {
		ov.FFProbe = f.ffprobe
	}

	if changed("output-dir") {
		ov.OutputDir = f.outputDir
	}

	if changed("format") {
		ov.Format = f.format
	}

	if changed("media") {
		ov.Media = config.ParseList(f.media)
	}

	return ov
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

func boolPtr(b bool) *bool {
	return &b
}
