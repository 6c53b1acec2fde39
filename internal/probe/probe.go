package probe

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/example/authguard/internal/media"
)

// DefaultBinary is the media prober looked up on PATH.
const DefaultBinary = "ffprobe"

// Prober measures media metadata without decoding content.
type Prober interface {
	EnsureBinary() error
	Version(ctx context.Context) (string, error)
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// CommandProber shells out to an ffprobe-compatible binary.
type CommandProber struct {
	Binary string
}

// NewProber returns a command prober for binary, defaulting to ffprobe.
func NewProber(binary string) Prober {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &CommandProber{Binary: binary}
}

// EnsureBinary verifies that the prober binary is discoverable on PATH.
func (p *CommandProber) EnsureBinary() error {
	if _, err := exec.LookPath(p.Binary); err != nil {
		return fmt.Errorf("%s binary not found: %w", p.Binary, err)
	}
	return nil
}

// Version returns the first line of the binary's version banner.
func (p *CommandProber) Version(ctx context.Context) (string, error) {
	// Binary comes from configuration and the argument is constant.
	cmd := exec.CommandContext(ctx, p.Binary, "-version") // #nosec G204
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if line == "" {
		return "unknown", nil
	}
	return line, nil
}

// Duration reads the container duration of the file at path.
func (p *CommandProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	// Binary comes from configuration and path is passed as a single argument.
	cmd := exec.CommandContext(ctx, p.Binary, args...) // #nosec G204
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	return parseSeconds(string(out))
}

func parseSeconds(raw string) (time.Duration, error) {
	value := strings.TrimSpace(raw)
	if line, _, ok := strings.Cut(value, "\n"); ok {
		value = strings.TrimSpace(line)
	}
	if value == "" || value == "N/A" {
		return 0, fmt.Errorf("duration unavailable")
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", value, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative duration %q", value)
	}
	return time.Duration(math.Round(seconds * float64(time.Second))), nil
}

// Annotate fills in the measured duration of timed media (audio and video)
// backed by a file. Other artifacts are returned unchanged.
func Annotate(ctx context.Context, p Prober, a media.Artifact) (media.Artifact, error) {
	if a.Path == "" || (a.Category != media.Audio && a.Category != media.Video) {
		return a, nil
	}
	d, err := p.Duration(ctx, a.Path)
	if err != nil {
		return a, err
	}
	a.Duration = d
	return a, nil
}
