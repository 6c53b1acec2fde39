package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/example/authguard/internal/media"
)

// fakeProber is a test double for code that depends on Prober.
type fakeProber struct {
	duration time.Duration
	err      error
	paths    []string
}

func (f *fakeProber) EnsureBinary() error { return f.err }

func (f *fakeProber) Version(ctx context.Context) (string, error) { return "fake 1.0", f.err }

func (f *fakeProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	f.paths = append(f.paths, path)
	return f.duration, f.err
}

// writeScript installs an executable that prints output, standing in for ffprobe.
func writeScript(t *testing.T, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "fakeprobe")
	body := "#!/bin/sh\nprintf '%s\\n' '" + output + "'\n"
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestNewProberDefaultsBinary(t *testing.T) {
	p, ok := NewProber("").(*CommandProber)
	if !ok {
		t.Fatal("NewProber should return a *CommandProber")
	}
	if p.Binary != DefaultBinary {
		t.Fatalf("expected binary %q, got %q", DefaultBinary, p.Binary)
	}
}

func TestEnsureBinaryWhenMissing(t *testing.T) {
	p := &CommandProber{Binary: "nonexistent-probe-12345"}
	if err := p.EnsureBinary(); err == nil {
		t.Fatal("EnsureBinary should fail for a missing binary")
	}
}

func TestDurationParsesProbeOutput(t *testing.T) {
	p := &CommandProber{Binary: writeScript(t, "12.480000")}

	if err := p.EnsureBinary(); err != nil {
		t.Fatalf("EnsureBinary: %v", err)
	}

	d, err := p.Duration(context.Background(), "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if d != 12480*time.Millisecond {
		t.Fatalf("expected 12.48s, got %v", d)
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	p := &CommandProber{Binary: writeScript(t, "N/A")}
	if _, err := p.Duration(context.Background(), "/tmp/clip.mp4"); err == nil {
		t.Fatal("expected error for N/A duration")
	}
}

func TestDurationWithCancelledContext(t *testing.T) {
	p := &CommandProber{Binary: writeScript(t, "1.0")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Duration(ctx, "/tmp/clip.mp4"); err == nil {
		t.Fatal("Duration should fail when context is cancelled")
	}
}

func TestVersionReadsFirstLine(t *testing.T) {
	p := &CommandProber{Binary: writeScript(t, "ffprobe version 6.1")}
	v, err := p.Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "ffprobe version 6.1" {
		t.Fatalf("unexpected version %q", v)
	}
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "3.5\n", want: 3500 * time.Millisecond},
		{raw: "  60.000000  ", want: time.Minute},
		{raw: "", wantErr: true},
		{raw: "N/A", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "abc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseSeconds(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseSeconds(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("parseSeconds(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestAnnotate(t *testing.T) {
	fake := &fakeProber{duration: 90 * time.Second}

	video := media.FromUpload("clip.mp4", 10, media.Video)
	video.Path = "/data/clip.mp4"
	got, err := Annotate(context.Background(), fake, video)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if got.Duration != 90*time.Second {
		t.Fatalf("expected duration to be set, got %v", got.Duration)
	}

	image := media.FromUpload("a.png", 10, media.Image)
	image.Path = "/data/a.png"
	if _, err := Annotate(context.Background(), fake, image); err != nil {
		t.Fatalf("Annotate image: %v", err)
	}
	if len(fake.paths) != 1 {
		t.Fatalf("images must not be probed, probed %v", fake.paths)
	}

	failing := &fakeProber{err: errors.New("boom")}
	got, err = Annotate(context.Background(), failing, video)
	if err == nil {
		t.Fatal("expected probe error")
	}
	if got.Duration != 0 {
		t.Fatalf("failed probe must leave duration unset")
	}
}
