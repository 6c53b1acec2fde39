package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/example/authguard/internal/detector"
)

func ensureOutputDir(path string) error {
	if path == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	return os.MkdirAll(path, 0o755)
}

// writeReportArtifact stores r under dir as <media>_<timestamp>.json and
// returns the written path.
func writeReportArtifact(dir string, r detector.Report, now time.Time) (string, error) {
	if err := ensureOutputDir(dir); err != nil {
		return "", err
	}

	data, err := detector.Marshal(r)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s.json", r.Media(), now.UTC().Format("20060102_150405.000000000"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// syncWriter serializes writes from concurrently running widgets.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
