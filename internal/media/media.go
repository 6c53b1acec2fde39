package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var (
	// ErrInvalidMediaType is returned when an artifact does not belong to the expected category.
	ErrInvalidMediaType = errors.New("invalid media type")
	// ErrEmptyInput is returned when text analysis is requested for blank content.
	ErrEmptyInput = errors.New("empty input")
	// ErrTooLarge is returned when an artifact exceeds the category size limit.
	ErrTooLarge = errors.New("artifact too large")
)

// Category identifies the kind of media a widget accepts.
type Category string

const (
	Image Category = "image"
	Video Category = "video"
	Audio Category = "audio"
	Text  Category = "text"
)

// Categories lists every supported category in display order.
var Categories = []Category{Image, Video, Audio, Text}

var extensions = map[Category][]string{
	Image: {"jpeg", "jpg", "png", "gif", "bmp"},
	Video: {"mp4", "avi", "mov", "wmv", "flv", "webm"},
	Audio: {"mp3", "wav", "m4a", "aac", "ogg", "flac"},
}

var sizeLimits = map[Category]int64{
	Image: 10 * humanize.MiByte,
	Audio: 50 * humanize.MiByte,
	Video: 100 * humanize.MiByte,
}

// ParseCategory converts user input into a Category.
func ParseCategory(value string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(value)))
	switch c {
	case Image, Video, Audio, Text:
		return c, nil
	}
	return "", fmt.Errorf("unknown media category %q", value)
}

// Extensions returns the accepted file extensions for c, without dots.
// Text has no file form and returns nil.
func (c Category) Extensions() []string {
	return append([]string(nil), extensions[c]...)
}

// SizeLimit returns the advisory upload limit for c, or 0 when there is none.
func (c Category) SizeLimit() int64 {
	return sizeLimits[c]
}

// Accepts reports whether the file name carries one of c's extensions.
func (c Category) Accepts(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return false
	}
	for _, candidate := range extensions[c] {
		if candidate == ext {
			return true
		}
	}
	return false
}

// CategoryForName infers the category from a file extension.
func CategoryForName(name string) (Category, error) {
	for _, c := range Categories {
		if c.Accepts(name) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s has no recognised extension", ErrInvalidMediaType, filepath.Base(name))
}

// Artifact is a user-supplied object pending or undergoing analysis.
type Artifact struct {
	Name      string
	SizeBytes int64
	Category  Category
	Path      string
	Text      string
	SourceURL string
	// Duration is the measured media length; zero when unknown.
	Duration time.Duration
	Handle   Handle
}

// FromUpload describes an in-memory upload.
func FromUpload(name string, size int64, category Category) Artifact {
	return Artifact{Name: filepath.Base(name), SizeBytes: size, Category: category}
}

// FromFile stats path and builds an artifact of the category implied by its extension.
// The file content is never read.
func FromFile(path string) (Artifact, error) {
	category, err := CategoryForName(path)
	if err != nil {
		return Artifact{}, err
	}

	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return Artifact{}, err
	}
	if info.IsDir() {
		return Artifact{}, fmt.Errorf("%s is a directory", path)
	}

	a := FromUpload(info.Name(), info.Size(), category)
	a.Path = path
	return a, nil
}

// FromText wraps pasted content for the text widget.
func FromText(text, sourceURL string) (Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return Artifact{}, ErrEmptyInput
	}
	return Artifact{
		Name:      "pasted text",
		SizeBytes: int64(len(text)),
		Category:  Text,
		Text:      text,
		SourceURL: strings.TrimSpace(sourceURL),
	}, nil
}

// Validate checks a against the widget category and, when enforce is set, the size limit.
func (a Artifact) Validate(expected Category, enforce bool) error {
	if a.Category != expected {
		return fmt.Errorf("%w: %s is %s, expected %s", ErrInvalidMediaType, a.Name, a.Category, expected)
	}
	if expected != Text && !expected.Accepts(a.Name) {
		return fmt.Errorf("%w: %s is not one of %s", ErrInvalidMediaType, a.Name, strings.Join(expected.Extensions(), ", "))
	}
	if expected == Text && strings.TrimSpace(a.Text) == "" {
		return ErrEmptyInput
	}
	if limit := expected.SizeLimit(); enforce && limit > 0 && a.SizeBytes > limit {
		return fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, FormatSize(a.SizeBytes), FormatSize(limit))
	}
	return nil
}

// FormatSize renders a byte count for display.
func FormatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
