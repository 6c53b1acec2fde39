package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/authguard/internal/detector"
	"github.com/example/authguard/internal/media"
)

const (
	DefaultConfigPath = "guardian.config.yml"

	// MaxDelay bounds every simulated delay.
	MaxDelay = time.Minute
	// MaxVideoFrames bounds the simulated frame target.
	MaxVideoFrames = 100000

	envImageDelay        = "GUARDIAN_IMAGE_DELAY"
	envAudioDelay        = "GUARDIAN_AUDIO_DELAY"
	envTextDelay         = "GUARDIAN_TEXT_DELAY"
	envVideoTick         = "GUARDIAN_VIDEO_TICK"
	envVideoSettle       = "GUARDIAN_VIDEO_SETTLE"
	envVideoFrames       = "GUARDIAN_VIDEO_FRAMES"
	envSeed              = "GUARDIAN_SEED"
	envEnforceSizeLimits = "GUARDIAN_ENFORCE_SIZE_LIMITS"
	envProbeDurations    = "GUARDIAN_PROBE_DURATIONS"
	envFFProbe           = "GUARDIAN_FFPROBE"
	envOutputDir         = "GUARDIAN_OUTPUT_DIR"
	envFormat            = "GUARDIAN_FORMAT"
	envLogLevel          = "GUARDIAN_LOG_LEVEL"
	envMedia             = "GUARDIAN_MEDIA"
)

var (
	validFormats   = []string{"text", "json"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Loader merges configuration coming from files, environment variables, and CLI flags.
type Loader struct {
	ConfigPath string
}

// RuntimeConfig contains the fully merged settings used by guardian sub-commands.
type RuntimeConfig struct {
	ImageDelay        time.Duration
	AudioDelay        time.Duration
	TextDelay         time.Duration
	VideoTick         time.Duration
	VideoSettle       time.Duration
	VideoFrames       int
	Seed              uint64
	EnforceSizeLimits bool
	ProbeDurations    bool
	FFProbe           string
	OutputDir         string
	Format            string
	LogLevel          string
	Media             []media.Category
}

// Overrides captures values coming from env vars or CLI flags.
type Overrides struct {
	ImageDelay        *time.Duration
	AudioDelay        *time.Duration
	TextDelay         *time.Duration
	VideoTick         *time.Duration
	VideoSettle       *time.Duration
	VideoFrames       int
	VideoFramesSet    bool
	Seed              uint64
	SeedSet           bool
	EnforceSizeLimits *bool
	ProbeDurations    *bool
	FFProbe           string
	OutputDir         string
	Format            string
	LogLevel          string
	Media             []string
}

// DefaultRuntimeConfig returns the baseline configuration when no overrides are provided.
func DefaultRuntimeConfig() RuntimeConfig {
	timing := detector.DefaultTiming()
	return RuntimeConfig{
		ImageDelay:        timing.Image,
		AudioDelay:        timing.Audio,
		TextDelay:         timing.Text,
		VideoTick:         timing.VideoTick,
		VideoSettle:       timing.VideoSettle,
		VideoFrames:       timing.VideoFrames,
		EnforceSizeLimits: true,
		ProbeDurations:    true,
		FFProbe:           "ffprobe",
		Format:            "text",
		LogLevel:          "warn",
		Media:             append([]media.Category(nil), media.Categories...),
	}
}

// Load resolves the final runtime configuration.
func (l Loader) Load(override Overrides) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	if fileExists(path) {
		fileOv, err := loadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load %s: %w", path, err)
		}
		if err := cfg.apply(fileOv); err != nil {
			return cfg, err
		}
	}

	envOv, err := overridesFromEnv()
	if err != nil {
		return cfg, err
	}
	if err := cfg.apply(envOv); err != nil {
		return cfg, err
	}

	if err := cfg.apply(override); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate ensures the config is usable.
func (c RuntimeConfig) Validate() error {
	delays := []struct {
		name  string
		value time.Duration
	}{
		{"imageDelay", c.ImageDelay},
		{"audioDelay", c.AudioDelay},
		{"textDelay", c.TextDelay},
		{"videoSettle", c.VideoSettle},
	}
	for _, d := range delays {
		if d.value < 0 || d.value > MaxDelay {
			return fmt.Errorf("%s must be between 0 and %s (got %s)", d.name, MaxDelay, d.value)
		}
	}

	if c.VideoTick <= 0 || c.VideoTick > MaxDelay {
		return fmt.Errorf("videoTick must be between 1ns and %s (got %s)", MaxDelay, c.VideoTick)
	}

	if c.VideoFrames < 1 || c.VideoFrames > MaxVideoFrames {
		return fmt.Errorf("videoFrames must be between 1 and %d (got %d)", MaxVideoFrames, c.VideoFrames)
	}

	if !contains(validFormats, c.Format) {
		return fmt.Errorf("format must be one of %s (got %q)", strings.Join(validFormats, ", "), c.Format)
	}

	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("logLevel must be one of %s (got %q)", strings.Join(validLogLevels, ", "), c.LogLevel)
	}

	if len(c.Media) == 0 {
		return errors.New("at least one media category must be configured")
	}

	if c.ProbeDurations && strings.TrimSpace(c.FFProbe) == "" {
		return errors.New("ffprobe binary cannot be empty when probeDurations is enabled")
	}

	return nil
}

// Timing converts the delay settings for the simulated generators.
func (c RuntimeConfig) Timing() detector.Timing {
	return detector.Timing{
		Image:       c.ImageDelay,
		Audio:       c.AudioDelay,
		Text:        c.TextDelay,
		VideoTick:   c.VideoTick,
		VideoSettle: c.VideoSettle,
		VideoFrames: c.VideoFrames,
	}
}

func (c *RuntimeConfig) apply(src Overrides) error {
	setDuration(&c.ImageDelay, src.ImageDelay)
	setDuration(&c.AudioDelay, src.AudioDelay)
	setDuration(&c.TextDelay, src.TextDelay)
	setDuration(&c.VideoTick, src.VideoTick)
	setDuration(&c.VideoSettle, src.VideoSettle)

	if src.VideoFramesSet {
		c.VideoFrames = src.VideoFrames
	}

	if src.SeedSet {
		c.Seed = src.Seed
	}

	if src.EnforceSizeLimits != nil {
		c.EnforceSizeLimits = *src.EnforceSizeLimits
	}

	if src.ProbeDurations != nil {
		c.ProbeDurations = *src.ProbeDurations
	}

	if src.FFProbe != "" {
		c.FFProbe = src.FFProbe
	}

	if src.OutputDir != "" {
		c.OutputDir = src.OutputDir
	}

	if src.Format != "" {
		c.Format = strings.ToLower(strings.TrimSpace(src.Format))
	}

	if src.LogLevel != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(src.LogLevel))
	}

	if len(src.Media) > 0 {
		categories, err := ParseMedia(src.Media)
		if err != nil {
			return err
		}
		c.Media = categories
	}

	return nil
}

func setDuration(dst *time.Duration, src *time.Duration) {
	if src != nil {
		*dst = *src
	}
}

// fileConfig is the on-disk YAML shape.
type fileConfig struct {
	ImageDelay        *durationValue `yaml:"imageDelay,omitempty"`
	AudioDelay        *durationValue `yaml:"audioDelay,omitempty"`
	TextDelay         *durationValue `yaml:"textDelay,omitempty"`
	VideoTick         *durationValue `yaml:"videoTick,omitempty"`
	VideoSettle       *durationValue `yaml:"videoSettle,omitempty"`
	VideoFrames       *int           `yaml:"videoFrames,omitempty"`
	Seed              *uint64        `yaml:"seed,omitempty"`
	EnforceSizeLimits *bool          `yaml:"enforceSizeLimits,omitempty"`
	ProbeDurations    *bool          `yaml:"probeDurations,omitempty"`
	FFProbe           string         `yaml:"ffprobe,omitempty"`
	OutputDir         string         `yaml:"outputDir,omitempty"`
	Format            string         `yaml:"format,omitempty"`
	LogLevel          string         `yaml:"logLevel,omitempty"`
	Media             stringList     `yaml:"media,omitempty"`
}

func loadFromFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, err
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Overrides{}, err
	}

	over := Overrides{
		ImageDelay:        raw.ImageDelay.ptr(),
		AudioDelay:        raw.AudioDelay.ptr(),
		TextDelay:         raw.TextDelay.ptr(),
		VideoTick:         raw.VideoTick.ptr(),
		VideoSettle:       raw.VideoSettle.ptr(),
		EnforceSizeLimits: raw.EnforceSizeLimits,
		ProbeDurations:    raw.ProbeDurations,
		FFProbe:           raw.FFProbe,
		OutputDir:         raw.OutputDir,
		Format:            raw.Format,
		LogLevel:          raw.LogLevel,
		Media:             raw.Media,
	}

	if raw.VideoFrames != nil {
		over.VideoFrames = *raw.VideoFrames
		over.VideoFramesSet = true
	}

	if raw.Seed != nil {
		over.Seed = *raw.Seed
		over.SeedSet = true
	}

	return over, nil
}

// Template renders the defaults as a YAML document suitable for a starter config file.
func Template() ([]byte, error) {
	def := DefaultRuntimeConfig()
	frames := def.VideoFrames
	enforce := def.EnforceSizeLimits
	probe := def.ProbeDurations

	categories := make(stringList, 0, len(def.Media))
	for _, c := range def.Media {
		categories = append(categories, string(c))
	}

	return yaml.Marshal(fileConfig{
		ImageDelay:        &durationValue{def.ImageDelay},
		AudioDelay:        &durationValue{def.AudioDelay},
		TextDelay:         &durationValue{def.TextDelay},
		VideoTick:         &durationValue{def.VideoTick},
		VideoSettle:       &durationValue{def.VideoSettle},
		VideoFrames:       &frames,
		EnforceSizeLimits: &enforce,
		ProbeDurations:    &probe,
		FFProbe:           def.FFProbe,
		Format:            def.Format,
		LogLevel:          def.LogLevel,
		Media:             categories,
	})
}

func overridesFromEnv() (Overrides, error) {
	ov := Overrides{}

	durations := []struct {
		key string
		dst **time.Duration
	}{
		{envImageDelay, &ov.ImageDelay},
		{envAudioDelay, &ov.AudioDelay},
		{envTextDelay, &ov.TextDelay},
		{envVideoTick, &ov.VideoTick},
		{envVideoSettle, &ov.VideoSettle},
	}
	for _, d := range durations {
		value := os.Getenv(d.key)
		if value == "" {
			continue
		}
		parsed, err := ParseDuration(value)
		if err != nil {
			return ov, fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = &parsed
	}

	if value := os.Getenv(envVideoFrames); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.VideoFrames = parsed
			ov.VideoFramesSet = true
		}
	}

	if value := os.Getenv(envSeed); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			ov.Seed = parsed
			ov.SeedSet = true
		}
	}

	if value := os.Getenv(envEnforceSizeLimits); value != "" {
		parsed := parseBool(value)
		ov.EnforceSizeLimits = &parsed
	}

	if value := os.Getenv(envProbeDurations); value != "" {
		parsed := parseBool(value)
		ov.ProbeDurations = &parsed
	}

	if value := os.Getenv(envFFProbe); value != "" {
		ov.FFProbe = value
	}

	if value := os.Getenv(envOutputDir); value != "" {
		ov.OutputDir = value
	}

	if value := os.Getenv(envFormat); value != "" {
		ov.Format = value
	}

	if value := os.Getenv(envLogLevel); value != "" {
		ov.LogLevel = value
	}

	if value := os.Getenv(envMedia); value != "" {
		ov.Media = ParseList(value)
	}

	return ov, nil
}

// ParseDuration accepts Go duration syntax ("2.5s") or bare milliseconds ("2500").
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(value)
}

// ParseList splits comma, whitespace or newline separated input.
func ParseList(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r', ' '})
}

// ParseMedia validates and dedupes category names.
func ParseMedia(values []string) ([]media.Category, error) {
	var out []media.Category
	seen := map[media.Category]struct{}{}
	for _, v := range cleanList(values) {
		c, err := media.ParseCategory(v)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func splitOnDelimiters(input string, delims []rune) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	separator := func(r rune) bool {
		for _, d := range delims {
			if r == d {
				return true
			}
		}
		return false
	}

	return cleanList(strings.FieldsFunc(trimmed, separator))
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		candidate := strings.TrimSpace(v)
		if candidate != "" {
			out = append(out, candidate)
		}
	}
	return out
}

func parseBool(value string) bool {
	return strings.EqualFold(value, "true") || value == "1" || strings.EqualFold(value, "yes")
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// stringList enables YAML fields that can be specified as a scalar or sequence.
type stringList []string

func (s *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var out []string
		for _, node := range value.Content {
			out = append(out, strings.TrimSpace(node.Value))
		}
		*s = cleanList(out)
	case yaml.ScalarNode:
		*s = ParseList(value.Value)
	default:
		return fmt.Errorf("unsupported YAML type for list")
	}
	return nil
}

// durationValue reads "3s" style strings or integer milliseconds from YAML.
type durationValue struct {
	time.Duration
}

func (d *durationValue) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	parsed, err := ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	d.Duration = parsed
	return nil
}

func (d durationValue) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

func (d *durationValue) ptr() *time.Duration {
	if d == nil {
		return nil
	}
	v := d.Duration
	return &v
}
