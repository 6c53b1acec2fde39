package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/authguard/internal/config"
	"github.com/example/authguard/internal/detector"
	"github.com/example/authguard/internal/probe"
)

const version = "0.1.0"

// Execute builds the root command tree and runs the CLI.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI with ctx bounding every analysis.
func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

type rootOptions struct {
	ConfigPath string
	LogLevel   string
	Verbose    bool
}

// app carries state shared by sub-commands.
type app struct {
	loader    *config.Loader
	opts      *rootOptions
	logger    *zap.Logger
	newProber func(binary string) probe.Prober
	source    detector.Source
	stdout    io.Writer
	stderr    io.Writer
}

func newApp() *app {
	return &app{
		loader:    &config.Loader{ConfigPath: config.DefaultConfigPath},
		opts:      &rootOptions{},
		logger:    zap.NewNop(),
		newProber: probe.NewProber,
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(newApp())
}

func newRootCmdWith(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "guardian",
		Short:         "Simulated authenticity checks for images, video, audio and text",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.opts.ConfigPath != "" {
				a.loader.ConfigPath = a.opts.ConfigPath
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	rootCmd.SetVersionTemplate("guardian version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&a.opts.ConfigPath, "config", config.DefaultConfigPath, "Path to guardian.config.yml (optional)")
	rootCmd.PersistentFlags().StringVar(&a.opts.LogLevel, "log-level", "", "Log level: debug, info, warn, or error (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&a.opts.Verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newAnalyzeCmd(a),
		newTextCmd(a),
		newDemoCmd(a),
		newReportCmd(a),
		newFormatsCmd(),
		newInitCmd(a),
		newDoctorCmd(a),
	)

	return rootCmd
}

// setup loads and validates configuration for cmd and builds the logger that
// writes to the command's stderr. Output streams are shared through locked
// writers so concurrent widgets do not interleave partial writes.
func (a *app) setup(cmd *cobra.Command, flags *runtimeFlagSet) (config.RuntimeConfig, error) {
	overrides := flags.toOverrides(cmd)
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		overrides.LogLevel = a.opts.LogLevel
	}

	cfg, err := a.loader.Load(overrides)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	a.stdout = &syncWriter{w: cmd.OutOrStdout()}
	a.stderr = &syncWriter{w: cmd.ErrOrStderr()}

	level := cfg.LogLevel
	if a.opts.Verbose {
		level = "debug"
	}
	logger, err := newLogger(a.stderr, level)
	if err != nil {
		return cfg, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger.With(zap.String("command", cmd.Name()))
	a.logger.Debug("configuration loaded", zap.String("config", a.loader.ConfigPath), zap.String("format", cfg.Format))

	return cfg, nil
}

func (a *app) generatorOptions(cfg config.RuntimeConfig) detector.Options {
	src := a.source
	if src == nil {
		src = detector.NewSource(cfg.Seed)
	}
	return detector.Options{Timing: cfg.Timing(), Source: src}
}

func newLogger(w io.Writer, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(lvl),
	)
	return zap.New(core), nil
}
