package cli

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/authguard/internal/config"
	"github.com/example/authguard/internal/detector"
)

type doctorCheck struct {
	Name   string
	Status string // "✓", "✗" or "⊘"
	Detail string
	Error  error
}

func newDoctorCmd(a *app) *cobra.Command {
	flags := &runtimeFlagSet{}
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration, ffprobe availability, and the output directory",
		Long: `The doctor subcommand checks the guardian environment:
- Go runtime version
- ffprobe binary presence (optional; durations are simulated without it)
- Configuration validity and generator wiring
- Output directory, when one is configured`,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := a.loader.Load(overrides)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			checks := a.runDoctorChecks(ctx, cfg)
			printDoctorReport(cmd, checks)

			for _, check := range checks {
				if check.Error != nil {
					return fmt.Errorf("doctor checks failed")
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\n✓ All checks passed. Guardian is ready.")
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Timeout for external binary checks")

	return cmd
}

func (a *app) runDoctorChecks(ctx context.Context, cfg config.RuntimeConfig) []doctorCheck {
	checks := []doctorCheck{checkGoVersion()}
	checks = append(checks, a.checkFFProbe(ctx, cfg))

	configCheck := checkConfiguration(cfg)
	checks = append(checks, configCheck)
	if configCheck.Error == nil {
		checks = append(checks, a.checkGenerators(cfg))
	}

	checks = append(checks, checkOutputDirectory(cfg.OutputDir))
	return checks
}

func checkGoVersion() doctorCheck {
	return doctorCheck{
		Name:   "Go Runtime",
		Status: "✓",
		Detail: fmt.Sprintf("Version %s", runtime.Version()),
	}
}

// checkFFProbe never fails the run: without ffprobe durations are simulated.
func (a *app) checkFFProbe(ctx context.Context, cfg config.RuntimeConfig) doctorCheck {
	check := doctorCheck{Name: "ffprobe Binary"}
	if !cfg.ProbeDurations {
		check.Status = "⊘"
		check.Detail = "Skipped (duration probing disabled)"
		return check
	}

	prober := a.newProber(cfg.FFProbe)
	if err := prober.EnsureBinary(); err != nil {
		check.Status = "⊘"
		check.Detail = fmt.Sprintf("%s not found in PATH; durations will be simulated", cfg.FFProbe)
		return check
	}

	version, err := prober.Version(ctx)
	if err != nil {
		check.Status = "✗"
		check.Detail = "Binary found but not executable"
		check.Error = err
		return check
	}

	check.Status = "✓"
	check.Detail = version
	return check
}

func checkConfiguration(cfg config.RuntimeConfig) doctorCheck {
	if err := cfg.Validate(); err != nil {
		return doctorCheck{
			Name:   "Configuration",
			Status: "✗",
			Detail: "Invalid configuration",
			Error:  err,
		}
	}

	names := make([]string, 0, len(cfg.Media))
	for _, c := range cfg.Media {
		names = append(names, string(c))
	}
	return doctorCheck{
		Name:   "Configuration",
		Status: "✓",
		Detail: fmt.Sprintf("media=%s format=%s", strings.Join(names, ","), cfg.Format),
	}
}

func (a *app) checkGenerators(cfg config.RuntimeConfig) doctorCheck {
	gens, err := detector.DefaultRegistry.BuildGenerators(cfg.Media, a.generatorOptions(cfg))
	if err != nil {
		return doctorCheck{Name: "Generators", Status: "✗", Detail: "Unavailable", Error: err}
	}

	names := make([]string, 0, len(gens))
	for _, g := range gens {
		names = append(names, g.Name())
	}
	return doctorCheck{Name: "Generators", Status: "✓", Detail: strings.Join(names, ", ")}
}

func checkOutputDirectory(outputDir string) doctorCheck {
	if outputDir == "" {
		return doctorCheck{
			Name:   "Output Directory",
			Status: "⊘",
			Detail: "Not configured (reports are not saved)",
		}
	}

	if err := ensureOutputDir(outputDir); err != nil {
		return doctorCheck{
			Name:   "Output Directory",
			Status: "✗",
			Detail: outputDir,
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "Output Directory",
		Status: "✓",
		Detail: outputDir,
	}
}

func printDoctorReport(cmd *cobra.Command, checks []doctorCheck) {
	fmt.Fprintln(cmd.OutOrStdout(), "Running environment diagnostics...")

	for _, check := range checks {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-20s %s\n", check.Status, check.Name+":", check.Detail)
		if check.Error != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "   Error: %v\n", check.Error)
		}
	}
}
