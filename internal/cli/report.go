package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/authguard/internal/detector"
	"github.com/example/authguard/internal/events"
	"github.com/example/authguard/internal/report"
)

func newReportCmd(a *app) *cobra.Command {
	flags := &runtimeFlagSet{}

	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Render a saved report artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.setup(cmd, flags)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(filepath.Clean(args[0]))
			if err != nil {
				return err
			}

			r, err := detector.Unmarshal(data)
			if err != nil {
				return err
			}

			if cfg.Format == "json" {
				evt, err := events.ReportEvent(string(r.Media()), r)
				if err != nil {
					return err
				}
				evt.Fields["input"] = args[0]
				return events.NewEmitter(cmd.OutOrStdout()).Emit(evt)
			}

			view, err := report.Build(r)
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "", "Output format: text or json")

	return cmd
}
