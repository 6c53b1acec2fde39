package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/authguard/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	flags := &runtimeFlagSet{}
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file and validate it",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.loader.ConfigPath
			if path == "" {
				path = config.DefaultConfigPath
			}

			wrote, err := writeConfigTemplate(path, force)
			if err != nil {
				return err
			}

			cfg, err := a.setup(cmd, flags)
			if err != nil {
				return err
			}

			if cfg.OutputDir != "" {
				if err := ensureOutputDir(cfg.OutputDir); err != nil {
					return err
				}
			}

			if wrote {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Keeping existing %s (use --force to overwrite)\n", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration looks good. Widgets: %d, format: %s\n", len(cfg.Media), cfg.Format)
			return nil
		},
	}

	bindOutputFlags(cmd, flags)
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}

func writeConfigTemplate(path string, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	data, err := config.Template()
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, err
	}
	return true, nil
}
