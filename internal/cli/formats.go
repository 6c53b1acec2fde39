package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/authguard/internal/media"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List accepted file extensions and size limits per widget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-7s %-10s %s\n", "MEDIA", "LIMIT", "EXTENSIONS")
			for _, c := range media.Categories {
				limit := "-"
				if n := c.SizeLimit(); n > 0 {
					limit = media.FormatSize(n)
				}
				exts := "(pasted text)"
				if list := c.Extensions(); len(list) > 0 {
					exts = strings.Join(list, ", ")
				}
				if _, err := fmt.Fprintf(out, "%-7s %-10s %s\n", c, limit, exts); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
