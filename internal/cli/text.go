package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/authguard/internal/media"
	"github.com/example/authguard/internal/widget"
)

// maxTextBytes caps how much content the text command reads.
const maxTextBytes = 1 << 20

func newTextCmd(a *app) *cobra.Command {
	flags := &runtimeFlagSet{}
	var sourceURL string
	var inputPath string

	cmd := &cobra.Command{
		Use:   "text [content]",
		Short: "Check written content for signs of misinformation",
		Long: `Analyzes pasted text. Content comes from the argument, from --file, or
from stdin when the argument is "-" or omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.setup(cmd, flags)
			if err != nil {
				return err
			}

			content, err := readTextInput(cmd.InOrStdin(), args, inputPath)
			if err != nil {
				return err
			}

			out := a.newSessionOutput(cfg.Format)
			r, err := a.runSession(cmd.Context(), cfg, out, media.Text, nil, func(ctx context.Context, w *widget.Widget) error {
				return w.SubmitText(ctx, content, sourceURL)
			})
			if err != nil {
				return err
			}
			return a.publish(cfg, out, r)
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().StringVar(&sourceURL, "source-url", "", "Where the content was found (echoed in the report)")
	cmd.Flags().StringVar(&inputPath, "file", "", "Read content from a file")

	return cmd
}

func readTextInput(stdin io.Reader, args []string, path string) (string, error) {
	if path != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("pass content either as an argument or with --file, not both")
		}
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return "", err
		}
		defer f.Close()
		return readLimited(f)
	}

	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	return readLimited(stdin)
}

func readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxTextBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxTextBytes {
		return "", fmt.Errorf("%w: text input exceeds %s", media.ErrTooLarge, media.FormatSize(maxTextBytes))
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
