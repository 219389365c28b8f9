package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/envelope"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/importer"
)

func newDetectCommand(flags *globalFlags) *cobra.Command {
	var supported []string
	for _, f := range importer.DefaultRegistry().Formats() {
		supported = append(supported, string(f))
	}

	return &cobra.Command{
		Use:   "detect <file>...",
		Short: "Print the detected format of statement files",
		Long: "Print the detected format of statement files, one per line. Files that\n" +
			"match none of " + strings.Join(supported, ", ") + " print UNKNOWN.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			d := importer.Detector{
				Dialects:    a.cfg.Dialects(),
				PrefixBytes: a.cfg.Ingest.DetectPrefixBytes,
			}

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				format := d.Detect(envelope.Normalize(string(data)))
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", path, format.Label())
			}
			return nil
		},
	}
}
