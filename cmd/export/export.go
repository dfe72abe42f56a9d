package export

import (
	"github.com/spf13/cobra"

	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/service"
)

// Command creates the export command for dumping reviewed predictions.
func Command(settings *conf.Settings) *cobra.Command {
	var limit int
	var mark bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reviewed predictions for training",
		Long:  "Write predictions with human feedback that have not yet been used for training as JSON lines on stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.ExportTraining(settings, cmd.OutOrStdout(), limit, mark)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 1000, "Maximum number of records to export")
	cmd.Flags().BoolVar(&mark, "mark", true, "Mark exported records as used for training")

	return cmd
}
