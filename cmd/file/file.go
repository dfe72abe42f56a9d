package file

import (
	"github.com/spf13/cobra"

	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/service"
)

// Command creates the file command for predicting a single local image.
func Command(settings *conf.Settings) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "file [input.png]",
		Short: "Predict the digit in an image file",
		Long:  `Run the classifier on a single local image file and print the predicted digit.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.PredictFile(settings, args[0], save)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Persist the prediction to the database")

	return cmd
}
