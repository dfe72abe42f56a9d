package serve

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/service"
)

// Command creates the serve command for running the HTTP service.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the prediction HTTP service",
		Long:  "Start the HTTP server that accepts digit images, runs the classifier and records predictions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.Serve(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVarP(&settings.WebServer.Port, "port", "p", viper.GetString("webserver.port"), "Port to listen on")
	cmd.Flags().BoolVar(&settings.ImageStore.Enabled, "saveimages", viper.GetBool("imagestore.enabled"), "Persist submitted images alongside predictions")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
