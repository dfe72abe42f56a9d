package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/digitnet/digitnet-go/cmd/export"
	"github.com/digitnet/digitnet-go/cmd/file"
	"github.com/digitnet/digitnet-go/cmd/serve"
	"github.com/digitnet/digitnet-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "digitnet",
		Short: "DigitNet-Go CLI",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		serve.Command(settings),
		file.Command(settings),
		export.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&settings.Model.Path, "model", "m", viper.GetString("model.path"), "Path to the TensorFlow Lite model file")
	rootCmd.PersistentFlags().IntVar(&settings.Model.Threads, "threads", viper.GetInt("model.threads"), "Number of CPU threads for inference, 0 to use all")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
