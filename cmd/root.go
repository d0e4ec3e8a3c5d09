package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"imgintel/internal/config"
	"imgintel/internal/logger"
)

var version = "1.0.0"

// cfg is set by Execute before any command runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "imgintel",
	Short: "Image intelligence - EXIF, GPS, OCR and reverse image search for a single image",
	Long: `imgintel inspects one image at a time and reports what can be derived from it:

  - embedded EXIF metadata
  - the GPS position, with a Google Maps link, when the image is geotagged
  - text extracted with Google Cloud Vision OCR
  - links to reverse image search engines

Run "imgintel serve" to get the same analysis behind an HTTP upload endpoint.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("imgintel executed without subcommand")

		_ = cmd.Help()
	},
}

// Execute runs the CLI with the loaded configuration.
func Execute(c *config.Config) {
	log := logger.WithComponent("cmd")
	if c != nil {
		cfg = c
	}

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
