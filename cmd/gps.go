package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"imgintel/internal/logger"
)

var gpsCmd = &cobra.Command{
	Use:   "gps [image-file]",
	Short: "Print the GPS position stored in an image's EXIF tags",
	Long: `Resolve the GPSLatitude/GPSLongitude tags of an image into signed decimal
degrees and print them with a Google Maps link.

All four tags (latitude, latitude ref, longitude, longitude ref) must be present
and valid, otherwise the image is reported as having no GPS data.`,
	Example: `  imgintel gps photo.jpg
  imgintel gps photo.jpg --json
  imgintel gps photo.jpg --geojson > point.geojson`,
	Args: cobra.ExactArgs(1),
	RunE: runGPS,
}

func init() {
	rootCmd.AddCommand(gpsCmd)

	gpsCmd.Flags().Bool("json", false, "Output as JSON")
	gpsCmd.Flags().Bool("geojson", false, "Output as a GeoJSON feature")
}

func runGPS(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("gps")

	jsonOutput, _ := cmd.Flags().GetBool("json")
	geoJSONOutput, _ := cmd.Flags().GetBool("geojson")

	report, err := analyzeFile(cmd.Context(), args[0], false, log)
	if err != nil {
		return err
	}

	var out []byte
	switch {
	case geoJSONOutput:
		out, err = marshalFeature(report)
	case jsonOutput:
		out, err = json.MarshalIndent(map[string]any{
			"file":     report.File,
			"found":    report.Location != nil,
			"location": report.Location,
		}, "", "  ")
		out = append(out, '\n')
	default:
		var b strings.Builder
		err = report.WriteLocation(&b)
		out = []byte(b.String())
	}
	if err != nil {
		return fmt.Errorf("failed to format GPS output: %w", err)
	}

	log.Debug().Bool("found", report.Location != nil).Msg("GPS lookup finished")
	return writeOutput(out, "", log)
}
