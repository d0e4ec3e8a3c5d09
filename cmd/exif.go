package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"imgintel/internal/logger"
)

var exifCmd = &cobra.Command{
	Use:   "exif [image-file]",
	Short: "Dump the EXIF tags of an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runExif,
}

func init() {
	rootCmd.AddCommand(exifCmd)

	exifCmd.Flags().Bool("json", false, "Output as JSON")
}

func runExif(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("exif")

	jsonOutput, _ := cmd.Flags().GetBool("json")

	report, err := analyzeFile(cmd.Context(), args[0], false, log)
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(report.Tags, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		return writeOutput(append(out, '\n'), "", log)
	}

	if len(report.Tags) == 0 {
		return writeOutput([]byte("No EXIF metadata found in this image.\n"), "", log)
	}

	var b strings.Builder
	for _, name := range report.SortedTagNames() {
		fmt.Fprintf(&b, "%s: %s\n", name, report.Tags[name])
	}
	return writeOutput([]byte(b.String()), "", log)
}
