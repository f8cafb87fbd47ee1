package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HueCodes/Scuttle/internal/output"
)

var (
	exportFormat string
	exportFile   string
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export <scan-id>",
	Short: "Export a saved scan to a file",
	Example: `  scuttle export 3fa1b2c8 --format json --file results.json
  scuttle export 3fa1b2c8 --format csv --file results.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: plain, json, csv")
	exportCmd.Flags().StringVar(&exportFile, "file", "", "Output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	format, err := output.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	record, err := store.FindByPrefix(args[0])
	if err != nil {
		return err
	}

	w := os.Stdout
	if exportFile != "" {
		f, createErr := os.Create(exportFile)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer f.Close()
		w = f
	}

	if err := output.Render(w, record, format); err != nil {
		return err
	}
	if exportFile != "" {
		fmt.Printf("Exported scan %s to %s\n", record.ShortID(), exportFile)
	}
	return nil
}
