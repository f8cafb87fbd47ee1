package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HueCodes/Scuttle/internal/output"
	"github.com/HueCodes/Scuttle/internal/storage"
	"github.com/olekukonko/tablewriter"
)

var (
	historyShowOutput string
	historyPruneKeep  int
)

// historyCmd represents the history command.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved scan results",
	Long: `List, inspect, and delete scans saved to local history. Scans can be
referenced by their full ID or any unique prefix of it.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved scans",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <scan-id>",
	Short: "Show a saved scan",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <scan-id>",
	Short: "Delete a saved scan",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent scans",
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyShowCmd.Flags().StringVarP(&historyShowOutput, "output", "o", "plain", "Output format: plain, json, csv")
	historyPruneCmd.Flags().IntVar(&historyPruneKeep, "keep", 10, "Number of recent scans to keep")
}

// openStore opens the scan history store from configuration.
func openStore() (*storage.Store, error) {
	baseDir := cfg.Storage.Dir
	if baseDir == "" {
		var err error
		baseDir, err = storage.DefaultBaseDir()
		if err != nil {
			return nil, err
		}
	}
	return storage.NewStore(baseDir)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	store, err := openStore()
	if err != nil {
		return err
	}

	records, err := store.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No saved scans.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Target", "Type", "Open", "Started", "Duration")
	for _, record := range records {
		if err := table.Append(
			record.ShortID(),
			record.Target,
			record.ScanType,
			fmt.Sprintf("%d", record.OpenPorts),
			record.StartedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.2fs", float64(record.DurationMs)/1000.0),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Printf("\n%d saved scan(s)\n", len(records))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	format, err := output.ParseFormat(historyShowOutput)
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
	return output.Render(os.Stdout, record, format)
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	store, err := openStore()
	if err != nil {
		return err
	}

	record, err := store.FindByPrefix(args[0])
	if err != nil {
		return err
	}
	if err := store.Delete(record.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted scan %s (%s)\n", record.ShortID(), record.Target)
	return nil
}

func runHistoryPrune(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	if historyPruneKeep < 0 {
		return fmt.Errorf("keep must not be negative")
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	removed, err := store.Prune(historyPruneKeep)
	if err != nil {
		return err
	}
	fmt.Printf("Pruned %d scan(s), kept the %d most recent\n", removed, historyPruneKeep)
	return nil
}
