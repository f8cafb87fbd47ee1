package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HueCodes/Scuttle/internal/profiles"
	"github.com/HueCodes/Scuttle/internal/storage"
	"github.com/olekukonko/tablewriter"
)

var (
	profileSaveDescription string
	profileSavePorts       string
	profileSaveType        string
	profileSaveConcurrency int
	profileSaveTimeoutMs   int
	profileSaveBanner      bool
	profileSaveRateLimit   int
)

// profilesCmd represents the profiles command.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage scan profiles",
	Long: `Manage named scan profiles. A profile bundles ports, scan type,
timeout, and concurrency so common scans can be run by name. Built-in
profiles (quick, full, web) cannot be modified or deleted.`,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	RunE:  runProfilesList,
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a profile's settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesShow,
}

var profilesSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Create or update a profile",
	Args:  cobra.ExactArgs(1),
	Example: `  scuttle profiles save dns --ports 53,5353 --type udp
  scuttle profiles save internal --ports 1-10000 --concurrency 1000 --banner`,
	RunE: runProfilesSave,
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a custom profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesDelete,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesSaveCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)

	profilesSaveCmd.Flags().StringVar(&profileSaveDescription, "description", "", "Profile description")
	profilesSaveCmd.Flags().StringVarP(&profileSavePorts, "ports", "p", "1-1000", "Port specification")
	profilesSaveCmd.Flags().StringVarP(&profileSaveType, "type", "t", "connect", "Scan type: connect, syn, udp")
	profilesSaveCmd.Flags().IntVarP(&profileSaveConcurrency, "concurrency", "c", 500, "Maximum simultaneous probes")
	profilesSaveCmd.Flags().IntVar(&profileSaveTimeoutMs, "timeout", 3000, "Per-probe timeout in milliseconds")
	profilesSaveCmd.Flags().BoolVarP(&profileSaveBanner, "banner", "b", false, "Grab service banners")
	profilesSaveCmd.Flags().IntVarP(&profileSaveRateLimit, "rate-limit", "r", 0, "Maximum probes per second (0 = unlimited)")
}

// openProfileManager opens the profile manager from configuration.
func openProfileManager() (*profiles.Manager, error) {
	baseDir := cfg.Storage.Dir
	if baseDir == "" {
		var err error
		baseDir, err = storage.DefaultBaseDir()
		if err != nil {
			return nil, err
		}
	}
	return profiles.NewManager(baseDir)
}

func runProfilesList(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	manager, err := openProfileManager()
	if err != nil {
		return err
	}

	list, err := manager.List()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Type", "Ports", "Concurrency", "Timeout", "Description")
	for _, p := range list {
		name := p.Name
		if profiles.IsBuiltin(p.Name) {
			name += " (builtin)"
		}
		if err := table.Append(
			name,
			p.ScanType,
			p.Ports,
			fmt.Sprintf("%d", p.Concurrency),
			fmt.Sprintf("%dms", p.TimeoutMs),
			p.Description,
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func runProfilesShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	manager, err := openProfileManager()
	if err != nil {
		return err
	}

	p, err := manager.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Name:        %s\n", p.Name)
	if p.Description != "" {
		fmt.Printf("Description: %s\n", p.Description)
	}
	fmt.Printf("Ports:       %s\n", p.Ports)
	fmt.Printf("Scan type:   %s\n", p.ScanType)
	fmt.Printf("Concurrency: %d\n", p.Concurrency)
	fmt.Printf("Timeout:     %dms\n", p.TimeoutMs)
	fmt.Printf("Banners:     %v\n", p.Banner)
	if p.RateLimit > 0 {
		fmt.Printf("Rate limit:  %d/s\n", p.RateLimit)
	}
	if profiles.IsBuiltin(p.Name) {
		fmt.Println("\nThis is a built-in profile and cannot be modified.")
	}
	return nil
}

func runProfilesSave(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	p := profiles.New(args[0])
	p.Description = profileSaveDescription
	p.Ports = profileSavePorts
	p.ScanType = profileSaveType
	p.Concurrency = profileSaveConcurrency
	p.TimeoutMs = profileSaveTimeoutMs
	p.Banner = profileSaveBanner
	p.RateLimit = profileSaveRateLimit

	manager, err := openProfileManager()
	if err != nil {
		return err
	}
	if err := manager.Save(p); err != nil {
		return err
	}
	fmt.Printf("Saved profile %q\n", p.Name)
	return nil
}

func runProfilesDelete(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	manager, err := openProfileManager()
	if err != nil {
		return err
	}
	if err := manager.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted profile %q\n", args[0])
	return nil
}
