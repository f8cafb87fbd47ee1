package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/HueCodes/Scuttle/internal/config"
	"github.com/HueCodes/Scuttle/internal/errors"
	"github.com/HueCodes/Scuttle/internal/logging"
	"github.com/HueCodes/Scuttle/internal/output"
	"github.com/HueCodes/Scuttle/internal/ports"
	"github.com/HueCodes/Scuttle/internal/profiles"
	"github.com/HueCodes/Scuttle/internal/scanning"
	"github.com/HueCodes/Scuttle/internal/storage"
	"github.com/HueCodes/Scuttle/internal/targets"
)

var (
	scanPorts       string
	scanType        string
	scanProfileName string
	scanTimeoutMs   int
	scanBanners     bool
	scanInterface   string
	scanConcurrency int
	scanRateLimit   int
	scanShowClosed  bool
	scanOutput      string
	scanNoSave      bool
	scanNoProgress  bool
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Scan a target for open ports",
	Long: `Scan a host, IP address, or CIDR range for open ports using the
selected strategy.

The connect strategy completes full TCP handshakes and needs no special
privileges. The syn strategy sends raw SYN packets and never completes
the handshake, but requires root. The udp strategy sends protocol-aware
probes and reports silent ports as open|filtered.`,
	Example: `  scuttle scan 192.168.1.10
  scuttle scan example.com --ports 22,80,443 --banners
  scuttle scan 10.0.0.0/24 --ports 1-1024 --type syn --rate-limit 200
  scuttle scan 192.168.1.1 --type udp --ports 53,123,161
  scuttle scan localhost --profile web --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanPorts, "ports", "p", "", "Port specification: '80,443' or '1-1000'")
	scanCmd.Flags().StringVarP(&scanType, "type", "t", "", "Scan type: connect, syn (requires root), udp")
	scanCmd.Flags().StringVar(&scanProfileName, "profile", "", "Use a saved scan profile for defaults")
	scanCmd.Flags().IntVar(&scanTimeoutMs, "timeout", 0, "Per-probe timeout in milliseconds")
	scanCmd.Flags().BoolVarP(&scanBanners, "banners", "b", false, "Grab service banners from open TCP ports")
	scanCmd.Flags().StringVarP(&scanInterface, "interface", "i", "", "Network interface for SYN scans (default auto-select)")
	scanCmd.Flags().IntVarP(&scanConcurrency, "concurrency", "c", 0, "Maximum simultaneous probes")
	scanCmd.Flags().IntVarP(&scanRateLimit, "rate-limit", "r", 0, "Maximum probes per second (0 = unlimited)")
	scanCmd.Flags().BoolVar(&scanShowClosed, "show-closed", false, "Include closed ports in results")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "plain", "Output format: plain, json, csv")
	scanCmd.Flags().BoolVar(&scanNoSave, "no-save", false, "Do not save the scan to history")
	scanCmd.Flags().BoolVar(&scanNoProgress, "no-progress", false, "Disable the progress indicator")
}

// scanSettings is the fully resolved set of scan parameters after
// layering config file, profile, and flags.
type scanSettings struct {
	ports       ports.Spec
	scanType    scanning.Type
	timeout     time.Duration
	banners     bool
	iface       string
	concurrency int
	rateLimit   int
	showClosed  bool
}

func runScan(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	settings, err := resolveScanSettings(cmd)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(scanOutput)
	if err != nil {
		return err
	}

	if settings.scanType == scanning.TypeSyn && os.Geteuid() != 0 {
		fmt.Fprintln(os.Stderr, "Warning: SYN scans require elevated privileges (try running with sudo)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spec, err := targets.ParseSpec(args[0])
	if err != nil {
		return err
	}

	resolved, err := spec.Resolve(ctx)
	if err != nil {
		return err
	}

	var store *storage.Store
	if !scanNoSave && !cfg.Storage.Disabled {
		baseDir := cfg.Storage.Dir
		if baseDir == "" {
			baseDir, err = storage.DefaultBaseDir()
			if err != nil {
				return err
			}
		}
		store, err = storage.NewStore(baseDir)
		if err != nil {
			return err
		}
	}

	for _, target := range resolved {
		if err := scanOne(ctx, target, settings, format, store); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("scan interrupted")
			}
			if errors.IsFatal(err) {
				return scanFailure(err)
			}
			logging.ErrorScan("scan failed", target.String(), err)
		}
	}
	return nil
}

func scanOne(
	ctx context.Context,
	target targets.Target,
	settings scanSettings,
	format output.Format,
	store *storage.Store,
) error {
	scanCfg := scanning.NewConfig(target.IP)
	scanCfg.TargetName = target.Original
	scanCfg.Timeout = settings.timeout
	scanCfg.GrabBanners = settings.banners
	scanCfg.Interface = settings.iface

	scanner, err := scanning.NewScanner(settings.scanType, scanCfg)
	if err != nil {
		return err
	}
	defer scanner.Close()

	jobCfg := scanning.JobConfig{
		Ports:       settings.ports.Ports(),
		TargetName:  target.Original,
		Concurrency: settings.concurrency,
		RateLimit:   settings.rateLimit,
		ShowClosed:  settings.showClosed,
		Verbose:     verbose,
	}
	if !scanNoProgress && format == output.FormatPlain {
		jobCfg.Progress = printProgress
	}

	report, err := scanning.RunJob(ctx, scanner, jobCfg)
	if !scanNoProgress && format == output.FormatPlain {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
	if err != nil {
		return err
	}

	record := storage.NewRecord(report)
	if store != nil {
		if err := store.Save(record); err != nil {
			logging.Warn("failed to save scan", "error", err)
		}
	}

	return output.Render(os.Stdout, record, format)
}

// printProgress renders an in-place progress line on stderr.
func printProgress(completed, total int, lastOpen ports.Port) {
	line := fmt.Sprintf("\r\033[KScanning... %d/%d", completed, total)
	if lastOpen != 0 {
		line += fmt.Sprintf(" (open: %s)", lastOpen)
	}
	fmt.Fprint(os.Stderr, line)
}

// resolveScanSettings layers config defaults, the selected profile, and
// explicit flags into one settings struct. Flags win over the profile,
// which wins over the config file.
func resolveScanSettings(cmd *cobra.Command) (scanSettings, error) {
	base := cfg.Scan

	if scanProfileName != "" {
		profile, err := loadProfile(scanProfileName)
		if err != nil {
			return scanSettings{}, err
		}
		base = applyProfile(base, profile)
	}

	portSpec := base.Ports
	if cmd.Flags().Changed("ports") {
		portSpec = scanPorts
	}
	typeName := base.Type
	if cmd.Flags().Changed("type") {
		typeName = scanType
	}
	timeout := base.Timeout
	if cmd.Flags().Changed("timeout") {
		timeout = time.Duration(scanTimeoutMs) * time.Millisecond
	}
	banners := base.Banners
	if cmd.Flags().Changed("banners") {
		banners = scanBanners
	}
	iface := base.Interface
	if cmd.Flags().Changed("interface") {
		iface = scanInterface
	}
	concurrency := base.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency = scanConcurrency
	}
	rateLimit := base.RateLimit
	if cmd.Flags().Changed("rate-limit") {
		rateLimit = scanRateLimit
	}
	showClosed := base.ShowClosed
	if cmd.Flags().Changed("show-closed") {
		showClosed = scanShowClosed
	}

	spec, err := ports.ParseSpec(portSpec)
	if err != nil {
		return scanSettings{}, err
	}
	parsedType, err := scanning.ParseType(typeName)
	if err != nil {
		return scanSettings{}, err
	}
	if timeout <= 0 {
		return scanSettings{}, errors.New(errors.CodeValidation, "timeout must be positive")
	}
	if concurrency < 0 {
		return scanSettings{}, errors.New(errors.CodeValidation, "concurrency must not be negative")
	}
	if rateLimit < 0 {
		return scanSettings{}, errors.New(errors.CodeValidation, "rate limit must not be negative")
	}

	return scanSettings{
		ports:       spec,
		scanType:    parsedType,
		timeout:     timeout,
		banners:     banners,
		iface:       iface,
		concurrency: concurrency,
		rateLimit:   rateLimit,
		showClosed:  showClosed,
	}, nil
}

// applyProfile overlays profile values onto the config-derived base.
func applyProfile(base config.ScanConfig, p profiles.Profile) config.ScanConfig {
	base.Ports = p.Ports
	base.Type = p.ScanType
	if p.TimeoutMs > 0 {
		base.Timeout = time.Duration(p.TimeoutMs) * time.Millisecond
	}
	if p.Concurrency > 0 {
		base.Concurrency = p.Concurrency
	}
	base.Banners = p.Banner
	base.RateLimit = p.RateLimit
	return base
}

func loadProfile(name string) (profiles.Profile, error) {
	baseDir := cfg.Storage.Dir
	if baseDir == "" {
		var err error
		baseDir, err = storage.DefaultBaseDir()
		if err != nil {
			return profiles.Profile{}, err
		}
	}
	manager, err := profiles.NewManager(baseDir)
	if err != nil {
		return profiles.Profile{}, err
	}
	return manager.Get(name)
}

// scanFailure formats a fatal scan error with its remediation hint.
func scanFailure(err error) error {
	if hint := errors.Hint(err); hint != "" {
		return fmt.Errorf("%w\nHint: %s", err, hint)
	}
	return err
}
