// Package cli provides command-line interface commands for the Scuttle
// port scanner. This package implements the Cobra-based CLI structure
// with commands for scanning, scan history, profiles, and exporting
// results.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HueCodes/Scuttle/internal/config"
	"github.com/HueCodes/Scuttle/internal/logging"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scuttle",
	Short: "Fast concurrent port scanner",
	Long: `Scuttle is a concurrent port scanner supporting TCP connect, SYN
stealth, and UDP scans with rate limiting, banner grabbing, and
persistent scan history.`,
	Version: getVersion(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.scuttle/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind verbose flag: %v\n", err)
	}
}

// initConfig reads in the config file and ENV variables if set.
func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}

	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("SCUTTLE")

	loaded, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		loaded = config.Default()
	}
	cfg = loaded

	if verbose {
		if _, statErr := os.Stat(path); statErr == nil {
			fmt.Fprintln(os.Stderr, "Using config file:", path)
		}
	}

	initLogging()
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
}

// initLogging initializes structured logging based on configuration.
func initLogging() {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}

	logConfig := logging.Config{
		Level:     logging.LogLevel(level),
		Format:    logging.LogFormat(cfg.Logging.Format),
		Output:    cfg.Logging.Output,
		AddSource: level == "debug",
	}

	logger, err := logging.New(logConfig)
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	logging.SetDefault(logger)
}
