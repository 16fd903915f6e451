package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bwops/metastack/config"
	"github.com/bwops/metastack/internal/app"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "metastack",
	Short:         "Analytics stack controller",
	Long:          rootDescription,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "/etc/metastack.yml", "config file path")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(stackCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(sslCmd)
	rootCmd.AddCommand(etlCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(initCfgCmd)
}

// loadConfig parses the config file plus environment overrides.
func loadConfig() *config.AppConfig {
	cfg := config.LoadConfig(cfgFile)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// loadApp builds a fully initialized application (database, logging,
// settings). Commands that only shell out to docker skip this and call
// loadConfig directly.
func loadApp() *app.Application {
	cfg := loadConfig()
	a := app.NewApplication(cfg)
	a.Init(cfg)
	return a
}

// Execute runs the CLI. Any command error exits non-zero so shell callers
// and cron can gate on the result.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
