package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zgpcy/azure-quota-watch/internal/azure"
	"github.com/zgpcy/azure-quota-watch/internal/config"
	"github.com/zgpcy/azure-quota-watch/internal/report"
	"github.com/zgpcy/azure-quota-watch/internal/scan"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one quota scan and report resources nearing their limits",
	Long: `Check runs a single scan over every configured subscription, provider
and region, reconciles usage against quota limits, and logs a warning
for each resource above the threshold. Any API or authentication
failure aborts the scan and exits non-zero.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringSlice("subscriptions", nil, "subscription IDs to scan, as id or id:name")
	checkCmd.Flags().Float64("threshold", config.DefaultThreshold, "warning threshold in percent")
	checkCmd.Flags().StringSlice("regions", nil, "regions to scan (default from config)")
	checkCmd.Flags().StringSlice("providers", nil, "resource providers to scan (default from config)")
	checkCmd.Flags().Bool("detailed", false, "print a per-resource table for each provider/region pair")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("subscriptions") {
		items, _ := cmd.Flags().GetStringSlice("subscriptions")
		cfg.Subscriptions = config.ParseSubscriptions(items)
	}
	if cmd.Flags().Changed("threshold") {
		t, _ := cmd.Flags().GetFloat64("threshold")
		cfg.Threshold = &t
	}
	if cmd.Flags().Changed("regions") {
		cfg.Regions, _ = cmd.Flags().GetStringSlice("regions")
	}
	if cmd.Flags().Changed("providers") {
		cfg.Providers, _ = cmd.Flags().GetStringSlice("providers")
	}
	detailed, _ := cmd.Flags().GetBool("detailed")

	if len(cfg.Subscriptions) == 0 {
		return fmt.Errorf("no subscriptions configured: set subscriptions in the config file, AZQUOTA_SUBSCRIPTIONS, or --subscriptions")
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log := newLogger(cfg)

	cred, err := azure.NewCredential(cfg)
	if err != nil {
		return err
	}

	client := azure.NewClient(cfg, log)
	reporter := report.New(log, os.Stdout, detailed)
	runner := scan.NewRunner(client, cred, cfg, log, reporter)

	if _, err := runner.Scan(cmd.Context()); err != nil {
		return err
	}
	return nil
}
