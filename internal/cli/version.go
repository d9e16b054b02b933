package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zgpcy/azure-quota-watch/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		info := version.Info()
		fmt.Printf("quotawatch version %s (commit %s, built %s, %s)\n",
			info["version"], info["git_commit"], info["build_date"], info["go_version"])
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
