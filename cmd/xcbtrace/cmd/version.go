package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"boscoin.io/xcb/pkg/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(c *cobra.Command, args []string) {
		fmt.Fprintf(c.OutOrStdout(), "%s\n", version.ToDetailVersion())
	},
}
