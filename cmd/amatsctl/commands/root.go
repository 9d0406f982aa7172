package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "amatsctl",
	Short:        "Operator tooling for AMATS account suspensions",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newEncodeCmd())
	rootCmd.AddCommand(newDescribeCmd())
	rootCmd.AddCommand(newCountdownCmd())
}
