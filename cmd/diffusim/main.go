// Command diffusim runs an information diffusion simulation on a random
// directed network and prints a summary of how the items spread.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "diffusim",
		Short: "Information diffusion simulator",
		Long: `diffusim spreads information items across a randomly generated
directed network of entities. Each entity consults, appreciates and
transfers items with its own sampled probabilities; the run reports how
long every item stayed consultable and who appreciated it.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "diffusim %s\n", version)
		},
	}
}
