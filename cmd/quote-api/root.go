package main

import "github.com/spf13/cobra"

var (
	pricingFile string
)

var rootCmd = &cobra.Command{
	Use:          "quote-api",
	Short:        "Land clearing quote planner",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(estimateCmd)

	rootCmd.PersistentFlags().StringVarP(&pricingFile, "config", "c", "", "Path to the pricing tables file (YAML or JSON)")
}
