// Package main is the vegifarm storefront command.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "vegifarm",
	Short:        "Vegifarm storefront",
	Long:         `Runs the vegifarm storefront API and its translation tooling.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkTranslationsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
