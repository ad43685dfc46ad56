package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zboard/zboard/pkg/logger"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "zboard",
	Short: "Zboard - whiteboard mathematics to LaTeX converter",
	Long: `Zboard converts plain-text whiteboard mathematics to LaTeX markup.

It understands an ASCII notation for Z-style set theory and predicate
logic (schemas, axiomatic definitions, free types, quantifiers, proof
outlines, truth tables) and emits a LaTeX document in either the fuzz
or the zed-csp dialect.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.InitDev()
		} else {
			logger.InitQuiet()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: discover .zboard.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
