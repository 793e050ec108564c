// Package cmd wires the lesson toolkit into a command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "gocausal",
	Short: "Causal inference lessons on simulated data",
	Long: `gocausal runs a small curriculum of causal inference lessons on
simulated data: multiple imputation, propensity score matching,
difference in differences and regression discontinuity. Each lesson
narrates the pitfall of the naive estimate and the correction, with
every number reproducible from the configured seed.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
