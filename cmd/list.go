package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gocausal/internal/lesson"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available lessons",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range lesson.Names() {
			l, err := lesson.Default(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, l.Title())
			fmt.Fprintf(cmd.OutOrStdout(), "               %s\n", l.Brief())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
