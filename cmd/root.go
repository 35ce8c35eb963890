// Package cmd contains the counsel CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "counsel",
	Short: "Counsel - knowledge-grounded answer engine",
	Long: `Counsel answers questions from a curated knowledge base and article
corpus, grounding every generated answer in the sources it cites.

Running counsel without arguments starts an interactive chat session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
