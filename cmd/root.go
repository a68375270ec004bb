package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bandaid",
	Short: "Band cue agent: session lifecycle, cue relay, local UI API",
	Long:  `Device agent for band cue sessions. Commands: agent, migrate.`,
	RunE:  runAgent, // default: run the agent (same as "bandaid agent")
}

func init() {
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(migrateCmd)
}

// Execute runs the root command and returns the error (for main to log.Fatal).
func Execute() error {
	return rootCmd.Execute()
}
