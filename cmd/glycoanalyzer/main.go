package main

import (
	"os"

	"github.com/spf13/cobra"

	"glycoanalyzer/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "glycoanalyzer",
		Short: "Glycoanalyzer - glucometer photo triage service",
		Long:  `Glycoanalyzer reads glycemic values from glucometer photos through an external vision service and triages them for medical follow-up.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
