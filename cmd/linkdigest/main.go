package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/linkdigest/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "linkdigest",
		Short: "linkdigest CLI - summarize links with a running server",
		Long: `linkdigest CLI talks to a linkdigest server.

Environment variables:
  LINKDIGEST_API_URL   API base URL (default: http://localhost:8080)
  GROQ_API_KEY         Groq key sent with summary requests`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")

	rootCmd.AddCommand(client.SummarizeCmd())
	rootCmd.AddCommand(client.LogsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
