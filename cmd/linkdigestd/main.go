package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/linkdigest/internal/cli/daemon"
	"github.com/cloo-solutions/linkdigest/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "linkdigestd",
		Short: "linkdigest server",
		Long: `linkdigest summarizes YouTube videos and web pages with an LLM.

Configuration is read from LINKDIGEST_* environment variables (and .env).
Flags override the environment.`,
		Version:      version,
		SilenceUsage: true,
	}

	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(daemon.ServeCmd())
	rootCmd.AddCommand(daemon.SummarizeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
