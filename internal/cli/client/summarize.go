package client

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func SummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <link>",
		Short: "Summarize a YouTube video or web page",
		Long: `Ask a running linkdigest server to summarize a link.

The first line of the output is the title; the rest is the summary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := SummarizeRequest{Link: args[0]}

			req.GroqAPIKey, _ = cmd.Flags().GetString("groq-api-key")
			if req.GroqAPIKey == "" {
				req.GroqAPIKey = os.Getenv("GROQ_API_KEY")
			}
			if cmd.Flags().Changed("temperature") {
				temp, _ := cmd.Flags().GetFloat64("temperature")
				req.Temperature = &temp
			}
			req.Mode, _ = cmd.Flags().GetString("mode")
			withEmbeddings, _ := cmd.Flags().GetBool("embeddings")

			message, err := NewAPIClientWithCmd(cmd).Summarize(context.Background(), req, withEmbeddings)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}

	cmd.Flags().String("groq-api-key", "", "Groq API key (default $GROQ_API_KEY)")
	cmd.Flags().Float64("temperature", 0, "Sampling temperature in [0, 1]")
	cmd.Flags().String("mode", "", "Context mode: direct or retrieval (server default when empty)")
	cmd.Flags().Bool("embeddings", false, "Use the with-embeddings route")

	return cmd
}
