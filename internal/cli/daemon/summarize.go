package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/linkdigest/internal/domain"
)

// SummarizeCmd runs the pipeline in-process and prints the summary.
func SummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <link>",
		Short: "Summarize a link without starting the server",
		Long: `Summarize a YouTube video or web page in-process.

The Groq key defaults to GROQ_API_KEY. It is not needed when a local LLM is configured.`,
		Args: cobra.ExactArgs(1),
		RunE: runSummarize,
	}

	cmd.Flags().String("groq-api-key", "", "Groq API key (default $GROQ_API_KEY)")
	cmd.Flags().Float64("temperature", 0, "Sampling temperature in [0, 1]")
	cmd.Flags().Bool("embeddings", false, "Use retrieval mode (same as --mode retrieval)")
	cmd.Flags().Bool("json", false, "Print title and body as JSON")

	return cmd
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	shutdownTelemetry := initTelemetry(cfg)
	defer shutdownTelemetry()

	req := domain.SummaryRequest{Link: args[0]}

	req.GroqAPIKey, _ = cmd.Flags().GetString("groq-api-key")
	if req.GroqAPIKey == "" {
		req.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	}
	if cmd.Flags().Changed("temperature") {
		temp, _ := cmd.Flags().GetFloat64("temperature")
		req.Temperature = &temp
	}
	if useEmbeddings, _ := cmd.Flags().GetBool("embeddings"); useEmbeddings {
		req.Mode = domain.ModeRetrieval
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	out, err := NewSummaryService(cfg).Summarize(ctx, req)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"title":   out.Result.Title,
			"body":    out.Result.Body,
			"mode":    out.Mode,
			"backend": out.Backend,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), out.Message)
	return nil
}
