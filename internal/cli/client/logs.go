package client

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func LogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List recent summary requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cursor, _ := cmd.Flags().GetString("cursor")
			limit, _ := cmd.Flags().GetInt("limit")

			page, err := NewAPIClientWithCmd(cmd).ListSummaries(context.Background(), cursor, limit)
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("output"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tSTATUS\tKIND\tMODE\tMS\tLINK\tTITLE")
			for _, l := range page.Items {
				title := l.Title
				if title == "" {
					title = l.ErrorMessage
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\t%s\n", l.CreatedAt, l.StatusCode, l.Kind, l.Mode, l.DurationMs, l.Link, title)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if page.HasMore {
				fmt.Fprintf(cmd.OutOrStdout(), "\nnext page: --cursor %s\n", page.Cursor)
			}
			return nil
		},
	}

	cmd.Flags().String("cursor", "", "Cursor from a previous page")
	cmd.Flags().Int("limit", 20, "Entries per page (max 100)")

	return cmd
}
