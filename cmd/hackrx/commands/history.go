package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Shreyr69/hackrx/internal/store"
)

// NewHistoryCmd constructs the `hackrx history` command, which lists recent
// question runs from the local history database.
func NewHistoryCmd() *cobra.Command {
	var documentURL string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent question runs",
		Long: `Show the most recent question runs recorded in the local history
database, newest first.

Examples:
  hackrx history
  hackrx history --limit 5
  hackrx history --document https://example.com/policy.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dbPath := os.Getenv("HACKRX_HISTORY_DB")
			if dbPath == "" || dbPath == "disabled" {
				var err error
				dbPath, err = store.DefaultDBPath()
				if err != nil {
					return fmt.Errorf("history: %w", err)
				}
			}

			hs, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("history: failed to open %s: %w", dbPath, err)
			}
			defer func() { _ = hs.Close() }()

			records, err := hs.Recent(ctx, documentURL, limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if len(records) == 0 {
				fmt.Println("no history")
				return nil
			}

			for _, rec := range records {
				fmt.Printf("[%s] %s (%s, %dms)\n", rec.CreatedAt.Format("2006-01-02 15:04:05"),
					rec.DocumentURL, rec.Status, rec.Duration.Milliseconds())
				fmt.Printf("  Q: %s\n", rec.Question)
				fmt.Printf("  A: %s\n", rec.Answer)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&documentURL, "document", "d", "", "Only show runs for this document URL")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show")

	return cmd
}
