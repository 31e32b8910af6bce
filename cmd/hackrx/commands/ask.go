package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shreyr69/hackrx/internal/logging"
)

// NewAskCmd constructs the `hackrx ask` command, which answers one or more
// questions against a document URL directly from the terminal.
func NewAskCmd() *cobra.Command {
	var documentURL string

	cmd := &cobra.Command{
		Use:   "ask [question]...",
		Short: "Answer questions about a document",
		Long: `Download a document and answer one or more natural language questions
against its content. Each answer is grounded strictly in the document;
questions the document does not cover are reported as not found.

Examples:
  hackrx ask --document https://example.com/policy.pdf "What is the grace period?"
  hackrx ask -d https://example.com/contract.docx "Who are the parties?" "What is the term?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			pipeline, _, cleanup, err := buildPipeline(ctx, log)
			defer cleanup()
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			results, err := pipeline.Run(ctx, documentURL, args)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			for i, res := range results {
				if len(results) > 1 {
					fmt.Printf("Q%d: %s\n", i+1, args[i])
				}
				if res.Err != nil {
					fmt.Printf("error: %v\n", res.Err)
				} else {
					fmt.Println(res.Answer)
				}
				if len(results) > 1 && i < len(results)-1 {
					fmt.Println()
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&documentURL, "document", "d", "", "URL of the document to answer against")
	_ = cmd.MarkFlagRequired("document")

	return cmd
}
