// Package commands defines all Cobra CLI commands for the hackrx binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/Shreyr69/hackrx/internal/audit"
	"github.com/Shreyr69/hackrx/internal/config"
	"github.com/Shreyr69/hackrx/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hackrx",
		Short: "hackrx answers natural language questions about remote documents",
		Long: `hackrx ingests a document from a URL (PDF, DOCX, email, or plain text),
chunks and embeds it, and answers natural language questions grounded
strictly in the document's content.

Model and embedding providers are selected via the MODEL_PROVIDER and
EMBEDDING_PROVIDER environment variables or a YAML config file
(~/.hackrx/config.yaml).
See 'hackrx --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.hackrx/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewServeCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)

	return root
}
