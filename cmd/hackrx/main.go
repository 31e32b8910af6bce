// Command hackrx is the entry point for the document question-answering
// service. It provides a CLI interface (via Cobra) and an HTTP server
// exposing the /api/v1/hackrx/run endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Shreyr69/hackrx/cmd/hackrx/commands"
)

func main() {
	// Load a .env file when present. Missing files are fine; real
	// environment variables always take precedence.
	_ = godotenv.Load()

	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
