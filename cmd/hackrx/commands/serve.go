package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/Shreyr69/hackrx/internal/logging"
	"github.com/Shreyr69/hackrx/internal/server"
	"github.com/Shreyr69/hackrx/internal/tracing"
)

// NewServeCmd constructs the `hackrx serve` command, which starts the HTTP
// server exposing the document question-answering API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the hackrx HTTP server",
		Long: `Start the hackrx HTTP server.

The server exposes POST /api/v1/hackrx/run, which downloads a document,
answers the submitted questions against it, and returns one answer per
question. Health, readiness, and Prometheus metrics endpoints are also
served.

Examples:
  hackrx serve
  hackrx serve --port 9090
  MODEL_PROVIDER=openai hackrx serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting",
				slog.String("model_provider", os.Getenv("MODEL_PROVIDER")),
				slog.String("embedding_provider", os.Getenv("EMBEDDING_PROVIDER")))

			// Setup Langfuse tracing. Opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			pipeline, pingers, cleanup, err := buildPipeline(ctx, log)
			defer cleanup()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			srv, err := server.New(pipeline, &server.Config{
				Host:      host,
				Port:      port,
				Logger:    log,
				Pingers:   pingers,
				APIKey:    os.Getenv("HACKRX_API_KEY"),
				RateLimit: envFloat64("HACKRX_RATE_LIMIT"),
				RateBurst: envInt("HACKRX_RATE_BURST"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8000, "TCP port to listen on")

	return cmd
}

// envFloat64 parses the variable as a float, returning 0 when unset or
// malformed so the server falls back to its own default.
func envFloat64(key string) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return 0
	}
	return v
}

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}
