// Package tracing wires the optional Langfuse observability callback into
// the eino model calls. Tracing is opt-in: without credentials the pipeline
// runs exactly as before, no handler registered.
package tracing

import (
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
)

// defaultHost targets a locally running Langfuse instance.
const defaultHost = "http://localhost:3000"

// Setup builds a Langfuse callback handler from LANGFUSE_PUBLIC_KEY,
// LANGFUSE_SECRET_KEY, and LANGFUSE_HOST. The boolean reports whether
// tracing is configured; when it is, the caller must invoke the returned
// flush function before exit so buffered generation traces are delivered.
func Setup() (callbacks.Handler, func(), bool) {
	publicKey := os.Getenv("LANGFUSE_PUBLIC_KEY")
	secretKey := os.Getenv("LANGFUSE_SECRET_KEY")
	if publicKey == "" || secretKey == "" {
		return nil, nil, false
	}

	host := os.Getenv("LANGFUSE_HOST")
	if host == "" {
		host = defaultHost
	}

	handler, flush := langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      host,
		PublicKey: publicKey,
		SecretKey: secretKey,
	})
	return handler, flush, true
}
