package embedder

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// knownChatModelFragments contains name fragments that identify
// chat/completion models which are not suitable for embedding. If
// EMBEDDING_MODEL matches any of these, a warning is emitted so the operator
// knows they may have misconfigured the pipeline.
var knownChatModelFragments = []string{
	"gpt-4",
	"gpt-3.5",
	"gpt-35",
	"o1",
	"o3",
	"gemini-1",
	"gemini-2",
	"llama3",
	"llama2",
	"llama-3",
	"llama-2",
	"mistral",
	"mixtral",
	"gemma",
	"phi-",
	"phi3",
	"claude",
	"command-r",
	"deepseek",
	"qwen",
}

// looksLikeChatModel returns true when the model name resembles a known
// chat/completion model rather than a dedicated embedding model.
func looksLikeChatModel(model string) bool {
	lower := strings.ToLower(model)
	for _, fragment := range knownChatModelFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Validate checks that the embedder configuration resolvable from the
// environment is usable. It returns an error when the configuration is
// clearly broken (a backend with no API key) and logs a warning when
// EMBEDDING_MODEL looks like a chat model.
//
// This is a pre-flight check. Call it at startup so operators get a clear
// error immediately rather than a cryptic failure during the first embed
// call of a request.
func Validate(log *slog.Logger) error {
	backend := os.Getenv("EMBEDDING_PROVIDER")
	if backend == "" {
		backend = getEnvOrDefault("MODEL_PROVIDER", "gemini")
	}

	switch backend {
	case "gemini":
		if os.Getenv("EMBEDDING_API_KEY") == "" && os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
			return fmt.Errorf("embedder: no Gemini API key found, set GEMINI_API_KEY, GOOGLE_API_KEY, or EMBEDDING_API_KEY")
		}
	case "openai":
		if os.Getenv("EMBEDDING_API_KEY") == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("embedder: no OpenAI API key found, set OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
	case "ollama":
		// Local backend, nothing to validate.
	default:
		return fmt.Errorf("embedder: unknown backend %q (valid values: gemini, openai, ollama)", backend)
	}

	if model := os.Getenv("EMBEDDING_MODEL"); model != "" && looksLikeChatModel(model) {
		log.Warn("EMBEDDING_MODEL looks like a chat model, not an embedding model; "+
			"this will likely produce poor or broken embeddings",
			slog.String("model", model),
			slog.String("hint", "use a dedicated embedding model e.g. text-embedding-004, nomic-embed-text"),
		)
	}

	return nil
}
