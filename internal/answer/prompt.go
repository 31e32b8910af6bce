package answer

import (
	"fmt"
	"strings"

	"github.com/Shreyr69/hackrx/internal/rag"
)

// NotFound is the exact reply the model is instructed to give, and the answer
// recorded, when the document does not contain the requested information.
const NotFound = "Information not found in the document."

// maxContextChars caps the rendered context so a pathological retrieval set
// cannot blow the model's input window. Chunks are included whole, in rank
// order, until the budget runs out.
const maxContextChars = 12000

// truncationMarker is appended when at least one retrieved chunk was dropped
// for size.
const truncationMarker = "[additional excerpts omitted]"

// buildContext renders retrieved chunks as labeled excerpt blocks. Each block
// carries the chunk id so an answer can be traced back to its source text.
func buildContext(results []rag.ScoredChunk) string {
	var b strings.Builder
	included := 0
	for _, r := range results {
		block := fmt.Sprintf("[Chunk %d] %s", r.Chunk.ID, r.Chunk.Text)
		if included > 0 && b.Len()+len(block)+2 > maxContextChars {
			b.WriteString("\n\n")
			b.WriteString(truncationMarker)
			break
		}
		if included > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block)
		included++
	}
	return b.String()
}

// buildPrompt renders the full generation prompt for one question.
func buildPrompt(contextText, question string) string {
	var b strings.Builder
	b.WriteString("Answer the question using ONLY the document excerpts below.\n")
	b.WriteString("Quote specific conditions, durations, and amounts when the excerpts state them.\n")
	b.WriteString("If the excerpts do not contain the answer, reply with exactly: ")
	b.WriteString(NotFound)
	b.WriteString("\n\nExcerpts:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}
