// Package textchunk splits cleaned document text into bounded, overlapping
// passages for retrieval. Paragraphs that fit the target word budget are kept
// whole; oversized paragraphs are rebuilt from sentences with a configurable
// word overlap between consecutive chunks so that clause boundaries are not
// lost at chunk edges.
package textchunk

import (
	"regexp"
	"strings"
	"unicode"
)

// Chunk is a contiguous span of document text, the atomic unit of retrieval.
// IDs are assigned in emission order, gapless from zero, after the
// minimum-length filter has been applied.
type Chunk struct {
	// ID is the position of this chunk in the final emitted sequence.
	ID int
	// Text is the chunk content. Never empty.
	Text string
}

// Options holds the chunking parameters. Zero fields take the defaults below.
type Options struct {
	// TargetWords is the word budget per chunk (default 100).
	TargetWords int
	// OverlapWords is how many trailing words of a closed chunk seed the
	// next one (default 20). Zero disables overlap.
	OverlapWords int
	// MinWords is the minimum word count for a chunk to be emitted
	// (default 10). Shorter fragments add noise without context.
	MinWords int
}

// Default chunking parameters, tuned for precise retrieval over
// clause-structured documents.
const (
	DefaultTargetWords  = 100
	DefaultOverlapWords = 20
	DefaultMinWords     = 10
)

// withDefaults fills zero fields. A negative OverlapWords is clamped to zero;
// MinWords may be explicitly negative to disable the filter.
func (o Options) withDefaults() Options {
	if o.TargetWords <= 0 {
		o.TargetWords = DefaultTargetWords
	}
	if o.OverlapWords < 0 {
		o.OverlapWords = 0
	}
	if o.MinWords == 0 {
		o.MinWords = DefaultMinWords
	}
	return o
}

var (
	// crlf normalises Windows and old-Mac line endings.
	crlf = strings.NewReplacer("\r\n", "\n", "\r", "\n")
	// reSpaces collapses runs of spaces and tabs, leaving newlines alone.
	reSpaces = regexp.MustCompile(`[ \t]+`)
	// reSpacedNewline strips spaces hugging a newline.
	reSpacedNewline = regexp.MustCompile(` ?\n ?`)
	// reBlankRuns collapses three or more newlines to one blank line.
	reBlankRuns = regexp.MustCompile(`\n{3,}`)
	// reParagraph splits on blank-line boundaries.
	reParagraph = regexp.MustCompile(`\n\s*\n`)
)

// Clean normalises raw extracted text: non-breaking spaces become plain
// spaces, line endings become \n, horizontal whitespace runs collapse, and
// runs of blank lines collapse to a single blank line. Blank lines are
// preserved (not flattened away) because they are the paragraph boundaries
// [Split] relies on.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, " ", " ")
	text = crlf.Replace(text)
	text = reSpaces.ReplaceAllString(text, " ")
	text = reSpacedNewline.ReplaceAllString(text, "\n")
	text = reBlankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Split chunks text according to opts. Paragraphs within the word budget are
// emitted verbatim; larger paragraphs are accumulated sentence by sentence,
// closing a chunk when the next sentence would overflow the budget and
// seeding the successor with the closed chunk's trailing words. A single
// sentence longer than the budget is emitted whole rather than truncated.
// After all chunks are built, those below the MinWords floor are dropped and
// the survivors are re-sequenced so IDs are gapless from zero.
//
// Empty input yields nil; callers treat that as a hard failure.
func Split(text string, opts Options) []Chunk {
	opts = opts.withDefaults()

	var texts []string
	for _, para := range splitParagraphs(text) {
		if len(strings.Fields(para)) <= opts.TargetWords {
			texts = append(texts, para)
			continue
		}
		texts = append(texts, splitSentencewise(para, opts)...)
	}

	chunks := make([]Chunk, 0, len(texts))
	for _, t := range texts {
		if opts.MinWords > 0 && len(strings.Fields(t)) < opts.MinWords {
			continue
		}
		chunks = append(chunks, Chunk{ID: len(chunks), Text: t})
	}
	if len(chunks) == 0 {
		return nil
	}
	return chunks
}

// splitSentencewise rebuilds an oversized paragraph into chunk texts by
// accumulating sentences into a word buffer.
func splitSentencewise(para string, opts Options) []string {
	var out []string
	var buf []string

	for _, sent := range splitSentences(para) {
		words := strings.Fields(sent)
		if len(buf)+len(words) <= opts.TargetWords {
			buf = append(buf, words...)
			continue
		}

		if len(buf) > 0 {
			out = append(out, strings.Join(buf, " "))
		}

		if opts.OverlapWords > 0 && len(buf) > 0 {
			k := min(opts.OverlapWords, len(buf))
			seeded := make([]string, 0, k+len(words))
			seeded = append(seeded, buf[len(buf)-k:]...)
			buf = append(seeded, words...)
		} else {
			buf = append([]string(nil), words...)
		}
	}

	if len(buf) > 0 {
		out = append(out, strings.Join(buf, " "))
	}
	return out
}

// splitParagraphs splits text on blank-line boundaries, dropping empties.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range reParagraph.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences splits a paragraph at sentence-terminal punctuation followed
// by whitespace and an uppercase start. This is a heuristic boundary, not a
// grammar: RE2 has no lookarounds, so the scan is done by hand.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			// A boundary needs whitespace after the terminator and an
			// uppercase letter opening the next sentence.
			if j > i+1 && j < len(runes) && unicode.IsUpper(runes[j]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					sentences = append(sentences, s)
				}
				start = j
				i = j - 1
			}
		}
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
