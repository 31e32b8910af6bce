package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/document"
)

// parseDOCX extracts paragraph text from a Word document. Paragraphs become
// blank-line separated blocks so document structure survives into chunking.
func parseDOCX(data []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("ingest: open docx: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for _, para := range doc.Paragraphs() {
		var line strings.Builder
		for _, run := range para.Runs() {
			line.WriteString(run.Text())
		}
		text := strings.TrimSpace(line.String())
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("ingest: docx contains no extractable text")
	}
	return b.String(), nil
}
