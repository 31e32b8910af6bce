// Package ingest turns a document URL into clean plain text. It fetches the
// raw bytes, detects the document kind from the URL and response headers, and
// dispatches to the matching parser (PDF, DOCX, email, plain text).
package ingest

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/Shreyr69/hackrx/internal/textchunk"
)

// Kind identifies a supported document format.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindDOCX  Kind = "docx"
	KindEmail Kind = "email"
	KindPlain Kind = "plain"
)

// DetectKind infers the document kind from the URL path extension first and
// the declared content type second. Unrecognized documents default to PDF,
// the dominant format for policy documents.
func DetectKind(rawURL, contentType string) Kind {
	if u, err := url.Parse(rawURL); err == nil {
		switch strings.ToLower(path.Ext(u.Path)) {
		case ".pdf":
			return KindPDF
		case ".docx":
			return KindDOCX
		case ".eml", ".msg":
			return KindEmail
		case ".txt", ".md":
			return KindPlain
		}
	}

	ct := strings.ToLower(contentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "application/pdf":
		return KindPDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return KindDOCX
	case "message/rfc822":
		return KindEmail
	case "text/plain", "text/markdown":
		return KindPlain
	}

	return KindPDF
}

// Parse extracts plain text from raw document bytes according to kind.
func Parse(data []byte, kind Kind) (string, error) {
	switch kind {
	case KindPDF:
		return parsePDF(data)
	case KindDOCX:
		return parseDOCX(data)
	case KindEmail:
		return parseEmail(data)
	case KindPlain:
		return string(data), nil
	default:
		return "", fmt.Errorf("ingest: unsupported document kind %q", kind)
	}
}

// Ingest fetches the document at rawURL, parses it, and returns normalized
// text ready for chunking.
func Ingest(ctx context.Context, rawURL string) (string, error) {
	data, contentType, err := Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	text, err := Parse(data, DetectKind(rawURL, contentType))
	if err != nil {
		return "", err
	}
	clean := textchunk.Clean(text)
	if clean == "" {
		return "", fmt.Errorf("ingest: document at %s contains no extractable text", rawURL)
	}
	return clean, nil
}
