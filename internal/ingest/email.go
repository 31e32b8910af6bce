package ingest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// parseEmail extracts the subject and the plain-text body from an RFC 822
// message. Multipart messages prefer text/plain parts; text/html parts are
// ignored rather than scraped.
func parseEmail(data []byte) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("ingest: parse email: %w", err)
	}

	var b strings.Builder
	if subject := msg.Header.Get("Subject"); subject != "" {
		if decoded, err := new(mime.WordDecoder).DecodeHeader(subject); err == nil {
			subject = decoded
		}
		b.WriteString("Subject: ")
		b.WriteString(subject)
		b.WriteString("\n\n")
	}

	body, err := extractBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return "", err
	}
	b.WriteString(strings.TrimSpace(body))

	return b.String(), nil
}

// extractBody walks one level of the MIME structure, recursing into nested
// multiparts.
func extractBody(contentType, transferEncoding string, body io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return decodePart(transferEncoding, body)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return "", fmt.Errorf("ingest: multipart email without boundary")
	}

	var parts []string
	mr := multipart.NewReader(body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("ingest: read email part: %w", err)
		}
		partType := part.Header.Get("Content-Type")
		mediaType, _, _ := mime.ParseMediaType(partType)
		switch {
		case strings.HasPrefix(mediaType, "multipart/"):
			nested, err := extractBody(partType, part.Header.Get("Content-Transfer-Encoding"), part)
			if err == nil && nested != "" {
				parts = append(parts, nested)
			}
		case mediaType == "text/plain" || mediaType == "":
			text, err := decodePart(part.Header.Get("Content-Transfer-Encoding"), part)
			if err == nil && strings.TrimSpace(text) != "" {
				parts = append(parts, strings.TrimSpace(text))
			}
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("ingest: email contains no text/plain part")
	}
	return strings.Join(parts, "\n\n"), nil
}

// decodePart reads a body applying the declared transfer encoding.
func decodePart(transferEncoding string, r io.Reader) (string, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("ingest: decode email body: %w", err)
	}
	return string(data), nil
}
