package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDetectKind(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name        string
		url         string
		contentType string
		want        Kind
	}{
		{"pdf extension", "https://example.com/policy.pdf?token=abc", "", KindPDF},
		{"docx extension", "https://example.com/files/policy.DOCX", "", KindDOCX},
		{"eml extension", "https://example.com/mail.eml", "", KindEmail},
		{"txt extension", "https://example.com/notes.txt", "", KindPlain},
		{"extension beats content type", "https://example.com/doc.docx", "application/pdf", KindDOCX},
		{"content type fallback", "https://example.com/download", "application/pdf", KindPDF},
		{"content type with charset", "https://example.com/d", "text/plain; charset=utf-8", KindPlain},
		{"rfc822 content type", "https://example.com/d", "message/rfc822", KindEmail},
		{"unknown defaults to pdf", "https://example.com/d", "application/octet-stream", KindPDF},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := DetectKind(tc.url, tc.contentType); got != tc.want {
				t.Errorf("DetectKind(%q, %q) = %q, want %q", tc.url, tc.contentType, got, tc.want)
			}
		})
	}
}

func TestParse_Plain(t *testing.T) {
	t.Parallel()
	got, err := Parse([]byte("hello world"), KindPlain)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestParse_UnknownKind(t *testing.T) {
	t.Parallel()
	if _, err := Parse([]byte("x"), Kind("spreadsheet")); err == nil {
		t.Fatal("expected error for unsupported kind")
	}
}

func TestParseEmail_SimpleBody(t *testing.T) {
	t.Parallel()
	raw := "Subject: Policy update\r\n" +
		"From: a@example.com\r\n" +
		"\r\n" +
		"The waiting period is 2 years.\r\n"
	got, err := parseEmail([]byte(raw))
	if err != nil {
		t.Fatalf("parseEmail: %v", err)
	}
	if !strings.Contains(got, "Subject: Policy update") {
		t.Errorf("subject missing from %q", got)
	}
	if !strings.Contains(got, "The waiting period is 2 years.") {
		t.Errorf("body missing from %q", got)
	}
}

func TestParseEmail_MultipartPrefersPlainText(t *testing.T) {
	t.Parallel()
	raw := "Subject: Claims\r\n" +
		"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
		"\r\n" +
		"--b1\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"File claims within 30 days.\r\n" +
		"--b1\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>File claims within 30 days.</p>\r\n" +
		"--b1--\r\n"
	got, err := parseEmail([]byte(raw))
	if err != nil {
		t.Fatalf("parseEmail: %v", err)
	}
	if !strings.Contains(got, "File claims within 30 days.") {
		t.Errorf("plain part missing from %q", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("html part leaked into %q", got)
	}
}

func TestParseEmail_QuotedPrintable(t *testing.T) {
	t.Parallel()
	raw := "Subject: Test\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"30=20days\r\n"
	got, err := parseEmail([]byte(raw))
	if err != nil {
		t.Fatalf("parseEmail: %v", err)
	}
	if !strings.Contains(got, "30 days") {
		t.Errorf("quoted-printable not decoded: %q", got)
	}
}

func TestFetch_NonOKStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, _, err := Fetch(context.Background(), srv.URL+"/doc.pdf"); err == nil {
		t.Fatal("expected error for HTTP 404")
	}
}

func TestIngest_PlainDocument(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Clause 1.\n\n\n\nClause   2."))
	}))
	defer srv.Close()

	got, err := Ingest(context.Background(), srv.URL+"/policy")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got != "Clause 1.\n\nClause 2." {
		t.Errorf("normalized text = %q", got)
	}
}
