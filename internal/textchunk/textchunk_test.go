package textchunk

import (
	"fmt"
	"strings"
	"testing"
)

// words builds a space-joined run of n distinct words ("w0 w1 ... wn-1").
func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestClean(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"nbsp", "a b", "a b"},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"space runs", "a   \t b", "a b"},
		{"blank line preserved", "para one.\n\npara two.", "para one.\n\npara two."},
		{"blank runs collapsed", "one.\n\n\n\n\ntwo.", "one.\n\ntwo."},
		{"trimmed", "  hello  ", "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Clean(tc.in); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			"two sentences",
			"Claims must be filed. Pre-existing conditions apply.",
			[]string{"Claims must be filed.", "Pre-existing conditions apply."},
		},
		{
			"no uppercase after period is not a boundary",
			"See section 4.2 of the policy.",
			[]string{"See section 4.2 of the policy."},
		},
		{
			"question and exclamation",
			"Is it covered? Yes! Read on.",
			[]string{"Is it covered?", "Yes!", "Read on."},
		},
		{
			"single sentence no terminator",
			"no terminal punctuation here",
			[]string{"no terminal punctuation here"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := splitSentences(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d sentences %v, want %d", len(got), got, len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	t.Parallel()
	if got := Split("", Options{}); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestSplit_SmallParagraphKeptVerbatim(t *testing.T) {
	t.Parallel()
	para := "Clause one covers hospitalization expenses for all insured members of the family."
	got := Split(para, Options{TargetWords: 50})
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0].Text != para {
		t.Errorf("paragraph not preserved verbatim: %q", got[0].Text)
	}
	if got[0].ID != 0 {
		t.Errorf("first chunk id = %d, want 0", got[0].ID)
	}
}

func TestSplit_IDsGaplessAfterFilter(t *testing.T) {
	t.Parallel()
	// Three paragraphs; the middle one is below the 10-word floor and must
	// be dropped without leaving an id gap.
	text := words(15) + ".\n\ntoo short.\n\n" + words(12) + "."
	got := Split(text, Options{TargetWords: 50})
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks after filter, got %d", len(got))
	}
	for i, c := range got {
		if c.ID != i {
			t.Errorf("chunk %d has id %d, want %d (ids must be re-sequenced post-filter)", i, c.ID, i)
		}
	}
}

func TestSplit_OverlapInvariant(t *testing.T) {
	t.Parallel()
	// One oversized paragraph of uniform sentences, each 10 words:
	// "S0 w1 ... w9. S1 w1 ... w9. ..." with uppercase sentence starts.
	var sb strings.Builder
	for s := 0; s < 12; s++ {
		sb.WriteString(fmt.Sprintf("S%d", s))
		for w := 1; w < 10; w++ {
			sb.WriteString(fmt.Sprintf(" s%dw%d", s, w))
		}
		sb.WriteString(". ")
	}

	const overlap = 5
	got := Split(sb.String(), Options{TargetWords: 30, OverlapWords: overlap})
	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}

	for i := 0; i < len(got)-1; i++ {
		prev := strings.Fields(got[i].Text)
		next := strings.Fields(got[i+1].Text)
		if len(prev) < overlap {
			continue
		}
		tail := prev[len(prev)-overlap:]
		head := next[:overlap]
		for k := range tail {
			if tail[k] != head[k] {
				t.Fatalf("overlap broken between chunks %d and %d: tail %v, head %v",
					got[i].ID, got[i+1].ID, tail, head)
			}
		}
	}
}

func TestSplit_CoverageNoWordsDropped(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	for s := 0; s < 8; s++ {
		sb.WriteString(fmt.Sprintf("S%d", s))
		for w := 1; w < 12; w++ {
			sb.WriteString(fmt.Sprintf(" s%dw%d", s, w))
		}
		sb.WriteString(". ")
	}
	original := strings.Fields(sb.String())

	got := Split(sb.String(), Options{TargetWords: 25, OverlapWords: 0})

	// With overlap disabled, concatenating all chunks must reproduce the
	// original word sequence exactly.
	var rebuilt []string
	for _, c := range got {
		rebuilt = append(rebuilt, strings.Fields(c.Text)...)
	}
	if len(rebuilt) != len(original) {
		t.Fatalf("word count mismatch: got %d, want %d", len(rebuilt), len(original))
	}
	for i := range rebuilt {
		if rebuilt[i] != original[i] {
			t.Fatalf("word %d = %q, want %q", i, rebuilt[i], original[i])
		}
	}
}

func TestSplit_OversizedSentenceEmittedWhole(t *testing.T) {
	t.Parallel()
	// A single 40-word sentence with a 20-word budget must come out as one
	// oversized chunk, never truncated.
	long := "Start " + words(39) + "."
	got := Split(long, Options{TargetWords: 20})
	if len(got) != 1 {
		t.Fatalf("expected 1 oversized chunk, got %d", len(got))
	}
	if n := len(strings.Fields(got[0].Text)); n != 40 {
		t.Errorf("oversized chunk has %d words, want 40", n)
	}
}

func TestSplit_OverlapZeroDisablesSeeding(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	for s := 0; s < 6; s++ {
		sb.WriteString(fmt.Sprintf("S%d", s))
		for w := 1; w < 12; w++ {
			sb.WriteString(fmt.Sprintf(" u%dw%d", s, w))
		}
		sb.WriteString(". ")
	}
	got := Split(sb.String(), Options{TargetWords: 25, OverlapWords: 0})
	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}
	for i := 0; i < len(got)-1; i++ {
		prevTail := strings.Fields(got[i].Text)
		nextHead := strings.Fields(got[i+1].Text)
		if prevTail[len(prevTail)-1] == nextHead[0] {
			t.Errorf("chunks %d/%d share a boundary word with overlap disabled", i, i+1)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	t.Parallel()
	text := words(60) + ".\n\n" + words(30) + "."
	a := Split(text, Options{TargetWords: 20, OverlapWords: 5})
	b := Split(text, Options{TargetWords: 20, OverlapWords: 5})
	if len(a) != len(b) {
		t.Fatalf("non-deterministic chunk count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
