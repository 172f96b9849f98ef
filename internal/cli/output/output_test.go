package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"text":     ModeText,
		"markdown": ModeMarkdown,
		"md":       ModeMarkdown,
		"json":     ModeJSON,
		"auto":     ModeAuto,
		"":         ModeAuto,
		"bogus":    ModeAuto,
	}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEffectiveMode_AutoResolvesForPipes(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeAuto)

	// A bytes.Buffer is not a terminal.
	if got := r.EffectiveMode(); got != ModeMarkdown {
		t.Errorf("expected markdown for non-terminal writer, got %q", got)
	}

	r = NewRenderer(&buf, &buf, ModeJSON)
	if got := r.EffectiveMode(); got != ModeJSON {
		t.Errorf("explicit mode must stick, got %q", got)
	}
}

func TestRenderer_Writes(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeMarkdown)

	r.Println("hello")
	r.Printf("x=%d\n", 7)
	r.Errorf("boom %s", "now")

	if got := out.String(); got != "hello\nx=7\n" {
		t.Errorf("unexpected output: %q", got)
	}
	if got := errOut.String(); got != "boom now\n" {
		t.Errorf("unexpected error output: %q", got)
	}
}

func TestRenderer_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeJSON)

	payload := ListOutput{
		Summary: ListSummary{TotalDistributions: 2},
	}
	if err := r.JSON(payload); err != nil {
		t.Fatalf("JSON() failed: %v", err)
	}

	var decoded ListOutput
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if decoded.Summary.TotalDistributions != 2 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatHeader(2, "Extras"); got != "## Extras" {
		t.Errorf("FormatHeader: %q", got)
	}
	if got := FormatHeader(0, "x"); got != "# x" {
		t.Errorf("FormatHeader clamps low: %q", got)
	}
	if got := FormatKeyValue("File", "setup.cfg"); got != "- **File:** setup.cfg" {
		t.Errorf("FormatKeyValue: %q", got)
	}

	block := FormatCodeBlock("ini", "[mypy]\nstrict = True\n")
	if !strings.HasPrefix(block, "```ini\n") || !strings.HasSuffix(block, "\n```") {
		t.Errorf("FormatCodeBlock: %q", block)
	}
	if strings.Contains(block, "True\n\n") {
		t.Errorf("trailing newline not trimmed: %q", block)
	}
}

func TestHeader_MarkdownMode(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, &buf, ModeMarkdown)

	r.Header(1, "Distributions")
	if !strings.HasPrefix(buf.String(), "# Distributions\n") {
		t.Errorf("unexpected header output: %q", buf.String())
	}
}
