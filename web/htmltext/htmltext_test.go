package htmltext

import (
	"strings"
	"testing"
)

const samplePage = `
<html>
    <head>
        <title>Sample Page</title>
        <style>
            body { color: black; }
        </style>
    </head>
    <body>
        <h1>Main Title</h1>
        <div>
            <p>First paragraph with <strong>bold</strong> text.</p>
            <p>Second paragraph with <a href="#">link</a>.</p>
            <script>console.log('test');</script>
            <!-- Comment that should be removed -->
        </div>
    </body>
</html>`

func TestExtractText_StripsNonContent(t *testing.T) {
	got := ExtractText(samplePage)

	for _, banned := range []string{"<", ">", "console.log", "color: black", "Comment that should be removed", "Sample Page"} {
		if strings.Contains(got, banned) {
			t.Errorf("output must not contain %q, got:\n%s", banned, got)
		}
	}
	for _, want := range []string{"Main Title", "First paragraph with bold text.", "Second paragraph with link"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q, got:\n%s", want, got)
		}
	}
}

func TestExtractText_InlineElementsJoinWithSpaces(t *testing.T) {
	got := ExtractText("<p>a</p><b>b</b>")
	if got != "a b" {
		t.Errorf("ExtractText = %q, want %q", got, "a b")
	}
}

func TestExtractText_BlockElementsBreakLines(t *testing.T) {
	got := ExtractText("<div>x</div><div>y</div>")
	if got != "x \n y" {
		t.Errorf("ExtractText = %q, want %q", got, "x \n y")
	}
}

func TestExtractText_NoDuplicateBreaks(t *testing.T) {
	// Nested and consecutive block elements must produce a single break.
	got := ExtractText("<div><p><br>x</p></div><div><div>y</div></div>")
	if strings.Contains(got, "\n \n") || strings.Contains(got, "\n\n\n") {
		t.Errorf("found duplicated break markers in %q", got)
	}
	if !strings.Contains(got, "x") || !strings.Contains(got, "y") {
		t.Errorf("content lost: %q", got)
	}
}

func TestExtractText_CollapsesWhitespace(t *testing.T) {
	got := ExtractText("<p>a \t  b\n\n   c</p>")
	if got != "a b c" {
		t.Errorf("ExtractText = %q, want %q", got, "a b c")
	}
}

func TestExtractText_UnclosedMarkup(t *testing.T) {
	got := ExtractText("<div><p>alpha <b>beta")

	if strings.ContainsAny(got, "<>") {
		t.Errorf("output contains tag delimiters: %q", got)
	}
	if got != "alpha beta" {
		t.Errorf("ExtractText = %q, want %q", got, "alpha beta")
	}
}

func TestExtractText_ScriptStyleNeverLeak(t *testing.T) {
	inputs := []string{
		"<script>secret()</script><p>visible</p>",
		"<style>.x{display:none}</style>visible",
		"<SCRIPT>secret()</SCRIPT>visible", // tag names are case-insensitive
		"<script>unclosed() <p>visible</p>",
	}
	for _, in := range inputs {
		got := ExtractText(in)
		if strings.Contains(got, "secret") || strings.Contains(got, "display:none") {
			t.Errorf("ExtractText(%q) leaked non-content: %q", in, got)
		}
	}
}

func TestExtractText_PlainTextFixedPoint(t *testing.T) {
	// Tag-free text with collapsed whitespace passes through unchanged.
	in := "Benzene is a known carcinogen regulated under TSCA."
	if got := ExtractText(in); got != in {
		t.Errorf("ExtractText(plain) = %q, want unchanged", got)
	}

	// One application is a fixed point of a second one.
	once := ExtractText("<p>alpha</p><p>beta gamma</p>")
	twice := ExtractText(once)
	if ExtractText(twice) != twice {
		t.Errorf("ExtractText not idempotent: %q vs %q", twice, ExtractText(twice))
	}
}

func TestExtractText_Empty(t *testing.T) {
	if got := ExtractText(""); got != "" {
		t.Errorf("ExtractText(\"\") = %q, want empty", got)
	}
	if got := ExtractText("   \n\t  "); got != "" {
		t.Errorf("ExtractText(whitespace) = %q, want empty", got)
	}
}

func TestMarkdown_PreservesStructure(t *testing.T) {
	md, err := Markdown("<h1>Title</h1><p>Body with <a href=\"https://example.com\">a link</a>.</p>")
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if !strings.Contains(md, "Title") || !strings.Contains(md, "https://example.com") {
		t.Errorf("unexpected markdown output: %q", md)
	}
}
