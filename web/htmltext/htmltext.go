// Package htmltext converts raw HTML into clean plain text or Markdown.
//
// ExtractText walks the parsed document and keeps only visible text content:
// scripts, styles, the head section and comments never appear in the output,
// block-level elements become line breaks, and whitespace is normalised.
// The conversion is best-effort and never fails, even on malformed markup.
package htmltext

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	blankLineRun  = regexp.MustCompile(`\n\s*\n`)
	spaceRun      = regexp.MustCompile(` +`)

	// Fallback-path regexes for when the tree parser itself fails.
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headBlockRe   = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	commentRe     = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]*>`)
)

// blockTags are elements that conventionally start a new visual line.
// Visiting one inserts a line-break token.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// skipTags are elements whose entire subtree is excluded from the output.
var skipTags = map[string]bool{
	"script": true, "style": true, "head": true,
}

// ExtractText returns the visible text of raw, whitespace-normalised.
//
// Text nodes are trimmed and internal whitespace runs collapsed to a single
// space; block-level elements contribute a line break unless one was just
// emitted. Runs of breaks collapse to one blank line and the result is
// trimmed. Malformed markup is handled tolerantly: if the tree parser fails
// the input is cleaned with regex stripping instead, so ExtractText always
// produces a best-effort result.
func ExtractText(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		// html.Parse is lenient and essentially never errors; this path
		// keeps the no-failure guarantee regardless.
		return finish(tagRe.ReplaceAllString(
			commentRe.ReplaceAllString(
				headBlockRe.ReplaceAllString(
					styleBlockRe.ReplaceAllString(
						scriptBlockRe.ReplaceAllString(raw, " "), " "), " "), " "), " "))
	}

	var tokens []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.CommentNode:
			return
		case html.ElementNode:
			if skipTags[n.Data] {
				return
			}
			if blockTags[n.Data] && len(tokens) > 0 && tokens[len(tokens)-1] != "\n" {
				tokens = append(tokens, "\n")
			}
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				tokens = append(tokens, whitespaceRun.ReplaceAllString(t, " "))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return finish(strings.Join(tokens, " "))
}

// finish applies the shared post-processing: runs of line breaks become one
// blank line, runs of spaces become one space, and the result is trimmed.
func finish(s string) string {
	s = blankLineRun.ReplaceAllString(s, "\n\n")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Markdown converts raw HTML to Markdown, preserving document structure
// (headings, lists, links) that plain-text extraction discards.
func Markdown(raw string) (string, error) {
	return htmltomarkdown.ConvertString(raw)
}
