// Package markdown converts recipe content bodies into HTML using
// goldmark. Recipe bodies are assembled Markdown (ingredients, numbered
// steps, tips); raw HTML is escaped because most of this content comes
// from an AI provider.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks
		extension.Typographer, // smart quotes and dashes
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // heading anchors for the section links
	),
)

// ToHTML converts a Markdown recipe body into HTML. Embedded raw HTML is
// escaped, not passed through.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
