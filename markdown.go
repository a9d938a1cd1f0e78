package main

import (
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	fences "github.com/stefanfritsch/goldmark-fences"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var frontMatter = []byte("+++")

var yamlFrontMatter = []byte("---")

// newMarkdown returns the markdown renderer for a site. Headings get ids so
// they can be linked to and listed in a table of contents.
func newMarkdown(codeStyle string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(codeStyle),
				highlighting.WithFormatOptions(chromahtml.TabWidth(2)),
			),
			&fences.Extender{},
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}
