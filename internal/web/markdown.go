package web

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// NotesStyle colors code blocks pasted into document notes, usually JSON or
// CSV pulled from agency portals.
var NotesStyle = styles.Register(chroma.MustNewStyle("dashboard-notes", chroma.StyleEntries{
	chroma.Text:            "#1f2933",
	chroma.Error:           "#b91c1c",
	chroma.Comment:         "italic #6b7280",
	chroma.Keyword:         "bold #1d4ed8",
	chroma.KeywordType:     "#1d4ed8",
	chroma.Operator:        "#374151",
	chroma.Punctuation:     "#4b5563",
	chroma.NameTag:         "#1d4ed8",
	chroma.NameAttribute:   "#92400e",
	chroma.NameFunction:    "#047857",
	chroma.NameBuiltin:     "#047857",
	chroma.LiteralString:   "#047857",
	chroma.LiteralNumber:   "#c2410c",
	chroma.LiteralDate:     "#c2410c",
	chroma.GenericHeading:  "bold #111827",
	chroma.GenericDeleted:  "#b91c1c",
	chroma.GenericInserted: "#047857",
	chroma.Background:      "bg:#f3f4f6",
}))

// MarkdownRenderer turns document notes into HTML. Raw HTML in the source is
// dropped.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			&codeHighlightExt{},
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(
				util.Prioritized(&notesHTMLRenderer{}, 100),
			),
		),
	)
	return &MarkdownRenderer{md: md}
}

// Render converts Markdown notes to HTML.
func (r *MarkdownRenderer) Render(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("render notes: %w", err)
	}
	return buf.String(), nil
}

type codeHighlightExt struct{}

func (e *codeHighlightExt) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&codeBlockRenderer{}, 100),
	))
}

type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderCodeBlock)
}

func (r *codeBlockRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	highlighted, err := highlightCode(code.String(), string(n.Language(source)))
	if err != nil {
		_, _ = w.WriteString(`<pre class="code-block"><code>`)
		_, _ = w.Write(util.EscapeHTML(code.Bytes()))
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString(highlighted)
	return ast.WalkSkipChildren, nil
}

func highlightCode(code, language string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	formatter := chromahtml.New(chromahtml.WithPreWrapper(codeBlockWrapper{}))
	var buf bytes.Buffer
	if err := formatter.Format(&buf, NotesStyle, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type codeBlockWrapper struct{}

func (codeBlockWrapper) Start(code bool, styleAttr string) string {
	if code {
		return fmt.Sprintf(`<div class="code-block"><pre%s>`, styleAttr)
	}
	return `<pre class="code-block">`
}

func (codeBlockWrapper) End(code bool) string {
	if code {
		return "</pre></div>"
	}
	return "</pre>"
}

// notesHTMLRenderer adds the stylesheet classes used on the document page.
type notesHTMLRenderer struct{}

func (r *notesHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(extast.KindTable, r.renderTable)
	reg.Register(ast.KindBlockquote, r.renderBlockquote)
}

func (r *notesHTMLRenderer) renderTable(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<table class="notes-table">`)
	} else {
		_, _ = w.WriteString("</table>\n")
	}
	return ast.WalkContinue, nil
}

func (r *notesHTMLRenderer) renderBlockquote(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<blockquote class="quote">`)
	} else {
		_, _ = w.WriteString("</blockquote>\n")
	}
	return ast.WalkContinue, nil
}
