package failreport

import (
	"bytes"
	"html/template"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightStyle is the chroma style used for assertion expressions.
const HighlightStyle = "github"

var expressionFormatter = chromahtml.New(
	chromahtml.PreventSurroundingPre(true),
	chromahtml.WithClasses(false),
)

// highlightExpression renders a Go expression as inline-styled HTML. When
// highlighting fails the expression is returned escaped.
func highlightExpression(src string) template.HTML {
	if out, err := highlight(src); err == nil {
		return out
	}
	return template.HTML(template.HTMLEscapeString(src))
}

func highlight(src string) (template.HTML, error) {
	lexer := lexers.Get("go")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := expressionFormatter.Format(&buf, styles.Get(HighlightStyle), it); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
