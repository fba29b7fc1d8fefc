package extractor

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// mdParser is shared across extractions; goldmark parsers are stateless.
var mdParser = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// extractMarkdown parses markdown and returns its plain text content as a
// single-element sequence. Headings, list items and paragraphs each start
// a new line; formatting syntax is dropped.
func extractMarkdown(data []byte) ([]string, error) {
	doc := mdParser.Parser().Parse(text.NewReader(data))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.ListItem:
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteString("\n")
			}
		case *ast.Text:
			sb.Write(node.Segment.Value(data))
		case *ast.String:
			sb.Write(node.Value)
		case *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				sb.Write(line.Value(data))
			}
		case *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				sb.Write(line.Value(data))
			}
		}
		return ast.WalkContinue, nil
	})

	return []string{strings.TrimSpace(sb.String())}, nil
}
