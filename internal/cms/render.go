package cms

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	sanitizer = newSanitizer()
)

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("figure", "figcaption", "span", "div")
	p.AllowElements("figure", "figcaption")
	return p
}

// RenderHTML converts an MDX body to sanitized HTML. ESM statements and JSX component
// tags are dropped before the markdown pass; raw HTML is kept and then sanitized.
func RenderHTML(body string) template.HTML {
	src := stripMDXSyntax(body)
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(body))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// stripMDXSyntax removes lines that only make sense to a JSX runtime: import/export
// statements and self-closing or block component tags (capitalised names).
func stripMDXSyntax(body string) string {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	inFence := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "export ") {
			continue
		}
		if isComponentTag(trimmed) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isComponentTag(s string) bool {
	var rest string
	switch {
	case strings.HasPrefix(s, "</"):
		rest = s[2:]
	case strings.HasPrefix(s, "<"):
		rest = s[1:]
	default:
		return false
	}
	return rest != "" && rest[0] >= 'A' && rest[0] <= 'Z'
}
