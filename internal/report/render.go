package report

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML renders every non-empty section as an HTML fragment.
func RenderHTML(a Analysis) (string, error) {
	var buf bytes.Buffer
	for _, s := range a.Sections() {
		if s.Body == "" {
			continue
		}
		fmt.Fprintf(&buf, "<section id=%q>\n<h2>%s</h2>\n", s.Key, html.EscapeString(s.Title))
		if err := markdown.Convert([]byte(s.Body), &buf); err != nil {
			return "", fmt.Errorf("render %s: %w", s.Key, err)
		}
		buf.WriteString("</section>\n")
	}
	return buf.String(), nil
}
