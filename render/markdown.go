// Package render turns generated markdown into HTML for the page.
package render

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Raw HTML in the source is omitted because the html.WithUnsafe option is never set.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown converts src to HTML that is safe to place in a template.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
