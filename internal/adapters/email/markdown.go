package email

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// md renders CommonMark plus tables. Raw HTML in the source is escaped.
var md = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Linkify),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderMarkdown converts a markdown body to an HTML email body.
// PRE: source is UTF-8 markdown
// POST: Returns HTML with any raw HTML in source omitted
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// NewMarkdownRequest builds a SendRequest whose HTML is rendered from body and
// whose plain-text part is body itself.
func NewMarkdownRequest(to []string, subject, body string) (SendRequest, error) {
	htmlBody, err := RenderMarkdown(body)
	if err != nil {
		return SendRequest{}, err
	}
	return SendRequest{To: to, Subject: subject, HTML: htmlBody, Text: body}, nil
}
