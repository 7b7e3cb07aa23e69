// Package format holds helpers for Telegram HTML parse mode.
package format

import (
	"html"
	"strings"
)

// EscapeHTML escapes the characters Telegram's HTML parser treats as markup.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// Bold wraps escaped text in <b>.
func Bold(text string) string {
	return "<b>" + EscapeHTML(text) + "</b>"
}

// Link renders <a href="url">label</a> with both parts escaped.
func Link(url, label string) string {
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(EscapeHTML(url))
	b.WriteString(`">`)
	b.WriteString(EscapeHTML(label))
	b.WriteString(`</a>`)
	return b.String()
}
