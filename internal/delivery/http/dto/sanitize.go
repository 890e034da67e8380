package dto

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy = bluemonday.StrictPolicy()
	htmlPolicy = bluemonday.UGCPolicy()
)

// plain strips all markup from single-line fields and returns plain text, so
// "AT&T" is stored as typed. Links are left alone so query strings survive.
func plain(s string) string {
	return html.UnescapeString(textPolicy.Sanitize(s))
}

// richText keeps the user-generated-content subset of HTML for descriptions.
func richText(s string) string {
	return htmlPolicy.Sanitize(s)
}
