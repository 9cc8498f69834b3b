package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user-generated content, keeping safe formatting markup.
// Used for post and comment bodies.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeStrict strips all markup. Used for plain-text fields such as post
// titles.
func SanitizeStrict(input string) string {
	return strictPolicy.Sanitize(input)
}
