package pipeline

import (
	"regexp"
	"strings"
)

// The generator is instructed not to emit links or markup, but instruction
// following is not guaranteed, so generated text is cleaned before the
// citation suffix is appended.
var (
	bareURLRe  = regexp.MustCompile(`https?://[^\s"'<>]+`)
	htmlTagRe  = regexp.MustCompile(`<[^>]*>`)
	attrFragRe = regexp.MustCompile(`(target|rel|class)\s*=\s*("[^"]*"|'[^']*')`)
)

// Sanitize strips bare URLs, HTML-like tags, and leftover quoted attribute
// fragments from generated text, then trims whitespace. Idempotent.
func Sanitize(text string) string {
	text = bareURLRe.ReplaceAllString(text, "")
	text = htmlTagRe.ReplaceAllString(text, "")
	text = attrFragRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
