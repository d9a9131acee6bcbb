// Package sanitizer cleans user-supplied text before it is stored.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict   *bluemonday.Policy
	rich     *bluemonday.Policy
	initOnce sync.Once
)

func policies() {
	initOnce.Do(func() {
		strict = bluemonday.StrictPolicy()

		rich = bluemonday.NewPolicy()
		rich.AllowStandardURLs()
		rich.AllowElements("p", "br", "strong", "b", "em", "i", "ul", "ol", "li", "blockquote")
		rich.AllowAttrs("href").OnElements("a")
		rich.RequireNoFollowOnLinks(true)
		rich.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// maxPasses bounds how many layers of entity encoding PlainText unwraps.
const maxPasses = 5

// PlainText strips every tag and returns trimmed text with entities decoded,
// suitable for chat messages and names. Markup hidden behind entities
// (&lt;script&gt;) is stripped as well.
func PlainText(s string) string {
	policies()
	for range maxPasses {
		out := html.UnescapeString(strict.Sanitize(s))
		if out == s {
			return strings.TrimSpace(out)
		}
		s = out
	}
	// Still changing: keep the escaped form rather than decoding live markup.
	return strings.TrimSpace(strict.Sanitize(s))
}

// RichText keeps a small set of formatting tags and safe links. Used for
// provider bios rendered on profile pages.
func RichText(s string) string {
	policies()
	return strings.TrimSpace(rich.Sanitize(s))
}
