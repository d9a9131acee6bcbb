// Package slug turns free-form names into URL path segments.
//
//	slug.Make("Sri Venkateswara Catering & Events") // "sri-venkateswara-catering-events"
//	slug.Make("Café Lumière", slug.MaxLength(8))    // "cafe-lum"
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type options struct {
	maxLength int
	suffix    string
	fallback  string
	reserved  map[string]struct{}
}

// Option configures Make.
type Option func(*options)

// MaxLength caps the slug length, suffix included. Zero disables the cap.
func MaxLength(n int) Option {
	return func(o *options) { o.maxLength = n }
}

// WithSuffix appends "-suffix" after truncation so the suffix always survives.
func WithSuffix(suffix string) Option {
	return func(o *options) { o.suffix = Make(suffix) }
}

// Fallback is used when the input has no ASCII letters or digits left.
func Fallback(s string) Option {
	return func(o *options) { o.fallback = s }
}

// Reserved lists slugs that must not be produced as-is; they get "-1" appended.
func Reserved(words ...string) Option {
	return func(o *options) {
		if o.reserved == nil {
			o.reserved = make(map[string]struct{}, len(words))
		}
		for _, w := range words {
			o.reserved[w] = struct{}{}
		}
	}
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make lowercases s, folds accents to ASCII and joins alphanumeric runs with
// single hyphens. The result matches ^[a-z0-9]+(-[a-z0-9]+)*$ or is empty.
func Make(s string, opts ...Option) string {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}

	out := b.String()
	if out == "" {
		out = o.fallback
	}
	if _, ok := o.reserved[out]; ok && out != "" {
		out += "-1"
	}

	limit := o.maxLength
	if o.suffix != "" && limit > 0 {
		limit -= len(o.suffix) + 1
		if limit < 0 {
			limit = 0
		}
	}
	if limit > 0 && len(out) > limit {
		out = strings.TrimRight(out[:limit], "-")
	}

	if o.suffix != "" {
		if out == "" {
			return o.suffix
		}
		return out + "-" + o.suffix
	}
	return out
}
