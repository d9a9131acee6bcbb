package web

import "strings"

// ExtractorSource reads one candidate value from a request.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries sources in order and returns the first non-empty value.
type Extractor struct {
	sources []ExtractorSource
}

func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Header(name)
		return v, v != ""
	}
}

// FromQuery is used for EventSource connections, which cannot set headers.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Query(name)
		return v, v != ""
	}
}

// FromBearerToken reads "Authorization: Bearer <token>", scheme case-insensitive.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		scheme, token, ok := strings.Cut(c.Header("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}
}
