// Package scope decides whether a discovered URL falls within the crawl's
// configured boundary.
package scope

import (
	"net/url"
	"strings"

	"github.com/nrahman/sitemapgen/internal/siteurl"
)

// Validator holds an immutable, ordered list of canonical base-URL prefixes.
// Once constructed it is safe to share across goroutines without further
// synchronization.
type Validator struct {
	prefixes []string
}

// New builds a Validator from a set of scope URLs. Each scope URL has its
// query and fragment stripped; non-hierarchical entries (URLs that cannot
// serve as a base, e.g. opaque "mailto:" URLs) are silently dropped.
func New(scopes []*url.URL) *Validator {
	prefixes := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if !siteurl.Hierarchical(s) {
			continue
		}
		canon := siteurl.Canonicalize(s, true)
		prefixes = append(prefixes, canon.String())
	}
	return &Validator{prefixes: prefixes}
}

// IsValid reports whether u's canonical serialization starts with at least
// one of the validator's scope prefixes. This is a deliberate string-prefix
// rule, not a host-equality check: "https://example.com/docs/" excludes
// "https://example.com/blog/".
func (v *Validator) IsValid(u *url.URL) bool {
	s := u.String()
	for _, prefix := range v.prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
